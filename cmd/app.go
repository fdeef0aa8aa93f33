package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/spf13/pflag"

	"github.com/Shivanand-hulikatti/eventmaster/internal/cli"
	"github.com/Shivanand-hulikatti/eventmaster/internal/client"
	"github.com/Shivanand-hulikatti/eventmaster/internal/config"
	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
	"github.com/Shivanand-hulikatti/eventmaster/internal/service"
	"github.com/Shivanand-hulikatti/eventmaster/internal/session"
)

const userAgent = "eventmaster-cli"

// app holds what every command shares: global flags, the loaded config and
// the output streams.
type app struct {
	flags  config.Flags
	cfg    config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer

	mu          sync.Mutex
	errReported bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.DiscardHandler),
	}
}

// Notify prints workflow notices. Errors go to stderr.
func (a *app) Notify(n service.Notice) {
	if n.Kind == service.NoticeError {
		a.mu.Lock()
		a.errReported = true
		a.mu.Unlock()
		fmt.Fprintf(a.stderr, "error: %s\n", n.Message)
		return
	}
	fmt.Fprintln(a.stdout, n.Message)
}

// reported tells whether the failure was already shown as a notice.
func (a *app) reported() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errReported
}

// load reads the configuration and builds the logger.
func (a *app) load() error {
	cfg, err := config.Load(a.flags)
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cli.NewLogger(a.stderr, level)
	return nil
}

// signIn returns the session for the configured token, or nil when no
// token is configured.
func (a *app) signIn(ctx context.Context) (*session.Session, error) {
	src := a.cfg.TokenSource()
	if src == nil {
		return nil, nil
	}
	sess, err := session.SignIn(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if !sess.Valid() {
		return nil, fmt.Errorf("sign in: %w", session.ErrExpired)
	}
	a.logger.Debug("signed in", "subject", sess.Subject(), "role", sess.Role(), "expires", sess.ExpiresAt())
	return sess, nil
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.API.Endpoint,
		client.WithTimeout(a.cfg.API.Timeout),
		client.WithLogger(a.logger.With("component", "client")),
		client.WithUserAgent(userAgent),
	)
}

// workflows is the service layer wired for one command invocation.
type workflows struct {
	sess    *session.Session
	api     *client.Client
	catalog *service.Catalog
	flow    *service.RegistrationFlow
	editor  *service.EventEditor
}

func (a *app) workflows(ctx context.Context, n service.Notifier) (*workflows, error) {
	sess, err := a.signIn(ctx)
	if err != nil {
		return nil, err
	}
	api := a.client()
	catalog := service.NewCatalog(api, sess, n, a.logger.With("component", "catalog"))
	return &workflows{
		sess:    sess,
		api:     api,
		catalog: catalog,
		flow:    service.NewRegistrationFlow(api, catalog, n, a.logger.With("component", "registration")),
		editor:  service.NewEventEditor(api, catalog, n, a.logger.With("component", "editor")),
	}, nil
}

// command builds a leaf command that loads configuration before running.
// Notices are printed by the app.
func (a *app) command(ctx context.Context, c *cli.Command, flags func(fs *pflag.FlagSet), run func(ctx context.Context, w *workflows, args []string) error) *cli.Command {
	return a.commandWith(ctx, c, a, flags, run)
}

// commandWith is command with the workflows reporting to n.
func (a *app) commandWith(ctx context.Context, c *cli.Command, n service.Notifier, flags func(fs *pflag.FlagSet), run func(ctx context.Context, w *workflows, args []string) error) *cli.Command {
	c.Flags = func() *pflag.FlagSet {
		fs := pflag.NewFlagSet(c.Name, pflag.ContinueOnError)
		a.flags.AddFlags(fs)
		if flags != nil {
			flags(fs)
		}
		return fs
	}
	c.Run = func(args []string) error {
		if err := a.load(); err != nil {
			return err
		}
		w, err := a.workflows(ctx, n)
		if err != nil {
			return err
		}
		return run(ctx, w, args)
	}
	return c
}

// lookup finds an event in the freshly loaded catalog.
func lookup(ctx context.Context, w *workflows, id string) (model.Event, error) {
	if err := w.catalog.RefreshEvents(ctx); err != nil {
		return model.Event{}, err
	}
	e, ok := w.catalog.Event(id)
	if !ok {
		return model.Event{}, fmt.Errorf("event %q: %w", id, client.ErrNotFound)
	}
	return e, nil
}

func exactArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return errors.New("usage: " + usage)
	}
	return nil
}
