package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/Shivanand-hulikatti/eventmaster/internal/cli"
	"github.com/Shivanand-hulikatti/eventmaster/internal/handler"
	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
	"github.com/Shivanand-hulikatti/eventmaster/internal/repository"
	"github.com/Shivanand-hulikatti/eventmaster/internal/session"
)

const demoOrganizer = "org-demo"

func stubCommand(ctx context.Context, a *app) *cli.Command {
	return &cli.Command{
		Name:        "stub",
		Summary:     "Run a local in-memory copy of the ticketing API",
		Description: "Run a local in-memory copy of the ticketing API. It accepts the unsigned tokens minted by 'stub token' and is meant for development only.",
		Subcommands: []*cli.Command{
			stubServeCommand(ctx, a),
			stubTokenCommand(a),
		},
	}
}

func stubServeCommand(ctx context.Context, a *app) *cli.Command {
	var (
		addr       string
		ticketBase string
		seed       bool
	)
	return &cli.Command{
		Name:    "serve",
		Summary: "Serve the stub API until interrupted",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			a.flags.AddFlags(fs)
			fs.StringVar(&addr, "addr", "", "listen address (env EVENTMASTER_STUB_ADDR)")
			fs.StringVar(&ticketBase, "ticket-base", "", "base URL for issued ticket links; empty issues none")
			fs.BoolVar(&seed, "seed", false, "load demo events owned by "+demoOrganizer)
			return fs
		},
		Run: func([]string) error {
			if err := a.load(); err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Stub.Addr
			}
			return serveStub(ctx, a, addr, ticketBase, seed)
		},
	}
}

func serveStub(ctx context.Context, a *app, addr, ticketBase string, seed bool) error {
	logger := a.logger.With("component", "stub")

	// ── 1. Wire up layers ────────────────────────────────────────────────
	store := repository.NewStore()
	eventRepo := repository.NewEventRepository(store)
	regRepo := repository.NewRegistrationRepository(store)
	if seed {
		if err := seedDemo(ctx, eventRepo); err != nil {
			return err
		}
	}
	eventHandler := handler.NewEventHandler(eventRepo, regRepo, logger, ticketBase)

	// ── 2. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(eventHandler, logger, time.Now),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("stub listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("stub server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down stub")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("stub stopped")
	return nil
}

// seedDemo loads a small catalog: one event with a sold-out and an open
// ticket type, one sold-out event, and one unpublished draft.
func seedDemo(ctx context.Context, events *repository.EventRepository) error {
	drafts := []model.EventPayload{
		{
			Name: "Summer Concert", Date: "2026-07-18", Time: "19:30", Location: "Riverside Park",
			Description: "Open-air evening concert.", Status: model.StatusPublished,
			TicketTypes: []model.TicketTypePayload{
				{ID: "tkt-vip", Name: "VIP", Price: "80", Capacity: 5, Sold: 5},
				{ID: "tkt-ga", Name: "General Admission", Price: "25.5", Capacity: 200, Sold: 12},
			},
		},
		{
			Name: "Demo", Date: "2026-06-02", Time: "10:00", Location: "Lab 3",
			Description: "Product demo for early adopters.", Status: model.StatusPublished,
			TicketTypes: []model.TicketTypePayload{
				{ID: "tkt-demo", Name: "Standard", Price: "0", Capacity: 2, Sold: 2},
			},
		},
		{
			Name: "Winter Workshop", Date: "2026-12-05", Time: "09:00", Location: "Hall B",
			Description: "Hands-on workshop, still being planned.",
			TicketTypes: []model.TicketTypePayload{
				{Name: "Standard", Price: "15", Capacity: 30},
			},
		},
	}
	for _, d := range drafts {
		if _, err := events.Create(ctx, demoOrganizer, d); err != nil {
			return fmt.Errorf("seed %s: %w", d.Name, err)
		}
	}
	return nil
}

func stubTokenCommand(a *app) *cli.Command {
	var (
		role    string
		subject string
		email   string
		ttl     time.Duration
	)
	return &cli.Command{
		Name:    "token",
		Summary: "Print an unsigned development token for the stub",
		Examples: []cli.Example{
			{Description: "Act as the organizer of the seeded demo events", Command: "eventmaster stub token --role organizer --subject " + demoOrganizer},
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
			fs.StringVar(&role, "role", string(model.RoleAttendee), "attendee or organizer")
			fs.StringVar(&subject, "subject", "", "user id (default: derived from the role)")
			fs.StringVar(&email, "email", "", "email claim (default: <subject>@example.com)")
			fs.DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
			return fs
		},
		Run: func([]string) error {
			r := model.Role(strings.ToLower(role))
			if r != model.RoleAttendee && r != model.RoleOrganizer {
				return fmt.Errorf("unknown role %q: want attendee or organizer", role)
			}
			if subject == "" {
				subject = "user-" + string(r)
				if r == model.RoleOrganizer {
					subject = demoOrganizer
				}
			}
			if email == "" {
				email = subject + "@example.com"
			}
			token, err := session.MintUnsigned(subject, email, r, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, token)
			return nil
		},
	}
}
