package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/eventmaster/internal/cli"
)

func rootCommand(ctx context.Context, a *app) *cli.Command {
	return &cli.Command{
		Name:        "eventmaster",
		Description: "Browse events, register for tickets and manage events on the ticketing API.",
		Subcommands: []*cli.Command{
			eventsCommand(ctx, a),
			registerCommand(ctx, a),
			registrationsCommand(ctx, a),
			ticketsCommand(ctx, a),
			browseCommand(ctx, a),
			whoamiCommand(ctx, a),
			stubCommand(ctx, a),
		},
		Examples: []cli.Example{
			{Description: "Run a local API and sign in against it", Command: "eventmaster stub serve --seed & export EVENTMASTER_TOKEN=$(eventmaster stub token)"},
			{Description: "Browse published events", Command: "eventmaster browse"},
		},
	}
}

func whoamiCommand(ctx context.Context, a *app) *cli.Command {
	return a.command(ctx, &cli.Command{
		Name:    "whoami",
		Summary: "Show the signed-in identity",
	}, nil, func(_ context.Context, w *workflows, _ []string) error {
		if w.sess == nil {
			fmt.Fprintln(a.stdout, "Not signed in.")
			return nil
		}
		fmt.Fprintf(a.stdout, "subject: %s\nemail:   %s\nrole:    %s\n", w.sess.Subject(), w.sess.Email(), w.sess.Role())
		if exp := w.sess.ExpiresAt(); !exp.IsZero() {
			fmt.Fprintf(a.stdout, "expires: %s\n", exp.Format(time.RFC3339))
		}
		return nil
	})
}
