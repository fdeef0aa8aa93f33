package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/Shivanand-hulikatti/eventmaster/internal/cli"
	"github.com/Shivanand-hulikatti/eventmaster/internal/service"
	"github.com/Shivanand-hulikatti/eventmaster/internal/tui"
)

func registerCommand(ctx context.Context, a *app) *cli.Command {
	var eventID, ticketTypeID, name, email string
	return a.command(ctx, &cli.Command{
		Name:    "register",
		Summary: "Register for an event",
		Usage:   "eventmaster register --event <id> --ticket <ticketTypeId> --name <name> --email <email>",
	}, func(fs *pflag.FlagSet) {
		fs.StringVar(&eventID, "event", "", "event id")
		fs.StringVar(&ticketTypeID, "ticket", "", "ticket type id")
		fs.StringVar(&name, "name", "", "attendee full name")
		fs.StringVar(&email, "email", "", "attendee email")
	}, func(ctx context.Context, w *workflows, _ []string) error {
		if eventID == "" {
			return errors.New("--event is required")
		}
		event, err := lookup(ctx, w, eventID)
		if err != nil {
			return err
		}
		if err := w.flow.Select(event); err != nil {
			if errors.Is(err, service.ErrSoldOut) {
				return fmt.Errorf("%s is sold out", event.Name)
			}
			return err
		}
		if ticketTypeID == "" {
			fmt.Fprintln(a.stderr, "Available ticket types:")
			for _, o := range w.flow.Options() {
				fmt.Fprintf(a.stderr, "  %s  %s\n", o.ID, o.Label)
			}
		} else if err := w.flow.SetTicketType(ticketTypeID); err != nil {
			return err
		}
		w.flow.SetAttendee(name, email)

		result, err := w.flow.Submit(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "registration: %s\n", result.RegistrationID)
		if result.TicketURL != "" {
			fmt.Fprintf(a.stdout, "ticket:       %s\n", result.TicketURL)
		}
		return nil
	})
}

func registrationsCommand(ctx context.Context, a *app) *cli.Command {
	return a.command(ctx, &cli.Command{
		Name:    "registrations",
		Summary: "List your registrations and ticket links",
	}, nil, func(ctx context.Context, w *workflows, _ []string) error {
		if err := w.catalog.RefreshRegistrations(ctx); err != nil {
			return err
		}
		return printRegistrations(a, w.catalog.Registrations())
	})
}

func ticketsCommand(ctx context.Context, a *app) *cli.Command {
	return &cli.Command{
		Name:    "tickets",
		Summary: "Check tickets at the door",
		Subcommands: []*cli.Command{
			a.command(ctx, &cli.Command{
				Name:    "validate",
				Summary: "Validate a ticket and admit its holder",
				Usage:   "eventmaster tickets validate <ticketId>",
			}, nil, func(ctx context.Context, w *workflows, args []string) error {
				if err := exactArgs(args, 1, "eventmaster tickets validate <ticketId>"); err != nil {
					return err
				}
				result, err := w.editor.ValidateTicket(ctx, args[0])
				if err != nil {
					return err
				}
				verdict := "INVALID"
				if result.Valid {
					verdict = "VALID"
				}
				fmt.Fprintf(a.stdout, "%s: %s\n", verdict, result.Message)
				if r := result.Registration; r != nil {
					fmt.Fprintf(a.stdout, "%s <%s>, %s, %s\n", r.AttendeeName, r.AttendeeEmail, r.EventName, r.TicketTypeName)
				}
				if !result.Valid {
					return errors.New("ticket rejected")
				}
				return nil
			}),
		},
	}
}

func browseCommand(ctx context.Context, a *app) *cli.Command {
	// The browser shows notices itself.
	notices := &tui.Notices{}
	return a.commandWith(ctx, &cli.Command{
		Name:    "browse",
		Summary: "Browse events and register interactively",
	}, notices, nil, func(ctx context.Context, w *workflows, _ []string) error {
		m := tui.New(ctx, w.catalog, w.flow, notices)
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	})
}
