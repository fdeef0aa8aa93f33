package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/Shivanand-hulikatti/eventmaster/internal/cli"
	"github.com/Shivanand-hulikatti/eventmaster/internal/inventory"
	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
)

func eventsCommand(ctx context.Context, a *app) *cli.Command {
	return &cli.Command{
		Name:    "events",
		Summary: "List and manage events",
		Subcommands: []*cli.Command{
			eventsListCommand(ctx, a),
			eventsCreateCommand(ctx, a),
			eventsEditCommand(ctx, a),
			eventsStatusCommand(ctx, a, "publish", model.StatusPublished),
			eventsStatusCommand(ctx, a, "unpublish", model.StatusDraft),
			eventsDeleteCommand(ctx, a),
			eventsRegistrantsCommand(ctx, a),
		},
	}
}

func eventsListCommand(ctx context.Context, a *app) *cli.Command {
	var (
		search string
		asJSON bool
	)
	return a.command(ctx, &cli.Command{
		Name:        "list",
		Summary:     "List events",
		Description: "List events. Organizers see their own events; attendees see published ones.",
	}, func(fs *pflag.FlagSet) {
		fs.StringVar(&search, "search", "", "only events whose name, location or description contains this text")
		fs.BoolVar(&asJSON, "json", false, "print normalized events as JSON")
	}, func(ctx context.Context, w *workflows, _ []string) error {
		if err := w.catalog.RefreshEvents(ctx); err != nil {
			return err
		}
		events := inventory.Search(w.catalog.Events(), search)
		if asJSON {
			if events == nil {
				events = []model.Event{}
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		}
		if len(events) == 0 {
			fmt.Fprintln(a.stdout, "No events found.")
			return nil
		}
		tw := tabwriter.NewWriter(a.stdout, 2, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tDATE\tTIME\tLOCATION\tSTATUS\tSOLD/CAPACITY\tAVAILABILITY")
		for _, e := range events {
			totals := inventory.Aggregate(e)
			availability := fmt.Sprintf("%d left", totals.Remaining)
			if inventory.IsSoldOut(e) {
				availability = "Sold Out"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d/%d\t%s\n",
				e.ID, e.Name, e.Date, e.Time, e.Location, e.Status, totals.Sold, totals.Capacity, availability)
		}
		return tw.Flush()
	})
}

func eventsCreateCommand(ctx context.Context, a *app) *cli.Command {
	var file string
	return a.command(ctx, &cli.Command{
		Name:    "create",
		Summary: "Create an event from a YAML draft",
		Usage:   "eventmaster events create -f draft.yaml",
	}, func(fs *pflag.FlagSet) {
		fs.StringVarP(&file, "file", "f", "", "YAML event draft")
	}, func(ctx context.Context, w *workflows, _ []string) error {
		if file == "" {
			return errors.New("--file is required")
		}
		draft, err := readDraft(file)
		if err != nil {
			return err
		}
		w.editor.New()
		if err := draft.apply(w.editor); err != nil {
			return err
		}
		result, err := w.editor.Save(ctx)
		if err != nil {
			return err
		}
		if result.ID != "" {
			fmt.Fprintf(a.stdout, "id: %s\n", result.ID)
		}
		return nil
	})
}

func eventsEditCommand(ctx context.Context, a *app) *cli.Command {
	var file string
	return a.command(ctx, &cli.Command{
		Name:    "edit",
		Summary: "Update an event from a YAML draft",
		Usage:   "eventmaster events edit <id> -f draft.yaml",
	}, func(fs *pflag.FlagSet) {
		fs.StringVarP(&file, "file", "f", "", "YAML event draft; empty fields keep their current value")
	}, func(ctx context.Context, w *workflows, args []string) error {
		if err := exactArgs(args, 1, "eventmaster events edit <id> -f draft.yaml"); err != nil {
			return err
		}
		if file == "" {
			return errors.New("--file is required")
		}
		draft, err := readDraft(file)
		if err != nil {
			return err
		}
		event, err := lookup(ctx, w, args[0])
		if err != nil {
			return err
		}
		w.editor.Edit(event)
		if err := draft.apply(w.editor); err != nil {
			return err
		}
		_, err = w.editor.Save(ctx)
		return err
	})
}

func eventsStatusCommand(ctx context.Context, a *app, name string, target model.Status) *cli.Command {
	return a.command(ctx, &cli.Command{
		Name:    name,
		Summary: fmt.Sprintf("Set an event's status to %s", target),
		Usage:   fmt.Sprintf("eventmaster events %s <id>", name),
	}, nil, func(ctx context.Context, w *workflows, args []string) error {
		if err := exactArgs(args, 1, fmt.Sprintf("eventmaster events %s <id>", name)); err != nil {
			return err
		}
		event, err := lookup(ctx, w, args[0])
		if err != nil {
			return err
		}
		if event.Status == target {
			fmt.Fprintf(a.stdout, "Event is already %s.\n", target)
			return nil
		}
		_, err = w.editor.ToggleStatus(ctx, event)
		return err
	})
}

func eventsDeleteCommand(ctx context.Context, a *app) *cli.Command {
	var yes bool
	return a.command(ctx, &cli.Command{
		Name:    "delete",
		Summary: "Delete an event",
		Usage:   "eventmaster events delete <id> --yes",
	}, func(fs *pflag.FlagSet) {
		fs.BoolVar(&yes, "yes", false, "confirm the deletion; it cannot be undone")
	}, func(ctx context.Context, w *workflows, args []string) error {
		if err := exactArgs(args, 1, "eventmaster events delete <id> --yes"); err != nil {
			return err
		}
		if !yes {
			return errors.New("deleting an event cannot be undone; pass --yes to confirm")
		}
		return w.editor.Delete(ctx, args[0])
	})
}

func eventsRegistrantsCommand(ctx context.Context, a *app) *cli.Command {
	return a.command(ctx, &cli.Command{
		Name:    "registrants",
		Summary: "List who registered for an event",
		Usage:   "eventmaster events registrants <id>",
	}, nil, func(ctx context.Context, w *workflows, args []string) error {
		if err := exactArgs(args, 1, "eventmaster events registrants <id>"); err != nil {
			return err
		}
		regs, err := w.editor.Registrants(ctx, args[0])
		if err != nil {
			return err
		}
		return printRegistrations(a, regs)
	})
}

func printRegistrations(a *app, regs []model.Registration) error {
	if len(regs) == 0 {
		fmt.Fprintln(a.stdout, "No registrations.")
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKET\tEVENT\tTICKET TYPE\tATTENDEE\tEMAIL\tDATE\tSTATUS\tDOWNLOAD")
	for _, r := range regs {
		event := r.EventName
		if event == "" {
			event = r.EventID
		}
		ticketType := r.TicketTypeName
		if ticketType == "" {
			ticketType = r.TicketTypeID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RegistrationID, event, ticketType, r.AttendeeName, r.AttendeeEmail, r.RegistrationDate, r.Status, r.TicketURL)
	}
	return tw.Flush()
}
