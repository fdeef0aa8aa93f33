// cmd is the eventmaster command: the attendee and organizer client for the
// ticketing API, plus a local stub of that API for development.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdout, os.Stderr)
	if err := rootCommand(ctx, a).Execute(os.Args[1:]); err != nil {
		if !a.reported() {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
