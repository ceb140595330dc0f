// Jumanji runs the environment suite from the command line: list the
// registered environments, benchmark them with a random legal policy,
// write bin-packing instances, and solve them offline into PDF and DXF
// reports.
//
// Build:
//
//	go build -o jumanji ./cmd/jumanji
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stderr, "jumanji: ", log.LstdFlags)
	if err := newRootCommand(logger).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
