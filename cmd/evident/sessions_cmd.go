package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/evidentsys/evident/pkg/client"
	"github.com/evidentsys/evident/pkg/config"
)

// runSessionsCmd implements `evident sessions`: lists sessions from the
// kernel API so an operator can pick what to export and verify.
func runSessionsCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("sessions", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		limit  int
		offset int
	)
	cmd.IntVar(&limit, "limit", 50, "Maximum sessions to list")
	cmd.IntVar(&offset, "offset", 0, "Listing offset")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	c := client.New(cfg.KernelURL, client.WithAPIKey(cfg.APIKey), client.WithTimeout(cfg.Timeout))
	sessions, err := c.ListSessions(context.Background(), limit, offset)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	for _, s := range sessions {
		_, _ = fmt.Fprintf(stdout, "%s  receipts=%d  last_clock=%d  created=%s\n",
			s.SessionID, s.ReceiptCount, s.LastLamportClock, s.CreatedAt)
	}
	return 0
}
