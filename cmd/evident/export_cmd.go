package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/evidentsys/evident/pkg/config"
	"github.com/evidentsys/evident/pkg/contracts"
	"github.com/evidentsys/evident/pkg/pack"
	"github.com/evidentsys/evident/pkg/store"
)

// runExportCmd implements `evident export`: reads receipt chains from
// the configured store and writes a deterministic tar.gz evidence
// pack. With --session, exports only that session; otherwise all.
func runExportCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("export", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		out       string
		sessionID string
	)
	cmd.StringVar(&out, "out", "evidence_pack.tar.gz", "Output pack path")
	cmd.StringVar(&sessionID, "session", "", "Export a single session (default: all)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	log := slog.New(slog.NewTextHandler(stderr, nil))

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	var sessions []contracts.Session
	if sessionID != "" {
		sessions = []contracts.Session{{SessionID: sessionID}}
	} else {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: list sessions: %v\n", err)
			return 2
		}
	}

	chains := make(map[string][]*contracts.Receipt, len(sessions))
	for _, s := range sessions {
		receipts, err := st.GetReceipts(ctx, s.SessionID)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: session %s: %v\n", s.SessionID, err)
			return 2
		}
		chains[s.SessionID] = receipts
		log.Info("exporting session", "session_id", s.SessionID, "receipts", len(receipts))
	}

	f, err := os.Create(out)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: create %s: %v\n", out, err)
		return 2
	}
	defer f.Close()

	if err := pack.Write(f, chains); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: write pack: %v\n", err)
		return 2
	}

	_, _ = fmt.Fprintf(stdout, "Exported %d session(s) to %s\n", len(chains), out)
	return 0
}
