package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/evidentsys/evident/pkg/pack"
	"github.com/evidentsys/evident/pkg/trust"
	"github.com/evidentsys/evident/pkg/verify"
)

// runVerifyCmd implements `evident verify`.
//
// Exit codes:
//
//	0 = verification passed
//	1 = verification failed (integrity or completeness)
//	2 = runtime or structural error (malformed bundle, bad key file)
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		bundle     string
		keysPath   string
		jsonOutput bool
	)
	cmd.StringVar(&bundle, "bundle", "", "Path to evidence pack tar.gz (REQUIRED)")
	cmd.StringVar(&keysPath, "keys", "trust_keys.yaml", "Path to trust key file")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if bundle == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --bundle is required")
		return 2
	}

	registry, err := trust.LoadKeyFile(keysPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	f, err := os.Open(bundle)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: open bundle: %v\n", err)
		return 2
	}
	defer f.Close()

	p, err := pack.Read(f)
	if err != nil {
		// Structural failure: the pack cannot be characterized at all.
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	report := verify.Pack(p, registry)

	if jsonOutput {
		data, _ := json.MarshalIndent(report, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		_, _ = fmt.Fprintf(stdout, "Verdict: %s (%d receipts examined)\n", report.Verdict, report.ReceiptsExamined)
		for _, name := range []string{verify.CheckCompleteness, verify.CheckCausalChain, verify.CheckSignatures} {
			_, _ = fmt.Fprintf(stdout, "  %-14s %s\n", name, report.Checks[name])
		}
		for _, e := range report.Errors {
			_, _ = fmt.Fprintf(stdout, "  - %s\n", e)
		}
	}

	if report.Verdict != verify.VerdictPass {
		return 1
	}
	return 0
}
