package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jls/internal/config"
	"jls/internal/dispatcher"
	"jls/internal/logging"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a one-shot lint over the workspace and exit (for CI)",
	Long: `Indexes the workspace, compiles every source file, and prints every
diagnostic to stdout without starting the LSP protocol loop. Exits non-zero
if any error-severity diagnostic was found.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	logging.Boot("Checking workspace: %s", ws)

	cfgPath := ws + string(os.PathSeparator) + ".jls.yaml"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	disp := dispatcher.New(ws, cfg)
	ctx := context.Background()
	if err := disp.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize workspace: %w", err)
	}
	defer disp.Shutdown()

	results, err := disp.Lint(ctx, nil)
	if err != nil {
		return fmt.Errorf("lint: %w", err)
	}

	hasError := false
	for _, r := range results {
		for _, d := range r.Diagnostics {
			fmt.Printf("%s:%d:%d: %s: %s\n", r.URI, d.Range.Start.Line+1, d.Range.Start.Char+1, severityLabel(d.Severity), d.Message)
			if d.Severity == 1 {
				hasError = true
			}
		}
	}

	if hasError {
		os.Exit(1)
	}
	return nil
}

func severityLabel(s int) string {
	switch s {
	case 1:
		return "error"
	case 2:
		return "warning"
	case 3:
		return "info"
	default:
		return "hint"
	}
}
