// Package main implements jls, a Java Language Server: indexing, compiler
// façade, and request providers behind a JSON-RPC stdio transport.
//
// File Index:
//   - main.go       - entry point, rootCmd, global flags, init()
//   - cmd_serve.go  - serveCmd, runServe() (the LSP stdio loop)
//   - cmd_check.go  - checkCmd, runCheck() (one-shot CI lint)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"jls/internal/logging"
)

var (
	verbose   bool
	workspace string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "jls",
	Short: "jls - a Java Language Server",
	Long: `jls implements the Language Server Protocol for Java: workspace
indexing, completion, hover, definition, references, diagnostics, code
actions, rename, and more, served over JSON-RPC on stdin/stdout.

Run without a subcommand to start serving.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := resolveWorkspace()
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runServe,
}

func resolveWorkspace() string {
	ws := workspace
	if ws == "" {
		ws, _ = os.Getwd()
		return ws
	}
	if abs, err := filepath.Abs(ws); err == nil {
		return abs
	}
	return ws
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace root directory (default: current directory)")

	rootCmd.AddCommand(serveCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
