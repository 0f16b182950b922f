package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jls/internal/config"
	"jls/internal/dispatcher"
	"jls/internal/logging"
	"jls/internal/lsp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Java Language Server (JSON-RPC over stdio)",
	Long: `Starts the LSP stdio loop for editor integration.

Editor configuration example:

  {
    "command": "jls",
    "args": ["serve", "--workspace", "."]
  }

The server communicates via JSON-RPC over stdin/stdout.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	logging.Boot("Starting jls for workspace: %s", ws)

	cfgPath := ws + string(os.PathSeparator) + ".jls.yaml"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	disp := dispatcher.New(ws, cfg)
	server := lsp.NewServer(disp)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logging.Boot("received shutdown signal, stopping jls")
		cancel()
	}()

	defer disp.Shutdown()

	logging.Boot("jls ready, listening on stdin/stdout")
	if err := server.Serve(ctx); err != nil {
		if err == context.Canceled {
			logging.Boot("jls stopped gracefully")
			return nil
		}
		logging.BootError("jls server error: %v", err)
		return fmt.Errorf("lsp server error: %w", err)
	}
	return nil
}
