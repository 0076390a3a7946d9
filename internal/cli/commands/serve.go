package commands

import (
	"fmt"

	"github.com/leapstack-labs/sqla2lint/internal/server"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr  string
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(version string) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve [path...]",
		Short: "Serve the checker over HTTP",
		Long: `Start an HTTP server exposing the checker.

Endpoints:
- GET  /healthz          liveness and version
- GET  /v1/rules         registered rules
- GET  /v1/rules/{id}    one rule's documentation
- POST /v1/check         check {"path", "source"} and return diagnostics
- GET  /v1/runs          recent check runs (requires the cache)
- GET  /v1/events        server-sent re-check reports (with --watch)`,
		Example: `  # Serve on the default address
  sqla2lint serve

  # Serve on a custom address
  sqla2lint serve --addr :9000

  # Re-check the project on change and stream reports
  sqla2lint serve --watch ./app`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, version, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default: 127.0.0.1:8787)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch paths and stream re-check reports")

	return cmd
}

func runServe(cmd *cobra.Command, args []string, version string, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd, "")
	cfg := cmdCtx.Cfg

	// CLI flags override config file
	addr := cfg.Serve.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	watch := cfg.Serve.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	eng, store, cleanup, err := cmdCtx.NewEngine(EngineOptions{})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer cleanup()

	var watchPaths []string
	if watch {
		watchPaths = args
		if len(watchPaths) == 0 {
			watchPaths = []string{"."}
		}
	}

	srv := server.New(server.Config{
		Addr:       addr,
		Engine:     eng,
		Store:      store,
		Version:    version,
		WatchPaths: watchPaths,
		Logger:     cmdCtx.Logger,
	})

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Serving on http://%s\n", addr)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Press Ctrl+C to stop")

	return srv.Serve(cmd.Context())
}
