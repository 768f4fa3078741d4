package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hlop3z/erdpad/internal/cache"
	"github.com/hlop3z/erdpad/internal/cli"
	"github.com/hlop3z/erdpad/internal/server"
)

// serveCmd hosts the diagram over HTTP until interrupted.
func serveCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram over HTTP with live events",
		Long: `Serve the diagram over HTTP. Every change is written to the diagram file
and pushed to clients listening on /api/events. Edits made to the file by
other programs are picked up while the server runs.

Endpoints:
  GET    /api/document                 Current document (ETag)
  PUT    /api/document                 Replace the document (If-Match)
  POST   /api/tables                   Add a table
  PUT    /api/tables/{id}              Replace a table's name and columns
  DELETE /api/tables/{id}              Remove a table and its relationships
  PATCH  /api/tables/{id}/position     Move a table
  PATCH  /api/relationships/{id}       Change a relationship's kind
  GET    /api/connectors               Drawable connectors
  GET    /api/diagram.svg              SVG drawing
  GET    /api/events                   Server-sent document updates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

			httpCfg := cfg.HTTPConfig()
			if cmd.Flags().Changed("host") {
				httpCfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				httpCfg.Port = port
			}

			opts := server.Options{
				File:     cfg.DiagramPath(),
				Designer: cfg.DesignerOptions(logger),
				Logger:   logger,
			}
			if cfg.AutosaveEnabled() {
				c, err := cache.Open(cfg.CacheDir)
				if err != nil {
					logger.Warn("autosave disabled", "error", err)
				} else {
					defer c.Close()
					opts.Cache = c
				}
			}

			srv, err := server.New(httpCfg, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at %s\n",
				cli.FilePath(srv.File()), cli.Code("http://"+srv.Addr()))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to listen on (default 127.0.0.1)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default 8080)")
	return cmd
}
