package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pulsegrid/pkg/api"
	"github.com/matzehuels/pulsegrid/pkg/observability"
	"github.com/matzehuels/pulsegrid/pkg/pipeline"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		Long: `Serve the layout pipeline over HTTP.

Routes:

  GET  /healthz     liveness and version
  POST /v1/parse    DSL text in, snapshot JSON out
  POST /v1/layout   options JSON in, geometry JSON out
  POST /v1/render   options JSON in, one artifact out

Requests start from the layout and render settings of the config file.
Set cache.backend = "redis" to share cached layouts between replicas.

When OTEL_EXPORTER_OTLP_ENDPOINT is set, layout, cache and request events
are exported as OpenTelemetry traces.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	hooks, err := observability.NewOTelHooks(ctx)
	if err != nil {
		return err
	}
	if hooks != nil {
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := hooks.Shutdown(shutdownCtx); err != nil {
				c.Logger.Warn("flush traces", "error", err)
			}
		}()
		c.Logger.Info("exporting traces")
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	cfg := c.Config.Server
	if addr != "" {
		cfg.Addr = addr
	}
	srv := api.New(runner, pipeline.FromConfig(c.Config), cfg, c.Logger)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
