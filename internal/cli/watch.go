package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"assetforge/internal/obs"
	"assetforge/internal/watch"
)

func newWatchCommand(app *App) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run all tasks, then re-run them as watched files change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if metricsAddr != "" {
				serveMetrics(ctx, metricsAddr)
			}

			// Initial build so the watcher starts from a consistent output.
			if err := app.Registry.RunEach(ctx); err != nil {
				return err
			}

			w, err := watch.New(app.Settings.Root, app.Registry,
				watch.WithDebounce(time.Duration(app.Settings.DebounceMS)*time.Millisecond),
			)
			if err != nil {
				return err
			}

			obs.Info("watching for changes", map[string]any{"root": app.Settings.Root})
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9410)")
	return cmd
}

func serveMetrics(ctx context.Context, addr string) {
	obs.InitMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", obs.MetricsHandler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Warn("metrics server failed", map[string]any{"addr": addr, "error": err.Error()})
		}
	}()
}
