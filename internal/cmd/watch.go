package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/cameronsjo/modulemd/internal/index"
	"github.com/cameronsjo/modulemd/internal/metrics"
	"github.com/cameronsjo/modulemd/internal/watch"
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Rebuild the module index whenever DIR changes",
	Long: `Load every YAML file under DIR into a module index and rebuild it after
each change. A failed rebuild is logged and the previous index stays in use.

With --metrics-addr, prometheus metrics for parsing, merging and reloads are
served on /metrics at that address.

Examples:
  modulemd watch repo/
  modulemd watch --metrics-addr :9100 --debounce 2s repo/`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("metrics-addr", "", "Serve prometheus metrics on this address")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before a rebuild")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	w, err := watch.New(args[0],
		watch.WithDebounce(appConfig.Watch.Debounce),
		watch.WithLogger(logger),
		watch.WithObserver(collector),
		watch.WithIndexOptions(append(indexOptions(), index.WithObserver(collector))...),
		watch.OnReload(func(idx *index.Index, failures []watch.Failure, err error) {
			for _, f := range failures {
				logger.Warn("document skipped", "file", f.File, "error", f.Doc.Err)
			}
		}),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Reload(); err != nil {
		logger.Error("initial load failed", "error", err)
	}

	if addr := appConfig.Watch.MetricsAddr; addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           metricsMux(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", addr)
	}

	return w.Run(ctx)
}

func metricsMux(registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}
