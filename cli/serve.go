package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/sea-labs/sea/config"
	"github.com/sea-labs/sea/otel"
	"github.com/sea-labs/sea/server"
	"github.com/sea-labs/sea/tool"
)

const shutdownGrace = 10 * time.Second

// NewServeCmd creates the "serve" command: the HTTP API plus the periodic
// revalidation sweep, with opt-in OpenTelemetry export.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SEA HTTP API server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().String("store-path", "", "Path to the SQLite tool store (default: ~/.sea/sea.db)")
	cmd.Flags().Bool("otel", false, "Export traces and metrics via OTLP")
	cmd.Flags().String("otel-endpoint", "", "OTLP/HTTP collector endpoint (host:port)")
	cmd.Flags().Bool("otel-insecure", false, "Use plain HTTP for the OTLP endpoint")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.Default()

	store, err := resolveSQLiteStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var observer tool.Observer
	if enabled, _ := cmd.Flags().GetBool("otel"); enabled {
		endpoint, _ := cmd.Flags().GetString("otel-endpoint")
		insecure, _ := cmd.Flags().GetBool("otel-insecure")
		shutdown, err := otel.Init(ctx, otel.InitConfig{
			ServiceName: "sea",
			Endpoint:    endpoint,
			Insecure:    insecure,
		})
		if err != nil {
			return exitError(exitRuntime, "%s", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Warn("telemetry shutdown", slog.String("error", err.Error()))
			}
		}()

		obs, err := otel.NewToolObserver(
			otelapi.GetMeterProvider().Meter("sea"),
			otelapi.GetTracerProvider().Tracer("sea"),
		)
		if err != nil {
			return exitError(exitRuntime, "%s", err)
		}
		observer = obs
	}

	manager, err := buildServeManager(ctx, cfg, store, observer, logger)
	if err != nil {
		return err
	}

	scheduler, err := tool.NewRevalidateScheduler(tool.RevalidateSchedulerConfig{
		Manager:  manager,
		CronExpr: cfg.GetString("tools.revalidate_cron", tool.DefaultRevalidateCron),
		Logger:   logger,
	})
	if err != nil {
		return exitError(exitValidation, "%s", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := server.NewServer(server.Config{
		Tools:     manager,
		AppConfig: cfg,
		Scheduler: scheduler,
		Logger:    logger,
	})

	addr, _ := cmd.Flags().GetString("addr")
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return exitError(exitRuntime, "shutdown: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitError(exitRuntime, "server: %v", err)
		}
		return nil
	}
}

// resolveSQLiteStore opens the serve-mode registration store honoring
// --store-path.
func resolveSQLiteStore(cmd *cobra.Command) (*tool.SQLiteStore, error) {
	path, _ := cmd.Flags().GetString("store-path")
	if path != "" {
		store, err := tool.NewSQLiteStore(path)
		if err != nil {
			return nil, exitError(exitRuntime, "%s", err)
		}
		return store, nil
	}
	store, err := tool.NewDefaultSQLiteStore()
	if err != nil {
		return nil, exitError(exitRuntime, "%s", err)
	}
	return store, nil
}

func buildServeManager(ctx context.Context, cfg *config.Config, store tool.Store, observer tool.Observer, logger *slog.Logger) (*tool.Manager, error) {
	stored, err := tool.LoadStored(ctx, store)
	if err != nil {
		return nil, exitError(exitRuntime, "%s", err)
	}

	opts := []tool.Option{
		tool.WithCustomRegistrations(stored),
		tool.WithLogger(logger),
	}
	if observer != nil {
		opts = append(opts, tool.WithObserver(observer))
	}

	manager, err := tool.NewManager(cfg, opts...)
	if err != nil {
		return nil, exitError(exitRuntime, "%s", err)
	}
	return manager, nil
}
