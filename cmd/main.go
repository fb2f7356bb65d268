package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/scout/internal/cli"
	"github.com/UnknownOlympus/scout/internal/config"
	"github.com/UnknownOlympus/scout/internal/geocoding"
	"github.com/UnknownOlympus/scout/internal/metrics"
	"github.com/UnknownOlympus/scout/internal/output"
	"github.com/UnknownOlympus/scout/internal/overpass"
	"github.com/UnknownOlympus/scout/internal/repository"
	"github.com/UnknownOlympus/scout/internal/service"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const timeFormat = "2006-01-02 15:04:05"

func main() {
	// Ctrl+C cancels ctx: pending prompts and backoffs return and nothing is saved.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cfg := config.MustLoad()

	err := run(ctx, cfg)
	stop()
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "\nscout: interrupted")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nscout: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	runID := uuid.New()
	logger := setupLogger(cfg.Env, logFile).With(slog.String("run_id", runID.String()))

	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)

	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Provider.Type),
		APIKey:    cfg.Provider.APIKey,
		BaseURL:   cfg.Geocoder.URL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Geocoder.Timeout,
		Delay:     cfg.Geocoder.Delay,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Provider.Type)

	searcher := overpass.NewClient(logger,
		overpass.WithEndpoint(cfg.Search.URL),
		overpass.WithTimeout(cfg.Search.Timeout),
		overpass.WithUserAgent(cfg.UserAgent),
		overpass.WithTagKey(cfg.Search.TagKey),
		overpass.WithRadius(cfg.Search.Radius),
		overpass.WithServerTimeout(cfg.Search.ServerTimeout),
		overpass.WithMaxRetries(cfg.Search.MaxRetries),
		overpass.WithMetrics(appMetrics),
		overpass.WithOutput(os.Stdout),
	)

	var archive repository.Interface
	if cfg.Database.Enabled() {
		var closeArchive func()
		archive, closeArchive = openArchive(ctx, logger, appMetrics, func(ctx context.Context) (repository.Database, func(), error) {
			pool, dbErr := repository.NewDatabase(ctx,
				cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
			)
			if dbErr != nil {
				return nil, nil, dbErr
			}
			return pool, pool.Close, nil
		})
		defer closeArchive()
	}

	finder := service.NewFinder(logger, geoProvider, searcher, archive, appMetrics, runID, os.Stdout)
	writer := output.NewWriter(cfg.OutputFile, cfg.LogFile)
	app := cli.NewApp(finder, writer, logger, os.Stdin, os.Stdout)

	logger.InfoContext(ctx, "Application started")
	runErr := app.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.ErrorContext(ctx, "Run aborted", "error", runErr)
	}

	if cfg.MetricsFile != "" {
		if err = metrics.Flush(cfg.MetricsFile, reg); err != nil {
			logger.ErrorContext(ctx, "Failed to flush metrics", "error", err)
		}
	}

	logger.InfoContext(ctx, "Application stopped")

	return runErr
}

// openArchive connects the search archive and prepares its schema. On failure the run
// continues without an archive: the returned Interface is nil and the error is logged
// and counted.
func openArchive(
	ctx context.Context,
	log *slog.Logger,
	m *metrics.Metrics,
	connect func(context.Context) (repository.Database, func(), error),
) (repository.Interface, func()) {
	dtb, closeDB, err := connect(ctx)
	if err != nil {
		m.ArchiveErrors.WithLabelValues("connect").Inc()
		log.ErrorContext(ctx, "Failed to connect to DB, archive disabled", "error", err)
		return nil, func() {}
	}

	repo := repository.NewRepository(dtb, log)
	if err = repo.EnsureSchema(ctx); err != nil {
		m.ArchiveErrors.WithLabelValues("schema").Inc()
		log.ErrorContext(ctx, "Failed to prepare archive schema, archive disabled", "error", err)
		closeDB()
		return nil, func() {}
	}

	log.InfoContext(ctx, "Search archive enabled")
	return repo, closeDB
}

// setupLogger initializes and returns a logger based on the environment provided.
// All levels write to w, which is the append-mode run log.
func setupLogger(env string, w io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{
				Level:       slog.LevelDebug,
				AddSource:   true,
				ReplaceAttr: formatTime,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{
				Level:       slog.LevelDebug,
				AddSource:   false,
				ReplaceAttr: formatTime,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{
				Level:       slog.LevelInfo,
				AddSource:   false,
				ReplaceAttr: formatTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				AddSource:   false,
				ReplaceAttr: formatTime,
			}),
		)

		log.Warn(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func formatTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Format(timeFormat))
	}
	return a
}
