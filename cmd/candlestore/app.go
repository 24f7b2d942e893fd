package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"candlestore/config"
	"candlestore/internal/ingest"
	"candlestore/internal/progress"
	"candlestore/logger"
	"candlestore/pkg/candle"
	"candlestore/pkg/candlefile"
	"candlestore/pkg/github"
	"candlestore/pkg/httpx"
	"candlestore/pkg/storage"
	"candlestore/pkg/storage/file"
	"candlestore/pkg/storage/memory"
	"candlestore/pkg/storage/postgres"
	redisstore "candlestore/pkg/storage/redis"
	"candlestore/pkg/yahoo"

	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// app holds what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  storage.Store
	svc    *ingest.Service
}

// bootstrap loads the config and builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log, cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

// openApp loads the config, the logger and the configured store. reporter
// receives import progress.
func openApp(ctx context.Context, reporter progress.Reporter) (*app, error) {
	cfg, log, err := bootstrap()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, log, reporter)
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, reporter progress.Reporter) (*app, error) {
	layout, err := candlefile.ParseLayout(cfg.Ingest.Layout)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	hc := httpx.New(cfg.HTTP.Timeout)
	hc.UserAgent = cfg.HTTP.UserAgent
	hc.Retries = uint64(max(cfg.HTTP.Retries, 0))
	hc.InitialInterval = cfg.HTTP.RetryInitialInterval
	hc.MinInterval = cfg.HTTP.MinInterval
	hc.Logger = log

	opts := []ingest.Option{
		ingest.WithRepoClient(github.NewClient(
			github.WithBaseURL(cfg.GitHub.APIBaseURL),
			github.WithHTTPClient(hc),
		)),
		ingest.WithChartClient(yahoo.NewClient(
			yahoo.WithBaseURL(cfg.Quote.BaseURL),
			yahoo.WithHTTPClient(hc),
		)),
		ingest.WithLayout(layout),
		ingest.WithDefaultBranch(cfg.GitHub.DefaultBranch),
		ingest.WithReporter(reporter),
	}
	if cfg.Staging.Dir != "" {
		opts = append(opts, ingest.WithStagingDir(cfg.Staging.Dir))
	}

	return &app{
		cfg:    cfg,
		logger: log,
		store:  store,
		svc:    ingest.NewService(store, log, opts...),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// openStore builds the backend named by store.backend.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	switch cfg.Store.Backend {
	case "file", "":
		return file.New(cfg.Store.Dir, log)
	case "memory":
		return memory.New(), nil
	case "postgres":
		client, err := postgres.InitializeAndMigrate(cfg.Postgres, cfg.Environment, true)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		if !client.IsHealthy(ctx) {
			_ = client.Close()
			return nil, fmt.Errorf("%w: postgres did not answer ping", candle.ErrIO)
		}
		return postgres.NewStore(client), nil
	case "redis":
		return redisstore.New(ctx, cfg.Redis, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// run opens the app, calls fn and reports the outcome the way every
// subcommand does.
func run(ctx context.Context, reporter progress.Reporter, fn func(a *app) (any, error)) subcommands.ExitStatus {
	a, err := openApp(ctx, reporter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()

	out, err := fn(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if out != nil {
		if err := printJSON(os.Stdout, out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// consoleReporter prints per-timeframe outcomes, one line each.
func consoleReporter(w io.Writer) progress.Reporter {
	return progress.Func(func(e progress.Event) {
		switch e.Kind {
		case progress.TimeframeDone:
			fmt.Fprintf(w, "✓ %s %s - %d candles\n", e.Symbol, e.Timeframe, e.Candles)
		case progress.TimeframeFailed:
			fmt.Fprintf(w, "✗ %s %s - Failed: %s\n", e.Symbol, e.Timeframe, e.Message)
		case progress.TimeframeSkip:
			fmt.Fprintf(w, "- %s %s - skipped: %s\n", e.Symbol, e.Timeframe, e.Message)
		case progress.SymbolSkipped:
			fmt.Fprintf(w, "Skipping %s (%s)\n", e.Symbol, e.Message)
		case progress.SymbolFailed:
			fmt.Fprintf(w, "Failed to process %s: %s\n", e.Symbol, e.Message)
		}
	})
}
