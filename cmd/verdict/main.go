package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"verdict/internal/config"
	"verdict/internal/feed"
	"verdict/internal/report"
	"verdict/internal/resolver"
	"verdict/internal/runner"
	"verdict/internal/store"
)

func main() {
	// Parse CLI flags.
	configPath := flag.String("config", "config.toml", "Path to TOML config file")
	watchMode := flag.Bool("watch", false, "Re-resolve questions on an interval instead of once")
	reportMode := flag.Bool("report", false, "Print resolution metrics and exit")
	replayMode := flag.Bool("replay", false, "Re-classify stored results with current rules and exit")
	flag.Parse()

	// API keys come from the environment; a .env file is a convenience,
	// not a requirement.
	_ = godotenv.Load()

	// Structured logging goes to stderr so stdout stays reserved for
	// recommendation lines.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	slog.Info("verdict starting")

	if p := os.Getenv("VERDICT_CONFIG_PATH"); p != "" && *configPath == "config.toml" {
		*configPath = p
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setLogLevel(cfg.General.LogLevel)

	// Initialize database.
	db, err := store.Open(cfg.General.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database initialized", "path", cfg.General.DBPath)

	// Report mode.
	if *reportMode {
		r, err := report.NewTracker(db).Generate()
		if err != nil {
			slog.Error("report failed", "error", err)
			os.Exit(1)
		}
		report.LogReport(r)
		return
	}

	// Replay mode.
	if *replayMode {
		if _, err := report.NewReplayer(db, cfg).Run(); err != nil {
			slog.Error("replay failed", "error", err)
			os.Exit(1)
		}
		return
	}

	client := resolver.NewClient(cfg.Fetch.Timeout.Duration, cfg.Fetch.RateRPS, cfg.Fetch.RateBurst)
	cache := feed.NewCache(cfg.Fetch.CacheTTL.Duration)
	run := runner.New(cfg, client, cache, db, os.Stdout)

	// Graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	if *watchMode {
		if err := run.Watch(ctx); err != nil && err != context.Canceled {
			slog.Error("watch error", "error", err)
			os.Exit(1)
		}
		slog.Info("verdict stopped")
		return
	}

	// One-shot resolution. Fetch failures have already degraded to
	// labels, so reaching here means every question printed a code.
	if err := run.ResolveAll(ctx); err != nil {
		slog.Error("resolution setup failed", "error", err)
		os.Exit(1)
	}
	slog.Info("verdict stopped")
}

func setLogLevel(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
