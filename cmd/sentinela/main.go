// Command sentinela checks monitored web pages for content changes.
//
// Usage:
//
//	sentinela -config sentinela.yaml        # check all configured sites
//	sentinela -url https://example.com      # ad-hoc single-page check
//
// Exit code 0 means the run completed (including runs with per-site
// failures); exit code 1 means the run itself could not complete.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/vpacheco/sentinela/monitor"
)

func main() {
	configPath := flag.String("config", "", "path to sentinela.yaml config file")
	singleURL := flag.String("url", "", "check a single URL (stdout notifier)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *singleURL); err != nil {
		logger.Error("sentinela: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, singleURL string) error {
	if singleURL != "" {
		return runSingle(ctx, logger, singleURL)
	}
	if configPath != "" {
		return runConfig(ctx, logger, configPath)
	}

	// Exiting is main's job: returning here keeps the deferred signal
	// teardown on the path.
	fmt.Fprintln(os.Stderr, "usage: sentinela -config <file> | -url <url>")
	return errors.New("no run mode selected")
}

func runSingle(ctx context.Context, logger *slog.Logger, url string) error {
	cfg := monitor.DefaultConfig()
	cfg.Sites = []monitor.SiteConfig{{URL: url}}
	if err := cfg.Validate(); err != nil {
		return err
	}

	m, err := monitor.New(cfg, logger, monitor.NewStdoutNotifier(nil))
	if err != nil {
		return err
	}
	res, err := m.Run(ctx)
	return report(logger, res, err)
}

func runConfig(ctx context.Context, logger *slog.Logger, path string) error {
	cfg, err := monitor.LoadConfigFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	notifier, err := monitor.NotifiersFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	if notifier != nil {
		defer notifier.Close()
	}

	m, err := monitor.New(cfg, logger, notifier)
	if err != nil {
		return err
	}
	res, err := m.Run(ctx)
	return report(logger, res, err)
}

// report logs the run outcome. Per-site failures and notification errors
// are already inside the result and do not fail the process.
func report(logger *slog.Logger, res *monitor.RunResult, err error) error {
	if err != nil {
		return err
	}
	for _, se := range res.Errors {
		logger.Warn("sentinela: site failed", "site", se.Site.Name, "error", se.Err)
	}
	logger.Info("sentinela: run complete",
		"changed", len(res.Changed), "failed", len(res.Errors))
	return nil
}
