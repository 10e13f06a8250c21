// Command rollover asks the API to archive and reset every automatic budget
// whose period has ended. It runs once, or repeatedly with -interval.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/logger"
	"budgetbuddy/internal/rollover"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	interval := flag.Duration("interval", 0, "repeat the rollover at this interval instead of running once")
	flag.Parse()

	if err := run(*interval); err != nil {
		logger.Get().Fatalf("Rollover error: %v", err)
	}
}

func run(interval time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.PipelineAPIKey == "" {
		return fmt.Errorf("PIPELINE_API_KEY is not set")
	}

	log := logger.Named("rollover")
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	client := rollover.NewClient(cfg.APIURL, cfg.PipelineAPIKey, httpClient, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interval <= 0 {
		_, err := client.Run(ctx, time.Now())
		return err
	}

	log.Infow("rollover scheduler started", "interval", interval, "api_url", cfg.APIURL)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := client.Run(ctx, time.Now()); err != nil {
			log.Errorw("rollover failed", "error", err)
		}

		select {
		case <-ctx.Done():
			log.Info("rollover scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}
