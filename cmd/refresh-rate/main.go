// Command refresh-rate fetches the BNA dollar rate once and stores it, the
// same as the manual refresh endpoint. Run it by hand or from an external cron.
package main

import (
	"context"
	"log/slog"
	"os"

	"costos/internal/domain/exchange"
	"costos/internal/domain/params"
	"costos/internal/platform/config"
	"costos/internal/platform/db"
	"costos/internal/platform/jobs"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	if err := run(context.Background(), config.Load()); err != nil {
		slog.Error("rate refresh failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	refresher := &exchange.Refresher{
		Fetcher: exchange.NewBNAFetcher(cfg.ExchangeRateURL, cfg.ExchangeRateTimeout),
		Params:  params.NewService(params.NewStore(pool)),
		Jobs:    jobs.New(pool),
	}
	result, err := refresher.Refresh(ctx, "")
	if err != nil {
		return err
	}
	slog.Info("exchange rate refreshed", "previous", result.PreviousRate.String(), "rate", result.Rate.String())
	return nil
}
