package exchange

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"costos/internal/domain/params"
)

const JobRateRefresh = "exchange_rate_refresh"

type RateWriter interface {
	ExchangeRate(ctx context.Context) (params.ExchangeRate, error)
	Set(ctx context.Context, key string, value decimal.Decimal, actorID string) (params.Parameter, error)
}

type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error)
}

type OutcomeRecorder interface {
	RecordRefresh(ok bool)
}

type Result struct {
	PreviousRate decimal.Decimal `json:"previousRate"`
	Rate         decimal.Decimal `json:"rate"`
	UpdatedAt    *time.Time      `json:"updatedAt,omitempty"`
}

// Refresher overwrites the stored dollar rate with a freshly fetched one.
// A failed fetch leaves the stored rate untouched.
type Refresher struct {
	Fetcher RateFetcher
	Params  RateWriter
	Jobs    JobRunner
	Metrics OutcomeRecorder
}

func (r *Refresher) Refresh(ctx context.Context, actorID string) (Result, error) {
	run := func(ctx context.Context) (any, error) {
		return r.refresh(ctx, actorID)
	}

	var (
		out any
		err error
	)
	if r.Jobs != nil {
		out, err = r.Jobs.RunNow(ctx, JobRateRefresh, run)
	} else {
		out, err = run(ctx)
	}
	if r.Metrics != nil {
		r.Metrics.RecordRefresh(err == nil)
	}
	if err != nil {
		slog.Warn("exchange rate refresh failed", "err", err)
		return Result{}, err
	}
	return out.(Result), nil
}

func (r *Refresher) refresh(ctx context.Context, actorID string) (Result, error) {
	current, err := r.Params.ExchangeRate(ctx)
	if err != nil {
		return Result{}, err
	}
	rate, err := r.Fetcher.FetchUSDRate(ctx)
	if err != nil {
		return Result{PreviousRate: current.Rate, Rate: current.Rate}, err
	}
	stored, err := r.Params.Set(ctx, params.KeyUSDRate, rate, actorID)
	if err != nil {
		return Result{PreviousRate: current.Rate, Rate: current.Rate}, err
	}
	return Result{PreviousRate: current.Rate, Rate: stored.Value, UpdatedAt: stored.UpdatedAt}, nil
}
