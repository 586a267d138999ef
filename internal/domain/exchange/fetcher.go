package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// RateFetcher returns the current selling rate of one US dollar in pesos.
type RateFetcher interface {
	FetchUSDRate(ctx context.Context) (decimal.Decimal, error)
}

const maxPageBytes = 4 << 20

type BNAFetcher struct {
	URL    string
	Client *http.Client
}

func NewBNAFetcher(url string, timeout time.Duration) *BNAFetcher {
	return &BNAFetcher{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (f *BNAFetcher) FetchUSDRate(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("User-Agent", "costos-rate-refresh/1.0")
	req.Header.Set("Accept", "text/html")

	resp, err := f.Client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch %s: %w", f.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return ParseBNARate(io.LimitReader(resp.Body, maxPageBytes))
}
