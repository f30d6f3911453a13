// Package marketdata fetches daily price history and reference data for the
// monitored symbols.
package marketdata

import (
	"context"

	"github.com/rxtech-lab/argo-monitor/internal/types"
)

// Provider is the read-only market data source. Implementations return
// ascending daily bars and surface a missing symbol as a data-not-found
// error, never as a partial series.
type Provider interface {
	// GetPriceSeries returns the daily bars for a symbol over the provider's
	// configured lookback window, oldest first.
	GetPriceSeries(ctx context.Context, symbol string) (types.PriceSeries, error)
	// GetStockInfo returns a reference snapshot for a symbol, including its
	// market capitalization.
	GetStockInfo(ctx context.Context, symbol string) (types.StockInfo, error)
	// GetIndexConstituents returns the symbols that make up an index.
	GetIndexConstituents(ctx context.Context, index string) ([]string, error)
}
