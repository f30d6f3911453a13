package marketdata

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-monitor/internal/logger"
	"github.com/rxtech-lab/argo-monitor/internal/types"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
	"go.uber.org/zap"
)

// PolygonProvider serves daily aggregates and ticker details from the Polygon
// REST API. Index constituent lists are not part of the aggregates API, so
// they are supplied statically at construction.
type PolygonProvider struct {
	client       *polygon.Client
	lookbackDays int
	constituents map[string][]string
	logger       *logger.Logger
}

// NewPolygonProvider creates a provider fetching lookbackDays of daily bars
// per request.
func NewPolygonProvider(apiKey string, lookbackDays int, constituents map[string][]string, logger *logger.Logger) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	if lookbackDays <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid lookback days %d", lookbackDays)
	}

	return &PolygonProvider{
		client:       polygon.New(apiKey),
		lookbackDays: lookbackDays,
		constituents: constituents,
		logger:       logger,
	}, nil
}

// GetPriceSeries implements Provider.
func (p *PolygonProvider) GetPriceSeries(ctx context.Context, symbol string) (types.PriceSeries, error) {
	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -p.lookbackDays)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithOrder(models.Asc).WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	var series types.PriceSeries

	for iter.Next() {
		agg := iter.Item()
		series = append(series, types.PriceBar{
			Symbol: symbol,
			Time:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: int64(agg.Volume),
		})
	}

	if iter.Err() != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(), "failed to fetch aggregates for %s", symbol)
	}

	if len(series) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no price data for %s", symbol)
	}

	if err := series.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid price series for %s", symbol)
	}

	p.logger.Debug("fetched price series", zap.String("symbol", symbol), zap.Int("bars", len(series)))

	return series, nil
}

// GetStockInfo implements Provider.
func (p *PolygonProvider) GetStockInfo(ctx context.Context, symbol string) (types.StockInfo, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := &models.GetTickerDetailsParams{Ticker: symbol}

	resp, err := p.client.GetTickerDetails(ctx, params)
	if err != nil {
		return types.StockInfo{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch ticker details for %s", symbol)
	}

	info := types.StockInfo{
		Symbol:    symbol,
		Name:      resp.Results.Name,
		MarketCap: resp.Results.MarketCap,
		Sector:    resp.Results.SICDescription,
		Indexes:   p.indexesFor(symbol),
	}

	return info, nil
}

// GetIndexConstituents implements Provider.
func (p *PolygonProvider) GetIndexConstituents(_ context.Context, index string) ([]string, error) {
	symbols, ok := p.constituents[index]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "unknown index %s", index)
	}

	return symbols, nil
}

func (p *PolygonProvider) indexesFor(symbol string) []string {
	var indexes []string

	for index, symbols := range p.constituents {
		for _, s := range symbols {
			if s == symbol {
				indexes = append(indexes, index)
				break
			}
		}
	}

	return indexes
}
