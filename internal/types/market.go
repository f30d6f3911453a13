package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

// PriceBar is one day's open/high/low/close/volume for a symbol.
// Bars are produced by the market-data provider and are immutable once created.
type PriceBar struct {
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Time   time.Time `yaml:"time" json:"time" csv:"time" validate:"required"`
	Open   float64   `yaml:"open" json:"open" csv:"open" validate:"required,gt=0"`
	High   float64   `yaml:"high" json:"high" csv:"high" validate:"required,gt=0"`
	Low    float64   `yaml:"low" json:"low" csv:"low" validate:"required,gt=0"`
	Close  float64   `yaml:"close" json:"close" csv:"close" validate:"required,gt=0"`
	Volume int64     `yaml:"volume" json:"volume" csv:"volume" validate:"gte=0"`
}

// Validate validates the PriceBar struct, including the OHLC ordering invariant
// low <= min(open, close) <= max(open, close) <= high.
func (b *PriceBar) Validate() error {
	validate := validator.New()
	if err := validate.Struct(b); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid price bar", err)
	}

	lo, hi := b.Open, b.Close
	if lo > hi {
		lo, hi = hi, lo
	}

	if b.Low > lo || hi > b.High {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"OHLC invariant violated for %s at %s: low=%f open=%f close=%f high=%f",
			b.Symbol, b.Time.Format(time.DateOnly), b.Low, b.Open, b.Close, b.High)
	}

	return nil
}

// IsBullish reports whether the bar closed above its open.
func (b *PriceBar) IsBullish() bool {
	return b.Close > b.Open
}

// IsBearish reports whether the bar closed below its open.
func (b *PriceBar) IsBearish() bool {
	return b.Close < b.Open
}

// PriceSeries is an ordered sequence of price bars for one symbol,
// ascending by date with no duplicate dates. The strategy engine never mutates it.
type PriceSeries []PriceBar

// Closes returns the closing prices of the series, aligned with the bars.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}

	return closes
}

// Last returns the most recent bar of the series.
// The second return value is false when the series is empty.
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s) == 0 {
		return PriceBar{}, false
	}

	return s[len(s)-1], true
}

// Validate checks every bar and the series ordering invariant:
// ascending by date, at most one bar per date.
func (s PriceSeries) Validate() error {
	for i := range s {
		if err := s[i].Validate(); err != nil {
			return err
		}

		if i > 0 && !s[i].Time.After(s[i-1].Time) {
			return errors.Newf(errors.ErrCodeInvalidSeries,
				"series not strictly ascending: bar %d (%s) does not follow bar %d (%s)",
				i, s[i].Time.Format(time.DateOnly), i-1, s[i-1].Time.Format(time.DateOnly))
		}
	}

	return nil
}

// StockInfo is a static per-symbol snapshot supplied by the market-data provider.
type StockInfo struct {
	Symbol    string   `yaml:"symbol" json:"symbol" validate:"required"`
	Name      string   `yaml:"name" json:"name"`
	MarketCap float64  `yaml:"market_cap" json:"market_cap" validate:"gte=0"`
	Sector    string   `yaml:"sector" json:"sector"`
	Indexes   []string `yaml:"indexes" json:"indexes"`
}
