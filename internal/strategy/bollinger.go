package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-monitor/internal/config"
	"github.com/rxtech-lab/argo-monitor/internal/indicator"
	"github.com/rxtech-lab/argo-monitor/internal/types"
)

// BollingerStrategy enters long when the close breaks above the upper
// Bollinger band. Entry is the triggering bar's close; the stop sits below the
// lower band by the configured buffer.
type BollingerStrategy struct {
	baseStrategy
}

// NewBollingerStrategy creates a Bollinger breakout strategy.
func NewBollingerStrategy(cfg config.StrategyConfig) *BollingerStrategy {
	return &BollingerStrategy{baseStrategy: newBaseStrategy(cfg)}
}

// Name implements Strategy.
func (s *BollingerStrategy) Name() string {
	return "bollinger"
}

// Analyze implements Strategy.
func (s *BollingerStrategy) Analyze(symbol string, series types.PriceSeries) (optional.Option[types.TradingSignal], error) {
	closes := series.Closes()

	bands, err := indicator.Bollinger(closes, s.cfg.BollingerPeriod, s.cfg.BollingerStdDev)
	if err != nil {
		return optional.None[types.TradingSignal](), err
	}

	last := len(closes) - 1
	lastBar := series[last]
	upper, middle, lower := bands.Upper[last], bands.Middle[last], bands.Lower[last]

	if closes[last] <= upper {
		return optional.None[types.TradingSignal](), nil
	}

	entry := lastBar.Close
	stop := s.bufferedStop(lower)

	confidence := breakoutConfidence(closes[last], upper, middle)

	signal := s.newSignal(symbol, types.SignalTypeBollingerBreakout, lastBar, entry, stop, confidence, map[string]float64{
		"close":            closes[last],
		"bollinger_upper":  upper,
		"bollinger_middle": middle,
		"bollinger_lower":  lower,
	})

	return optional.Some(signal), nil
}

// ShouldSell implements Strategy: stop breach or target reached.
func (s *BollingerStrategy) ShouldSell(position types.Position, series types.PriceSeries) (bool, error) {
	last, ok := series.Last()
	if !ok {
		return false, nil
	}

	return s.shouldExit(position, last.Close), nil
}

// breakoutConfidence normalizes the breakout distance above the upper band by
// the band half-width, clamped to [0, 1]. A collapsed band (zero width) counts
// as maximal conviction since any breakout is then unbounded in band units.
func breakoutConfidence(close, upper, middle float64) float64 {
	width := upper - middle
	if width <= 0 {
		return 1
	}

	return clamp01((close - upper) / width)
}
