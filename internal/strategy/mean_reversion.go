package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-monitor/internal/config"
	"github.com/rxtech-lab/argo-monitor/internal/indicator"
	"github.com/rxtech-lab/argo-monitor/internal/screening"
	"github.com/rxtech-lab/argo-monitor/internal/types"
)

// MeanReversionStrategy enters long when the close falls below the lower
// Bollinger band and the MA-distance screen confirms the stretch, using the
// cap-dependent deviation threshold. The stop sits below the pattern bar's low
// by the configured buffer; a bearish engulfing bar is an additional exit.
type MeanReversionStrategy struct {
	baseStrategy
	universe map[string]types.StockInfo
}

// NewMeanReversionStrategy creates a mean-reversion strategy over a static
// StockInfo snapshot.
func NewMeanReversionStrategy(cfg config.StrategyConfig, universe map[string]types.StockInfo) *MeanReversionStrategy {
	return &MeanReversionStrategy{baseStrategy: newBaseStrategy(cfg), universe: universe}
}

// Name implements Strategy.
func (s *MeanReversionStrategy) Name() string {
	return "mean_reversion"
}

// deviationThreshold selects the MA-distance threshold for a symbol. Unknown
// symbols use the looser small-cap threshold.
func (s *MeanReversionStrategy) deviationThreshold(symbol string) float64 {
	if info, ok := s.universe[symbol]; ok {
		return s.caps.DeviationThreshold(info.MarketCap)
	}

	return s.caps.SmallCapDeviation
}

// Analyze implements Strategy.
func (s *MeanReversionStrategy) Analyze(symbol string, series types.PriceSeries) (optional.Option[types.TradingSignal], error) {
	closes := series.Closes()

	bands, err := indicator.Bollinger(closes, s.cfg.BollingerPeriod, s.cfg.BollingerStdDev)
	if err != nil {
		return optional.None[types.TradingSignal](), err
	}

	last := len(closes) - 1
	lastBar := series[last]
	upper, middle, lower := bands.Upper[last], bands.Middle[last], bands.Lower[last]

	if closes[last] >= lower {
		return optional.None[types.TradingSignal](), nil
	}

	threshold := s.deviationThreshold(symbol)

	stretched, err := screening.ByMADistance(closes, s.cfg.MAPeriod, threshold, screening.DirectionBelow)
	if err != nil {
		return optional.None[types.TradingSignal](), err
	}

	if !stretched {
		return optional.None[types.TradingSignal](), nil
	}

	entry := lastBar.Close
	stop := s.bufferedStop(lastBar.Low)
	if stop >= entry {
		// A bar that closed on its low leaves no room for a stop
		return optional.None[types.TradingSignal](), nil
	}

	confidence := reversionConfidence(closes[last], lower, middle)

	signal := s.newSignal(symbol, types.SignalTypeBollingerBreakout, lastBar, entry, stop, confidence, map[string]float64{
		"close":            closes[last],
		"bollinger_upper":  upper,
		"bollinger_middle": middle,
		"bollinger_lower":  lower,
		"ma_threshold":     threshold,
	})

	return optional.Some(signal), nil
}

// ShouldSell implements Strategy: stop breach, target reached, or a bearish
// engulfing reversal on the last two bars.
func (s *MeanReversionStrategy) ShouldSell(position types.Position, series types.PriceSeries) (bool, error) {
	last, ok := series.Last()
	if !ok {
		return false, nil
	}

	if s.shouldExit(position, last.Close) {
		return true, nil
	}

	if len(series) >= 2 && indicator.IsBearishEngulfing(series[len(series)-2], last) {
		return true, nil
	}

	return false, nil
}

// reversionConfidence normalizes the stretch below the lower band by the band
// half-width, clamped to [0, 1].
func reversionConfidence(close, lower, middle float64) float64 {
	width := middle - lower
	if width <= 0 {
		return 1
	}

	return clamp01((lower - close) / width)
}
