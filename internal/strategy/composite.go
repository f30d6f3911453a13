package strategy

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-monitor/internal/config"
	"github.com/rxtech-lab/argo-monitor/internal/indicator"
	"github.com/rxtech-lab/argo-monitor/internal/types"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

// CompositeStrategy aggregates independent confirmations: an upper-band
// breakout on the final bar plus candlestick patterns (bullish engulfing,
// break-high) completed on the two bars before it. A signal is emitted only
// when at least two confirmations agree; its confidence is the mean of the
// contributing confidences.
//
// Signal price policy: when the breakout contributes, the entry is the final
// bar's close; a pattern-only signal uses the final bar's open as the
// theoretical fill for the pattern completed the bar before.
type CompositeStrategy struct {
	baseStrategy
	universe map[string]types.StockInfo
}

// NewCompositeStrategy creates a composite confirmation strategy.
func NewCompositeStrategy(cfg config.StrategyConfig, universe map[string]types.StockInfo) *CompositeStrategy {
	return &CompositeStrategy{baseStrategy: newBaseStrategy(cfg), universe: universe}
}

// Name implements Strategy.
func (s *CompositeStrategy) Name() string {
	return "composite"
}

// Analyze implements Strategy.
func (s *CompositeStrategy) Analyze(symbol string, series types.PriceSeries) (optional.Option[types.TradingSignal], error) {
	if len(series) < 3 {
		return optional.None[types.TradingSignal](), errors.NewInsufficientDataErrorf(3, len(series), symbol,
			"composite analysis requires at least 3 bars, got %d", len(series))
	}

	closes := series.Closes()

	bands, err := indicator.Bollinger(closes, s.cfg.BollingerPeriod, s.cfg.BollingerStdDev)
	if err != nil {
		return optional.None[types.TradingSignal](), err
	}

	last := len(series) - 1
	lastBar := series[last]
	patternPrev, patternCurr := series[last-2], series[last-1]
	upper, middle, lower := bands.Upper[last], bands.Middle[last], bands.Lower[last]

	var confidences []float64

	indicators := map[string]float64{
		"close":            lastBar.Close,
		"bollinger_upper":  upper,
		"bollinger_middle": middle,
		"bollinger_lower":  lower,
	}

	breakout := lastBar.Close > upper
	if breakout {
		c := breakoutConfidence(lastBar.Close, upper, middle)
		confidences = append(confidences, c)
		indicators["breakout_confidence"] = c
	}

	patternFired := false

	if indicator.IsBullishEngulfing(patternPrev, patternCurr) {
		c := engulfingConfidence(patternPrev, patternCurr)
		confidences = append(confidences, c)
		indicators["engulfing_confidence"] = c
		patternFired = true
	}

	if indicator.IsBreakHigh(patternPrev, patternCurr) {
		c := breakHighConfidence(patternPrev, patternCurr)
		confidences = append(confidences, c)
		indicators["break_high_confidence"] = c
		patternFired = true
	}

	// At least two independent confirmations are required
	if len(confidences) < 2 {
		return optional.None[types.TradingSignal](), nil
	}

	entry := lastBar.Open
	if breakout {
		entry = lastBar.Close
	}

	anchor := lower
	if patternFired {
		anchor = math.Min(anchor, patternCurr.Low)
	}

	stop := s.bufferedStop(anchor)
	if stop >= entry {
		return optional.None[types.TradingSignal](), nil
	}

	var sum float64
	for _, c := range confidences {
		sum += c
	}

	confidence := sum / float64(len(confidences))

	signal := s.newSignal(symbol, types.SignalTypeComposite, lastBar, entry, stop, confidence, indicators)

	return optional.Some(signal), nil
}

// ShouldSell implements Strategy: stop breach, target reached, or a bearish
// engulfing reversal on the last two bars.
func (s *CompositeStrategy) ShouldSell(position types.Position, series types.PriceSeries) (bool, error) {
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

// engulfingConfidence measures how much the engulfing body exceeds the body it
// contains, normalized by the engulfing body and clamped to [0, 1].
func engulfingConfidence(prev, curr types.PriceBar) float64 {
	currBody := curr.Close - curr.Open
	if currBody <= 0 {
		return 0
	}

	margin := (curr.Close - prev.Open) + (prev.Close - curr.Open)

	return clamp01(margin / currBody)
}

// breakHighConfidence measures the break distance relative to the previous
// bar's range, clamped to [0, 1].
func breakHighConfidence(prev, curr types.PriceBar) float64 {
	prevRange := prev.High - prev.Low
	if prevRange <= 0 {
		return 1
	}

	return clamp01((curr.High - prev.High) / prevRange)
}
