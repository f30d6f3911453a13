// Package strategy implements the signal evaluation engine: polymorphic
// strategy variants that analyze one symbol's price series and optionally emit
// a trading signal with attached risk parameters.
package strategy

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-monitor/internal/config"
	"github.com/rxtech-lab/argo-monitor/internal/screening"
	"github.com/rxtech-lab/argo-monitor/internal/types"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

// Strategy is the capability set every variant implements. Analyze must be
// idempotent: the same input series always yields the same signal, with no
// clock reads or randomness on the analysis path.
type Strategy interface {
	// Name returns the configured strategy name.
	Name() string
	// Analyze runs the configured screens and indicator checks over the series
	// and returns at most one signal. The engine never mutates the series.
	Analyze(symbol string, series types.PriceSeries) (optional.Option[types.TradingSignal], error)
	// ShouldBuy reports whether a signal clears the configured risk-reward and
	// confidence minimums.
	ShouldBuy(signal types.TradingSignal) bool
	// ShouldSell reports whether an open position should be exited given the
	// latest series: stop breach, target reached, or a strategy-specific
	// exit pattern.
	ShouldSell(position types.Position, series types.PriceSeries) (bool, error)
	// CalculatePositionSize returns the whole-share quantity for a signal
	// using fixed-fractional sizing over the available capital.
	CalculatePositionSize(signal types.TradingSignal, capital float64) (int64, error)
}

// New selects a strategy variant by configuration. The universe is a static
// per-symbol StockInfo snapshot used for cap-dependent screening thresholds.
func New(cfg config.StrategyConfig, universe map[string]types.StockInfo) (Strategy, error) {
	switch cfg.Name {
	case "bollinger":
		return NewBollingerStrategy(cfg), nil
	case "mean_reversion":
		return NewMeanReversionStrategy(cfg, universe), nil
	case "composite":
		return NewCompositeStrategy(cfg, universe), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy %q", cfg.Name)
	}
}

// baseStrategy carries the shared configuration and the capability
// implementations common to all variants.
type baseStrategy struct {
	cfg  config.StrategyConfig
	caps screening.CapThresholds
}

func newBaseStrategy(cfg config.StrategyConfig) baseStrategy {
	return baseStrategy{
		cfg: cfg,
		caps: screening.CapThresholds{
			LargeCapCutoff:    cfg.LargeCapCutoff,
			MidCapCutoff:      cfg.MidCapCutoff,
			LargeCapDeviation: cfg.ThresholdLargeCap,
			SmallCapDeviation: cfg.ThresholdSmallCap,
		},
	}
}

// ShouldBuy implements the shared acceptance rule.
func (b *baseStrategy) ShouldBuy(signal types.TradingSignal) bool {
	return signal.RiskRewardRatio >= b.cfg.RiskRewardRatio && signal.Confidence >= b.cfg.MinConfidence
}

// CalculatePositionSize implements fixed-fractional sizing: risk a configured
// fraction of capital per trade, floored to whole shares. A non-positive
// risk-per-share is rejected with an InvalidRisk error; a size that rounds to
// zero is returned as zero shares without error.
func (b *baseStrategy) CalculatePositionSize(signal types.TradingSignal, capital float64) (int64, error) {
	riskPerShare := signal.EntryPrice - signal.StopLoss
	if riskPerShare <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidRisk,
			"non-positive risk per share for %s: entry=%f stop=%f", signal.Symbol, signal.EntryPrice, signal.StopLoss)
	}

	if capital <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidRisk, "non-positive capital %f", capital)
	}

	riskBudget := capital * b.cfg.RiskFraction

	return int64(math.Floor(riskBudget / riskPerShare)), nil
}

// shouldExit checks the stop-loss and take-profit conditions shared by all
// variants against the latest close. Direction-aware: short positions flip
// the inequalities.
func (b *baseStrategy) shouldExit(position types.Position, lastClose float64) bool {
	if position.Side == types.PositionSideShort {
		return lastClose >= position.StopLoss || lastClose <= position.TargetPrice
	}

	return lastClose <= position.StopLoss || lastClose >= position.TargetPrice
}

// newSignal assembles a TradingSignal with the target placed at
// entry + riskReward * (entry - stop). The ID is a name-based UUID over
// (symbol, type, bar time) so that re-analyzing the same series produces the
// same identifier.
func (b *baseStrategy) newSignal(symbol string, sigType types.SignalType, bar types.PriceBar, entry, stop, confidence float64, indicators map[string]float64) types.TradingSignal {
	target := entry + b.cfg.RiskRewardRatio*(entry-stop)
	id := uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%s|%s|%d", symbol, sigType, bar.Time.Unix()))

	return types.TradingSignal{
		ID:              id.String(),
		Symbol:          symbol,
		Type:            sigType,
		Time:            bar.Time,
		EntryPrice:      entry,
		StopLoss:        stop,
		TargetPrice:     target,
		RiskRewardRatio: b.cfg.RiskRewardRatio,
		Confidence:      confidence,
		Indicators:      indicators,
	}
}

// clamp01 bounds a confidence component to [0, 1].
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// bufferedStop lowers an anchor price (band or pattern low) by the configured
// stop-loss buffer fraction.
func (b *baseStrategy) bufferedStop(anchor float64) float64 {
	return anchor * (1 - b.cfg.StopLossBuffer)
}
