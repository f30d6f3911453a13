// Package screening provides stateless predicates over a symbol's recent data
// and static attributes. The strategy engine combines them on its composite path.
package screening

import (
	"math"

	"github.com/rxtech-lab/argo-monitor/internal/indicator"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

// Direction qualifies on which side of the moving average a deviation counts.
type Direction string

const (
	DirectionAbove  Direction = "ABOVE"
	DirectionBelow  Direction = "BELOW"
	DirectionEither Direction = "EITHER"
)

// Breakout describes where the latest close sits relative to the Bollinger bands.
type Breakout string

const (
	BreakoutNone  Breakout = "NONE"
	BreakoutAbove Breakout = "ABOVE"
	BreakoutBelow Breakout = "BELOW"
)

// ByMADistance reports whether the latest close deviates from its moving
// average by at least threshold (relative), qualified by direction.
func ByMADistance(closes []float64, maPeriod int, threshold float64, direction Direction) (bool, error) {
	if threshold < 0 {
		return false, errors.Newf(errors.ErrCodeInvalidThreshold, "threshold must be non-negative, got %f", threshold)
	}

	sma, err := indicator.SMA(closes, maPeriod)
	if err != nil {
		return false, err
	}

	last := len(closes) - 1
	ma := sma[last]

	if ma == 0 {
		return false, nil
	}

	deviation := (closes[last] - ma) / ma

	switch direction {
	case DirectionAbove:
		return deviation >= threshold, nil
	case DirectionBelow:
		return -deviation >= threshold, nil
	case DirectionEither:
		return math.Abs(deviation) >= threshold, nil
	default:
		return false, errors.Newf(errors.ErrCodeInvalidParameter, "unknown direction %q", direction)
	}
}

// ByBollingerBreakout reports whether the latest close crossed outside the
// Bollinger bands computed with the given period and multiplier.
func ByBollingerBreakout(closes []float64, period int, stdDev float64) (Breakout, error) {
	bands, err := indicator.Bollinger(closes, period, stdDev)
	if err != nil {
		return BreakoutNone, err
	}

	last := len(closes) - 1

	switch {
	case closes[last] > bands.Upper[last]:
		return BreakoutAbove, nil
	case closes[last] < bands.Lower[last]:
		return BreakoutBelow, nil
	default:
		return BreakoutNone, nil
	}
}

// InIndex reports whether the symbol appears in a constituent list supplied by
// the market-data provider.
func InIndex(symbol string, constituents []string) bool {
	for _, c := range constituents {
		if c == symbol {
			return true
		}
	}

	return false
}
