package indicator

import "github.com/rxtech-lab/argo-monitor/internal/types"

// IsBullishEngulfing reports whether curr is a bullish engulfing bar: prev is
// bearish, curr is bullish, and the current body fully contains the previous
// body (curr.Open <= prev.Close and curr.Close >= prev.Open).
func IsBullishEngulfing(prev, curr types.PriceBar) bool {
	return prev.IsBearish() && curr.IsBullish() &&
		curr.Open <= prev.Close && curr.Close >= prev.Open
}

// IsBearishEngulfing is the mirror pattern: prev is bullish, curr is bearish,
// and the current body fully contains the previous body. Used as a reversal
// exit check by the mean-reversion strategy.
func IsBearishEngulfing(prev, curr types.PriceBar) bool {
	return prev.IsBullish() && curr.IsBearish() &&
		curr.Open >= prev.Close && curr.Close <= prev.Open
}

// IsBreakHigh reports whether curr's high strictly exceeds prev's high.
func IsBreakHigh(prev, curr types.PriceBar) bool {
	return curr.High > prev.High
}
