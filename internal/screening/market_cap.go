package screening

// MarketCapCategory is the three-way capitalization bucket.
type MarketCapCategory string

const (
	MarketCapLarge MarketCapCategory = "large_cap"
	MarketCapMid   MarketCapCategory = "mid_cap"
	MarketCapSmall MarketCapCategory = "small_cap"
)

// CapThresholds carries the configured classification cutoffs and the
// cap-dependent deviation thresholds.
type CapThresholds struct {
	// LargeCapCutoff is the market cap at or above which a symbol is large-cap
	// (e.g. $300B).
	LargeCapCutoff float64
	// MidCapCutoff splits the remainder into mid and small cap.
	MidCapCutoff float64
	// LargeCapDeviation is the (tighter) MA-distance threshold for large caps.
	LargeCapDeviation float64
	// SmallCapDeviation is the (looser) threshold for everything else.
	SmallCapDeviation float64
}

// ClassifyMarketCap buckets a market capitalization against the configured cutoffs.
func (t CapThresholds) ClassifyMarketCap(marketCap float64) MarketCapCategory {
	switch {
	case marketCap >= t.LargeCapCutoff:
		return MarketCapLarge
	case marketCap >= t.MidCapCutoff:
		return MarketCapMid
	default:
		return MarketCapSmall
	}
}

// DeviationThreshold selects the MA-distance threshold for a symbol's market
// cap: large caps use the tighter large-cap threshold, all others the looser
// small-cap threshold. This differential is applied wherever MA-distance
// screening occurs.
func (t CapThresholds) DeviationThreshold(marketCap float64) float64 {
	if t.ClassifyMarketCap(marketCap) == MarketCapLarge {
		return t.LargeCapDeviation
	}

	return t.SmallCapDeviation
}
