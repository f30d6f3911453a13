package indicator

import (
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

// MACDResult holds the MACD line, signal line and histogram series,
// each aligned with the input.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD calculates the moving average convergence divergence:
// MACD line = EMA(fast) - EMA(slow), signal line = EMA(signal) of the MACD
// line, histogram = MACD - signal.
func MACD(values []float64, fast, slow, signal int) (MACDResult, error) {
	for _, period := range []int{fast, slow, signal} {
		if err := validatePeriod(period); err != nil {
			return MACDResult{}, err
		}
	}

	if fast >= slow {
		return MACDResult{}, errors.Newf(errors.ErrCodeInvalidPeriod,
			"fast period (%d) must be smaller than slow period (%d)", fast, slow)
	}

	// slow-1 bars warm up the MACD line, signal-1 more warm up the signal line
	required := slow + signal - 1
	if err := requireLength(values, required); err != nil {
		return MACDResult{}, err
	}

	emaFast, err := EMA(values, fast)
	if err != nil {
		return MACDResult{}, err
	}

	emaSlow, err := EMA(values, slow)
	if err != nil {
		return MACDResult{}, err
	}

	macdLine := nanSeries(len(values))
	for i := slow - 1; i < len(values); i++ {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}

	// Signal line is an EMA over the defined part of the MACD line
	signalEMA, err := EMA(macdLine[slow-1:], signal)
	if err != nil {
		return MACDResult{}, err
	}

	signalLine := nanSeries(len(values))
	copy(signalLine[slow-1:], signalEMA)

	histogram := nanSeries(len(values))
	for i := slow + signal - 2; i < len(values); i++ {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return MACDResult{MACD: macdLine, Signal: signalLine, Histogram: histogram}, nil
}
