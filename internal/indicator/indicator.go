// Package indicator provides pure, deterministic transforms over price series.
//
// All series functions return a slice aligned in length with the input; entries
// for which not enough history exists yet are math.NaN(). The value at index i
// depends only on inputs [i-period+1, i], never on later values. Inputs shorter
// than the minimum required window are rejected with an InsufficientDataError.
package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

// nanSeries returns a slice of n NaN values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// Defined reports whether a series value is defined (not NaN).
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

func validatePeriod(period int) error {
	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return nil
}

func requireLength(values []float64, required int) error {
	if len(values) < required {
		return errors.NewInsufficientDataErrorf(required, len(values), "",
			"insufficient data points: required %d, got %d", required, len(values))
	}

	return nil
}
