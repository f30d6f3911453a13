package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-monitor/pkg/errors"
)

// BollingerBands holds the three band series, each aligned with the input.
type BollingerBands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger calculates Bollinger Bands: middle = SMA(period), upper/lower =
// middle +/- stdDev multiples of the rolling population standard deviation
// over the same window.
func Bollinger(values []float64, period int, stdDev float64) (BollingerBands, error) {
	if err := validatePeriod(period); err != nil {
		return BollingerBands{}, err
	}

	if stdDev <= 0 {
		return BollingerBands{}, errors.Newf(errors.ErrCodeInvalidStdDev,
			"stdDev must be a positive number, got %f", stdDev)
	}

	if err := requireLength(values, period); err != nil {
		return BollingerBands{}, err
	}

	middle, err := SMA(values, period)
	if err != nil {
		return BollingerBands{}, err
	}

	upper := nanSeries(len(values))
	lower := nanSeries(len(values))

	for i := period - 1; i < len(values); i++ {
		var squaredDiffSum float64

		for j := i - period + 1; j <= i; j++ {
			diff := values[j] - middle[i]
			squaredDiffSum += diff * diff
		}

		sd := math.Sqrt(squaredDiffSum / float64(period))
		upper[i] = middle[i] + stdDev*sd
		lower[i] = middle[i] - stdDev*sd
	}

	return BollingerBands{Upper: upper, Middle: middle, Lower: lower}, nil
}
