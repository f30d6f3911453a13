package indicator

// SMA calculates the simple moving average over a trailing window.
// The first period-1 entries of the result are NaN.
func SMA(values []float64, period int) ([]float64, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}

	if err := requireLength(values, period); err != nil {
		return nil, err
	}

	out := nanSeries(len(values))

	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}

	return out, nil
}
