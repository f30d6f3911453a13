package indicator

// EMA calculates the exponential moving average with smoothing factor
// 2/(period+1), seeded by the SMA of the first period values.
// The first period-1 entries of the result are NaN.
func EMA(values []float64, period int) ([]float64, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}

	if err := requireLength(values, period); err != nil {
		return nil, err
	}

	out := nanSeries(len(values))

	// Seed with the first available SMA
	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}

	out[period-1] = sum / float64(period)

	alpha := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}

	return out, nil
}
