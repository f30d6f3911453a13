package indicator

// RSI calculates Wilder's relative strength index over trailing price changes.
// The first period entries of the result are NaN (one change is consumed per
// pair of bars, so index period is the first defined value).
//
// When the average loss over the window is zero the relative strength is
// undefined; the documented policy here is to report a neutral 50.
func RSI(values []float64, period int) ([]float64, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}

	// period changes require period+1 data points
	if err := requireLength(values, period+1); err != nil {
		return nil, err
	}

	out := nanSeries(len(values))

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	// Wilder smoothing for subsequent values
	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]

		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		// RS is undefined; report neutral
		return 50
	}

	rs := avgGain / avgLoss

	return 100 - 100/(1+rs)
}
