// Package calculator provides pure indicator functions over price/volume
// windows. Every function returns ErrInsufficientData when the window is
// shorter than its minimum lookback; callers must treat that as a non-vote,
// not as a neutral value.
package calculator

import "errors"

// ErrInsufficientData marks an indicator that cannot be computed from the
// current window length.
var ErrInsufficientData = errors.New("insufficient data for indicator")

// SMA computes the simple moving average of the trailing period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// ema computes the exponential moving average series with the standard
// 2/(n+1) smoothing constant, seeded by the SMA of the first period values.
// The returned series is aligned so that ema[i] corresponds to values[i];
// entries before period-1 are not meaningful.
func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	seed /= float64(period)
	out[period-1] = seed

	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1.0-k)
	}
	return out
}
