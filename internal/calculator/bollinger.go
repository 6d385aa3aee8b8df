package calculator

import (
	"errors"
	"math"
)

// Bollinger computes the Bollinger Bands over the trailing period: a simple
// moving average middle band and upper/lower bands k population standard
// deviations away.
func Bollinger(prices []float64, period int, k float64) (upper, mid, lower float64, err error) {
	if period <= 0 {
		return 0, 0, 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, 0, 0, ErrInsufficientData
	}

	tail := prices[len(prices)-period:]
	sum := 0.0
	for _, p := range tail {
		sum += p
	}
	mid = sum / float64(period)

	variance := 0.0
	for _, p := range tail {
		d := p - mid
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))

	return mid + k*std, mid, mid - k*std, nil
}
