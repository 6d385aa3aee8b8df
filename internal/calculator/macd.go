package calculator

import "errors"

// MACD computes the MACD line (fast EMA - slow EMA), its signal line
// (EMA of the MACD line) and the histogram (line - signal).
// Requires at least slow+signalPeriod prices.
func MACD(prices []float64, fast, slow, signalPeriod int) (line, signal, hist float64, err error) {
	if fast <= 0 || slow <= 0 || signalPeriod <= 0 || fast >= slow {
		return 0, 0, 0, errors.New("invalid MACD periods")
	}
	if len(prices) < slow+signalPeriod {
		return 0, 0, 0, ErrInsufficientData
	}

	fastEMA := ema(prices, fast)
	slowEMA := ema(prices, slow)

	// MACD line series starting where the slow EMA becomes meaningful.
	macd := make([]float64, 0, len(prices)-slow+1)
	for i := slow - 1; i < len(prices); i++ {
		macd = append(macd, fastEMA[i]-slowEMA[i])
	}

	signalSeries := ema(macd, signalPeriod)

	line = macd[len(macd)-1]
	signal = signalSeries[len(signalSeries)-1]
	return line, signal, line - signal, nil
}
