package model

import "time"

// IndicatorValue is a computed indicator field. Valid is false when the
// rolling window was shorter than the indicator's minimum lookback; callers
// must treat such fields as non-votes, never as neutral values.
type IndicatorValue struct {
	Value float64
	Valid bool
}

// IndicatorSnapshot holds all technical indicators computed from one
// instrument's rolling window at a single tick. Ephemeral, never persisted.
type IndicatorSnapshot struct {
	Instrument string
	Timestamp  time.Time

	RSI IndicatorValue

	MACDLine   IndicatorValue
	MACDSignal IndicatorValue
	MACDHist   IndicatorValue

	BollingerUpper IndicatorValue
	BollingerMid   IndicatorValue
	BollingerLower IndicatorValue

	VWAP IndicatorValue

	SMA20 IndicatorValue
	SMA50 IndicatorValue

	// VolumeRatio is the last volume divided by its 20-period average.
	VolumeRatio IndicatorValue

	LastPrice float64
}
