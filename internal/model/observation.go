package model

import "time"

// PriceObservation is a single market data point for one instrument.
// Observations are immutable once produced by the data provider.
type PriceObservation struct {
	Instrument string
	Timestamp  time.Time
	LastPrice  float64
	Volume     float64
}
