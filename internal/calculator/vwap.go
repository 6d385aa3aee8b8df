package calculator

import (
	"time"

	"OptionPulse/internal/model"
)

// VWAP computes the volume-weighted average price over the observations at
// or after sessionStart. Accumulation restarts naturally at each session
// because the cutoff moves with the trading day.
func VWAP(obs []model.PriceObservation, sessionStart time.Time) (float64, error) {
	var pv, vol float64
	for _, o := range obs {
		if o.Timestamp.Before(sessionStart) {
			continue
		}
		pv += o.LastPrice * o.Volume
		vol += o.Volume
	}
	if vol == 0 {
		return 0, ErrInsufficientData
	}
	return pv / vol, nil
}
