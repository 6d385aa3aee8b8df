// Package window holds the bounded per-instrument rolling observation
// windows that feed the indicator library.
package window

import (
	"time"

	"OptionPulse/internal/model"
)

// Rolling is a bounded, time-ascending window of price observations for one
// instrument. Oldest observations are evicted once capacity is reached.
// Rolling is not safe for concurrent use; each instrument worker owns its
// window exclusively.
type Rolling struct {
	capacity int
	obs      []model.PriceObservation
	lastSeen time.Time
}

// NewRolling creates a window sized to the longest indicator lookback.
func NewRolling(capacity int) *Rolling {
	if capacity <= 0 {
		capacity = 200
	}
	return &Rolling{capacity: capacity, obs: make([]model.PriceObservation, 0, capacity)}
}

// Add inserts an observation, evicting the oldest if the window is full.
// Duplicate and out-of-order observations (timestamp not after the last seen
// one) are dropped and Add returns false.
func (w *Rolling) Add(o model.PriceObservation) bool {
	if !w.lastSeen.IsZero() && !o.Timestamp.After(w.lastSeen) {
		return false
	}
	w.lastSeen = o.Timestamp
	w.obs = append(w.obs, o)
	if len(w.obs) > w.capacity {
		w.obs = w.obs[len(w.obs)-w.capacity:]
	}
	return true
}

// Len returns the number of observations currently held.
func (w *Rolling) Len() int { return len(w.obs) }

// Last returns the most recent observation and whether one exists.
func (w *Rolling) Last() (model.PriceObservation, bool) {
	if len(w.obs) == 0 {
		return model.PriceObservation{}, false
	}
	return w.obs[len(w.obs)-1], true
}

// Observations returns the window contents in time-ascending order. The
// returned slice is shared; callers must not mutate it.
func (w *Rolling) Observations() []model.PriceObservation { return w.obs }

// Prices returns the close prices in time-ascending order.
func (w *Rolling) Prices() []float64 {
	ps := make([]float64, len(w.obs))
	for i, o := range w.obs {
		ps[i] = o.LastPrice
	}
	return ps
}

// Volumes returns the volumes in time-ascending order.
func (w *Rolling) Volumes() []float64 {
	vs := make([]float64, len(w.obs))
	for i, o := range w.obs {
		vs[i] = o.Volume
	}
	return vs
}
