package collector

import (
	"context"
	"math"
	"sync"
	"time"

	"OptionPulse/internal/model"
)

// MockProvider returns synthetic quotes for development and testing. Prices
// drift sinusoidally around the configured base with growing volume.
type MockProvider struct {
	BasePrices map[string]float64

	mu    sync.Mutex
	ticks map[string]int
}

// NewMockProvider creates a provider with default index base prices.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		BasePrices: map[string]float64{
			"NIFTY":     24800,
			"BANKNIFTY": 55000,
		},
		ticks: make(map[string]int),
	}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Quote(_ context.Context, instrument string) (model.PriceObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	base, ok := m.BasePrices[instrument]
	if !ok {
		base = 25000
	}
	n := m.ticks[instrument]
	m.ticks[instrument] = n + 1

	price := base * (1 + 0.002*math.Sin(float64(n)/10))
	return model.PriceObservation{
		Instrument: instrument,
		Timestamp:  time.Now(),
		LastPrice:  price,
		Volume:     200000 + float64(n%20)*10000,
	}, nil
}
