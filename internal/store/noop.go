package store

import (
	"context"
	"time"

	"OptionPulse/internal/model"
)

// NoopStore is used when SQLite is not configured; the engine runs with no
// durable history and rehydrates nothing.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveSignal(context.Context, *model.Signal) error { return nil }
func (n *NoopStore) UpdateSignalStatus(context.Context, string, model.Status, time.Time, model.CloseReason, float64) error {
	return nil
}
func (n *NoopStore) LoadOpenSignals(context.Context) ([]*model.Signal, error) { return nil, nil }
func (n *NoopStore) DailyStats(_ context.Context, day string) (Stats, error) {
	return Stats{Day: day}, nil
}
func (n *NoopStore) Close() error { return nil }
