// Package store persists signals and their outcome history.
package store

import (
	"context"
	"time"

	"OptionPulse/internal/model"
)

// Stats summarizes one trading day's closed signals.
type Stats struct {
	Day         string
	Total       int
	Wins        int
	Losses      int
	TotalPnLPct float64
}

// Store is the narrow persistence interface the engine depends on. The
// database is the long-lived source of truth; LoadOpenSignals rehydrates the
// in-memory open set after a restart.
type Store interface {
	SaveSignal(ctx context.Context, sig *model.Signal) error
	UpdateSignalStatus(ctx context.Context, id string, status model.Status, closedAt time.Time, reason model.CloseReason, pnlPct float64) error
	LoadOpenSignals(ctx context.Context) ([]*model.Signal, error)
	DailyStats(ctx context.Context, day string) (Stats, error)
	Close() error
}
