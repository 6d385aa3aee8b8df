// Package lifecycle owns the set of open signals and drives their state
// machine: ACTIVE -> TARGET_HIT | STOP_HIT | EXPIRED | CANCELLED.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"OptionPulse/internal/metrics"
	"OptionPulse/internal/model"
	"OptionPulse/internal/store"
)

// ErrUnknownSignal is returned by Cancel for an id that is not open.
var ErrUnknownSignal = errors.New("signal not open")

// AlertFunc is invoked when a transition could not be durably written after
// all retries. The operator-visible escalation path.
type AlertFunc func(sig *model.Signal, err error)

// Manager tracks open signals and applies lifecycle transitions. It is the
// only writer of signal status. All map mutations happen under one lock;
// per-instrument tick serialization is the engine's job.
type Manager struct {
	store       store.Store
	log         zerolog.Logger
	alert       AlertFunc
	maxRetries  int
	retryDelay  time.Duration
	onTransient func(attempt int) // test hook, may be nil

	mu   sync.Mutex
	open map[string]*model.Signal
}

// New creates a Manager. alert may be nil.
func New(st store.Store, log zerolog.Logger, alert AlertFunc) *Manager {
	return &Manager{
		store:      st,
		log:        log.With().Str("component", "lifecycle").Logger(),
		alert:      alert,
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
		open:       make(map[string]*model.Signal),
	}
}

// Rehydrate loads open signals from the store after a restart. Ids already
// tracked are never duplicated.
func (m *Manager) Rehydrate(ctx context.Context) (int, error) {
	sigs, err := m.store.LoadOpenSignals(ctx)
	if err != nil {
		return 0, fmt.Errorf("load open signals: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, sig := range sigs {
		if _, ok := m.open[sig.ID]; ok {
			continue
		}
		m.open[sig.ID] = sig
		n++
	}
	if n > 0 {
		m.log.Info().Int("count", n).Msg("rehydrated open signals")
	}
	return n, nil
}

// Track registers a newly created signal. Duplicate ids are ignored.
func (m *Manager) Track(sig *model.Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.open[sig.ID]; ok {
		return
	}
	m.open[sig.ID] = sig
}

// HasOpen reports whether an ACTIVE signal already covers the instrument and
// direction. Used by the factory's duplicate-exposure gate.
func (m *Manager) HasOpen(instrument string, dir model.Direction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sig := range m.open {
		if sig.Instrument == instrument && sig.Direction == dir {
			return true
		}
	}
	return false
}

// OpenCount returns the number of open signals.
func (m *Manager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

// OpenSignals returns a snapshot of the open set.
func (m *Manager) OpenSignals() []*model.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Signal, 0, len(m.open))
	for _, sig := range m.open {
		out = append(out, sig)
	}
	return out
}

// Sweep evaluates every open signal of the instrument against a fresh price
// and returns the signals closed by this tick. When a single tick crosses
// both target and stop (a gap), the stop takes precedence: outcomes resolve
// pessimistically.
func (m *Manager) Sweep(ctx context.Context, instrument string, price float64, ts time.Time) []*model.Signal {
	m.mu.Lock()
	var closed []*model.Signal
	for _, sig := range m.open {
		if sig.Instrument != instrument {
			continue
		}
		status, exit := evaluate(sig, price)
		if status == model.StatusActive {
			continue
		}
		reason := model.ReasonTargetHit
		if status == model.StatusStopHit {
			reason = model.ReasonStopHit
		}
		m.applyLocked(sig, status, reason, exit, ts)
		closed = append(closed, sig)
	}
	m.mu.Unlock()

	for _, sig := range closed {
		m.finalize(ctx, sig)
	}
	return closed
}

// evaluate returns the terminal status a price tick forces, if any, and the
// level the P&L is computed against. Stop before target.
func evaluate(sig *model.Signal, price float64) (model.Status, float64) {
	if sig.Direction == model.Bullish {
		if price <= sig.StopLoss {
			return model.StatusStopHit, sig.StopLoss
		}
		if price >= sig.TargetPrice {
			return model.StatusTargetHit, sig.TargetPrice
		}
	} else {
		if price >= sig.StopLoss {
			return model.StatusStopHit, sig.StopLoss
		}
		if price <= sig.TargetPrice {
			return model.StatusTargetHit, sig.TargetPrice
		}
	}
	return model.StatusActive, 0
}

// ExpireOpen force-closes every open signal at session end using the last
// known price per instrument (entry price when none was ever observed).
// Returns the expired signals; a second call is a no-op.
func (m *Manager) ExpireOpen(ctx context.Context, lastPrices map[string]float64, ts time.Time) []*model.Signal {
	m.mu.Lock()
	var expired []*model.Signal
	for _, sig := range m.open {
		exit, ok := lastPrices[sig.Instrument]
		if !ok {
			exit = sig.EntryPrice
		}
		m.applyLocked(sig, model.StatusExpired, model.ReasonSessionEnd, exit, ts)
		expired = append(expired, sig)
	}
	m.mu.Unlock()

	for _, sig := range expired {
		m.finalize(ctx, sig)
	}
	return expired
}

// Cancel closes a signal without P&L, e.g. on a data-quality issue.
func (m *Manager) Cancel(ctx context.Context, id string, ts time.Time) (*model.Signal, error) {
	m.mu.Lock()
	sig, ok := m.open[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrUnknownSignal
	}
	m.applyLocked(sig, model.StatusCancelled, model.ReasonCancelled, sig.EntryPrice, ts)
	m.mu.Unlock()

	m.finalize(ctx, sig)
	return sig, nil
}

// applyLocked records a terminal transition and removes the signal from the
// open set. Callers hold m.mu. The transition is fact from here on; finalize
// handles durability.
func (m *Manager) applyLocked(sig *model.Signal, status model.Status, reason model.CloseReason, exit float64, ts time.Time) {
	sig.Status = status
	sig.ClosedAt = ts
	sig.CloseReason = reason
	if status == model.StatusCancelled {
		sig.RealizedPnLPct = 0
	} else {
		sig.RealizedPnLPct = pnlPct(sig, exit)
	}
	delete(m.open, sig.ID)
}

// finalize persists a closed signal. It runs outside m.mu so store writes
// and retry backoff never block HasOpen or sweeps of other instruments.
// Persistence failures are retried and escalated, never silently dropped.
func (m *Manager) finalize(ctx context.Context, sig *model.Signal) {
	if err := m.persist(ctx, sig); err != nil {
		m.log.Error().Err(err).Str("id", sig.ID).Msg("transition not durably written, escalating")
		if m.alert != nil {
			m.alert(sig, err)
		}
		return
	}

	m.log.Info().
		Str("id", sig.ID).
		Str("instrument", sig.Instrument).
		Str("status", string(sig.Status)).
		Str("reason", string(sig.CloseReason)).
		Float64("pnl_pct", sig.RealizedPnLPct).
		Msg("signal closed")
}

func (m *Manager) persist(ctx context.Context, sig *model.Signal) error {
	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.PersistRetriesTotal.Inc()
			if m.onTransient != nil {
				m.onTransient(attempt)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.retryDelay * time.Duration(attempt)):
			}
		}
		lastErr = m.store.UpdateSignalStatus(ctx, sig.ID, sig.Status, sig.ClosedAt, sig.CloseReason, sig.RealizedPnLPct)
		if lastErr == nil {
			return nil
		}
		m.log.Warn().Err(lastErr).Str("id", sig.ID).Int("attempt", attempt+1).Msg("persist transition failed")
	}
	return fmt.Errorf("after %d attempts: %w", m.maxRetries+1, lastErr)
}

// pnlPct signs the entry->exit move by trade direction.
func pnlPct(sig *model.Signal, exit float64) float64 {
	if sig.EntryPrice == 0 {
		return 0
	}
	pct := (exit - sig.EntryPrice) / sig.EntryPrice * 100
	if sig.Direction == model.Bearish {
		pct = -pct
	}
	return pct
}
