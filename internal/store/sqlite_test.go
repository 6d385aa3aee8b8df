package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"OptionPulse/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "signals.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSignal(id string) *model.Signal {
	return &model.Signal{
		ID:         id,
		Instrument: "NIFTY",
		Leg: model.OptionLeg{
			Symbol:     "NIFTY 24800 CE",
			OptionType: "CE",
			Strike:     24800,
			Expiry:     "05-Mar-2026",
			LotSize:    50,
		},
		Direction:   model.Bullish,
		EntryPrice:  24812,
		TargetPrice: 25209,
		StopLoss:    24564,
		Confidence:  82,
		RiskReward:  1.6,
		Setup:       "RSI 25 oversold",
		CreatedAt:   time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
		Status:      model.StatusActive,
	}
}

func TestSaveAndLoadOpenSignals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveSignal(ctx, testSignal("s1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveSignal(ctx, testSignal("s2")); err != nil {
		t.Fatalf("save: %v", err)
	}

	open, err := s.LoadOpenSignals(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open signals, got %d", len(open))
	}
	got := open[0]
	if got.ID != "s1" || got.Instrument != "NIFTY" || got.Direction != model.Bullish {
		t.Errorf("round trip lost identity: %+v", got)
	}
	if got.EntryPrice != 24812 || got.TargetPrice != 25209 || got.StopLoss != 24564 {
		t.Errorf("round trip lost price levels: %+v", got)
	}
	if got.Leg.Symbol != "NIFTY 24800 CE" || got.Leg.LotSize != 50 {
		t.Errorf("round trip lost option leg: %+v", got.Leg)
	}
	if got.Status != model.StatusActive {
		t.Errorf("expected ACTIVE, got %s", got.Status)
	}
}

func TestUpdateSignalStatus_ClosesAndAggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	closedAt := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

	if err := s.SaveSignal(ctx, testSignal("s1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.UpdateSignalStatus(ctx, "s1", model.StatusTargetHit, closedAt, model.ReasonTargetHit, 1.6); err != nil {
		t.Fatalf("update: %v", err)
	}

	open, err := s.LoadOpenSignals(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("closed signal still reported open")
	}

	stats, err := s.DailyStats(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 || stats.Wins != 1 || stats.Losses != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.TotalPnLPct != 1.6 {
		t.Errorf("expected pnl 1.6, got %v", stats.TotalPnLPct)
	}
}

func TestUpdateSignalStatus_ReplayIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	closedAt := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

	if err := s.SaveSignal(ctx, testSignal("s1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.UpdateSignalStatus(ctx, "s1", model.StatusStopHit, closedAt, model.ReasonStopHit, -1.0); err != nil {
		t.Fatalf("first update: %v", err)
	}
	// Replaying the transition must not double-count.
	if err := s.UpdateSignalStatus(ctx, "s1", model.StatusStopHit, closedAt, model.ReasonStopHit, -1.0); err != nil {
		t.Fatalf("replayed update: %v", err)
	}

	stats, err := s.DailyStats(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 || stats.Losses != 1 {
		t.Errorf("replay double-counted: %+v", stats)
	}
	if stats.TotalPnLPct != -1.0 {
		t.Errorf("replay double-counted pnl: %v", stats.TotalPnLPct)
	}
}

func TestUpdateSignalStatus_CancelledExcludedFromWinLoss(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	closedAt := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

	if err := s.SaveSignal(ctx, testSignal("s1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.UpdateSignalStatus(ctx, "s1", model.StatusCancelled, closedAt, model.ReasonCancelled, 0); err != nil {
		t.Fatalf("update: %v", err)
	}

	stats, err := s.DailyStats(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("cancelled signal not counted as closed: %+v", stats)
	}
	if stats.Wins != 0 || stats.Losses != 0 {
		t.Errorf("cancelled signal counted as win or loss: %+v", stats)
	}
}

func TestDailyStats_EmptyDay(t *testing.T) {
	s := newTestStore(t)
	stats, err := s.DailyStats(context.Background(), "2099-01-01")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 0 || stats.Day != "2099-01-01" {
		t.Errorf("expected zero stats for empty day, got %+v", stats)
	}
}

func TestExpiredWithPositivePnLCountsAsWin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	closedAt := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)

	if err := s.SaveSignal(ctx, testSignal("s1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.UpdateSignalStatus(ctx, "s1", model.StatusExpired, closedAt, model.ReasonSessionEnd, 0.4); err != nil {
		t.Fatalf("update: %v", err)
	}

	stats, err := s.DailyStats(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Wins != 1 || stats.Losses != 0 {
		t.Errorf("expired-in-profit should count as win: %+v", stats)
	}
}
