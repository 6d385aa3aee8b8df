package calculator

import (
	"testing"
	"time"

	"OptionPulse/internal/model"
	"OptionPulse/internal/window"
)

func fillWindow(t *testing.T, n int) (*window.Rolling, time.Time) {
	t.Helper()
	start := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
	w := window.NewRolling(200)
	for i := 0; i < n; i++ {
		ok := w.Add(model.PriceObservation{
			Instrument: "NIFTY",
			Timestamp:  start.Add(time.Duration(i) * time.Minute),
			LastPrice:  24800 + float64(i%7),
			Volume:     1000 + float64(i%3)*100,
		})
		if !ok {
			t.Fatalf("observation %d rejected", i)
		}
	}
	return w, start
}

func TestCompute_ShortWindowMarksInvalid(t *testing.T) {
	w, start := fillWindow(t, 20)
	snap, err := Compute(w, DefaultPeriods(), start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.RSI.Valid {
		t.Error("RSI should be valid with 20 observations")
	}
	if !snap.SMA20.Valid || !snap.BollingerMid.Valid || !snap.VWAP.Valid {
		t.Error("20-period indicators should be valid with 20 observations")
	}
	if snap.MACDHist.Valid {
		t.Error("MACD needs 35 observations, should be invalid")
	}
	if snap.SMA50.Valid {
		t.Error("SMA50 needs 50 observations, should be invalid")
	}
}

func TestCompute_FullWindowAllValid(t *testing.T) {
	w, start := fillWindow(t, 60)
	snap, err := Compute(w, DefaultPeriods(), start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, iv := range map[string]model.IndicatorValue{
		"RSI": snap.RSI, "MACDLine": snap.MACDLine, "MACDSignal": snap.MACDSignal,
		"MACDHist": snap.MACDHist, "BollingerUpper": snap.BollingerUpper,
		"BollingerMid": snap.BollingerMid, "BollingerLower": snap.BollingerLower,
		"VWAP": snap.VWAP, "SMA20": snap.SMA20, "SMA50": snap.SMA50,
		"VolumeRatio": snap.VolumeRatio,
	} {
		if !iv.Valid {
			t.Errorf("%s should be valid with 60 observations", name)
		}
	}
	if snap.Instrument != "NIFTY" {
		t.Errorf("unexpected instrument %q", snap.Instrument)
	}
	if snap.LastPrice == 0 {
		t.Error("LastPrice not carried from the window")
	}
}

func TestCompute_EmptyWindow(t *testing.T) {
	w := window.NewRolling(10)
	if _, err := Compute(w, DefaultPeriods(), time.Now()); err == nil {
		t.Error("expected error on empty window")
	}
}

func TestMaxLookback(t *testing.T) {
	p := DefaultPeriods()
	// MACD slow+signal = 35, SMA long = 50.
	if got := p.MaxLookback(); got != 50 {
		t.Errorf("expected max lookback 50, got %d", got)
	}
}
