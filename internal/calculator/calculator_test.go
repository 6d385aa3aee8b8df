package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"OptionPulse/internal/model"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestSMA(t *testing.T) {
	v, err := SMA([]float64{1, 2, 3, 4, 5}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3 {
		t.Errorf("expected 3, got %v", v)
	}

	// Only the trailing period counts.
	v, err = SMA([]float64{100, 100, 2, 4, 6}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 4 {
		t.Errorf("expected 4, got %v", v)
	}
}

func TestSMA_InsufficientData(t *testing.T) {
	_, err := SMA([]float64{1, 2}, 3)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRSI_AllGains(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	v, err := RSI(prices, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 100 {
		t.Errorf("expected RSI 100 for monotonic gains, got %v", v)
	}
}

func TestRSI_AllLosses(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 200 - float64(i)
	}
	v, err := RSI(prices, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 {
		t.Errorf("expected RSI 0 for monotonic losses, got %v", v)
	}
}

func TestRSI_Balanced(t *testing.T) {
	// Alternating equal gains and losses should sit at the midline.
	prices := []float64{100}
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			prices = append(prices, prices[len(prices)-1]+1)
		} else {
			prices = append(prices, prices[len(prices)-1]-1)
		}
	}
	v, err := RSI(prices, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v < 40 || v > 60 {
		t.Errorf("expected mid-range RSI for balanced series, got %v", v)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	_, err := RSI(make([]float64, 14), 14)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for 14 prices at period 14, got %v", err)
	}
}

func TestMACD_FlatSeries(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 250
	}
	line, signal, hist, err := MACD(prices, 12, 26, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(line, 0, 1e-9) || !almostEqual(signal, 0, 1e-9) || !almostEqual(hist, 0, 1e-9) {
		t.Errorf("expected zero MACD on flat series, got line=%v signal=%v hist=%v", line, signal, hist)
	}
}

func TestMACD_UptrendPositiveHistogram(t *testing.T) {
	// Flat base followed by a steady climb: fast EMA pulls ahead of slow,
	// and the MACD line pulls ahead of its own signal.
	prices := make([]float64, 0, 50)
	for i := 0; i < 30; i++ {
		prices = append(prices, 100)
	}
	for i := 0; i < 20; i++ {
		prices = append(prices, 100+float64(i+1)*2)
	}
	line, signal, hist, err := MACD(prices, 12, 26, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line <= 0 {
		t.Errorf("expected positive MACD line in uptrend, got %v", line)
	}
	if hist <= 0 {
		t.Errorf("expected line above signal in accelerating uptrend, got line=%v signal=%v", line, signal)
	}
}

func TestMACD_InsufficientData(t *testing.T) {
	_, _, _, err := MACD(make([]float64, 34), 12, 26, 9)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData below slow+signal prices, got %v", err)
	}
}

func TestMACD_InvalidPeriods(t *testing.T) {
	if _, _, _, err := MACD(make([]float64, 50), 26, 12, 9); err == nil {
		t.Error("expected error when fast >= slow")
	}
}

func TestBollinger(t *testing.T) {
	prices := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	upper, mid, lower, err := Bollinger(prices, 8, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Known population std dev of this series is exactly 2.
	if mid != 5 {
		t.Errorf("expected mid 5, got %v", mid)
	}
	if !almostEqual(upper, 9, 1e-9) || !almostEqual(lower, 1, 1e-9) {
		t.Errorf("expected bands 9/1, got %v/%v", upper, lower)
	}
}

func TestBollinger_FlatSeriesCollapses(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 77
	}
	upper, mid, lower, err := Bollinger(prices, 20, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upper != mid || mid != lower || mid != 77 {
		t.Errorf("expected collapsed bands at 77, got %v/%v/%v", upper, mid, lower)
	}
}

func TestVWAP(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
	obs := []model.PriceObservation{
		{Timestamp: start.Add(-time.Hour), LastPrice: 1000, Volume: 9999}, // before session, ignored
		{Timestamp: start, LastPrice: 100, Volume: 10},
		{Timestamp: start.Add(time.Minute), LastPrice: 110, Volume: 30},
	}
	v, err := VWAP(obs, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (100*10 + 110*30) / 40.0
	if !almostEqual(v, want, 1e-9) {
		t.Errorf("expected %v, got %v", want, v)
	}
}

func TestVWAP_ZeroVolume(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
	obs := []model.PriceObservation{{Timestamp: start, LastPrice: 100, Volume: 0}}
	if _, err := VWAP(obs, start); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData on zero volume, got %v", err)
	}
}

func TestVolumeRatio(t *testing.T) {
	volumes := []float64{10, 10, 10, 10, 25}
	v, err := VolumeRatio(volumes, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 2.5 {
		t.Errorf("expected ratio 2.5, got %v", v)
	}
}

func TestVolumeRatio_InsufficientData(t *testing.T) {
	if _, err := VolumeRatio([]float64{10, 10, 10, 10}, 4); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestVolumeRatio_ZeroAverage(t *testing.T) {
	if _, err := VolumeRatio([]float64{0, 0, 0, 0, 10}, 4); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData on zero average, got %v", err)
	}
}
