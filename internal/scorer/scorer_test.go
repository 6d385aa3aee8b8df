package scorer

import (
	"math"
	"strings"
	"testing"

	"OptionPulse/internal/model"
)

func valid(v float64) model.IndicatorValue {
	return model.IndicatorValue{Value: v, Valid: true}
}

// oversoldSnapshot is a strong bullish setup: RSI deep oversold, MACD
// histogram positive, price at the lower band and below VWAP, with the
// trend family unavailable (short window).
func oversoldSnapshot() *model.IndicatorSnapshot {
	return &model.IndicatorSnapshot{
		Instrument:     "NIFTY",
		LastPrice:      24500,
		RSI:            valid(25),
		MACDLine:       valid(4),
		MACDSignal:     valid(1),
		MACDHist:       valid(3),
		BollingerUpper: valid(24900),
		BollingerMid:   valid(24700),
		BollingerLower: valid(24500),
		VWAP:           valid(24620),
		VolumeRatio:    valid(2.3),
	}
}

func TestScore_StrongBullishSetup(t *testing.T) {
	cand := Score(oversoldSnapshot(), DefaultConfig())
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.Direction != model.Bullish {
		t.Fatalf("expected bullish, got %s", cand.Direction)
	}
	// RSI .25 + MACD .25 + Bollinger .20 bullish; VWAP .15 bearish (price
	// below VWAP); trend invalid. 70/85 of the weight plus the surge bonus.
	want := 100.0*0.70/0.85 + 10
	if math.Abs(cand.Confidence-want) > 0.01 {
		t.Errorf("expected confidence %.2f, got %.2f", want, cand.Confidence)
	}
	if cand.Confidence < 80 {
		t.Errorf("expected high-conviction setup to clear 80, got %.2f", cand.Confidence)
	}
	if !strings.Contains(cand.Setup, "oversold") || !strings.Contains(cand.Setup, "2.3x") {
		t.Errorf("setup missing expected factors: %q", cand.Setup)
	}
}

func TestScore_BearishMirror(t *testing.T) {
	snap := &model.IndicatorSnapshot{
		Instrument:     "BANKNIFTY",
		LastPrice:      55400,
		RSI:            valid(78),
		MACDHist:       valid(-2),
		BollingerUpper: valid(55400),
		BollingerMid:   valid(55100),
		BollingerLower: valid(54800),
		SMA20:          valid(55600),
		SMA50:          valid(55800),
		VWAP:           valid(55500),
		VolumeRatio:    valid(1.0),
	}
	cand := Score(snap, DefaultConfig())
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.Direction != model.Bearish {
		t.Fatalf("expected bearish, got %s", cand.Direction)
	}
	// Every family agrees, no surge bonus.
	if cand.Confidence != 100 {
		t.Errorf("expected confidence 100 on unanimous vote, got %.2f", cand.Confidence)
	}
}

func TestScore_TieReturnsNil(t *testing.T) {
	snap := &model.IndicatorSnapshot{
		LastPrice: 24800,
		RSI:       valid(25),   // bullish, weight .25
		MACDHist:  valid(-1),   // bearish, weight .25
		VWAP:      valid(24800), // equal price, neutral
	}
	if cand := Score(snap, DefaultConfig()); cand != nil {
		t.Errorf("expected nil on tied vote, got %+v", cand)
	}
}

func TestScore_AllNeutralReturnsNil(t *testing.T) {
	snap := &model.IndicatorSnapshot{
		LastPrice:      24800,
		RSI:            valid(50),
		MACDHist:       valid(0),
		BollingerUpper: valid(25000),
		BollingerLower: valid(24600),
		VWAP:           valid(24800),
	}
	if cand := Score(snap, DefaultConfig()); cand != nil {
		t.Errorf("expected nil when every family is neutral, got %+v", cand)
	}
}

func TestScore_NoValidIndicatorsReturnsNil(t *testing.T) {
	if cand := Score(&model.IndicatorSnapshot{LastPrice: 24800}, DefaultConfig()); cand != nil {
		t.Errorf("expected nil with zero valid families, got %+v", cand)
	}
}

func TestScore_InvalidFamilyExcludedFromDenominator(t *testing.T) {
	// Only RSI is valid and it votes bullish: full conviction.
	snap := &model.IndicatorSnapshot{
		LastPrice: 24500,
		RSI:       valid(20),
	}
	cand := Score(snap, DefaultConfig())
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.Confidence != 100 {
		t.Errorf("expected 100 when the only valid family agrees, got %.2f", cand.Confidence)
	}
}

func TestScore_VolumeBonusClampedAt100(t *testing.T) {
	snap := oversoldSnapshot()
	snap.VWAP = valid(24400) // now all four valid families bullish
	cand := Score(snap, DefaultConfig())
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.Confidence != 100 {
		t.Errorf("expected clamp at 100, got %.2f", cand.Confidence)
	}
}

func TestScore_NoBonusBelowSurgeThreshold(t *testing.T) {
	snap := oversoldSnapshot()
	snap.VolumeRatio = valid(1.2)
	cand := Score(snap, DefaultConfig())
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	want := 100.0 * 0.70 / 0.85
	if math.Abs(cand.Confidence-want) > 0.01 {
		t.Errorf("expected no bonus at ratio 1.2, got %.2f want %.2f", cand.Confidence, want)
	}
	if strings.Contains(cand.Setup, "average") {
		t.Errorf("setup should not mention volume without a surge: %q", cand.Setup)
	}
}
