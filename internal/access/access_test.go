package access

import (
	"testing"
	"time"

	"OptionPulse/internal/model"
)

func sampleSignal() *model.Signal {
	return &model.Signal{
		ID:         "sig-1",
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

func TestProject_FreeTierRedacts(t *testing.T) {
	sig := sampleSignal()
	view := Project(sig, TierFree)

	if !view.Redacted {
		t.Fatal("free view must be redacted")
	}
	if view.Placeholder == "" {
		t.Error("redacted view has no placeholder")
	}
	if view.EntryPrice != 0 || view.TargetPrice != 0 || view.StopLoss != 0 || view.Confidence != 0 {
		t.Error("price levels leaked into the free view")
	}
	if view.Setup != "" || view.Leg != nil {
		t.Error("premium detail leaked into the free view")
	}
	// Identity fields survive redaction.
	if view.ID != "sig-1" || view.Instrument != "NIFTY" || view.Direction != model.Bullish {
		t.Error("identity fields missing from the free view")
	}
	// The symbol's strike is the entry level rounded to the strike step,
	// so it must never reach free viewers.
	if view.OptionSymbol != "" {
		t.Errorf("option symbol leaked into the free view: %q", view.OptionSymbol)
	}
}

func TestProject_PremiumTierComplete(t *testing.T) {
	view := Project(sampleSignal(), TierPremium)

	if view.Redacted || view.Placeholder != "" {
		t.Error("premium view must not be redacted")
	}
	if view.EntryPrice != 24812 || view.TargetPrice != 25209 || view.StopLoss != 24564 {
		t.Error("price levels missing from the premium view")
	}
	if view.Leg == nil || view.Leg.LotSize != 50 {
		t.Error("option leg missing from the premium view")
	}
	if view.OptionSymbol != "NIFTY 24800 CE" {
		t.Errorf("option symbol missing from the premium view: %q", view.OptionSymbol)
	}
}

func TestProject_DoesNotMutateSignal(t *testing.T) {
	sig := sampleSignal()
	before := *sig
	_ = Project(sig, TierFree)
	_ = Project(sig, TierPremium)
	if *sig != before {
		t.Error("projection mutated the signal")
	}
}

func TestProject_PremiumLegIsACopy(t *testing.T) {
	sig := sampleSignal()
	view := Project(sig, TierPremium)
	view.Leg.Symbol = "tampered"
	if sig.Leg.Symbol != "NIFTY 24800 CE" {
		t.Error("premium view shares the signal's leg")
	}
}

func TestStaticSubscriptions(t *testing.T) {
	s := NewStaticSubscriptions([]string{"alice", "bob"})
	if s.TierFor("alice") != TierPremium {
		t.Error("listed viewer should be premium")
	}
	if s.TierFor("mallory") != TierFree {
		t.Error("unlisted viewer should be free")
	}
	if NewStaticSubscriptions(nil).TierFor("anyone") != TierFree {
		t.Error("empty list should default everyone to free")
	}
}
