// Package access projects signals into tier-appropriate views for
// distribution. Redaction is a pure projection; the underlying signal is
// never mutated. Tier determination belongs to the subscription service.
package access

import (
	"time"

	"OptionPulse/internal/model"
)

// Tier is a subscriber access level.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Placeholder shown to free-tier viewers in place of price levels.
const Placeholder = "🔒 Premium only — upgrade to unlock entry, target & stop-loss"

// SubscriptionService resolves a viewer to a tier. Billing and accounts are
// external; the engine only consumes the answer.
type SubscriptionService interface {
	TierFor(viewerID string) Tier
}

// StaticSubscriptions is a config-backed SubscriptionService: listed viewers
// are premium, everyone else is free.
type StaticSubscriptions struct {
	premium map[string]bool
}

// NewStaticSubscriptions builds the static service.
func NewStaticSubscriptions(premiumIDs []string) *StaticSubscriptions {
	m := make(map[string]bool, len(premiumIDs))
	for _, id := range premiumIDs {
		m[id] = true
	}
	return &StaticSubscriptions{premium: m}
}

func (s *StaticSubscriptions) TierFor(viewerID string) Tier {
	if s.premium[viewerID] {
		return TierPremium
	}
	return TierFree
}

// SignalView is the distribution payload for one tier. Redacted views keep
// instrument and direction only; the option symbol stays premium because its
// strike is the entry level rounded to the strike step.
type SignalView struct {
	ID           string          `json:"id"`
	Tier         Tier            `json:"tier"`
	Instrument   string          `json:"instrument"`
	Direction    model.Direction `json:"direction"`
	OptionSymbol string          `json:"option_symbol"`
	Status       model.Status    `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	Redacted     bool            `json:"redacted"`
	Placeholder  string          `json:"placeholder,omitempty"`

	// Premium-only fields; zero when redacted.
	EntryPrice     float64           `json:"entry_price,omitempty"`
	TargetPrice    float64           `json:"target_price,omitempty"`
	StopLoss       float64           `json:"stop_loss,omitempty"`
	Confidence     float64           `json:"confidence,omitempty"`
	RiskReward     float64           `json:"risk_reward,omitempty"`
	Setup          string            `json:"setup,omitempty"`
	Leg            *model.OptionLeg  `json:"leg,omitempty"`
	CloseReason    model.CloseReason `json:"close_reason,omitempty"`
	RealizedPnLPct float64           `json:"realized_pnl_pct,omitempty"`
}

// Project returns the tier-appropriate view of a signal.
func Project(sig *model.Signal, tier Tier) SignalView {
	view := SignalView{
		ID:         sig.ID,
		Tier:       tier,
		Instrument: sig.Instrument,
		Direction:  sig.Direction,
		Status:     sig.Status,
		CreatedAt:  sig.CreatedAt,
	}
	if tier != TierPremium {
		view.Redacted = true
		view.Placeholder = Placeholder
		return view
	}
	leg := sig.Leg
	view.OptionSymbol = leg.Symbol
	view.EntryPrice = sig.EntryPrice
	view.TargetPrice = sig.TargetPrice
	view.StopLoss = sig.StopLoss
	view.Confidence = sig.Confidence
	view.RiskReward = sig.RiskReward
	view.Setup = sig.Setup
	view.Leg = &leg
	view.CloseReason = sig.CloseReason
	view.RealizedPnLPct = sig.RealizedPnLPct
	return view
}
