package model

import (
	"fmt"
	"time"
)

// Direction is the directional call of a candidate or signal.
type Direction string

const (
	Bullish Direction = "BULLISH"
	Bearish Direction = "BEARISH"
)

// Status is the lifecycle state of a signal. ACTIVE is the only non-terminal
// state; transitions move strictly forward.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusTargetHit Status = "TARGET_HIT"
	StatusStopHit   Status = "STOP_HIT"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether s is a terminal state.
func (s Status) Terminal() bool { return s != StatusActive }

// CloseReason explains why a signal left ACTIVE.
type CloseReason string

const (
	ReasonTargetHit  CloseReason = "target hit"
	ReasonStopHit    CloseReason = "stop loss hit"
	ReasonSessionEnd CloseReason = "session end"
	ReasonCancelled  CloseReason = "cancelled"
)

// Candidate is a transient scored setup produced by the scorer. It exists
// only within one scoring pass and is never persisted.
type Candidate struct {
	Instrument string
	Direction  Direction
	Confidence float64
	Setup      string
	Snapshot   *IndicatorSnapshot
}

// OptionLeg describes the option contract a signal recommends.
type OptionLeg struct {
	Symbol     string  `json:"symbol"`      // e.g. "NIFTY 24500 CE"
	OptionType string  `json:"option_type"` // CE or PE
	Strike     float64 `json:"strike"`
	Expiry     string  `json:"expiry"` // e.g. "05-Mar-2026"
	LotSize    int     `json:"lot_size"`
}

// Signal is a durable, scored trading recommendation. Created by the
// factory, mutated only by the lifecycle manager, never deleted.
type Signal struct {
	ID             string
	Instrument     string
	Leg            OptionLeg
	Direction      Direction
	EntryPrice     float64
	TargetPrice    float64
	StopLoss       float64
	Confidence     float64 // 0-100, fixed at creation
	RiskReward     float64
	Setup          string // which indicators triggered
	CreatedAt      time.Time
	Status         Status
	ClosedAt       time.Time
	CloseReason    CloseReason
	RealizedPnLPct float64
}

// Validate checks the directional ordering invariant: target beyond entry in
// the trade direction, stop behind it.
func (s *Signal) Validate() error {
	switch s.Direction {
	case Bullish:
		if !(s.TargetPrice > s.EntryPrice && s.StopLoss < s.EntryPrice) {
			return fmt.Errorf("bullish signal %s violates ordering: entry=%.2f target=%.2f stop=%.2f",
				s.ID, s.EntryPrice, s.TargetPrice, s.StopLoss)
		}
	case Bearish:
		if !(s.TargetPrice < s.EntryPrice && s.StopLoss > s.EntryPrice) {
			return fmt.Errorf("bearish signal %s violates ordering: entry=%.2f target=%.2f stop=%.2f",
				s.ID, s.EntryPrice, s.TargetPrice, s.StopLoss)
		}
	default:
		return fmt.Errorf("signal %s has unknown direction %q", s.ID, s.Direction)
	}
	if s.EntryPrice == s.StopLoss {
		return fmt.Errorf("signal %s has zero risk", s.ID)
	}
	return nil
}
