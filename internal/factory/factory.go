// Package factory converts scored candidates into durable signals, applying
// the quality gates: confidence, risk:reward, daily cap, session phase,
// duplicate exposure and per-instrument cooldown.
package factory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"OptionPulse/internal/model"
	"OptionPulse/internal/session"
	"OptionPulse/internal/store"
)

// Rejection reasons. A rejected candidate has no side effects.
var (
	ErrLowConfidence     = errors.New("confidence below minimum")
	ErrLowRiskReward     = errors.New("risk:reward below minimum")
	ErrDailyCapReached   = errors.New("daily signal cap reached")
	ErrMarketClosed      = errors.New("market session not open")
	ErrDuplicateExposure = errors.New("open signal already covers instrument and direction")
	ErrCooldown          = errors.New("instrument in signal cooldown")
)

// Band maps a confidence floor to target/stop distances as a percentage of
// entry. Higher-confidence bands widen the target and tighten the stop.
type Band struct {
	MinConfidence float64 `yaml:"min_confidence"`
	TargetPct     float64 `yaml:"target_pct"`
	StopPct       float64 `yaml:"stop_pct"`
}

// InstrumentSpec holds per-instrument option contract parameters.
type InstrumentSpec struct {
	StrikeStep float64 `yaml:"strike_step"`
	LotSize    int     `yaml:"lot_size"`
}

// Config is the factory policy surface.
type Config struct {
	MinConfidence float64                   `yaml:"min_confidence"`
	MinRiskReward float64                   `yaml:"min_risk_reward"`
	Bands         []Band                    `yaml:"bands"`
	Cooldown      time.Duration             `yaml:"cooldown"`
	Instruments   map[string]InstrumentSpec `yaml:"instruments"`
}

// DefaultConfig returns the standard gates and distance table.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 70,
		MinRiskReward: 1.5,
		Bands: []Band{
			{MinConfidence: 85, TargetPct: 2.0, StopPct: 0.8},
			{MinConfidence: 75, TargetPct: 1.6, StopPct: 1.0},
			{MinConfidence: 0, TargetPct: 1.2, StopPct: 0.75},
		},
		Cooldown: 5 * time.Minute,
		Instruments: map[string]InstrumentSpec{
			"NIFTY":     {StrikeStep: 50, LotSize: 50},
			"BANKNIFTY": {StrikeStep: 100, LotSize: 15},
		},
	}
}

// ExposureChecker reports whether an open signal already covers an
// instrument and direction. Implemented by the lifecycle manager.
type ExposureChecker interface {
	HasOpen(instrument string, dir model.Direction) bool
}

// Factory builds signals from candidates that clear every quality gate.
type Factory struct {
	cfg      Config
	clock    *session.Clock
	counter  *DailyCounter
	exposure ExposureChecker
	store    store.Store
	log      zerolog.Logger

	mu          sync.Mutex
	lastCreated map[string]time.Time
}

// New creates a Factory.
func New(cfg Config, clock *session.Clock, counter *DailyCounter, exposure ExposureChecker, st store.Store, log zerolog.Logger) *Factory {
	return &Factory{
		cfg:         cfg,
		clock:       clock,
		counter:     counter,
		exposure:    exposure,
		store:       st,
		log:         log.With().Str("component", "factory").Logger(),
		lastCreated: make(map[string]time.Time),
	}
}

// Counter exposes the daily counter for session-day reset jobs.
func (f *Factory) Counter() *DailyCounter { return f.counter }

// Create applies the quality gates to a candidate and, on acceptance,
// persists and returns the new signal. Rejections return a reason error and
// leave no trace. A candidate whose derived signal violates the ordering
// invariant indicates a configuration bug and is rejected with an error log.
func (f *Factory) Create(ctx context.Context, cand *model.Candidate, now time.Time) (*model.Signal, error) {
	if cand.Confidence < f.cfg.MinConfidence {
		return nil, ErrLowConfidence
	}
	if f.clock.Phase(now) != session.Open {
		return nil, ErrMarketClosed
	}
	if f.inCooldown(cand.Instrument, now) {
		return nil, ErrCooldown
	}
	if f.exposure != nil && f.exposure.HasOpen(cand.Instrument, cand.Direction) {
		return nil, ErrDuplicateExposure
	}

	sig, err := f.build(cand, now)
	if err != nil {
		return nil, err
	}
	if err := sig.Validate(); err != nil {
		f.log.Error().Err(err).Msg("derived signal violates ordering invariant, check band configuration")
		return nil, err
	}

	day := f.clock.DayKey(now)
	if !f.counter.TryIncrement(day, cand.Instrument) {
		return nil, ErrDailyCapReached
	}
	if err := f.store.SaveSignal(ctx, sig); err != nil {
		f.counter.Release(day, cand.Instrument)
		return nil, fmt.Errorf("persist signal: %w", err)
	}

	f.mu.Lock()
	f.lastCreated[cand.Instrument] = now
	f.mu.Unlock()

	f.log.Info().
		Str("id", sig.ID).
		Str("instrument", sig.Instrument).
		Str("direction", string(sig.Direction)).
		Float64("confidence", sig.Confidence).
		Float64("rr", sig.RiskReward).
		Msg("signal created")
	return sig, nil
}

func (f *Factory) inCooldown(instrument string, now time.Time) bool {
	if f.cfg.Cooldown <= 0 {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	last, ok := f.lastCreated[instrument]
	return ok && now.Sub(last) < f.cfg.Cooldown
}

func (f *Factory) build(cand *model.Candidate, now time.Time) (*model.Signal, error) {
	band := f.band(cand.Confidence)
	entry := cand.Snapshot.LastPrice
	if entry <= 0 {
		return nil, fmt.Errorf("non-positive entry price %.2f", entry)
	}

	var target, stop float64
	if cand.Direction == model.Bullish {
		target = entry * (1 + band.TargetPct/100)
		stop = entry * (1 - band.StopPct/100)
	} else {
		target = entry * (1 - band.TargetPct/100)
		stop = entry * (1 + band.StopPct/100)
	}

	rr := math.Abs(target-entry) / math.Abs(entry-stop)
	if rr < f.cfg.MinRiskReward {
		return nil, ErrLowRiskReward
	}

	return &model.Signal{
		ID:          uuid.NewString(),
		Instrument:  cand.Instrument,
		Leg:         f.leg(cand, entry, now),
		Direction:   cand.Direction,
		EntryPrice:  entry,
		TargetPrice: target,
		StopLoss:    stop,
		Confidence:  cand.Confidence,
		RiskReward:  rr,
		Setup:       cand.Setup,
		CreatedAt:   now,
		Status:      model.StatusActive,
	}, nil
}

func (f *Factory) band(confidence float64) Band {
	for _, b := range f.cfg.Bands {
		if confidence >= b.MinConfidence {
			return b
		}
	}
	if len(f.cfg.Bands) == 0 {
		return Band{TargetPct: 1.2, StopPct: 0.75}
	}
	return f.cfg.Bands[len(f.cfg.Bands)-1]
}

func (f *Factory) leg(cand *model.Candidate, spot float64, now time.Time) model.OptionLeg {
	spec, ok := f.cfg.Instruments[cand.Instrument]
	if !ok || spec.StrikeStep <= 0 {
		spec = InstrumentSpec{StrikeStep: 50, LotSize: 50}
	}
	strike := math.Round(spot/spec.StrikeStep) * spec.StrikeStep
	optType := "CE"
	if cand.Direction == model.Bearish {
		optType = "PE"
	}
	expiry := nextWeeklyExpiry(now)
	return model.OptionLeg{
		Symbol:     fmt.Sprintf("%s %d %s", cand.Instrument, int(strike), optType),
		OptionType: optType,
		Strike:     strike,
		Expiry:     expiry.Format("02-Jan-2006"),
		LotSize:    spec.LotSize,
	}
}

// nextWeeklyExpiry returns the next Thursday after now (weekly index expiry).
func nextWeeklyExpiry(now time.Time) time.Time {
	daysAhead := (int(time.Thursday) - int(now.Weekday()) + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	return now.AddDate(0, 0, daysAhead)
}
