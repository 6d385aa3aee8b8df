// Package engine drives the per-instrument polling loops and ties the
// pipeline together: quote, window, indicators, scoring, signal creation
// and lifecycle sweeps.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"OptionPulse/internal/calculator"
	"OptionPulse/internal/collector"
	"OptionPulse/internal/factory"
	"OptionPulse/internal/lifecycle"
	"OptionPulse/internal/metrics"
	"OptionPulse/internal/notifier"
	"OptionPulse/internal/scorer"
	"OptionPulse/internal/session"
	"OptionPulse/internal/store"
	"OptionPulse/internal/window"
)

// Summarizer delivers the end-of-day text summary. Optional.
type Summarizer interface {
	SendText(ctx context.Context, text string) error
}

// Options wires the engine's collaborators.
type Options struct {
	Instruments  []string
	PollInterval time.Duration
	IdleInterval time.Duration
	WindowSize   int // 0 = sized to the longest indicator lookback

	Periods   calculator.Periods
	ScorerCfg scorer.Config

	Provider    collector.Provider
	Factory     *factory.Factory
	Lifecycle   *lifecycle.Manager
	Distributor *notifier.Distributor
	Clock       *session.Clock
	Store       store.Store
	Summary     Summarizer
	Log         zerolog.Logger
}

// Engine runs one polling worker per instrument plus a session supervisor.
type Engine struct {
	opts Options
	log  zerolog.Logger
	cron *cron.Cron

	mu         sync.Mutex
	lastPrices map[string]float64

	stop chan struct{}
	wg   sync.WaitGroup
}

func New(opts Options) *Engine {
	if opts.WindowSize <= 0 {
		opts.WindowSize = opts.Periods.MaxLookback() * 2
	}
	return &Engine{
		opts:       opts,
		log:        opts.Log.With().Str("component", "engine").Logger(),
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(opts.Clock.Location())),
		lastPrices: make(map[string]float64),
		stop:       make(chan struct{}),
	}
}

// Start rehydrates open signals, registers scheduled jobs and launches the
// polling workers. It does not block.
func (e *Engine) Start(ctx context.Context) error {
	n, err := e.opts.Lifecycle.Rehydrate(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		e.log.Info().Int("signals", n).Msg("rehydrated open signals")
	}

	// Midnight rollover in the market timezone clears the daily counters.
	if _, err := e.cron.AddFunc("0 0 0 * * *", e.opts.Factory.Counter().Reset); err != nil {
		return err
	}
	e.cron.Start()

	for _, inst := range e.opts.Instruments {
		e.wg.Add(1)
		go e.worker(ctx, inst)
	}
	e.wg.Add(1)
	go e.supervise(ctx)

	e.log.Info().Strs("instruments", e.opts.Instruments).Msg("engine started")
	return nil
}

// Stop halts the workers, flushes notification goroutines and stops cron.
func (e *Engine) Stop() {
	close(e.stop)
	e.wg.Wait()
	e.cron.Stop()
	e.opts.Distributor.Wait()
	e.log.Info().Msg("engine stopped")
}

// worker owns one instrument: its window, its tick cadence, its sweeps.
// Nothing else touches the window, so it needs no locking.
func (e *Engine) worker(ctx context.Context, instrument string) {
	defer e.wg.Done()

	log := e.log.With().Str("instrument", instrument).Logger()
	w := window.NewRolling(e.opts.WindowSize)
	lastDay := ""

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case <-timer.C:
		}

		now := time.Now()
		phase := e.opts.Clock.Phase(now)

		if phase != session.Closed {
			if day := e.opts.Clock.DayKey(now); day != lastDay {
				w = window.NewRolling(e.opts.WindowSize)
				lastDay = day
			}
			e.tick(ctx, log, instrument, w, now, phase)
			timer.Reset(e.opts.PollInterval)
		} else {
			timer.Reset(e.opts.IdleInterval)
		}
	}
}

func (e *Engine) tick(ctx context.Context, log zerolog.Logger, instrument string, w *window.Rolling, now time.Time, phase session.Phase) {
	metrics.TicksTotal.WithLabelValues(instrument).Inc()

	obs, err := e.opts.Provider.Quote(ctx, instrument)
	if err != nil {
		metrics.DataErrorsTotal.WithLabelValues(instrument).Inc()
		log.Warn().Err(err).Msg("quote fetch failed")
		return
	}
	if !w.Add(obs) {
		metrics.StaleTicksTotal.WithLabelValues(instrument).Inc()
		return
	}

	e.mu.Lock()
	e.lastPrices[instrument] = obs.LastPrice
	e.mu.Unlock()

	// Open signals resolve against every fresh price, including pre-open
	// carries from a restart.
	for _, closed := range e.opts.Lifecycle.Sweep(ctx, instrument, obs.LastPrice, obs.Timestamp) {
		metrics.SignalsClosedTotal.WithLabelValues(instrument, string(closed.Status)).Inc()
		e.opts.Distributor.Distribute(ctx, closed)
	}

	if phase != session.Open {
		return
	}

	snap, err := calculator.Compute(w, e.opts.Periods, e.opts.Clock.OpenAt(now))
	if err != nil {
		log.Warn().Err(err).Msg("indicator snapshot failed")
		return
	}

	cand := scorer.Score(snap, e.opts.ScorerCfg)
	if cand == nil {
		return
	}
	metrics.CandidatesTotal.WithLabelValues(instrument, string(cand.Direction)).Inc()

	sig, err := e.opts.Factory.Create(ctx, cand, now)
	if err != nil {
		if reason, rejected := rejectionReason(err); rejected {
			metrics.SignalsRejectedTotal.WithLabelValues(instrument, reason).Inc()
			log.Debug().Str("reason", reason).Float64("confidence", cand.Confidence).Msg("candidate rejected")
		} else {
			log.Error().Err(err).Msg("signal creation failed")
		}
		return
	}
	metrics.SignalsCreatedTotal.WithLabelValues(instrument, string(sig.Direction)).Inc()
	e.opts.Lifecycle.Track(sig)
	e.opts.Distributor.Distribute(ctx, sig)
}

// supervise watches for the session close transition and runs the end-of-day
// flush once per trading day.
func (e *Engine) supervise(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	prev := e.opts.Clock.Phase(time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case <-ticker.C:
		}

		now := time.Now()
		phase := e.opts.Clock.Phase(now)
		if prev == session.Open && phase == session.Closed {
			e.closeSession(ctx, now)
		}
		prev = phase
	}
}

func (e *Engine) closeSession(ctx context.Context, now time.Time) {
	e.mu.Lock()
	prices := make(map[string]float64, len(e.lastPrices))
	for k, v := range e.lastPrices {
		prices[k] = v
	}
	e.mu.Unlock()

	expired := e.opts.Lifecycle.ExpireOpen(ctx, prices, now)
	for _, sig := range expired {
		metrics.SignalsClosedTotal.WithLabelValues(sig.Instrument, string(sig.Status)).Inc()
		e.opts.Distributor.Distribute(ctx, sig)
	}
	e.log.Info().Int("expired", len(expired)).Msg("session closed")

	if e.opts.Summary == nil {
		return
	}
	stats, err := e.opts.Store.DailyStats(ctx, e.opts.Clock.DayKey(now))
	if err != nil {
		e.log.Warn().Err(err).Msg("daily stats unavailable")
		return
	}
	if err := e.opts.Summary.SendText(ctx, notifier.FormatDailySummary(stats)); err != nil {
		e.log.Warn().Err(err).Msg("daily summary delivery failed")
	}
}

// rejectionReason maps quality-gate rejections to a stable metrics label.
// Non-gate errors report false.
func rejectionReason(err error) (string, bool) {
	switch {
	case errors.Is(err, factory.ErrLowConfidence):
		return "low_confidence", true
	case errors.Is(err, factory.ErrLowRiskReward):
		return "low_risk_reward", true
	case errors.Is(err, factory.ErrDailyCapReached):
		return "daily_cap", true
	case errors.Is(err, factory.ErrMarketClosed):
		return "market_closed", true
	case errors.Is(err, factory.ErrDuplicateExposure):
		return "duplicate_exposure", true
	case errors.Is(err, factory.ErrCooldown):
		return "cooldown", true
	}
	return "", false
}
