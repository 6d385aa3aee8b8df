package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"OptionPulse/internal/access"
	"OptionPulse/internal/collector"
	"OptionPulse/internal/config"
	"OptionPulse/internal/engine"
	"OptionPulse/internal/factory"
	"OptionPulse/internal/lifecycle"
	"OptionPulse/internal/metrics"
	"OptionPulse/internal/model"
	"OptionPulse/internal/notifier"
	"OptionPulse/internal/session"
	"OptionPulse/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(err, "load config")
	}
	if err := cfg.Validate(); err != nil {
		fatal(err, "config validation")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	log.Info().Msg("OptionPulse starting")

	clock, err := session.New(cfg.Session.Timezone, cfg.Session.PreOpen, cfg.Session.Open, cfg.Session.Close, cfg.Session.Holidays)
	if err != nil {
		fatal(err, "session clock")
	}

	// Market data source
	var provider collector.Provider
	if cfg.DataSource.BaseURL != "" {
		provider = collector.NewHTTPProvider(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		provider = collector.NewMockProvider()
	}
	log.Info().Str("provider", provider.Name()).Msg("data source ready")

	// Persistence
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("sqlite unavailable, falling back to noop store")
			st = store.NewNoopStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewNoopStore()
	}

	// Notification fan-out
	var publishers []notifier.Publisher
	var summary engine.Summarizer
	if cfg.Telegram.BotToken != "" {
		premium := notifier.NewTelegramPublisher(cfg.Telegram.BotToken, cfg.Telegram.PremiumChatID, access.TierPremium, cfg.Proxy, log)
		publishers = append(publishers, premium)
		summary = premium
		if cfg.Telegram.FreeChatID != "" {
			publishers = append(publishers, notifier.NewTelegramPublisher(cfg.Telegram.BotToken, cfg.Telegram.FreeChatID, access.TierFree, cfg.Proxy, log))
		}
	}

	subs := access.NewStaticSubscriptions(cfg.Access.PremiumViewers)
	var hub *notifier.Hub
	if cfg.Server.WSAddr != "" {
		hub = notifier.NewHub(subs, log)
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		go func() {
			if err := (&http.Server{Addr: cfg.Server.WSAddr, Handler: mux}).ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("websocket server stopped")
			}
		}()
		defer hub.Close()
	}

	dist := notifier.NewDistributor(publishers, hub, log, func(publisher string) {
		metrics.NotifyFailuresTotal.WithLabelValues(publisher).Inc()
	})

	alert := func(sig *model.Signal, err error) {
		log.Error().Err(err).Str("signal", sig.ID).Msg("signal state not persisted, manual reconciliation needed")
	}
	lc := lifecycle.New(st, log, alert)

	counter := factory.NewDailyCounter(cfg.DailyCaps())
	fct := factory.New(cfg.FactoryConfig(), clock, counter, lc, st, log)

	if cfg.Server.MetricsAddr != "" {
		srv := metrics.Serve(cfg.Server.MetricsAddr)
		defer srv.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(engine.Options{
		Instruments:  cfg.DataSource.Instruments,
		PollInterval: cfg.PollInterval(),
		IdleInterval: cfg.IdleInterval(),
		WindowSize:   cfg.Engine.WindowSize,
		Periods:      cfg.Periods(),
		ScorerCfg:    cfg.Scorer,
		Provider:     provider,
		Factory:      fct,
		Lifecycle:    lc,
		Distributor:  dist,
		Clock:        clock,
		Store:        st,
		Summary:      summary,
		Log:          log,
	})
	if err := eng.Start(ctx); err != nil {
		fatal(err, "engine start")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received")
	cancel()
	eng.Stop()
	log.Info().Msg("OptionPulse stopped")
}

func fatal(err error, msg string) {
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	l.Fatal().Err(err).Msg(msg)
}
