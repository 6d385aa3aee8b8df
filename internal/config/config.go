package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"OptionPulse/internal/calculator"
	"OptionPulse/internal/factory"
	"OptionPulse/internal/scorer"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken      string `yaml:"bot_token"`
		PremiumChatID string `yaml:"premium_chat_id"`
		FreeChatID    string `yaml:"free_chat_id"`
	} `yaml:"telegram"`

	DataSource struct {
		BaseURL     string   `yaml:"base_url"`
		APIKey      string   `yaml:"api_key"`
		Instruments []string `yaml:"instruments"`
	} `yaml:"data_source"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Session struct {
		Timezone string   `yaml:"timezone"`
		PreOpen  string   `yaml:"pre_open"`
		Open     string   `yaml:"open"`
		Close    string   `yaml:"close"`
		Holidays []string `yaml:"holidays"`
	} `yaml:"session"`

	Engine struct {
		PollIntervalSec int `yaml:"poll_interval_sec"`
		IdleIntervalSec int `yaml:"idle_interval_sec"`
		WindowSize      int `yaml:"window_size"` // 0 = sized to the longest lookback
	} `yaml:"engine"`

	Indicators struct {
		RSIPeriod       int     `yaml:"rsi_period"`
		MACDFast        int     `yaml:"macd_fast"`
		MACDSlow        int     `yaml:"macd_slow"`
		MACDSignal      int     `yaml:"macd_signal"`
		BollingerPeriod int     `yaml:"bollinger_period"`
		BollingerK      float64 `yaml:"bollinger_k"`
		SMAShort        int     `yaml:"sma_short"`
		SMALong         int     `yaml:"sma_long"`
		VolumeAvgPeriod int     `yaml:"volume_avg_period"`
	} `yaml:"indicators"`

	Scorer scorer.Config `yaml:"scorer"`

	Factory struct {
		MinConfidence         float64                           `yaml:"min_confidence"`
		MinRiskReward         float64                           `yaml:"min_risk_reward"`
		CooldownSec           int                               `yaml:"cooldown_sec"`
		Bands                 []factory.Band                    `yaml:"bands"`
		Instruments           map[string]factory.InstrumentSpec `yaml:"instruments"`
		// Pointers so an explicit 0 (cap disabled) survives defaulting.
		DailyCapPerInstrument *int `yaml:"daily_cap_per_instrument"`
		DailyCapGlobal        *int `yaml:"daily_cap_global"`
	} `yaml:"factory"`

	Access struct {
		PremiumViewers []string `yaml:"premium_viewers"`
	} `yaml:"access"`

	Server struct {
		WSAddr      string `yaml:"ws_addr"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`

	LogLevel string `yaml:"log_level"`
	Proxy    string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; everything can
// come from the environment and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_PREMIUM_CHAT_ID"); v != "" {
		cfg.Telegram.PremiumChatID = v
	}
	if v := os.Getenv("TELEGRAM_FREE_CHAT_ID"); v != "" {
		cfg.Telegram.FreeChatID = v
	}
	if v := os.Getenv("MARKET_DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("MARKET_DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.DataSource.Instruments) == 0 {
		c.DataSource.Instruments = []string{"NIFTY", "BANKNIFTY"}
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/signals.db"
	}
	if c.Session.Timezone == "" {
		c.Session.Timezone = "Asia/Kolkata"
	}
	if c.Session.PreOpen == "" {
		c.Session.PreOpen = "09:00"
	}
	if c.Session.Open == "" {
		c.Session.Open = "09:15"
	}
	if c.Session.Close == "" {
		c.Session.Close = "15:30"
	}
	if c.Engine.PollIntervalSec == 0 {
		c.Engine.PollIntervalSec = 5
	}
	if c.Engine.IdleIntervalSec == 0 {
		c.Engine.IdleIntervalSec = 60
	}

	dp := calculator.DefaultPeriods()
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = dp.RSI
	}
	if c.Indicators.MACDFast == 0 {
		c.Indicators.MACDFast = dp.MACDFast
	}
	if c.Indicators.MACDSlow == 0 {
		c.Indicators.MACDSlow = dp.MACDSlow
	}
	if c.Indicators.MACDSignal == 0 {
		c.Indicators.MACDSignal = dp.MACDSignal
	}
	if c.Indicators.BollingerPeriod == 0 {
		c.Indicators.BollingerPeriod = dp.Bollinger
	}
	if c.Indicators.BollingerK == 0 {
		c.Indicators.BollingerK = dp.BollingerK
	}
	if c.Indicators.SMAShort == 0 {
		c.Indicators.SMAShort = dp.SMAShort
	}
	if c.Indicators.SMALong == 0 {
		c.Indicators.SMALong = dp.SMALong
	}
	if c.Indicators.VolumeAvgPeriod == 0 {
		c.Indicators.VolumeAvgPeriod = dp.VolumeAvg
	}

	ds := scorer.DefaultConfig()
	if c.Scorer.RSIWeight == 0 && c.Scorer.MACDWeight == 0 && c.Scorer.BollingerWeight == 0 &&
		c.Scorer.TrendWeight == 0 && c.Scorer.VWAPWeight == 0 {
		c.Scorer = ds
	}
	if c.Scorer.RSIOversold == 0 {
		c.Scorer.RSIOversold = ds.RSIOversold
	}
	if c.Scorer.RSIOverbought == 0 {
		c.Scorer.RSIOverbought = ds.RSIOverbought
	}
	if c.Scorer.VolumeSurge == 0 {
		c.Scorer.VolumeSurge = ds.VolumeSurge
	}
	if c.Scorer.VolumeBonus == 0 {
		c.Scorer.VolumeBonus = ds.VolumeBonus
	}

	df := factory.DefaultConfig()
	if c.Factory.MinConfidence == 0 {
		c.Factory.MinConfidence = df.MinConfidence
	}
	if c.Factory.MinRiskReward == 0 {
		c.Factory.MinRiskReward = df.MinRiskReward
	}
	if c.Factory.CooldownSec == 0 {
		c.Factory.CooldownSec = int(df.Cooldown / time.Second)
	}
	if len(c.Factory.Bands) == 0 {
		c.Factory.Bands = df.Bands
	}
	if len(c.Factory.Instruments) == 0 {
		c.Factory.Instruments = df.Instruments
	}
	if c.Factory.DailyCapPerInstrument == nil {
		v := 2
		c.Factory.DailyCapPerInstrument = &v
	}
	if c.Factory.DailyCapGlobal == nil {
		v := 5
		c.Factory.DailyCapGlobal = &v
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks that required fields are set and coherent.
func (c *Config) Validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.PremiumChatID == "" {
		return fmt.Errorf("telegram.premium_chat_id is required when a bot token is set")
	}
	if len(c.DataSource.Instruments) == 0 {
		return fmt.Errorf("data_source.instruments must not be empty")
	}
	for _, inst := range c.DataSource.Instruments {
		if _, ok := c.Factory.Instruments[inst]; !ok {
			return fmt.Errorf("no strike step and lot size configured for instrument %s", inst)
		}
	}
	if c.Indicators.MACDFast >= c.Indicators.MACDSlow {
		return fmt.Errorf("indicators.macd_fast must be smaller than macd_slow")
	}
	if c.Factory.MinRiskReward <= 0 {
		return fmt.Errorf("factory.min_risk_reward must be positive")
	}
	if *c.Factory.DailyCapPerInstrument < 0 || *c.Factory.DailyCapGlobal < 0 {
		return fmt.Errorf("factory daily caps must not be negative; 0 disables a cap")
	}
	for i, b := range c.Factory.Bands {
		if b.TargetPct <= 0 || b.StopPct <= 0 {
			return fmt.Errorf("factory.bands[%d]: target_pct and stop_pct must be positive", i)
		}
		if b.TargetPct/b.StopPct < c.Factory.MinRiskReward {
			return fmt.Errorf("factory.bands[%d]: implied risk:reward %.2f below minimum %.2f",
				i, b.TargetPct/b.StopPct, c.Factory.MinRiskReward)
		}
	}
	return nil
}

// Periods returns the indicator lookbacks for the calculator.
func (c *Config) Periods() calculator.Periods {
	return calculator.Periods{
		RSI:        c.Indicators.RSIPeriod,
		MACDFast:   c.Indicators.MACDFast,
		MACDSlow:   c.Indicators.MACDSlow,
		MACDSignal: c.Indicators.MACDSignal,
		Bollinger:  c.Indicators.BollingerPeriod,
		BollingerK: c.Indicators.BollingerK,
		SMAShort:   c.Indicators.SMAShort,
		SMALong:    c.Indicators.SMALong,
		VolumeAvg:  c.Indicators.VolumeAvgPeriod,
	}
}

// FactoryConfig assembles the signal factory policy.
func (c *Config) FactoryConfig() factory.Config {
	return factory.Config{
		MinConfidence: c.Factory.MinConfidence,
		MinRiskReward: c.Factory.MinRiskReward,
		Bands:         c.Factory.Bands,
		Cooldown:      time.Duration(c.Factory.CooldownSec) * time.Second,
		Instruments:   c.Factory.Instruments,
	}
}

// DailyCaps returns the per-instrument and global signal caps. 0 disables
// a cap.
func (c *Config) DailyCaps() (perInstrument, global int) {
	return *c.Factory.DailyCapPerInstrument, *c.Factory.DailyCapGlobal
}

// PollInterval is the quote polling cadence during trading hours.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Engine.PollIntervalSec) * time.Second
}

// IdleInterval is the polling cadence while the market is closed.
func (c *Config) IdleInterval() time.Duration {
	return time.Duration(c.Engine.IdleIntervalSec) * time.Second
}
