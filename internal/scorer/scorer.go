// Package scorer turns an indicator snapshot into a directional candidate
// with a confidence score. Each indicator family casts a bullish, bearish or
// neutral vote; the volume-surge ratio only amplifies confidence.
package scorer

import (
	"fmt"
	"strings"

	"OptionPulse/internal/model"
)

// Config holds the vote weights and thresholds. The mapping from votes to a
// confidence number is policy, not algorithm, so all of it is configurable.
type Config struct {
	RSIWeight       float64 `yaml:"rsi_weight"`
	MACDWeight      float64 `yaml:"macd_weight"`
	BollingerWeight float64 `yaml:"bollinger_weight"`
	TrendWeight     float64 `yaml:"trend_weight"`
	VWAPWeight      float64 `yaml:"vwap_weight"`

	RSIOversold   float64 `yaml:"rsi_oversold"`
	RSIOverbought float64 `yaml:"rsi_overbought"`

	// VolumeSurge is the ratio above which the volume bonus applies.
	VolumeSurge float64 `yaml:"volume_surge"`
	// VolumeBonus is added to confidence on a surge, pre-clamp.
	VolumeBonus float64 `yaml:"volume_bonus"`
}

// DefaultConfig returns the standard weighting.
func DefaultConfig() Config {
	return Config{
		RSIWeight:       0.25,
		MACDWeight:      0.25,
		BollingerWeight: 0.20,
		TrendWeight:     0.15,
		VWAPWeight:      0.15,
		RSIOversold:     30,
		RSIOverbought:   70,
		VolumeSurge:     1.5,
		VolumeBonus:     10,
	}
}

type vote struct {
	name      string
	direction model.Direction // empty = neutral
	weight    float64
	valid     bool
	comment   string
}

// Score evaluates a snapshot and returns a candidate, or nil when no
// direction wins the vote. Ties never guess a direction.
func Score(snap *model.IndicatorSnapshot, cfg Config) *model.Candidate {
	votes := []vote{
		voteRSI(snap, cfg),
		voteMACD(snap, cfg),
		voteBollinger(snap, cfg),
		voteTrend(snap, cfg),
		voteVWAP(snap, cfg),
	}

	var totalW, bullW, bearW float64
	for _, v := range votes {
		if !v.valid {
			continue
		}
		totalW += v.weight
		switch v.direction {
		case model.Bullish:
			bullW += v.weight
		case model.Bearish:
			bearW += v.weight
		}
	}
	if totalW == 0 || bullW == bearW {
		return nil
	}

	direction := model.Bullish
	majority := bullW
	if bearW > bullW {
		direction = model.Bearish
		majority = bearW
	}

	confidence := 100.0 * majority / totalW

	var setup []string
	for _, v := range votes {
		if v.valid && v.direction == direction {
			setup = append(setup, v.comment)
		}
	}
	if snap.VolumeRatio.Valid && snap.VolumeRatio.Value >= cfg.VolumeSurge {
		confidence += cfg.VolumeBonus
		setup = append(setup, fmt.Sprintf("volume %.1fx average", snap.VolumeRatio.Value))
	}
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}

	return &model.Candidate{
		Instrument: snap.Instrument,
		Direction:  direction,
		Confidence: confidence,
		Setup:      strings.Join(setup, ", "),
		Snapshot:   snap,
	}
}

func voteRSI(snap *model.IndicatorSnapshot, cfg Config) vote {
	v := vote{name: "RSI", weight: cfg.RSIWeight, valid: snap.RSI.Valid}
	if !v.valid {
		return v
	}
	switch {
	case snap.RSI.Value < cfg.RSIOversold:
		v.direction = model.Bullish
		v.comment = fmt.Sprintf("RSI %.0f oversold", snap.RSI.Value)
	case snap.RSI.Value > cfg.RSIOverbought:
		v.direction = model.Bearish
		v.comment = fmt.Sprintf("RSI %.0f overbought", snap.RSI.Value)
	}
	return v
}

func voteMACD(snap *model.IndicatorSnapshot, cfg Config) vote {
	v := vote{name: "MACD", weight: cfg.MACDWeight, valid: snap.MACDHist.Valid}
	if !v.valid {
		return v
	}
	switch {
	case snap.MACDHist.Value > 0:
		v.direction = model.Bullish
		v.comment = "MACD bullish crossover"
	case snap.MACDHist.Value < 0:
		v.direction = model.Bearish
		v.comment = "MACD bearish crossover"
	}
	return v
}

func voteBollinger(snap *model.IndicatorSnapshot, cfg Config) vote {
	v := vote{
		name:   "Bollinger",
		weight: cfg.BollingerWeight,
		valid:  snap.BollingerUpper.Valid && snap.BollingerLower.Valid,
	}
	if !v.valid {
		return v
	}
	switch {
	case snap.LastPrice <= snap.BollingerLower.Value:
		v.direction = model.Bullish
		v.comment = "price at lower Bollinger band"
	case snap.LastPrice >= snap.BollingerUpper.Value:
		v.direction = model.Bearish
		v.comment = "price at upper Bollinger band"
	}
	return v
}

func voteTrend(snap *model.IndicatorSnapshot, cfg Config) vote {
	v := vote{name: "Trend", weight: cfg.TrendWeight, valid: snap.SMA20.Valid && snap.SMA50.Valid}
	if !v.valid {
		return v
	}
	switch {
	case snap.LastPrice > snap.SMA20.Value && snap.SMA20.Value > snap.SMA50.Value:
		v.direction = model.Bullish
		v.comment = "bullish SMA alignment"
	case snap.LastPrice < snap.SMA20.Value && snap.SMA20.Value < snap.SMA50.Value:
		v.direction = model.Bearish
		v.comment = "bearish SMA alignment"
	}
	return v
}

func voteVWAP(snap *model.IndicatorSnapshot, cfg Config) vote {
	v := vote{name: "VWAP", weight: cfg.VWAPWeight, valid: snap.VWAP.Valid}
	if !v.valid {
		return v
	}
	switch {
	case snap.LastPrice > snap.VWAP.Value:
		v.direction = model.Bullish
		v.comment = "price above VWAP"
	case snap.LastPrice < snap.VWAP.Value:
		v.direction = model.Bearish
		v.comment = "price below VWAP"
	}
	return v
}
