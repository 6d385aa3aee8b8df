package calculator

import (
	"errors"
	"time"

	"OptionPulse/internal/model"
	"OptionPulse/internal/window"
)

// Periods holds the lookback configuration for one snapshot computation.
type Periods struct {
	RSI        int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	Bollinger  int
	BollingerK float64
	SMAShort   int
	SMALong    int
	VolumeAvg  int
}

// DefaultPeriods returns the standard lookbacks.
func DefaultPeriods() Periods {
	return Periods{
		RSI:        14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		Bollinger:  20,
		BollingerK: 2.0,
		SMAShort:   20,
		SMALong:    50,
		VolumeAvg:  20,
	}
}

// MaxLookback returns the longest lookback any indicator needs, used to size
// the rolling windows.
func (p Periods) MaxLookback() int {
	max := p.RSI + 1
	for _, n := range []int{p.MACDSlow + p.MACDSignal, p.Bollinger, p.SMAShort, p.SMALong, p.VolumeAvg + 1} {
		if n > max {
			max = n
		}
	}
	return max
}

// Compute derives an IndicatorSnapshot from the rolling window. Indicators
// whose lookback exceeds the window length come back with Valid=false; any
// non-lookback error aborts the snapshot.
func Compute(w *window.Rolling, p Periods, sessionStart time.Time) (*model.IndicatorSnapshot, error) {
	last, ok := w.Last()
	if !ok {
		return nil, errors.New("empty window")
	}

	prices := w.Prices()
	volumes := w.Volumes()
	snap := &model.IndicatorSnapshot{
		Instrument: last.Instrument,
		Timestamp:  last.Timestamp,
		LastPrice:  last.LastPrice,
	}

	set := func(iv *model.IndicatorValue, v float64, err error) error {
		if err != nil {
			if errors.Is(err, ErrInsufficientData) {
				return nil
			}
			return err
		}
		iv.Value = v
		iv.Valid = true
		return nil
	}

	rsiV, rsiErr := RSI(prices, p.RSI)
	if err := set(&snap.RSI, rsiV, rsiErr); err != nil {
		return nil, err
	}

	line, sig, hist, err := MACD(prices, p.MACDFast, p.MACDSlow, p.MACDSignal)
	if err == nil {
		snap.MACDLine = model.IndicatorValue{Value: line, Valid: true}
		snap.MACDSignal = model.IndicatorValue{Value: sig, Valid: true}
		snap.MACDHist = model.IndicatorValue{Value: hist, Valid: true}
	} else if !errors.Is(err, ErrInsufficientData) {
		return nil, err
	}

	upper, mid, lower, err := Bollinger(prices, p.Bollinger, p.BollingerK)
	if err == nil {
		snap.BollingerUpper = model.IndicatorValue{Value: upper, Valid: true}
		snap.BollingerMid = model.IndicatorValue{Value: mid, Valid: true}
		snap.BollingerLower = model.IndicatorValue{Value: lower, Valid: true}
	} else if !errors.Is(err, ErrInsufficientData) {
		return nil, err
	}

	vwapV, vwapErr := VWAP(w.Observations(), sessionStart)
	if err := set(&snap.VWAP, vwapV, vwapErr); err != nil {
		return nil, err
	}
	smaShortV, smaShortErr := SMA(prices, p.SMAShort)
	if err := set(&snap.SMA20, smaShortV, smaShortErr); err != nil {
		return nil, err
	}
	smaLongV, smaLongErr := SMA(prices, p.SMALong)
	if err := set(&snap.SMA50, smaLongV, smaLongErr); err != nil {
		return nil, err
	}
	volV, volErr := VolumeRatio(volumes, p.VolumeAvg)
	if err := set(&snap.VolumeRatio, volV, volErr); err != nil {
		return nil, err
	}

	return snap, nil
}
