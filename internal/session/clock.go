// Package session answers whether the market is open right now, given a
// trading calendar and configured session boundaries.
package session

import (
	"fmt"
	"time"
)

// Phase is the market session phase at an instant.
type Phase string

const (
	PreOpen Phase = "PRE_OPEN"
	Open    Phase = "OPEN"
	Closed  Phase = "CLOSED"
)

// Clock evaluates instants against the trading calendar. Boundary times are
// configuration; the clock itself reasons only about instants vs boundaries.
type Clock struct {
	loc      *time.Location
	preOpen  clockTime
	open     clockTime
	close    clockTime
	holidays map[string]bool // keyed by YYYY-MM-DD in loc
}

type clockTime struct{ hour, min int }

// New creates a Clock. Times are "HH:MM" strings in the given timezone;
// holidays are "YYYY-MM-DD" dates.
func New(timezone, preOpen, open, close string, holidays []string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	c := &Clock{loc: loc, holidays: make(map[string]bool, len(holidays))}
	if c.preOpen, err = parseClockTime(preOpen); err != nil {
		return nil, fmt.Errorf("pre_open: %w", err)
	}
	if c.open, err = parseClockTime(open); err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if c.close, err = parseClockTime(close); err != nil {
		return nil, fmt.Errorf("close: %w", err)
	}
	for _, h := range holidays {
		if _, err := time.ParseInLocation("2006-01-02", h, loc); err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h, err)
		}
		c.holidays[h] = true
	}
	return c, nil
}

// Location returns the market timezone.
func (c *Clock) Location() *time.Location { return c.loc }

func parseClockTime(s string) (clockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return clockTime{}, err
	}
	return clockTime{t.Hour(), t.Minute()}, nil
}

func (c *Clock) at(t time.Time, ct clockTime) time.Time {
	lt := t.In(c.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), ct.hour, ct.min, 0, 0, c.loc)
}

// TradingDay reports whether t falls on a weekday that is not a holiday.
func (c *Clock) TradingDay(t time.Time) bool {
	lt := t.In(c.loc)
	if wd := lt.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.holidays[lt.Format("2006-01-02")]
}

// Phase returns the session phase at t.
func (c *Clock) Phase(t time.Time) Phase {
	if !c.TradingDay(t) {
		return Closed
	}
	lt := t.In(c.loc)
	switch {
	case lt.Before(c.at(t, c.preOpen)):
		return Closed
	case lt.Before(c.at(t, c.open)):
		return PreOpen
	case lt.Before(c.at(t, c.close)):
		return Open
	default:
		return Closed
	}
}

// OpenAt returns the session open instant for t's trading day.
func (c *Clock) OpenAt(t time.Time) time.Time { return c.at(t, c.open) }

// MinutesSinceOpen returns how many minutes into the session t is.
// Negative before the open.
func (c *Clock) MinutesSinceOpen(t time.Time) float64 {
	return t.In(c.loc).Sub(c.at(t, c.open)).Minutes()
}

// MinutesToClose returns how many minutes remain until the session close.
// Negative after the close.
func (c *Clock) MinutesToClose(t time.Time) float64 {
	return c.at(t, c.close).Sub(t.In(c.loc)).Minutes()
}

// DayKey returns the trading-day key for t (YYYY-MM-DD in the session
// timezone), used for daily counter rollover.
func (c *Clock) DayKey(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}
