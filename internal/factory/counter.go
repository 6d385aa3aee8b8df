package factory

import "sync"

// DailyCounter enforces the daily signal cap. The check and the increment
// happen under one lock so two concurrent ticks cannot both pass the cap
// before either increments. A cap of 0 disables that limit.
type DailyCounter struct {
	mu            sync.Mutex
	day           string
	perInstrument map[string]int
	global        int
	instrumentCap int
	globalCap     int
}

// NewDailyCounter creates a counter with the given caps.
func NewDailyCounter(instrumentCap, globalCap int) *DailyCounter {
	return &DailyCounter{
		perInstrument: make(map[string]int),
		instrumentCap: instrumentCap,
		globalCap:     globalCap,
	}
}

// TryIncrement atomically checks both caps for the given trading day and
// claims a slot. It returns false, without counting, when either cap is
// already reached. A day change resets all counts.
func (c *DailyCounter) TryIncrement(day, instrument string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if day != c.day {
		c.day = day
		c.global = 0
		c.perInstrument = make(map[string]int)
	}
	if c.globalCap > 0 && c.global >= c.globalCap {
		return false
	}
	if c.instrumentCap > 0 && c.perInstrument[instrument] >= c.instrumentCap {
		return false
	}
	c.global++
	c.perInstrument[instrument]++
	return true
}

// Release returns a claimed slot, used when signal creation fails after the
// cap check (e.g. the persistence write never succeeded).
func (c *DailyCounter) Release(day, instrument string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if day != c.day {
		return
	}
	if c.global > 0 {
		c.global--
	}
	if c.perInstrument[instrument] > 0 {
		c.perInstrument[instrument]--
	}
}

// Count returns today's global count.
func (c *DailyCounter) Count(day string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if day != c.day {
		return 0
	}
	return c.global
}

// Reset clears all counts, called at the start of each session day.
func (c *DailyCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.day = ""
	c.global = 0
	c.perInstrument = make(map[string]int)
}
