package alarm

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

// Pending describes an alarm that has been set and has not fired yet.
type Pending struct {
	Key domain.AlarmKey
	At  time.Time
}

type entry struct {
	seq   uint64
	at    time.Time
	timer *time.Timer
}

// Clock is an in-process exact-time alarm facility. Each key holds at most
// one alarm; setting a key again replaces what was there.
type Clock struct {
	mu      sync.Mutex
	entries map[domain.AlarmKey]*entry
	seq     uint64
	stopped bool
	now     func() time.Time
}

type Option func(*Clock)

// WithNow overrides the time source used to compute timer delays.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

func NewClock(opts ...Option) *Clock {
	c := &Clock{
		entries: make(map[domain.AlarmKey]*entry),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Set registers fire to run once at the given time. Times in the past fire
// immediately.
func (c *Clock) Set(key domain.AlarmKey, at time.Time, fire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		slog.Warn("alarm set on stopped clock",
			"alarm", key.String(),
		)

		return
	}

	if old, ok := c.entries[key]; ok {
		old.timer.Stop()
	}

	c.seq++
	seq := c.seq

	delay := at.Sub(c.now())
	if delay < 0 {
		delay = 0
	}

	e := &entry{seq: seq, at: at}
	e.timer = time.AfterFunc(delay, func() {
		c.fire(key, seq, fire)
	})
	c.entries[key] = e

	slog.Debug("alarm set",
		"alarm", key.String(),
		"at", at,
		"delay", delay,
	)
}

func (c *Clock) fire(key domain.AlarmKey, seq uint64, fire func()) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.seq != seq {
		c.mu.Unlock()

		return
	}

	delete(c.entries, key)
	c.mu.Unlock()

	fire()
}

// Cancel removes the alarm under key. It reports whether one was pending.
func (c *Clock) Cancel(key domain.AlarmKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}

	e.timer.Stop()
	delete(c.entries, key)

	return true
}

// Pending lists the alarms still waiting to fire, earliest first.
func (c *Clock) Pending() []Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := make([]Pending, 0, len(c.entries))
	for k, e := range c.entries {
		pending = append(pending, Pending{Key: k, At: e.at})
	}

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].At.Equal(pending[j].At) {
			return pending[i].Key.String() < pending[j].Key.String()
		}

		return pending[i].At.Before(pending[j].At)
	})

	return pending
}

// Stop cancels every pending alarm. Later calls to Set are ignored.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		e.timer.Stop()
		delete(c.entries, k)
	}

	c.stopped = true
}
