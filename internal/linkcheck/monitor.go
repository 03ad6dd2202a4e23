package linkcheck

import (
	"context"
	"time"
)

// Monitor re-evaluates a link once per second while it is valid and reports
// transitions, so a page left open past the window flips to expired.
type Monitor struct {
	rawURL    string
	maxAge    time.Duration
	now       func() time.Time
	newTicker func(time.Duration) (<-chan time.Time, func())
	onChange  func(valid bool)
	onTick    func(remaining int64)
}

// MonitorOption configures a Monitor
type MonitorOption func(*Monitor)

// WithClock overrides the time source
func WithClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.now = now }
}

// WithTicker overrides the one-second ticker. The returned func stops it.
func WithTicker(newTicker func(time.Duration) (<-chan time.Time, func())) MonitorOption {
	return func(m *Monitor) { m.newTicker = newTicker }
}

// WithCountdown registers a callback invoked with the remaining seconds on every tick
func WithCountdown(onTick func(remaining int64)) MonitorOption {
	return func(m *Monitor) { m.onTick = onTick }
}

// NewMonitor creates a Monitor for rawURL. onChange receives the initial
// validity and any later change.
func NewMonitor(rawURL string, maxAge time.Duration, onChange func(valid bool), opts ...MonitorOption) *Monitor {
	m := &Monitor{
		rawURL:    rawURL,
		maxAge:    maxAge,
		now:       time.Now,
		newTicker: stdTicker,
		onChange:  onChange,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run validates the link, then counts down until it expires or ctx is done.
// It returns the last result observed.
func (m *Monitor) Run(ctx context.Context) Result {
	res := Validate(m.rawURL, m.maxAge, m.now())
	m.notify(res.Valid)

	// Direct access carries no window to count down.
	if !res.Valid || !res.Timestamped {
		return res
	}

	ticks, stop := m.newTicker(time.Second)
	defer stop()

	remaining := res.RemainingSeconds()
	for {
		select {
		case <-ctx.Done():
			return res
		case <-ticks:
			remaining--
			if m.onTick != nil && remaining >= 0 {
				m.onTick(remaining)
			}
			if remaining > 0 {
				continue
			}

			res = Validate(m.rawURL, m.maxAge, m.now())
			if !res.Valid {
				m.notify(false)
				return res
			}
			remaining = res.RemainingSeconds()
		}
	}
}

func (m *Monitor) notify(valid bool) {
	if m.onChange != nil {
		m.onChange(valid)
	}
}

func stdTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
