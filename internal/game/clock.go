package game

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock accumulates active typing time across bursts plus a penalty total.
type Clock struct {
	accumulated time.Duration
	penalty     time.Duration
	burstStart  time.Time
	open        bool
}

// StartBurst opens a burst at now.
func (c *Clock) StartBurst(now time.Time) error {
	if c.open {
		return ErrBurstOpen
	}
	c.burstStart = now
	c.open = true
	return nil
}

// EndBurst closes the open burst and returns its length. Negative lengths
// from clock skew count as zero.
func (c *Clock) EndBurst(now time.Time) (time.Duration, error) {
	if !c.open {
		return 0, ErrNoBurst
	}
	delta := now.Sub(c.burstStart)
	if delta < 0 {
		delta = 0
	}
	c.accumulated += delta
	c.burstStart = time.Time{}
	c.open = false
	return delta, nil
}

// AddPenalty adds unit to the penalty total. Non-positive units are ignored.
func (c *Clock) AddPenalty(unit time.Duration) {
	if unit <= 0 {
		return
	}
	c.penalty += unit
}

// Snapshot returns the time to display at now.
func (c *Clock) Snapshot(now time.Time) time.Duration {
	total := c.accumulated + c.penalty
	if c.open {
		if burst := now.Sub(c.burstStart); burst > 0 {
			total += burst
		}
	}
	return total
}

// Accumulated returns the sum of all completed bursts.
func (c *Clock) Accumulated() time.Duration { return c.accumulated }

// Penalty returns the penalty total.
func (c *Clock) Penalty() time.Duration { return c.penalty }

// BurstOpen reports whether a burst is in progress.
func (c *Clock) BurstOpen() bool { return c.open }

const centisecond = 10 * time.Millisecond

// FormatDuration renders d as HH:MM:SS.CC, truncating toward zero at every field.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := int64(d / centisecond)
	hours := cs / 360000
	minutes := cs / 6000 % 60
	seconds := cs / 100 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%02d", hours, minutes, seconds, cs%100)
}

// ParseDuration parses the HH:MM:SS.CC format produced by FormatDuration.
func ParseDuration(value string) (time.Duration, error) {
	clock, frac, ok := strings.Cut(value, ".")
	if !ok || len(frac) != 2 {
		return 0, fmt.Errorf("invalid duration %q: expected HH:MM:SS.CC", value)
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q: expected HH:MM:SS.CC", value)
	}
	fields := make([]int64, 0, 4)
	for _, p := range append(parts, frac) {
		if len(p) < 2 {
			return 0, fmt.Errorf("invalid duration %q: fields must be zero-padded", value)
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q: bad field %q", value, p)
		}
		fields = append(fields, n)
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf("invalid duration %q: minutes and seconds must be below 60", value)
	}
	d := time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second +
		time.Duration(fields[3])*centisecond
	return d, nil
}
