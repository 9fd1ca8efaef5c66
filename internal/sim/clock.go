package sim

import "time"

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to. Headless runs and tests use it to
// make frame deltas exact.
type ManualClock struct {
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// FrameQueue is a Scheduler that counts frame requests for the caller to
// serve.
type FrameQueue struct {
	requested int
}

func (q *FrameQueue) RequestFrame() { q.requested++ }

// Take consumes one outstanding request and reports whether there was one.
func (q *FrameQueue) Take() bool {
	if q.requested == 0 {
		return false
	}
	q.requested--
	return true
}

func (q *FrameQueue) Pending() int { return q.requested }
