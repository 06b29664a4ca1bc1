package scan

import (
	"time"

	"github.com/airlayer/scand/internal/transport"
)

// contextState is the coarse scanning state of one device context.
type contextState int

const (
	deviceIdle contextState = iota
	devicePassive
	deviceActive
)

// periodicState is the sub-state machine for periodic scanning on a
// context, active only while PeriodicStart has been called and
// PeriodicStop hasn't.
type periodicState struct {
	enabled bool

	interval    time.Duration
	maxInterval time.Duration
	initial     time.Duration

	callbacks Callbacks

	// currentID is the RequestID of the in-flight periodic request, if
	// any is currently queued or running.
	currentID RequestID
	hasCurrent bool

	// needsActive records that at least one hidden known-network exists,
	// so the next periodic tick should probe directly rather than scan
	// passively.
	needsActive bool

	// timerSeq guards against a stale timer firing after PeriodicStop
	// (or after a restart bumps the sequence).
	timerSeq uint64
}

// scanContext is all per-device state the engine owns: one per wireless
// device handle (WDEV) that has been added via Add.
type scanContext struct {
	dev   transport.WDEV
	state contextState

	radio RadioCapabilities

	queue []*request // pending requests, manual and periodic alike, FIFO

	periodic periodicState

	// outstanding command ids the context is currently waiting on acks
	// for, keyed by what they were sent for. At most one of each may be
	// in flight at a time per §5's single-threaded model.
	triggerCmd    transport.CommandID
	hasTriggerCmd bool

	dumpCmd    transport.CommandID
	hasDumpCmd bool

	// active is the request currently driving the radio (the one whose
	// fragments are being sent / whose results are being awaited), or
	// nil if the context is idle.
	active *request
}

func newScanContext(dev transport.WDEV, radio RadioCapabilities) *scanContext {
	return &scanContext{
		dev:   dev,
		state: deviceIdle,
		radio: radio,
	}
}

// popNext returns and removes the next request to service, or nil if the
// queue is empty. Manual and periodic requests share this one FIFO; the
// radio work queue's priorities only order the single active requests of
// different contexts against each other.
func (c *scanContext) popNext() *request {
	for len(c.queue) > 0 {
		r := c.queue[0]
		c.queue = c.queue[1:]
		if r.canceled() {
			continue
		}
		return r
	}
	return nil
}

func (c *scanContext) enqueue(r *request) {
	c.queue = append(c.queue, r)
}

// removeQueued removes r from the queue if present, reporting
// whether it was found there (as opposed to already active or gone).
func (c *scanContext) removeQueued(r *request) bool {
	for i, q := range c.queue {
		if q == r {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return true
		}
	}
	return false
}
