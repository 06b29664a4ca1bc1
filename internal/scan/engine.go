// Package scan implements the station's 802.11 scan subsystem: per-device
// scan contexts, the request lifecycle (trigger, completion, cancellation),
// periodic scanning with backoff, and BSS parsing/ranking of results.
//
// The engine is single-threaded in the cooperative sense the design
// documents describe: all mutable state is owned by one loop goroutine,
// and every public method is a thin wrapper that submits a closure over
// that state to an internal channel and blocks for its result. No mutex
// ever guards engine state; serialization is structural, not locked.
package scan

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/airlayer/scand/internal/obs"
	"github.com/airlayer/scand/internal/radioqueue"
	"github.com/airlayer/scand/internal/transport"
	"github.com/airlayer/scand/pkg/freqset"
	"github.com/airlayer/scand/pkg/ieee80211"
	"github.com/airlayer/scand/pkg/rank"
)

// defaultRankBand5GHzModifier is applied to every discovered BSS's rank
// unless the caller overrides it via Engine.RankBand5GHzModifier.
const defaultRankBand5GHzModifier = 1.0

const (
	defaultInitialPeriodicInterval = 10 * time.Second
	defaultMaxPeriodicInterval     = 300 * time.Second
)

// HiddenSSIDSource supplies the known hidden SSIDs a caller wants probed
// directly during active and periodic scans. internal/knownnet.Store
// satisfies this.
type HiddenSSIDSource interface {
	HiddenSSIDs(ctx context.Context) ([]string, error)
	HasHiddenSSID(ctx context.Context) (bool, error)
}

// Engine owns every scan context for a station and drives the single
// event loop that serializes all scan state transitions.
type Engine struct {
	transport transport.Transport
	radio     *radioqueue.Queue
	known     HiddenSSIDSource
	log       *slog.Logger

	// RankBand5GHzModifier is Rank.BandModifier5Ghz: the multiplier
	// applied to a BSS's computed rank when it sits above the 2.4GHz
	// band. Defaults to 1.0 (no adjustment); callers may set it directly
	// before calling Run.
	RankBand5GHzModifier float64

	cmds chan func()
	quit chan struct{}
	done chan struct{}

	contexts map[transport.WDEV]*scanContext

	nextReqID RequestID

	// requests indexes every non-completed request by id, across all
	// contexts, so Cancel and GetTriggeredTime don't need the caller to
	// also track which device a request belongs to.
	requests map[RequestID]*request
}

// New constructs an Engine bound to t. Call Run in a goroutine before
// issuing any scans.
func New(t transport.Transport, known HiddenSSIDSource, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		transport:            t,
		radio:                radioqueue.New(),
		known:                known,
		log:                  log,
		RankBand5GHzModifier: defaultRankBand5GHzModifier,
		cmds:                 make(chan func()),
		quit:                 make(chan struct{}),
		done:                 make(chan struct{}),
		contexts:             make(map[transport.WDEV]*scanContext),
		requests:             make(map[RequestID]*request),
	}
}

// Run is the engine's single loop goroutine. It returns when Stop is
// called or the transport's channels are closed.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.quit:
			return
		case fn := <-e.cmds:
			fn()
		case ack, ok := <-e.transport.Acks():
			if !ok {
				return
			}
			e.handleAck(ctx, ack)
		case ev, ok := <-e.transport.Events():
			if !ok {
				return
			}
			e.handleEvent(ctx, ev)
		}
	}
}

// Stop halts the loop and blocks until it has exited.
func (e *Engine) Stop() {
	close(e.quit)
	<-e.done
}

// submit runs fn on the loop goroutine and blocks until it has run.
func (e *Engine) submit(fn func()) {
	done := make(chan struct{})
	e.cmds <- func() {
		fn()
		close(done)
	}
	<-done
}

// --- device lifecycle -------------------------------------------------

// Add registers a device context. Calling Add on an already-known device
// is a no-op: its existing context is kept unchanged.
func (e *Engine) Add(dev transport.WDEV, radio RadioCapabilities) {
	e.submit(func() {
		if _, ok := e.contexts[dev]; ok {
			return
		}
		e.contexts[dev] = newScanContext(dev, radio)
	})
}

// Remove tears down a device context: every queued or active request
// belonging to it is canceled and destroyed, and periodic scanning (if
// any) is stopped.
func (e *Engine) Remove(dev transport.WDEV) {
	e.submit(func() {
		c, ok := e.contexts[dev]
		if !ok {
			return
		}
		for _, r := range c.queue {
			e.finishRequest(r, ErrCanceled, nil)
		}
		if c.active != nil {
			e.finishRequest(c.active, ErrCanceled, nil)
		}
		if c.periodic.enabled {
			c.periodic.timerSeq++
			c.periodic.enabled = false
			if c.periodic.callbacks != nil {
				c.periodic.callbacks.Destroy()
			}
		}
		delete(e.contexts, dev)
	})
}

// --- request submission ------------------------------------------------

// Passive issues a passive scan: no SCAN_SSIDS attribute at all.
func (e *Engine) Passive(dev transport.WDEV, cb Callbacks) (RequestID, error) {
	return e.PassiveFull(dev, ScanParameters{}, cb)
}

func (e *Engine) PassiveFull(dev transport.WDEV, params ScanParameters, cb Callbacks) (RequestID, error) {
	params.HasSSID = false
	params.SSID = nil
	return e.submitRequest(dev, params, cb, false, true)
}

// Active issues an active scan probing ssid directly, alongside a
// trailing broadcast probe, per the command builder.
func (e *Engine) Active(dev transport.WDEV, ssid []byte, cb Callbacks) (RequestID, error) {
	return e.ActiveFull(dev, ScanParameters{SSID: ssid, HasSSID: len(ssid) > 0}, cb)
}

func (e *Engine) ActiveFull(dev transport.WDEV, params ScanParameters, cb Callbacks) (RequestID, error) {
	return e.submitRequest(dev, params, cb, false, false)
}

// OWEHidden issues an active scan against ssid for the sole purpose of
// resolving an OWE transition-mode hidden network; behaviorally
// identical to Active, kept as a distinct entry point so callers don't
// need to construct ScanParameters by hand for the common case.
func (e *Engine) OWEHidden(dev transport.WDEV, ssid []byte, cb Callbacks) (RequestID, error) {
	return e.Active(dev, ssid, cb)
}

func (e *Engine) submitRequest(dev transport.WDEV, params ScanParameters, cb Callbacks, periodic, passive bool) (RequestID, error) {
	var id RequestID
	var err error
	e.submit(func() {
		c, ok := e.contexts[dev]
		if !ok {
			err = ErrUnknownDevice
			return
		}
		e.nextReqID++
		id = e.nextReqID
		r := &request{
			id:        id,
			ctx:       c,
			params:    params,
			callbacks: cb,
			passive:   passive,
			periodic:  periodic,
			state:     stateQueued,
		}
		e.requests[id] = r
		c.enqueue(r)
		e.kick(context.Background(), c)
	})
	return id, err
}

// --- cancellation -------------------------------------------------------

// Cancel cancels a previously submitted request. Per the reentrancy
// guard, calling Cancel from inside that same request's own callback is
// a no-op (logged), since the request is already in the middle of being
// finished.
func (e *Engine) Cancel(id RequestID) error {
	var err error
	e.submit(func() {
		r, ok := e.requests[id]
		if !ok {
			err = ErrNotFound
			return
		}
		if r.inCallback {
			e.log.Warn("scan: ignoring reentrant cancel", "request", id)
			return
		}
		if r.canceled() {
			err = ErrNotFound
			return
		}
		c := r.ctx

		if c.active == r {
			// Already triggered (or mid-flight): let it run to
			// completion but mark canceled so the eventual result is
			// discarded and ErrCanceled delivered instead. A request
			// whose trigger is not yet acknowledged ends through
			// Destroy alone, without OnDone.
			if r.state == stateQueued && r.callbacks != nil {
				r.callbacks.Destroy()
				r.callbacks = nil
			}
			r.state = stateCanceled
			return
		}
		// Never sent to the radio: Destroy runs, OnDone does not.
		cb := r.callbacks
		r.callbacks = nil
		if !c.removeQueued(r) && r.hasWorkID {
			e.radio.Remove(r.workID)
		}
		e.finishRequest(r, ErrCanceled, nil)
		if cb != nil {
			cb.Destroy()
		}
	})
	return err
}

// GetTriggeredTime returns the TSF timestamp at which the request's scan
// was triggered, if it has been.
func (e *Engine) GetTriggeredTime(id RequestID) (uint64, bool) {
	var tsf uint64
	var ok bool
	e.submit(func() {
		r, found := e.requests[id]
		if !found {
			return
		}
		tsf, ok = r.startTSF, r.hasStartTSF
	})
	return tsf, ok
}

// --- periodic scanning ---------------------------------------------------

// PeriodicStart begins periodic scanning on dev with the given initial
// backoff interval (zero selects the default of 10s, capped at 65535s).
func (e *Engine) PeriodicStart(dev transport.WDEV, initial, max time.Duration, cb Callbacks) error {
	if initial <= 0 {
		initial = defaultInitialPeriodicInterval
	}
	if initial > 65535*time.Second {
		initial = 65535 * time.Second
	}
	if max <= 0 {
		max = defaultMaxPeriodicInterval
	}
	var err error
	e.submit(func() {
		c, ok := e.contexts[dev]
		if !ok {
			err = ErrUnknownDevice
			return
		}
		c.periodic.timerSeq++
		c.periodic.enabled = true
		c.periodic.initial = initial
		c.periodic.interval = initial
		c.periodic.maxInterval = max
		c.periodic.callbacks = cb
		e.armPeriodicTimer(c, 0)
	})
	return err
}

// PeriodicStop halts periodic scanning on dev, destroying its callbacks.
func (e *Engine) PeriodicStop(dev transport.WDEV) error {
	var err error
	e.submit(func() {
		c, ok := e.contexts[dev]
		if !ok {
			err = ErrUnknownDevice
			return
		}
		if !c.periodic.enabled {
			return
		}
		c.periodic.timerSeq++
		c.periodic.enabled = false
		if c.periodic.hasCurrent {
			if r, ok := e.requests[c.periodic.currentID]; ok {
				e.finishRequest(r, ErrCanceled, nil)
			}
		}
		if c.periodic.callbacks != nil {
			c.periodic.callbacks.Destroy()
		}
		c.periodic.callbacks = nil
	})
	return err
}

// armPeriodicTimer schedules the next periodic tick after d (the current
// backoff interval when d is zero).
func (e *Engine) armPeriodicTimer(c *scanContext, after time.Duration) {
	if after <= 0 {
		after = c.periodic.interval
	}
	seq := c.periodic.timerSeq
	time.AfterFunc(after, func() {
		e.submit(func() {
			e.onPeriodicTick(c, seq)
		})
	})
}

func (e *Engine) onPeriodicTick(c *scanContext, seq uint64) {
	if !c.periodic.enabled || c.periodic.timerSeq != seq {
		return // stopped or restarted since this timer was armed
	}

	needsActive := c.periodic.needsActive
	if e.known != nil {
		if has, err := e.known.HasHiddenSSID(context.Background()); err == nil {
			needsActive = has
		}
	}

	params := ScanParameters{RandomizeMACHint: needsActive}
	e.nextReqID++
	id := e.nextReqID
	r := &request{
		id:       id,
		ctx:      c,
		params:   params,
		callbacks: periodicCallbacks{e: e, c: c},
		passive:  !needsActive,
		periodic: true,
		state:    stateQueued,
	}
	e.requests[id] = r
	c.periodic.currentID = id
	c.periodic.hasCurrent = true
	c.enqueue(r)
	e.kick(context.Background(), c)
}

// periodicCallbacks wraps the user's periodic Callbacks with the
// backoff bookkeeping: every completion reschedules the next tick,
// doubling the interval up to the cap (see onPeriodicResult).
type periodicCallbacks struct {
	e *Engine
	c *scanContext
}

func (p periodicCallbacks) OnTrigger(err error) {
	if p.c.periodic.callbacks != nil {
		p.c.periodic.callbacks.OnTrigger(err)
	}
}

func (p periodicCallbacks) OnDone(err error, bsses []*ieee80211.BSS, freqs *freqset.Set) bool {
	if p.c.periodic.callbacks != nil {
		return p.c.periodic.callbacks.OnDone(err, bsses, freqs)
	}
	return false
}

func (p periodicCallbacks) Destroy() {}

// --- firmware (synchronous) scan dump ------------------------------------

// GetFirmwareScan returns the kernel's current cached scan dump for dev
// without triggering a new scan.
func (e *Engine) GetFirmwareScan(ctx context.Context, dev transport.WDEV) ([]*ieee80211.BSS, error) {
	var bsses []*ieee80211.BSS
	var err error
	e.submit(func() {
		if _, ok := e.contexts[dev]; !ok {
			err = ErrUnknownDevice
			return
		}
	})
	if err != nil {
		return nil, err
	}
	results, derr := e.transport.GetScanDump(ctx, dev)
	if derr != nil {
		return nil, derr
	}
	for _, res := range results {
		if res.BSS != nil {
			res.BSS.Rank = rank.Compute(res.BSS, e.RankBand5GHzModifier)
			bsses = append(bsses, res.BSS)
		}
	}
	if len(bsses) == 0 {
		return nil, ErrNoResults
	}
	return bsses, nil
}

// --- internal loop machinery ---------------------------------------------

// kick starts the next queued request on c if the radio is idle for it.
func (e *Engine) kick(ctx context.Context, c *scanContext) {
	if c.active != nil {
		return
	}
	r := c.popNext()
	if r == nil {
		return
	}
	c.active = r

	var hiddenSSIDs [][]byte
	if !r.passive && e.known != nil {
		if list, err := e.known.HiddenSSIDs(ctx); err == nil {
			for _, s := range list {
				hiddenSSIDs = append(hiddenSSIDs, []byte(s))
			}
		}
	}

	r.fragments = buildFragments(r.params, c.radio, hiddenSSIDs)
	if !r.passive && len(r.fragments[0].SSIDs) == 0 {
		// Nothing to probe directly: an active scan still carries the
		// broadcast (empty) SSID.
		r.fragments[0].SSIDs = [][]byte{nil}
	}

	priority := radioqueue.PriorityScan
	if r.periodic {
		priority = radioqueue.PriorityPeriodic
	}
	r.workID = e.radio.Insert(radioqueue.Item{
		Priority: priority,
		DoWork:   func(radioqueue.ID) { e.sendNextFragment(ctx, c, r) },
	})
	r.hasWorkID = true
}

// sendNextFragment (re-)sends the pending command at the head of
// r.fragments. The fragment is only removed once its ack reports success
// (see handleAck), so a kernel -EBUSY response can retry the exact same
// command later rather than losing it.
func (e *Engine) sendNextFragment(ctx context.Context, c *scanContext, r *request) {
	frag := r.fragments[0]

	id := e.transport.TriggerScan(ctx, c.dev, frag)
	r.pendingCmd = id
	r.hasPendingCmd = true
	c.triggerCmd = id
	c.hasTriggerCmd = true

	obs.ScansTriggered.WithLabelValues(deviceLabel(c.dev), scanKindLabel(r)).Inc()
}

func deviceLabel(dev transport.WDEV) string {
	return strconv.FormatUint(uint64(dev), 10)
}

func scanKindLabel(r *request) string {
	switch {
	case r.periodic:
		return "periodic"
	case r.passive:
		return "passive"
	default:
		return "active"
	}
}

func (e *Engine) handleAck(ctx context.Context, ack transport.Ack) {
	for _, c := range e.contexts {
		if c.active == nil || !c.active.hasPendingCmd || c.active.pendingCmd != ack.ID {
			continue
		}
		r := c.active
		r.hasPendingCmd = false

		if ack.Err != nil {
			if ack.Err == transport.ErrBusy {
				e.handleBusy(c)
				return
			}
			e.finishActive(c, ack.Err, nil)
			return
		}

		if !r.hasStartTSF {
			r.startTSF = ack.StartTSF
			r.hasStartTSF = true
		}
		if r.state == stateQueued {
			r.state = stateTriggered
			if r.callbacks != nil {
				r.inCallback = true
				r.callbacks.OnTrigger(nil)
				r.inCallback = false
			}
		}

		// This fragment was accepted; move on to the next one, if any.
		r.fragments = r.fragments[1:]
		if len(r.fragments) > 0 {
			e.sendNextFragment(ctx, c, r)
		}
		return
	}
}

// handleBusy applies the -EBUSY fallback required by §7/S4: the request
// is not failed. The context drops to Passive and the head fragment is
// left pending (untouched in r.fragments) until the external scan's
// NEW_SCAN_RESULTS arrives, at which point handleEvent re-executes the
// same work item via sendNextFragment.
func (e *Engine) handleBusy(c *scanContext) {
	c.state = devicePassive
}

func (e *Engine) handleEvent(ctx context.Context, ev transport.Event) {
	c, ok := e.contexts[ev.WDEV]
	if !ok {
		return
	}

	switch ev.Kind {
	case transport.EventTriggerScan:
		c.state = deviceActive

	case transport.EventNewScanResults:
		if c.active == nil {
			// An externally triggered scan completed; nothing of ours
			// to finish, just note the device went idle again.
			c.state = deviceIdle
			return
		}
		if r := c.active; len(r.fragments) > 0 && !r.hasPendingCmd {
			// A prior -EBUSY left our head fragment unsent (see
			// handleBusy): the external scan that was blocking us has
			// now finished, so retry the same work item.
			e.sendNextFragment(ctx, c, r)
			return
		}
		if ev.Flush && c.active.hasPendingCmd {
			// Flushed mid-flight by an external actor: our partial
			// in-kernel results are gone.
			e.finishActive(c, ErrAgain, nil)
			return
		}
		results, err := e.transport.GetScanDump(ctx, c.dev)
		if err != nil {
			e.finishActive(c, err, nil)
			return
		}
		var bsses []*ieee80211.BSS
		for _, res := range results {
			if res.BSS != nil {
				res.BSS.Rank = rank.Compute(res.BSS, e.RankBand5GHzModifier)
				bsses = append(bsses, res.BSS)
			}
		}
		e.finishActive(c, nil, bsses)

	case transport.EventSchedScanResults:
		c.state = deviceIdle

	case transport.EventScanAborted:
		if r := c.active; r != nil {
			switch {
			case r.state == stateQueued:
				// Spurious abort of an unrelated external scan raced
				// ours before it was ever triggered: retry the same
				// work item instead of failing the request.
				e.sendNextFragment(ctx, c, r)
				return
			case r.periodic:
				// Triggered periodic scans ride out an abort silently;
				// the next backoff tick will simply retry.
				e.requeueAfterAbort(c)
				return
			default:
				e.finishActive(c, ErrCanceled, nil)
			}
		}
		c.state = deviceIdle
	}
}

// requeueAfterAbort discards the currently active periodic request
// without delivering its callbacks (an abort is not a result), frees its
// radio work-queue slot, and re-arms the periodic timer with the interval
// reset to its initial value (see onPeriodicInterference), so scanning
// resumes rather than stalling.
func (e *Engine) requeueAfterAbort(c *scanContext) {
	r := c.active
	c.active = nil
	if r == nil {
		return
	}
	delete(e.requests, r.id)
	if r.hasWorkID {
		e.radio.Done(r.workID)
		r.hasWorkID = false
	}
	e.onPeriodicInterference(c)
}

// finishActive completes whatever request is currently driving c's
// radio, delivering err/bsses (or ErrCanceled if it had been canceled
// mid-flight), then advances the queue.
func (e *Engine) finishActive(c *scanContext, err error, bsses []*ieee80211.BSS) {
	r := c.active
	c.active = nil
	if r == nil {
		return
	}

	if r.canceled() {
		err = ErrCanceled
		bsses = nil
	}

	if r.hasWorkID {
		e.radio.Done(r.workID)
		r.hasWorkID = false
	}

	if r.periodic {
		e.onPeriodicResult(c, err)
	}

	e.finishRequest(r, err, bsses)
	e.kick(context.Background(), c)
}

// onPeriodicResult applies the backoff rule: every clean completion
// (success or failure reported by our own request) doubles the
// interval up to the cap, since K counts consecutive completions, not
// consecutive successes. The next tick is armed either way.
func (e *Engine) onPeriodicResult(c *scanContext, err error) {
	c.periodic.hasCurrent = false
	if !c.periodic.enabled {
		return
	}
	next := c.periodic.interval * 2
	if next > c.periodic.maxInterval {
		next = c.periodic.maxInterval
	}
	c.periodic.interval = next
	obs.PeriodicInterval.WithLabelValues(deviceLabel(c.dev)).Set(c.periodic.interval.Seconds())
	e.armPeriodicTimer(c, 0)
}

// onPeriodicInterference resets the backoff interval to its initial
// value after an externally triggered scan steps on our periodic
// request (requeueAfterAbort): per spec, the doubling only applies
// "after K consecutive completions without external interference".
func (e *Engine) onPeriodicInterference(c *scanContext) {
	c.periodic.hasCurrent = false
	if !c.periodic.enabled {
		return
	}
	c.periodic.interval = c.periodic.initial
	obs.PeriodicInterval.WithLabelValues(deviceLabel(c.dev)).Set(c.periodic.interval.Seconds())
	e.armPeriodicTimer(c, 0)
}

// finishRequest delivers a request's terminal callback exactly once and
// removes it from the engine's index.
func (e *Engine) finishRequest(r *request, err error, bsses []*ieee80211.BSS) {
	if r.state == stateCompleted {
		return
	}
	r.state = stateCompleted
	delete(e.requests, r.id)

	obs.ScansCompleted.WithLabelValues(deviceLabel(r.ctx.dev), completionResultLabel(err)).Inc()
	obs.BSSesDiscovered.WithLabelValues(deviceLabel(r.ctx.dev)).Add(float64(len(bsses)))

	if r.callbacks == nil {
		return
	}
	r.inCallback = true
	r.callbacks.OnDone(err, bsses, r.params.Freqs)
	r.inCallback = false
	r.callbacks.Destroy()
}

func completionResultLabel(err error) string {
	switch err {
	case nil:
		return "ok"
	case ErrCanceled:
		return "canceled"
	case ErrAgain:
		return "retry"
	default:
		return "error"
	}
}
