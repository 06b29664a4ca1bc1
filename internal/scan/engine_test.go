package scan

import (
	"context"
	"testing"
	"time"

	"github.com/airlayer/scand/internal/transport"
	"github.com/airlayer/scand/pkg/freqset"
	"github.com/airlayer/scand/pkg/ieee80211"
)

const testDev transport.WDEV = 1

func newTestEngine(t *testing.T, known HiddenSSIDSource) (*Engine, *transport.Mock) {
	t.Helper()
	m := transport.NewMock()
	e := New(m, known, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	t.Cleanup(func() {
		cancel()
		e.Stop()
	})
	e.Add(testDev, RadioCapabilities{MaxSSIDsPerScan: 4})
	return e, m
}

// recorder is a Callbacks implementation that records every call for
// assertions.
type recorder struct {
	triggered chan error
	done      chan doneCall
	destroyed chan struct{}
}

type doneCall struct {
	err   error
	bsses []*ieee80211.BSS
}

func newRecorder() *recorder {
	return &recorder{
		triggered: make(chan error, 1),
		done:      make(chan doneCall, 1),
		destroyed: make(chan struct{}, 1),
	}
}

func (r *recorder) OnTrigger(err error) { r.triggered <- err }
func (r *recorder) OnDone(err error, bsses []*ieee80211.BSS, freqs *freqset.Set) bool {
	r.done <- doneCall{err: err, bsses: bsses}
	return true
}
func (r *recorder) Destroy() { r.destroyed <- struct{}{} }

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		var zero T
		return zero
	}
}

// S1: a plain passive scan triggers once, completes once, with the
// kernel's dumped BSSes delivered to OnDone.
func TestPassiveScanLifecycle(t *testing.T) {
	e, m := newTestEngine(t, nil)
	rec := newRecorder()

	bss := &ieee80211.BSS{BSSID: [6]byte{1, 2, 3, 4, 5, 6}, HasSSID: true, SSID: []byte("net")}
	m.ScanDumpFn = func(dev transport.WDEV) ([]transport.ScanDumpResult, error) {
		return []transport.ScanDumpResult{{BSS: bss}}, nil
	}

	id, err := e.Passive(testDev, rec)
	if err != nil {
		t.Fatalf("Passive: %v", err)
	}

	call := waitFor(t, m.Triggered(), "trigger call")
	m.Reply(transport.Ack{ID: call.ID, StartTSF: 42})

	if trigErr := waitFor(t, rec.triggered, "OnTrigger"); trigErr != nil {
		t.Fatalf("OnTrigger err = %v", trigErr)
	}

	tsf, ok := e.GetTriggeredTime(id)
	if !ok || tsf != 42 {
		t.Fatalf("GetTriggeredTime = %v, %v; want 42, true", tsf, ok)
	}

	m.Emit(transport.Event{Kind: transport.EventNewScanResults, WDEV: testDev})

	dc := waitFor(t, rec.done, "OnDone")
	if dc.err != nil {
		t.Fatalf("OnDone err = %v", dc.err)
	}
	if len(dc.bsses) != 1 || dc.bsses[0] != bss {
		t.Fatalf("OnDone bsses = %v, want [bss]", dc.bsses)
	}
	waitFor(t, rec.destroyed, "Destroy")
}

type fakeHiddenSource struct{ ssids []string }

func (f *fakeHiddenSource) HiddenSSIDs(context.Context) ([]string, error) { return f.ssids, nil }
func (f *fakeHiddenSource) HasHiddenSSID(context.Context) (bool, error)   { return len(f.ssids) > 0, nil }

// S2: hidden-SSID fragmentation. With MaxSSIDsPerScan=4 and 5 known
// hidden networks, the request must be split into two fragments, only
// the first carrying Flush, and the scan must not complete until both
// have been acked.
func TestHiddenSSIDFragmentation(t *testing.T) {
	hidden := &fakeHiddenSource{ssids: []string{"a", "b", "c", "d", "e"}}
	e, m := newTestEngine(t, hidden)
	rec := newRecorder()
	m.ScanDumpFn = func(transport.WDEV) ([]transport.ScanDumpResult, error) { return nil, nil }

	if _, err := e.ActiveFull(testDev, ScanParameters{Flush: true}, rec); err != nil {
		t.Fatalf("ActiveFull: %v", err)
	}

	first := waitFor(t, m.Triggered(), "first fragment")
	if !first.Params.Flush {
		t.Fatalf("first fragment should carry Flush")
	}
	if len(first.Params.SSIDs) != 4 {
		t.Fatalf("first fragment SSIDs = %d, want 4", len(first.Params.SSIDs))
	}
	m.Reply(transport.Ack{ID: first.ID})
	waitFor(t, rec.triggered, "OnTrigger")

	second := waitFor(t, m.Triggered(), "second fragment")
	if second.Params.Flush {
		t.Fatalf("second fragment must not carry Flush")
	}
	m.Reply(transport.Ack{ID: second.ID})

	m.Emit(transport.Event{Kind: transport.EventNewScanResults, WDEV: testDev})
	dc := waitFor(t, rec.done, "OnDone")
	if dc.err != nil {
		t.Fatalf("OnDone err = %v", dc.err)
	}
}

// S3: canceling a request before its trigger is acknowledged runs its
// destructor and never calls OnDone.
func TestCancelBeforeAck(t *testing.T) {
	e, m := newTestEngine(t, nil)
	rec := newRecorder()

	// Occupy the radio with an unrelated request first so the one under
	// test sits queued (not yet sent) when we cancel it.
	blocker := newRecorder()
	if _, err := e.Passive(testDev, blocker); err != nil {
		t.Fatalf("Passive (blocker): %v", err)
	}
	waitFor(t, m.Triggered(), "blocker trigger")

	id, err := e.Passive(testDev, rec)
	if err != nil {
		t.Fatalf("Passive: %v", err)
	}
	if err := e.Cancel(id); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	waitFor(t, rec.destroyed, "Destroy")
	select {
	case dc := <-rec.done:
		t.Fatalf("OnDone fired with err = %v; a request canceled before its trigger must not complete", dc.err)
	default:
	}
}

// S4: an external scan that flushes mid-flight (first fragment acked,
// second fragment sent but not yet acked) aborts our in-flight request
// with ErrAgain.
func TestExternalFlushAborts(t *testing.T) {
	hidden := &fakeHiddenSource{ssids: []string{"a", "b", "c", "d", "e"}}
	e, m := newTestEngine(t, hidden)
	rec := newRecorder()

	if _, err := e.ActiveFull(testDev, ScanParameters{}, rec); err != nil {
		t.Fatalf("ActiveFull: %v", err)
	}
	call := waitFor(t, m.Triggered(), "trigger")
	m.Reply(transport.Ack{ID: call.ID})
	waitFor(t, rec.triggered, "OnTrigger")
	waitFor(t, m.Triggered(), "second fragment")

	m.Emit(transport.Event{Kind: transport.EventNewScanResults, WDEV: testDev, Flush: true})

	dc := waitFor(t, rec.done, "OnDone")
	if dc.err != ErrAgain {
		t.Fatalf("OnDone err = %v, want ErrAgain", dc.err)
	}
}

// S5/S6-adjacent: periodic scanning survives an aborted scan by
// re-arming its next attempt rather than stalling, and PeriodicStop
// tears it down cleanly.
func TestPeriodicSurvivesAbortThenStops(t *testing.T) {
	e, m := newTestEngine(t, nil)
	rec := newRecorder()

	if err := e.PeriodicStart(testDev, 10*time.Millisecond, 40*time.Millisecond, rec); err != nil {
		t.Fatalf("PeriodicStart: %v", err)
	}

	call := waitFor(t, m.Triggered(), "periodic trigger 1")
	m.Reply(transport.Ack{ID: call.ID})
	m.Emit(transport.Event{Kind: transport.EventScanAborted, WDEV: testDev})

	// A second periodic attempt should follow after the backoff timer
	// fires, proving the abort didn't stall the schedule.
	waitFor(t, m.Triggered(), "periodic trigger 2")

	if err := e.PeriodicStop(testDev); err != nil {
		t.Fatalf("PeriodicStop: %v", err)
	}
}

// S4: -EBUSY on trigger must not fail the request. The context drops to
// Passive and the same work item sits untouched until the external
// scan's NEW_SCAN_RESULTS arrives, at which point the engine retries it
// and completes normally.
func TestBusyRetriesSameRequestOnNewScanResults(t *testing.T) {
	hidden := &fakeHiddenSource{ssids: []string{"known"}}
	e, m := newTestEngine(t, hidden)
	rec := newRecorder()
	m.ScanDumpFn = func(transport.WDEV) ([]transport.ScanDumpResult, error) { return nil, nil }

	if _, err := e.ActiveFull(testDev, ScanParameters{}, rec); err != nil {
		t.Fatalf("ActiveFull: %v", err)
	}

	first := waitFor(t, m.Triggered(), "active attempt")
	m.Reply(transport.Ack{ID: first.ID, Err: transport.ErrBusy})

	// No retry and no failure until the external scan finishes.
	select {
	case <-rec.done:
		t.Fatal("OnDone fired on -EBUSY; the request must not be failed")
	case call := <-m.Triggered():
		t.Fatalf("engine retriggered before NEW_SCAN_RESULTS arrived: %+v", call)
	case <-time.After(50 * time.Millisecond):
	}

	m.Emit(transport.Event{Kind: transport.EventNewScanResults, WDEV: testDev})

	retry := waitFor(t, m.Triggered(), "retried work item")
	if len(retry.Params.SSIDs) != len(first.Params.SSIDs) {
		t.Fatalf("retry SSIDs = %v, want the same work item as the original attempt %v", retry.Params.SSIDs, first.Params.SSIDs)
	}

	m.Reply(transport.Ack{ID: retry.ID})
	waitFor(t, rec.triggered, "OnTrigger")

	m.Emit(transport.Event{Kind: transport.EventNewScanResults, WDEV: testDev})
	dc := waitFor(t, rec.done, "OnDone")
	if dc.err != nil {
		t.Fatalf("OnDone err = %v", dc.err)
	}
}

// §4.5: a scan aborted before it was ever triggered (state still
// Queued) is retried by re-executing the same work item rather than
// being failed with ErrCanceled.
func TestAbortBeforeTriggerRetries(t *testing.T) {
	e, m := newTestEngine(t, nil)
	rec := newRecorder()

	// Occupy the radio so the request under test sits queued, not yet
	// triggered, when the abort arrives.
	blocker := newRecorder()
	if _, err := e.Passive(testDev, blocker); err != nil {
		t.Fatalf("Passive (blocker): %v", err)
	}
	blockerCall := waitFor(t, m.Triggered(), "blocker trigger")

	if _, err := e.Passive(testDev, rec); err != nil {
		t.Fatalf("Passive: %v", err)
	}

	// Finish the blocker so the request under test becomes active, then
	// abort it before acking its trigger.
	m.Reply(transport.Ack{ID: blockerCall.ID})
	waitFor(t, blocker.triggered, "blocker OnTrigger")
	m.Emit(transport.Event{Kind: transport.EventNewScanResults, WDEV: testDev})
	waitFor(t, blocker.done, "blocker OnDone")

	call := waitFor(t, m.Triggered(), "request under test trigger")
	m.Emit(transport.Event{Kind: transport.EventScanAborted, WDEV: testDev})

	retry := waitFor(t, m.Triggered(), "retried work item")
	if len(retry.Params.SSIDs) != len(call.Params.SSIDs) {
		t.Fatalf("retry SSIDs = %v, want the same work item %v", retry.Params.SSIDs, call.Params.SSIDs)
	}

	m.Reply(transport.Ack{ID: retry.ID})
	waitFor(t, rec.triggered, "OnTrigger")
	m.Emit(transport.Event{Kind: transport.EventNewScanResults, WDEV: testDev})
	dc := waitFor(t, rec.done, "OnDone")
	if dc.err != nil {
		t.Fatalf("OnDone err = %v, want nil", dc.err)
	}
}

// §4.7/property 8/S5: a triggered periodic scan's backoff interval
// doubles on every clean completion, independent of success or failure,
// up to the configured cap.
func TestPeriodicBackoffDoublesOnEachCompletion(t *testing.T) {
	e, m := newTestEngine(t, nil)
	rec := newRecorder()
	m.ScanDumpFn = func(transport.WDEV) ([]transport.ScanDumpResult, error) { return nil, nil }

	if err := e.PeriodicStart(testDev, 10*time.Millisecond, 60*time.Millisecond, rec); err != nil {
		t.Fatalf("PeriodicStart: %v", err)
	}
	t.Cleanup(func() { e.PeriodicStop(testDev) })

	// Drive four clean completions (10 -> 20 -> 40 -> 60, clamped) and
	// confirm the gap between consecutive triggers roughly doubles each
	// time instead of resetting to the initial interval.
	var starts []time.Time
	for i := 0; i < 4; i++ {
		call := waitFor(t, m.Triggered(), "periodic trigger")
		starts = append(starts, time.Now())
		m.Reply(transport.Ack{ID: call.ID})
		waitFor(t, rec.triggered, "periodic OnTrigger")
		m.Emit(transport.Event{Kind: transport.EventNewScanResults, WDEV: testDev})
		waitFor(t, rec.done, "periodic OnDone")
	}

	gapMs := func(i int) float64 { return starts[i].Sub(starts[i-1]).Seconds() * 1000 }
	if gapMs(2) < gapMs(1)*1.4 {
		t.Fatalf("backoff did not grow across completions: gaps = %.1fms, %.1fms, %.1fms", gapMs(1), gapMs(2), gapMs(3))
	}
}
