package scan

import (
	"github.com/airlayer/scand/internal/radioqueue"
	"github.com/airlayer/scand/internal/transport"
)

// RequestID identifies a scan request for the lifetime of the process.
type RequestID uint64

// requestState tracks where a request sits in its lifecycle. Most of the
// flag bits the design note mentions (canceled, passive, started,
// periodic, triggered, in_callback) collapse into this single enum plus
// the inCallback guard below, since most combinations are mutually
// exclusive in practice.
type requestState int

const (
	stateQueued requestState = iota
	stateTriggered
	stateCompleted
	stateCanceled
)

// request is one queued or in-flight scan operation within a context.
// A request never outlives the context that created it; ctx is a
// non-owning back-reference used only while the request is live.
type request struct {
	id  RequestID
	ctx *scanContext

	params    ScanParameters
	callbacks Callbacks

	passive  bool // true for a plain passive scan (no SCAN_SSIDS at all)
	periodic bool // issued by the periodic sub-state; queued like any other request

	state requestState

	// inCallback guards against reentrant Cancel/Remove calls made from
	// inside OnTrigger/OnDone for this same request.
	inCallback bool

	// fragments holds the remaining transport-level commands still to be
	// sent for this request, in order, when the command builder split it
	// (hidden-SSID fragmentation). The first element is the one either
	// pending acknowledgement or about to be sent.
	fragments []transport.ScanParams

	// pendingCmd is the transport command id of the fragment currently
	// awaiting acknowledgement, if any.
	pendingCmd   transport.CommandID
	hasPendingCmd bool

	startTSF uint64
	hasStartTSF bool

	// workID is this request's handle in the radio work queue, used to
	// remove it if canceled before it reaches the front.
	workID    radioqueue.ID
	hasWorkID bool
}

func (r *request) canceled() bool { return r.state == stateCanceled }
