package scan

import (
	"github.com/airlayer/scand/pkg/freqset"
	"github.com/airlayer/scand/pkg/ieee80211"
)

// ScanParameters enumerates the options a caller can set on a scan
// request, per the scan command builder's input table.
type ScanParameters struct {
	Freqs *freqset.Set // nil means "every supported frequency"

	SSID    []byte // a single explicit probe SSID (direct probe); nil/empty for none
	HasSSID bool

	Flush bool

	ExtraIE []byte

	// RandomizeMACHint requests MAC randomization if the radio supports
	// it and randomization is not disabled by configuration.
	RandomizeMACHint bool

	SourceMAC    [6]byte
	HasSourceMAC bool

	NoCCKRates bool

	Duration          uint16
	DurationMandatory bool
}

// Callbacks collapses a request's trigger/completion/destructor triple
// into a single interface, per the design note that callback-and-opaque-
// pointer pairs collapse into one object held per request.
type Callbacks interface {
	// OnTrigger fires at most once per request, on the first successful
	// fragment acknowledgement.
	OnTrigger(err error)

	// OnDone fires exactly once per request unless canceled before it
	// was ever triggered. Returning true transfers ownership of bsses to
	// the caller; returning false tells the engine to discard them.
	OnDone(err error, bsses []*ieee80211.BSS, freqs *freqset.Set) bool

	// Destroy is the single authoritative cleanup signal, called exactly
	// once regardless of how the request ends.
	Destroy()
}

// CallbackFuncs adapts three plain functions into a Callbacks value, for
// callers that don't want to define a type. A nil field is treated as a
// no-op.
type CallbackFuncs struct {
	Trigger  func(err error)
	Done     func(err error, bsses []*ieee80211.BSS, freqs *freqset.Set) bool
	Destroy_ func()
}

func (c CallbackFuncs) OnTrigger(err error) {
	if c.Trigger != nil {
		c.Trigger(err)
	}
}

func (c CallbackFuncs) OnDone(err error, bsses []*ieee80211.BSS, freqs *freqset.Set) bool {
	if c.Done != nil {
		return c.Done(err, bsses, freqs)
	}
	return false
}

func (c CallbackFuncs) Destroy() {
	if c.Destroy_ != nil {
		c.Destroy_()
	}
}
