package scan

import "github.com/airlayer/scand/pkg/freqset"

// RadioCapabilities is the snapshot of one radio's advertised station-mode
// capabilities the command builder consults. It is supplied by the caller
// at context-creation time (typically populated from a GET_WIPHY dump) and
// treated as immutable for the life of the context.
type RadioCapabilities struct {
	// ExtCapabilities is the radio's advertised Extended Capabilities
	// field, copied verbatim into probe requests and consulted for the
	// Interworking bit (31).
	ExtCapabilities []byte

	SupportsRandomMAC bool
	MaxSSIDsPerScan   int
	SupportsDuration  bool

	// Bands lists representative center frequencies, one per supported
	// band, used only to size default frequency sets when a caller
	// doesn't specify one explicitly.
	Bands []uint32
}

// extCapBit reports whether bit n of the radio's Extended Capabilities
// field is set (zero-extended if the field is shorter than required).
func (r RadioCapabilities) extCapBit(n int) bool {
	byteIdx := n / 8
	bitIdx := uint(n % 8)
	if byteIdx >= len(r.ExtCapabilities) {
		return false
	}
	return r.ExtCapabilities[byteIdx]&(1<<bitIdx) != 0
}

// SupportsInterworking reports whether the radio's advertised Extended
// Capabilities set bit 31 (Interworking).
func (r RadioCapabilities) SupportsInterworking() bool {
	return r.extCapBit(31)
}

// DefaultFreqs returns a frequency set covering every band the radio
// supports, used when a caller doesn't restrict the scan to specific
// frequencies.
func (r RadioCapabilities) DefaultFreqs() *freqset.Set {
	return freqset.NewFromSlice(r.Bands)
}
