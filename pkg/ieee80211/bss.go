package ieee80211

import "time"

// UnknownUtilization is the sentinel channel-utilization value meaning "not
// reported by this frame", set at BSS construction before the BSS Load IE
// (if any) overwrites it.
const UnknownUtilization = 127

// OWETransition describes the alternate SSID/channel advertised by an
// Opportunistic Wireless Encryption transition-mode AP.
type OWETransition struct {
	SSID           []byte
	OperatingClass uint8
	Channel        uint8
}

// BSS is the immutable, post-parse descriptor of one discovered access
// point. It is only ever produced by Parse; callers must not mutate a BSS
// after receiving one.
type BSS struct {
	BSSID [6]byte

	Frequency    uint32 // MHz
	Capability   uint16 // raw 802.11 capability bitfield
	SignalMBm    int32  // 1/100 dBm
	DataRate     uint64 // estimated peak data rate, bits/s
	Utilization  uint8  // 0-255, UnknownUtilization if not reported

	SSID    []byte // 0-32 bytes; present-but-empty means hidden
	HasSSID bool

	Source FrameKind

	// Opaque TLV copies, each including the original 2-byte tag+length
	// header, preserved verbatim for callers that need the raw bytes
	// (e.g. to forward into an association request).
	RSNE              []byte
	RSNXE             []byte
	WPA               []byte
	OSEN              []byte
	WSC               []byte
	RoamingConsortium []byte
	WFD               []byte

	HS20Capable     bool
	HS20Version     uint8
	DGAFDisable     bool

	OWETrans    *OWETransition
	DPPConfigurator bool

	HasMobilityDomain bool
	MobilityDomain    [3]byte

	HasCountry bool
	Country    [3]byte

	HasHESSID bool
	HESSID    [6]byte

	ANQPCapable bool

	RMNeighborReport bool

	HTCapable  bool
	VHTCapable bool

	CostLevel uint8
	CostFlags uint8
	HasCost   bool

	ProxyARP bool

	ForceDefaultSAEGroup bool

	ParentTSF  uint64
	LastSeen   time.Duration // not set by Parse or by the transport decoder

	Rank uint16

	parseFailed bool
}

// Hidden reports whether the SSID is empty or all-zero, the definition the
// engine uses to flag "needs active scan" and to enumerate probe targets.
func (b *BSS) Hidden() bool {
	if !b.HasSSID || len(b.SSID) == 0 {
		return true
	}
	for _, c := range b.SSID {
		if c != 0 {
			return false
		}
	}
	return true
}

// BSSIDString renders the BSSID as a colon-separated hex string.
func (b *BSS) BSSIDString() string {
	const hex = "0123456789abcdef"
	buf := make([]byte, 0, 17)
	for i, o := range b.BSSID {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, hex[o>>4], hex[o&0xf])
	}
	return string(buf)
}
