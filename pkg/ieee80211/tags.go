package ieee80211

import "github.com/google/gopacket/layers"

// Information element tag numbers as assigned by IEEE 802.11. Where
// gopacket/layers already names a tag (SSID, RSN, vendor-specific) we reuse
// its constant so the two packages agree on wire values; the remaining tags
// this parser understands are not modeled by gopacket/layers and are given
// their own names here.
const (
	tagSSID       = uint8(layers.DOT11InformationElementIDSSID)
	tagRSN        = uint8(layers.DOT11InformationElementIDRSInfo)
	tagVendor     = uint8(layers.DOT11InformationElementIDVendor)
	tagDSParams   = uint8(layers.DOT11InformationElementIDDSSet)

	tagCountry                 = uint8(7)
	tagBSSLoad                 = uint8(11)
	tagChallenge               = uint8(16)
	tagHTCapabilities          = uint8(45)
	tagRMEnabledCapabilities   = uint8(70)
	tagMobilityDomain          = uint8(54)
	tagInterworking            = uint8(107)
	tagAdvertisementProtocol   = uint8(108)
	tagRoamingConsortium       = uint8(111)
	tagVHTCapabilities         = uint8(191)
	tagExtendedCapabilities    = uint8(127)
	tagRSNX                    = uint8(244)
)

// FrameKind identifies the management-frame subtype a BSS record was parsed
// from. Mirrors the subset of layers.DOT11Type management subtypes relevant
// to scanning.
type FrameKind int

const (
	FrameBeacon FrameKind = iota
	FrameProbeResponse
	FrameProbeRequest
)

// dot11Subtype maps a FrameKind onto the corresponding gopacket management
// subtype constant, used by callers that hand this package raw frames
// already classified by a DOT11 layer.
func dot11Subtype(k FrameKind) layers.DOT11Type {
	switch k {
	case FrameBeacon:
		return layers.DOT11TypeMgmtBeacon
	case FrameProbeResponse:
		return layers.DOT11TypeMgmtProbeResp
	case FrameProbeRequest:
		return layers.DOT11TypeMgmtProbeReq
	}
	return layers.DOT11TypeMgmtBeacon
}

func (k FrameKind) String() string {
	switch k {
	case FrameBeacon:
		return "beacon"
	case FrameProbeResponse:
		return "probe-response"
	case FrameProbeRequest:
		return "probe-request"
	default:
		return "unknown"
	}
}

// Vendor OUIs dispatched by the IE parser.
var (
	ouiMicrosoft = [3]byte{0x00, 0x50, 0xf2} // WPA-v1, WPS
	ouiWFA       = [3]byte{0x50, 0x6f, 0x9a} // Wi-Fi Alliance: OSEN, HS20, OWE transition, DPP, WFD

	// Microsoft (00:50:f2) vendor types.
	vendorTypeWPA = uint8(1)
	vendorTypeWSC = uint8(4)

	// Wi-Fi Alliance (50:6f:9a) vendor types.
	vendorTypeOSEN            = uint8(0x12)
	vendorTypeHS20Indication  = uint8(0x10)
	vendorTypeOWETransition   = uint8(0x1c)
	vendorTypeDPPConfigurator = uint8(0x1a)
	vendorTypeWFD             = uint8(0x0a)
	vendorTypeNetworkCost     = uint8(0x1b)

	// SAE default-group vendor OUI/type (00:0f:ac / 23), mirrors the
	// well-known RSN OUI used for cipher/AKM suites.
	ouiIEEE8021      = [3]byte{0x00, 0x0f, 0xac}
	vendorTypeSAEGrp = uint8(23)
)
