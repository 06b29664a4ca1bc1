package ieee80211

import "fmt"

// RSNInfo is the decoded form of an RSN (WPA2/WPA3) information element.
type RSNInfo struct {
	Version         uint16
	GroupCipher     string
	PairwiseCiphers []string
	AKMSuites       []string
	Capabilities    RSNCapabilities
}

// RSNCapabilities is the decoded RSN capabilities bitfield.
type RSNCapabilities struct {
	PreAuth          bool
	NoPairwise       bool
	PTKSAReplayCount uint8
	GTKSAReplayCount uint8
	MFPRequired      bool
	MFPCapable       bool
	PeerKeyEnabled   bool
}

// RSNInfo decodes the BSS's stored RSN element, if any. Returns nil if the
// BSS carried no RSN element. This is the public bss_get_rsn_info helper.
func (b *BSS) RSNInfo() (*RSNInfo, error) {
	if len(b.RSNE) < 2 {
		return nil, nil
	}
	return parseRSNBody(b.RSNE[2:])
}

func parseRSNBody(data []byte) (*RSNInfo, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("ieee80211: RSN element too short")
	}

	rsn := &RSNInfo{}
	offset := 0

	rsn.Version = uint16(data[offset]) | uint16(data[offset+1])<<8
	offset += 2

	if offset+4 <= len(data) {
		rsn.GroupCipher = cipherSuiteName(data[offset : offset+4])
		offset += 4
	}

	if offset+2 <= len(data) {
		count := int(data[offset]) | int(data[offset+1])<<8
		offset += 2
		for i := 0; i < count && offset+4 <= len(data); i++ {
			rsn.PairwiseCiphers = append(rsn.PairwiseCiphers, cipherSuiteName(data[offset:offset+4]))
			offset += 4
		}
	}

	if offset+2 <= len(data) {
		count := int(data[offset]) | int(data[offset+1])<<8
		offset += 2
		for i := 0; i < count && offset+4 <= len(data); i++ {
			rsn.AKMSuites = append(rsn.AKMSuites, akmSuiteName(data[offset:offset+4]))
			offset += 4
		}
	}

	if offset+2 <= len(data) {
		caps := uint16(data[offset]) | uint16(data[offset+1])<<8
		rsn.Capabilities = decodeRSNCapabilities(caps)
	}

	return rsn, nil
}

func cipherSuiteName(data []byte) string {
	if len(data) < 4 {
		return "UNKNOWN"
	}
	switch data[3] {
	case 1:
		return "WEP-40"
	case 2:
		return "TKIP"
	case 4:
		return "CCMP"
	case 5:
		return "WEP-104"
	case 8:
		return "GCMP-128"
	case 9:
		return "GCMP-256"
	case 10:
		return "CCMP-256"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", data[3])
	}
}

func akmSuiteName(data []byte) string {
	if len(data) < 4 {
		return "UNKNOWN"
	}
	switch data[3] {
	case 1:
		return "802.1X"
	case 2:
		return "PSK"
	case 3:
		return "FT-802.1X"
	case 4:
		return "FT-PSK"
	case 5:
		return "802.1X-SHA256"
	case 6:
		return "PSK-SHA256"
	case 8:
		return "SAE"
	case 9:
		return "FT-SAE"
	case 18:
		return "OWE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", data[3])
	}
}

func decodeRSNCapabilities(caps uint16) RSNCapabilities {
	return RSNCapabilities{
		PreAuth:          caps&0x0001 != 0,
		NoPairwise:       caps&0x0002 != 0,
		PTKSAReplayCount: uint8((caps >> 2) & 0x03),
		GTKSAReplayCount: uint8((caps >> 4) & 0x03),
		MFPRequired:      caps&0x0040 != 0,
		MFPCapable:       caps&0x0080 != 0,
		PeerKeyEnabled:   caps&0x0200 != 0,
	}
}
