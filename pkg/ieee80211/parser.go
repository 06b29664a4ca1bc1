package ieee80211

// Parse decodes an 802.11 information-element stream into a BSS record.
// bssid, freq, capability and signalMBm have already been validated by the
// transport's netlink attribute decoder (BSS_BSSID/BSS_FREQUENCY/
// BSS_SIGNAL_MBM length checks happen there, since those are attribute-
// level invariants, not IE-level ones). This function enforces the
// remaining, IE-level invariant: a BSS with no SSID element at all is a
// parse failure. A present-but-empty SSID element (hidden network) is
// accepted.
//
// Unrecognized tags are skipped. Malformed individual elements (wrong
// length for their semantics) are ignored, without a log message, rather
// than failing the whole record; only a missing or oversized SSID fails it.
func Parse(bssid [6]byte, freq uint32, capability uint16, signalMBm int32, ies []byte, source FrameKind) (*BSS, error) {
	b := &BSS{
		BSSID:       bssid,
		Frequency:   freq,
		Capability:  capability,
		SignalMBm:   signalMBm,
		Utilization: UnknownUtilization,
		Source:      source,
	}

	haveSSID := false

	iterateIEs(ies, func(tag uint8, val []byte) {
		switch tag {
		case tagSSID:
			if len(val) > 32 {
				// Longer than the max SSID length is a parse failure for
				// the whole record, even when a valid SSID element came
				// earlier; parseFailed makes the post-walk check reject it.
				b.HasSSID = false
				haveSSID = false
				b.parseFailed = true
				return
			}
			if !haveSSID {
				b.SSID = append([]byte(nil), val...)
				b.HasSSID = true
				haveSSID = true
			}

		case tagRSN:
			if b.RSNE == nil {
				b.RSNE = dup(tag, val)
			}

		case tagRSNX:
			if b.RSNXE == nil {
				b.RSNXE = dup(tag, val)
			}

		case tagBSSLoad:
			if u, ok := parseBSSLoadUtilization(val); ok {
				b.Utilization = u
			}

		case tagVendor:
			parseVendorIE(b, val)

		case tagMobilityDomain:
			if len(val) == 3 && !b.HasMobilityDomain {
				copy(b.MobilityDomain[:], val)
				b.HasMobilityDomain = true
			}

		case tagRMEnabledCapabilities:
			if len(val) == 5 {
				b.RMNeighborReport = val[0]&0x01 != 0
			}

		case tagCountry:
			if len(val) >= 6 {
				copy(b.Country[:], val[:3])
				b.HasCountry = true
			}

		case tagHTCapabilities:
			b.HTCapable = true

		case tagVHTCapabilities:
			b.VHTCapable = true

		case tagAdvertisementProtocol:
			if parseAdvertisementProtocolANQP(val) {
				b.ANQPCapable = true
			}

		case tagInterworking:
			switch len(val) {
			case 9:
				copy(b.HESSID[:], val[3:9])
				b.HasHESSID = true
			case 7:
				copy(b.HESSID[:], val[1:7])
				b.HasHESSID = true
			}

		case tagRoamingConsortium:
			if b.RoamingConsortium == nil {
				b.RoamingConsortium = dup(tag, val)
			}

		case tagExtendedCapabilities:
			b.ProxyARP = extCapBit(val, 12)
		}
	})

	if b.parseFailed || !haveSSID {
		return nil, ErrMalformedBSS
	}

	extractWSC(b, ies)
	classifyP2P(b, ies)

	return b, nil
}

// parseBSSLoadUtilization reads the channel-utilization octet (offset 2)
// from a BSS Load element. Malformed elements are ignored, per spec:
// "warn and continue on malformed".
func parseBSSLoadUtilization(val []byte) (uint8, bool) {
	if len(val) < 3 {
		return 0, false
	}
	return val[2], true
}

// extCapBit reads bit n (0-indexed from the low bit of byte 0) of an
// Extended Capabilities element, treating a field shorter than required as
// zero-extended.
func extCapBit(val []byte, n int) bool {
	byteIdx := n / 8
	bitIdx := uint(n % 8)
	if byteIdx >= len(val) {
		return false
	}
	return val[byteIdx]&(1<<bitIdx) != 0
}

// parseAdvertisementProtocolANQP walks the Advertisement Protocol element's
// tuples looking for an ANQP protocol ID (0). Each tuple is 1 byte of
// query-response info followed by 1 byte protocol ID. An unrecognized
// tuple type (anything other than ANQP, which is the only one this parser
// understands) terminates the walk, per spec.
func parseAdvertisementProtocolANQP(val []byte) bool {
	const anqpProtocolID = 0
	offset := 0
	for offset+2 <= len(val) {
		protocolID := val[offset+1]
		if protocolID == anqpProtocolID {
			return true
		}
		// Any other protocol ID is "unknown" to this parser; stop here
		// rather than guess at tuple boundaries beyond the ones we know.
		return false
	}
	return false
}
