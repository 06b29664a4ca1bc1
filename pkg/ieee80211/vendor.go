package ieee80211

// parseVendorIE dispatches a Vendor-Specific element (tag 221) on its
// 3-byte OUI and 1-byte type, filling in the BSS fields the spec assigns
// to each recognized vendor payload. An element that matches none of the
// known OUI/type pairs is left untouched (skipped), as an unrecognized tag
// would be.
func parseVendorIE(b *BSS, val []byte) {
	if len(val) < 4 {
		return
	}
	oui := [3]byte{val[0], val[1], val[2]}
	vendorType := val[3]
	body := val[4:]

	switch {
	case oui == ouiMicrosoft && vendorType == vendorTypeWPA:
		if b.WPA == nil {
			b.WPA = dup(tagVendor, val)
		}

	case oui == ouiWFA && vendorType == vendorTypeOSEN:
		if b.OSEN == nil {
			b.OSEN = dup(tagVendor, val)
		}

	case oui == ouiWFA && vendorType == vendorTypeHS20Indication:
		b.HS20Capable = true
		if len(body) >= 1 {
			b.HS20Version = body[0] & 0x0f
			b.DGAFDisable = body[0]&0x10 != 0
		}

	case oui == ouiWFA && vendorType == vendorTypeOWETransition:
		parseOWETransition(b, body)

	case oui == ouiWFA && vendorType == vendorTypeDPPConfigurator:
		b.DPPConfigurator = true

	case oui == ouiWFA && vendorType == vendorTypeWFD:
		if b.WFD == nil {
			b.WFD = dup(tagVendor, val)
		}

	case oui == ouiWFA && vendorType == vendorTypeNetworkCost:
		if len(body) >= 2 {
			b.CostLevel = body[0]
			b.CostFlags = body[1]
			b.HasCost = true
		}

	case oui == ouiIEEE8021 && vendorType == vendorTypeSAEGrp:
		b.ForceDefaultSAEGroup = true

	case oui == ouiMicrosoft && vendorType == vendorTypeWSC:
		if b.WSC == nil {
			b.WSC = dup(tagVendor, val)
		}
	}
}

// parseOWETransition decodes the OWE Transition Mode element body: 6-byte
// BSSID (ignored here, carried by the transition peer's own record),
// SSID length + SSID, band info, operating class, channel.
func parseOWETransition(b *BSS, body []byte) {
	if len(body) < 7 {
		return
	}
	ssidLen := int(body[6])
	if 7+ssidLen > len(body) {
		return
	}
	trans := &OWETransition{
		SSID: append([]byte(nil), body[7:7+ssidLen]...),
	}
	rest := body[7+ssidLen:]
	if len(rest) >= 2 {
		trans.OperatingClass = rest[0]
		trans.Channel = rest[1]
	}
	b.OWETrans = trans
}

// extractWSC walks the stream again for a Microsoft WSC vendor element
// when the main tag walk left b.WSC unset. The main walk matches the same
// elements, so on the stream Parse already walked this finds nothing new.
// Its WPS attributes are not parsed here. The decoded
// attribute set is exposed to callers via WPS(), not stored directly on
// BSS, matching the fact that the spec treats the WSC payload as an opaque
// blob on the record itself.
func extractWSC(b *BSS, ies []byte) {
	if b.WSC != nil {
		return
	}
	iterateIEs(ies, func(tag uint8, val []byte) {
		if b.WSC != nil || tag != tagVendor || len(val) < 4 {
			return
		}
		if val[0] == ouiMicrosoft[0] && val[1] == ouiMicrosoft[1] && val[2] == ouiMicrosoft[2] && val[3] == vendorTypeWSC {
			b.WSC = dup(tagVendor, val)
		}
	})
}

// classifyP2P reclassifies a beacon as a probe response when its stream
// carries a P2P IE (Wi-Fi Alliance vendor type 0x09). Only the element's
// presence is checked; its P2P attributes are not parsed. Per the
// Open Question in the design notes, this implementation treats the
// absence of an information-elements block as ies_len=0 and skips the
// reclassification heuristic entirely when there is nothing to parse.
func classifyP2P(b *BSS, ies []byte) {
	if b.Source != FrameBeacon || len(ies) == 0 {
		return
	}
	const vendorTypeP2P = 0x09
	found := false
	iterateIEs(ies, func(tag uint8, val []byte) {
		if found || tag != tagVendor || len(val) < 4 {
			return
		}
		if val[0] == ouiWFA[0] && val[1] == ouiWFA[1] && val[2] == ouiWFA[2] && val[3] == vendorTypeP2P {
			found = true
		}
	})
	if found {
		b.Source = FrameProbeResponse
	}
}
