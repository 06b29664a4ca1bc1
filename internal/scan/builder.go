package scan

import "github.com/airlayer/scand/internal/transport"

// Wire-format tag values the builder needs to assemble extra IEs. These
// mirror pkg/ieee80211's tag table but are kept local since the builder
// only ever writes them, never parses them back.
const (
	tagExtendedCapabilities = 127
	tagInterworking         = 107
)

// ieee80211NonCCKRates is the 802.11 supported-rates set (500 kb/s units,
// per IEEE 802.11-2020 Table 9-99) with the four 802.11b-only CCK rates
// (1, 2, 5.5, 11 Mb/s -> 2, 4, 11, 22) excluded, for attachment alongside
// NL80211_ATTR_TX_NO_CCK_RATE so a CCK-incapable probe never advertises a
// rate the radio won't actually send at.
var ieee80211NonCCKRates = []byte{12, 18, 24, 36, 48, 72, 96, 108}

// buildExtraIE assembles the probe-request IE block in the strict order
// the radio expects: Extended Capabilities first (copied verbatim from
// the radio's advertised value), then a one-byte Interworking element
// when the radio advertises support for it, then whatever the caller
// supplied, last.
func buildExtraIE(p ScanParameters, radio RadioCapabilities) []byte {
	var out []byte

	if len(radio.ExtCapabilities) > 0 {
		out = append(out, tagExtendedCapabilities, byte(len(radio.ExtCapabilities)))
		out = append(out, radio.ExtCapabilities...)
	}

	if radio.SupportsInterworking() {
		out = append(out, tagInterworking, 1, 0)
	}

	if len(p.ExtraIE) > 0 {
		out = append(out, p.ExtraIE...)
	}

	return out
}

// chunkSSIDs splits ssids into groups of at most max, appending a
// trailing empty (broadcast) SSID to the final group if there's room,
// or as its own trailing group otherwise.
func chunkSSIDs(ssids [][]byte, max int) [][][]byte {
	if max <= 0 {
		max = len(ssids) + 1
	}

	var groups [][][]byte
	for len(ssids) > 0 {
		n := max
		if n > len(ssids) {
			n = len(ssids)
		}
		group := append([][]byte{}, ssids[:n]...)
		ssids = ssids[n:]
		groups = append(groups, group)
	}

	last := groups[len(groups)-1]
	if len(last) < max {
		groups[len(groups)-1] = append(last, nil)
	} else {
		groups = append(groups, [][]byte{nil})
	}
	return groups
}

// buildFragments turns one logical scan request into the ordered list of
// transport-level commands needed to send it, fragmenting the combined
// SSID set (known hidden networks the caller wants probed directly, plus
// any explicit direct-probe SSID) against the radio's MaxSSIDsPerScan.
//
// Only the first fragment carries the caller's Flush request; later
// fragments always scan without flushing so they accumulate into the
// same in-kernel result set. The final fragment appends a trailing
// empty SSID so the radio also performs a broadcast probe. With no SSIDs
// at all it returns a single command without SCAN_SSIDS (a passive
// scan); for an active request the engine adds the broadcast SSID to
// that command itself (see Engine.kick).
func buildFragments(p ScanParameters, radio RadioCapabilities, hiddenSSIDs [][]byte) []transport.ScanParams {
	extraIE := buildExtraIE(p, radio)

	var ssids [][]byte
	ssids = append(ssids, hiddenSSIDs...)
	if p.HasSSID && len(p.SSID) > 0 {
		ssids = append(ssids, p.SSID)
	}

	base := func(ssidsChunk [][]byte, flush bool) transport.ScanParams {
		sp := transport.ScanParams{
			Flush:             flush,
			RandomizeMAC:      p.RandomizeMACHint && radio.SupportsRandomMAC,
			ExtraIE:           extraIE,
			NoCCKRates:        p.NoCCKRates,
			Duration:          p.Duration,
			DurationMandatory: p.DurationMandatory && radio.SupportsDuration,
			SSIDs:             ssidsChunk,
		}
		if p.NoCCKRates {
			sp.SupportedRates = ieee80211NonCCKRates
		}
		if p.Freqs != nil {
			sp.Freqs = p.Freqs.Slice()
		}
		if p.HasSourceMAC && radio.SupportsRandomMAC {
			sp.SourceMAC = p.SourceMAC
			sp.HasSourceMAC = true
		}
		return sp
	}

	if len(ssids) == 0 {
		// Passive: no SSIDs at all, never fragmented.
		return []transport.ScanParams{base(nil, p.Flush)}
	}

	groups := chunkSSIDs(ssids, radio.MaxSSIDsPerScan)

	fragments := make([]transport.ScanParams, len(groups))
	for i, g := range groups {
		fragments[i] = base(g, p.Flush && i == 0)
	}
	return fragments
}
