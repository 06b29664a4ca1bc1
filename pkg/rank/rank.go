// Package rank implements the pure BSS ranking function used to order scan
// results: a rough proxy for "how good a connection candidate is this AP",
// derived from estimated data rate, band, and channel congestion.
package rank

import "github.com/airlayer/scand/pkg/ieee80211"

const (
	maxRate = 2.34e9 // reference rate (802.11ac 3-stream VHT160, MCS 9) that maps to rank 65535; higher rates clamp

	busyUtilization = 192
	quietUtilization = 63

	busyFactor = 0.8
	quietFactor = 1.2

	fiveGHzThreshold = 4000
)

// Compute maps a BSS record to a comparable rank. band5GHzModifier is the
// configured Rank.BandModifier5Ghz value (default 1.0), applied only to
// BSSes above the 2.4 GHz band.
func Compute(b *ieee80211.BSS, band5GHzModifier float64) uint16 {
	r := (float64(b.DataRate) / maxRate) * 65535

	if b.Frequency > fiveGHzThreshold {
		r *= band5GHzModifier
	}

	switch {
	case b.Utilization >= busyUtilization:
		r *= busyFactor
	case b.Utilization <= quietUtilization:
		r *= quietFactor
	}

	return clampUint16(r)
}

func clampUint16(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 65535 {
		return 65535
	}
	return uint16(v)
}

// Compare orders BSSes by rank descending; on an equal rank, the stronger
// signal strength (higher SignalMBm) sorts first. This is the
// bss_rank_compare public API helper.
func Compare(a, b *ieee80211.BSS) int {
	switch {
	case a.Rank > b.Rank:
		return -1
	case a.Rank < b.Rank:
		return 1
	case a.SignalMBm > b.SignalMBm:
		return -1
	case a.SignalMBm < b.SignalMBm:
		return 1
	default:
		return 0
	}
}
