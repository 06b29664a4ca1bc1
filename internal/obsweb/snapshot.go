// Package obsweb exposes a read-only HTTP and WebSocket view of the scan
// engine's state: discovered BSSes, aggregate stats, and Prometheus
// metrics. It has no write path into the engine — scanning decisions are
// never driven from here, only observed.
package obsweb

import (
	"sync"
	"time"

	"github.com/airlayer/scand/pkg/ieee80211"
)

// BSSSnapshot is the JSON-serializable view of one discovered access
// point, trimmed to what an observability client needs.
type BSSSnapshot struct {
	BSSID       string `json:"bssid"`
	SSID        string `json:"ssid"`
	Hidden      bool   `json:"hidden"`
	Frequency   uint32 `json:"frequency"`
	SignalMBm   int32  `json:"signal_mbm"`
	Rank        uint16 `json:"rank"`
	HT          bool   `json:"ht_capable"`
	VHT         bool   `json:"vht_capable"`
	Security    string `json:"security"`
	Hotspot20   bool   `json:"hotspot20"`
	Interworking bool  `json:"interworking"`
}

func newBSSSnapshot(b *ieee80211.BSS) BSSSnapshot {
	return BSSSnapshot{
		BSSID:        b.BSSIDString(),
		SSID:         string(b.SSID),
		Hidden:       b.Hidden(),
		Frequency:    b.Frequency,
		SignalMBm:    b.SignalMBm,
		Rank:         b.Rank,
		HT:           b.HTCapable,
		VHT:          b.VHTCapable,
		Security:     securityLabel(b),
		Hotspot20:    b.HS20Capable,
		Interworking: b.ANQPCapable,
	}
}

func securityLabel(b *ieee80211.BSS) string {
	switch {
	case len(b.RSNE) > 0:
		return "RSN"
	case len(b.WPA) > 0:
		return "WPA"
	case len(b.OSEN) > 0:
		return "OSEN"
	default:
		return "OPEN"
	}
}

// Stats is the aggregated view of everything currently known, the
// scan-domain analogue of the teacher's system-wide stats snapshot.
type Stats struct {
	DeviceCount   int            `json:"device_count"`
	BSSCount      int            `json:"bss_count"`
	SecurityStats map[string]int `json:"security_stats"`
	HiddenCount   int            `json:"hidden_count"`
	LastUpdated   time.Time      `json:"updated_at"`
}

// IsStale reports whether the snapshot is older than ttl, letting a
// consumer distinguish "no APs in range" from "the engine has stopped
// reporting".
func (s Stats) IsStale(ttl time.Duration) bool {
	if s.LastUpdated.IsZero() {
		return true
	}
	return time.Since(s.LastUpdated) > ttl
}

// Store holds the most recent scan results per device, feeding both the
// HTTP snapshot endpoint and the WebSocket broadcaster. It is the only
// mutable state in this package and is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	byDev   map[uint64][]BSSSnapshot
	updated time.Time
}

// NewStore returns an empty snapshot store.
func NewStore() *Store {
	return &Store{byDev: make(map[uint64][]BSSSnapshot)}
}

// Update replaces the recorded results for dev, called by the engine's
// completion callback after every successful scan.
func (s *Store) Update(dev uint64, bsses []*ieee80211.BSS) {
	snaps := make([]BSSSnapshot, len(bsses))
	for i, b := range bsses {
		snaps[i] = newBSSSnapshot(b)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDev[dev] = snaps
	s.updated = time.Now()
}

// All returns every known BSS across every device.
func (s *Store) All() []BSSSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []BSSSnapshot
	for _, snaps := range s.byDev {
		out = append(out, snaps...)
	}
	return out
}

// Summary computes the aggregate Stats view over the current snapshot.
func (s *Store) Summary() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		DeviceCount:   len(s.byDev),
		SecurityStats: make(map[string]int),
		LastUpdated:   s.updated,
	}
	for _, snaps := range s.byDev {
		for _, b := range snaps {
			stats.BSSCount++
			stats.SecurityStats[b.Security]++
			if b.Hidden {
				stats.HiddenCount++
			}
		}
	}
	return stats
}
