package obsweb

import (
	"testing"

	"github.com/airlayer/scand/pkg/ieee80211"
)

func TestStoreSummary(t *testing.T) {
	store := NewStore()

	open := &ieee80211.BSS{BSSID: [6]byte{1, 2, 3, 4, 5, 6}, SSID: []byte("open-net"), HasSSID: true}
	hidden := &ieee80211.BSS{BSSID: [6]byte{6, 5, 4, 3, 2, 1}, HasSSID: true}
	rsn := &ieee80211.BSS{BSSID: [6]byte{1, 1, 1, 1, 1, 1}, SSID: []byte("secure"), HasSSID: true, RSNE: []byte{0x30, 0x02, 0x01, 0x00}}

	store.Update(1, []*ieee80211.BSS{open, hidden, rsn})

	stats := store.Summary()
	if stats.DeviceCount != 1 {
		t.Fatalf("DeviceCount = %d, want 1", stats.DeviceCount)
	}
	if stats.BSSCount != 3 {
		t.Fatalf("BSSCount = %d, want 3", stats.BSSCount)
	}
	if stats.HiddenCount != 1 {
		t.Fatalf("HiddenCount = %d, want 1", stats.HiddenCount)
	}
	if stats.SecurityStats["OPEN"] != 1 || stats.SecurityStats["RSN"] != 1 {
		t.Fatalf("SecurityStats = %+v", stats.SecurityStats)
	}

	all := store.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d entries, want 3", len(all))
	}
}

func TestStoreUpdateReplacesPerDevice(t *testing.T) {
	store := NewStore()
	store.Update(1, []*ieee80211.BSS{{BSSID: [6]byte{1}, HasSSID: true}})
	store.Update(1, []*ieee80211.BSS{{BSSID: [6]byte{2}, HasSSID: true}, {BSSID: [6]byte{3}, HasSSID: true}})

	all := store.All()
	if len(all) != 2 {
		t.Fatalf("expected the second Update to replace device 1's snapshot, got %d entries", len(all))
	}
}

func TestSecurityLabel(t *testing.T) {
	cases := []struct {
		name string
		bss  *ieee80211.BSS
		want string
	}{
		{"open", &ieee80211.BSS{}, "OPEN"},
		{"rsn", &ieee80211.BSS{RSNE: []byte{1}}, "RSN"},
		{"wpa", &ieee80211.BSS{WPA: []byte{1}}, "WPA"},
		{"osen", &ieee80211.BSS{OSEN: []byte{1}}, "OSEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := securityLabel(tc.bss); got != tc.want {
				t.Fatalf("securityLabel() = %q, want %q", got, tc.want)
			}
		})
	}
}
