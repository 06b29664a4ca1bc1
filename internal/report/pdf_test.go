package report

import (
	"testing"
	"time"

	"github.com/airlayer/scand/pkg/ieee80211"
)

func TestExportProducesNonEmptyPDF(t *testing.T) {
	s := &Session{
		Title:      "Test Session",
		DeviceName: "wlan0",
		Start:      time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 7, 30, 10, 5, 0, 0, time.UTC),
		BSSes: []*ieee80211.BSS{
			{BSSID: [6]byte{1, 2, 3, 4, 5, 6}, SSID: []byte("open-net"), HasSSID: true, Rank: 50},
			{BSSID: [6]byte{6, 5, 4, 3, 2, 1}, HasSSID: true, Rank: 80, RSNE: []byte{0x30, 0x02, 0x01, 0x00}},
		},
	}

	data, err := NewExporter().Export(s)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Export returned empty PDF")
	}
	if string(data[:4]) != "%PDF" {
		t.Fatalf("output does not look like a PDF, got header %q", data[:4])
	}
}

func TestExportEmptySession(t *testing.T) {
	s := &Session{Title: "Empty", DeviceName: "wlan0"}
	data, err := NewExporter().Export(s)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Export returned empty PDF for an empty session")
	}
}

func TestExportFillsSessionID(t *testing.T) {
	s := &Session{DeviceName: "wlan0"}
	if _, err := NewExporter().Export(s); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if s.ID == "" {
		t.Fatal("Export left Session.ID empty")
	}

	preset := &Session{DeviceName: "wlan0", ID: "fixed-id"}
	if _, err := NewExporter().Export(preset); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if preset.ID != "fixed-id" {
		t.Fatalf("Export overwrote a preset Session.ID, got %q", preset.ID)
	}
}

func TestExportAcceptsUnsortedRanks(t *testing.T) {
	s := &Session{
		BSSes: []*ieee80211.BSS{
			{BSSID: [6]byte{1}, HasSSID: true, Rank: 10},
			{BSSID: [6]byte{2}, HasSSID: true, Rank: 90},
		},
	}
	if _, err := NewExporter().Export(s); err != nil {
		t.Fatalf("Export: %v", err)
	}
}
