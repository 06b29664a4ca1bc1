package ieee80211

import (
	"bytes"
	"testing"
)

func tlv(tag uint8, val []byte) []byte {
	out := []byte{tag, uint8(len(val))}
	return append(out, val...)
}

func TestParseMissingSSIDFails(t *testing.T) {
	ies := tlv(tagBSSLoad, []byte{0x01, 0x00, 0x40})
	_, err := Parse([6]byte{1, 2, 3, 4, 5, 6}, 2437, 0x0011, -5000, ies, FrameBeacon)
	if err != ErrMalformedBSS {
		t.Fatalf("expected ErrMalformedBSS, got %v", err)
	}
}

func TestParseHiddenSSIDAccepted(t *testing.T) {
	ies := tlv(0, nil)
	bss, err := Parse([6]byte{1, 2, 3, 4, 5, 6}, 2437, 0x0011, -5000, ies, FrameBeacon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bss.Hidden() {
		t.Fatalf("expected hidden SSID")
	}
}

func TestParseSSIDTooLongFails(t *testing.T) {
	ies := tlv(0, bytes.Repeat([]byte{'a'}, 33))
	_, err := Parse([6]byte{1, 2, 3, 4, 5, 6}, 2437, 0x0011, -5000, ies, FrameBeacon)
	if err != ErrMalformedBSS {
		t.Fatalf("expected ErrMalformedBSS for oversized SSID, got %v", err)
	}
}

func TestParseBasicFields(t *testing.T) {
	var ies []byte
	ies = append(ies, tlv(tagSSID, []byte("Test"))...)
	ies = append(ies, tlv(tagBSSLoad, []byte{0x01, 0x00, 200})...)

	bss, err := Parse([6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, 2437, 0x0011, -5000, ies, FrameBeacon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(bss.SSID) != "Test" {
		t.Fatalf("ssid = %q, want Test", bss.SSID)
	}
	if bss.Frequency != 2437 {
		t.Fatalf("frequency = %d, want 2437", bss.Frequency)
	}
	if bss.Utilization != 200 {
		t.Fatalf("utilization = %d, want 200", bss.Utilization)
	}
	if bss.BSSIDString() != "aa:bb:cc:dd:ee:ff" {
		t.Fatalf("bssid = %s", bss.BSSIDString())
	}
}

func TestParseMalformedBSSLoadIgnored(t *testing.T) {
	var ies []byte
	ies = append(ies, tlv(tagSSID, []byte("Test"))...)
	ies = append(ies, tlv(tagBSSLoad, []byte{0x01})...) // too short to contain utilization

	bss, err := Parse([6]byte{1, 2, 3, 4, 5, 6}, 2412, 0, 0, ies, FrameBeacon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bss.Utilization != UnknownUtilization {
		t.Fatalf("utilization = %d, want sentinel %d", bss.Utilization, UnknownUtilization)
	}
}

func TestParseRSNRoundTrip(t *testing.T) {
	rsnBody := []byte{
		0x01, 0x00, // version
		0x00, 0x0f, 0xac, 0x04, // group cipher: CCMP
		0x01, 0x00, 0x00, 0x0f, 0xac, 0x04, // 1 pairwise: CCMP
		0x01, 0x00, 0x00, 0x0f, 0xac, 0x02, // 1 akm: PSK
		0x00, 0x00, // capabilities
	}
	var ies []byte
	ies = append(ies, tlv(tagSSID, []byte("Secure"))...)
	ies = append(ies, tlv(tagRSN, rsnBody)...)

	bss, err := Parse([6]byte{1, 2, 3, 4, 5, 6}, 5180, 0x0011, -4000, ies, FrameBeacon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bss.RSNE) != 2+len(rsnBody) {
		t.Fatalf("RSNE length = %d, want %d", len(bss.RSNE), 2+len(rsnBody))
	}
	info, err := bss.RSNInfo()
	if err != nil {
		t.Fatalf("RSNInfo: %v", err)
	}
	if info.GroupCipher != "CCMP" {
		t.Fatalf("group cipher = %s, want CCMP", info.GroupCipher)
	}
	if len(info.AKMSuites) != 1 || info.AKMSuites[0] != "PSK" {
		t.Fatalf("akm suites = %v, want [PSK]", info.AKMSuites)
	}
}

func TestParseVendorDispatch(t *testing.T) {
	var ies []byte
	ies = append(ies, tlv(tagSSID, []byte("HS20AP"))...)
	hs20 := append([]byte{0x50, 0x6f, 0x9a, 0x10}, 0x12) // version 2, DGAF disabled
	ies = append(ies, tlv(tagVendor, hs20)...)

	bss, err := Parse([6]byte{1, 2, 3, 4, 5, 6}, 5180, 0, 0, ies, FrameBeacon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bss.HS20Capable {
		t.Fatalf("expected HS20Capable")
	}
	if bss.HS20Version != 2 {
		t.Fatalf("HS20 version = %d, want 2", bss.HS20Version)
	}
	if !bss.DGAFDisable {
		t.Fatalf("expected DGAFDisable")
	}
}

func TestParseExtendedCapabilitiesProxyARP(t *testing.T) {
	var ies []byte
	ies = append(ies, tlv(tagSSID, []byte("AP"))...)
	// bit 12 is byte index 1, bit 4 -> 0x10
	ies = append(ies, tlv(tagExtendedCapabilities, []byte{0x00, 0x10})...)

	bss, err := Parse([6]byte{1, 2, 3, 4, 5, 6}, 2412, 0, 0, ies, FrameBeacon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bss.ProxyARP {
		t.Fatalf("expected ProxyARP set from bit 12")
	}
}

func TestParseInterworkingHESSID(t *testing.T) {
	var ies []byte
	ies = append(ies, tlv(tagSSID, []byte("HESSID"))...)
	body := []byte{0x0f, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	ies = append(ies, tlv(tagInterworking, body)...) // length 8, doesn't match 7 or 9: ignored
	bss, _ := Parse([6]byte{1, 2, 3, 4, 5, 6}, 2412, 0, 0, ies, FrameBeacon)
	if bss.HasHESSID {
		t.Fatalf("expected no HESSID for unsupported interworking length")
	}

	var ies9 []byte
	ies9 = append(ies9, tlv(tagSSID, []byte("HESSID9"))...)
	body9 := []byte{0x0f, 0x00, 0x00, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	ies9 = append(ies9, tlv(tagInterworking, body9)...)
	bss9, err := Parse([6]byte{1, 2, 3, 4, 5, 6}, 2412, 0, 0, ies9, FrameBeacon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bss9.HasHESSID {
		t.Fatalf("expected HESSID")
	}
	want := [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	if bss9.HESSID != want {
		t.Fatalf("HESSID = %x, want %x", bss9.HESSID, want)
	}
}
