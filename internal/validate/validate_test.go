package validate

import "testing"

func TestIsValidMAC(t *testing.T) {
	tests := []struct {
		mac   string
		valid bool
	}{
		{"AA:BB:CC:DD:EE:FF", true},
		{"aa:bb:cc:dd:ee:ff", true},
		{"00:11:22:33:44:55", true},
		{"invalid", false},
		{"AA:BB:CC:DD:EE", false},
		{"AA:BB:CC:DD:EE:FF:GG", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidMAC(tt.mac); got != tt.valid {
			t.Errorf("IsValidMAC(%q) = %v, want %v", tt.mac, got, tt.valid)
		}
	}
}

func TestIsValidInterface(t *testing.T) {
	tests := []struct {
		iface string
		valid bool
	}{
		{"wlan0", true},
		{"mon0", true},
		{"wlp3s0", true},
		{"eth0.100", false},
		{"very_long_interface_name_that_should_fail", false},
		{"; rm -rf /", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidInterface(tt.iface); got != tt.valid {
			t.Errorf("IsValidInterface(%q) = %v, want %v", tt.iface, got, tt.valid)
		}
	}
}

func TestSSID(t *testing.T) {
	if err := SSID(nil); err != nil {
		t.Errorf("SSID(nil) = %v, want nil (broadcast probe)", err)
	}
	if err := SSID(make([]byte, 32)); err != nil {
		t.Errorf("SSID(32 bytes) = %v, want nil", err)
	}
	if err := SSID(make([]byte, 33)); err == nil {
		t.Error("SSID(33 bytes) = nil, want ErrInvalidSSID")
	}
}
