package ieee80211

import "errors"

// ErrMalformedBSS is returned by Parse when the TLV stream has no SSID
// element or has an SSID element longer than 32 bytes. BSSID, frequency,
// signal-length and signal-unspec checks are made by the transport decoder
// before Parse is called. Callers must discard the record, log a warning, and
// continue with the next one in a dump — never abort the whole dump for a
// single bad record.
var ErrMalformedBSS = errors.New("ieee80211: malformed BSS record")
