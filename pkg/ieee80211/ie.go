package ieee80211

// RawIE is one undecoded information element: a tag, and the value bytes
// that followed its length octet (the 2-byte tag+length header itself is
// not included here).
type RawIE struct {
	Tag   uint8
	Value []byte
}

// iterateIEs walks a TLV stream calling cb for each well-formed element.
// Each element is a 1-byte tag, a 1-byte length, and length value bytes.
// Walking stops silently at the first truncated element, mirroring how a
// parser tolerant of firmware quirks must behave: a short trailing element
// is dropped rather than treated as fatal for the whole stream.
func iterateIEs(data []byte, cb func(tag uint8, value []byte)) {
	offset := 0
	limit := len(data)

	for offset < limit {
		if offset+2 > limit {
			return
		}
		tag := data[offset]
		length := int(data[offset+1])
		offset += 2

		if offset+length > limit {
			return
		}
		cb(tag, data[offset:offset+length])
		offset += length
	}
}

// findIE returns the value of the first element with the given tag, and
// whether it was present at all (to distinguish "absent" from "present with
// zero-length value", which matters for hidden SSIDs).
func findIE(data []byte, tag uint8) ([]byte, bool) {
	var (
		val   []byte
		found bool
	)
	iterateIEs(data, func(t uint8, v []byte) {
		if found || t != tag {
			return
		}
		val = v
		found = true
	})
	return val, found
}

// dup copies an IE's value bytes and reattaches its 2-byte tag+length
// header, matching the spec's requirement that opaque blobs (RSN, RSNX,
// vendor IEs, roaming consortium) keep their original header bytes.
func dup(tag uint8, value []byte) []byte {
	out := make([]byte, 2+len(value))
	out[0] = tag
	out[1] = uint8(len(value))
	copy(out[2:], value)
	return out
}
