package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strconv"
	"syscall"

	"github.com/airlayer/scand/internal/obs"
	"github.com/airlayer/scand/pkg/ieee80211"
	"github.com/mdlayher/netlink"
)

const busyErrno = syscall.EBUSY

// netlinkErrno unwraps a netlink operation error down to its underlying
// errno, if any.
func netlinkErrno(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}

func nlenc32(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func nlenc64(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// nlenc0String trims the trailing NUL netlink string attributes are padded
// with.
func nlenc0String(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// encodeScanParams builds the attribute set shared by TRIGGER_SCAN and
// START_SCHED_SCAN, in the ordering the command builder assembled them in.
func encodeScanParams(ae *netlink.AttributeEncoder, dev WDEV, p ScanParams) {
	ae.Uint64(attrWDEV, uint64(dev))

	if len(p.Freqs) > 0 {
		ae.Nested(attrScanFrequencies, func(nae *netlink.AttributeEncoder) error {
			for i, f := range p.Freqs {
				nae.Uint32(uint16(i), f)
			}
			return nil
		})
	}

	if len(p.SSIDs) > 0 {
		ae.Nested(attrScanSSIDs, func(nae *netlink.AttributeEncoder) error {
			for i, s := range p.SSIDs {
				nae.Bytes(uint16(i), s)
			}
			return nil
		})
	}

	var scanFlags uint32
	if p.Flush {
		scanFlags |= scanFlagFlush
	}
	if p.RandomizeMAC {
		scanFlags |= scanFlagRandomAddr
	}
	if scanFlags != 0 {
		ae.Uint32(attrScanFlags, scanFlags)
	}

	if len(p.ExtraIE) > 0 {
		ae.Bytes(attrIE, p.ExtraIE)
	}

	if p.HasSourceMAC {
		ae.Bytes(attrMAC, p.SourceMAC[:])
		ae.Bytes(attrMACMask, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	}

	if p.NoCCKRates {
		ae.Flag(attrTxNoCCKRate, true)
		if len(p.SupportedRates) > 0 {
			ae.Nested(attrScanSuppRates, func(nae *netlink.AttributeEncoder) error {
				nae.Bytes(0, p.SupportedRates)
				return nil
			})
		}
	}

	if p.Duration > 0 {
		ae.Uint16(attrMeasurementDuration, p.Duration)
		if p.DurationMandatory {
			ae.Flag(attrMeasurementDurationMandatory, true)
		}
	}
}

// decodeBSSDumpEntry decodes one NL80211_ATTR_BSS nested attribute set
// into a ScanDumpResult. The attribute-level invariants the spec assigns
// to the BSS parser (BSSID length != 6, frequency length != 4, signal-MBm
// length != 4, signal-unspec byte > 100) are enforced here, since they are
// netlink attribute invariants rather than IE invariants; a violation
// causes this function to drop the entry and return ok=false, exactly as
// a malformed IE-level record would be dropped by ieee80211.Parse.
func decodeBSSDumpEntry(dev WDEV, attrs []netlink.Attribute) (ScanDumpResult, bool) {
	devLabel := strconv.FormatUint(uint64(dev), 10)
	reject := func(reason string) (ScanDumpResult, bool) {
		obs.ParseFailures.WithLabelValues(devLabel, reason).Inc()
		return ScanDumpResult{}, false
	}

	var (
		bssAttrs []netlink.Attribute
		found    bool
	)
	for _, a := range attrs {
		if a.Type == attrBSS {
			nested, err := netlink.UnmarshalAttributes(a.Data)
			if err != nil {
				return reject("bss_attrs_malformed")
			}
			bssAttrs = nested
			found = true
			break
		}
	}
	if !found {
		return ScanDumpResult{}, false
	}

	var (
		bssid        [6]byte
		haveBSSID    bool
		freq         uint32
		haveFreq     bool
		capability   uint16
		signalMBm    int32
		haveSignal   bool
		ies          []byte
		beaconIEs    []byte
		seenMsAgo    uint32
		haveSeenMs   bool
		parentTSF    uint64
	)

	for _, a := range bssAttrs {
		switch a.Type {
		case bssBSSID:
			if len(a.Data) != 6 {
				return reject("bad_bssid_length")
			}
			copy(bssid[:], a.Data)
			haveBSSID = true
		case bssFrequency:
			if len(a.Data) != 4 {
				return reject("bad_frequency_length")
			}
			freq = nlenc32(a.Data)
			haveFreq = true
		case bssCapability:
			if len(a.Data) >= 2 {
				capability = uint16(a.Data[0]) | uint16(a.Data[1])<<8
			}
		case bssSignalMBm:
			if len(a.Data) != 4 {
				return reject("bad_signal_mbm_length")
			}
			signalMBm = int32(nlenc32(a.Data))
			haveSignal = true
		case bssSignalUnspec:
			if len(a.Data) >= 1 && a.Data[0] > 100 {
				return reject("signal_unspec_out_of_range")
			}
		case bssInformationElements:
			ies = a.Data
		case bssBeaconIEs:
			beaconIEs = a.Data
		case bssSeenMsAgo:
			seenMsAgo = nlenc32(a.Data)
			haveSeenMs = true
		case bssParentTSF:
			parentTSF = nlenc64(a.Data)
		}
	}

	if !haveBSSID || !haveFreq || !haveSignal {
		return reject("missing_required_attribute")
	}

	source := ieee80211.FrameProbeResponse
	body := ies
	if body == nil {
		body = beaconIEs
		source = ieee80211.FrameBeacon
	}

	bss, err := ieee80211.Parse(bssid, freq, capability, signalMBm, body, source)
	if err != nil {
		return reject("ie_parse_failed")
	}
	bss.ParentTSF = parentTSF

	return ScanDumpResult{BSS: bss, SeenMsAgo: seenMsAgo, HasSeenMs: haveSeenMs}, true
}

func decodeWiphyInfo(attrs []netlink.Attribute) WiphyInfo {
	var info WiphyInfo
	for _, a := range attrs {
		switch a.Type {
		case attrWiphy:
			info.Wiphy = nlenc32(a.Data)
		case attrMaxScanSSIDs:
			info.MaxScanSSIDs = int(nlenc32(a.Data))
		case attrExtCapabilities:
			info.ExtendedCapabilities = append([]byte(nil), a.Data...)
		case attrFeatureFlags:
			flags := nlenc32(a.Data)
			info.SupportsRandomMAC = flags&(1<<2) != 0 // NL80211_FEATURE_SCAN_RANDOM_MAC_ADDR
		}
	}
	if info.MaxScanSSIDs == 0 {
		info.MaxScanSSIDs = 4 // conservative firmware-independent default
	}
	return info
}

func decodeInterfaceInfo(attrs []netlink.Attribute) InterfaceInfo {
	var info InterfaceInfo
	for _, a := range attrs {
		switch a.Type {
		case attrWDEV:
			info.WDEV = WDEV(nlenc64(a.Data))
		case attrWiphy:
			info.Wiphy = nlenc32(a.Data)
		case attrIfname:
			info.Name = nlenc0String(a.Data)
		case attrMAC:
			if len(a.Data) == 6 {
				copy(info.MAC[:], a.Data)
			}
		}
	}
	return info
}
