// Package transport implements the scan engine's view of a generic-netlink
// control channel exposing the nl80211 family: the commands the engine
// issues (TRIGGER_SCAN, START_SCHED_SCAN, GET_SCAN, GET_WIPHY, GET_INTERFACE,
// GET_REG, GET_PROTOCOL_FEATURES) and the multicast events it consumes
// (TRIGGER_SCAN, NEW_SCAN_RESULTS, SCHED_SCAN_RESULTS, SCAN_ABORTED).
package transport

import (
	"context"

	"github.com/airlayer/scand/pkg/ieee80211"
)

// WDEV is the opaque 64-bit identifier for a radio device's logical
// interface, as handed out by the kernel.
type WDEV uint64

// ScanParams carries the attributes a TRIGGER_SCAN or START_SCHED_SCAN
// command may set, mirroring the external-interface attribute list.
type ScanParams struct {
	Freqs                     []uint32
	SSIDs                     [][]byte // nested SCAN_SSIDS; a zero-length entry is a broadcast probe
	Flush                     bool
	RandomizeMAC              bool
	ExtraIE                   []byte
	SourceMAC                 [6]byte
	HasSourceMAC              bool
	NoCCKRates                bool
	SupportedRates            []byte
	Duration                  uint16
	DurationMandatory         bool
	StartTimeTSF              uint64
}

// CommandID identifies one outstanding (acked-asynchronously) command sent
// to the transport, so the engine can correlate a later ack or error with
// the request that issued it.
type CommandID uint64

// Ack is the asynchronous response to a submitted command.
type Ack struct {
	ID        CommandID
	Err       error // nil on success; ErrBusy on kernel -EBUSY
	StartTSF  uint64
}

// EventKind distinguishes the four multicast scan events the engine
// subscribes to.
type EventKind int

const (
	EventTriggerScan EventKind = iota
	EventNewScanResults
	EventSchedScanResults
	EventScanAborted
)

// Event is one multicast notification from the driver.
type Event struct {
	Kind  EventKind
	WDEV  WDEV
	Flush bool  // valid for EventNewScanResults
	SSIDs int   // number of SCAN_SSIDS attributes present, valid for EventTriggerScan
}

// ScanDumpResult is one parsed BSS entry plus the per-entry timing fields
// the command builder's get-scan step needs but which aren't modeled on
// ieee80211.BSS itself (they're transport-attribute concerns, not IE
// concerns).
type ScanDumpResult struct {
	BSS        *ieee80211.BSS
	SeenMsAgo  uint32
	HasSeenMs  bool
}

// Transport is the engine's view of the nl80211 control channel. A real
// implementation talks to the kernel over generic netlink; tests use an
// in-memory fake.
type Transport interface {
	// TriggerScan issues NL80211_CMD_TRIGGER_SCAN. The returned CommandID
	// correlates with an Ack delivered on Acks().
	TriggerScan(ctx context.Context, dev WDEV, params ScanParams) CommandID

	// StartSchedScan issues NL80211_CMD_START_SCHED_SCAN.
	StartSchedScan(ctx context.Context, dev WDEV, params ScanParams) CommandID

	// GetScanDump issues a NL80211_CMD_GET_SCAN dump and returns every
	// parsed BSS. Individual malformed entries are dropped, never
	// aborting the whole dump.
	GetScanDump(ctx context.Context, dev WDEV) ([]ScanDumpResult, error)

	// GetWiphy issues a NL80211_CMD_GET_WIPHY dump for radio capabilities.
	GetWiphy(ctx context.Context) ([]WiphyInfo, error)

	// GetInterface issues a NL80211_CMD_GET_INTERFACE dump.
	GetInterface(ctx context.Context) ([]InterfaceInfo, error)

	// GetReg issues NL80211_CMD_GET_REG.
	GetReg(ctx context.Context) (RegDomain, error)

	// GetProtocolFeatures issues NL80211_CMD_GET_PROTOCOL_FEATURES.
	GetProtocolFeatures(ctx context.Context) (uint32, error)

	// Acks delivers the asynchronous result of a previously submitted
	// command, in submission order per device.
	Acks() <-chan Ack

	// Events delivers multicast scan notifications.
	Events() <-chan Event

	// CancelCommand best-effort cancels an outstanding command. Its Ack,
	// if one is still pending, will report ErrCanceled.
	CancelCommand(id CommandID)

	Close() error
}

// WiphyInfo is the subset of GET_WIPHY attributes the scan command builder
// and radio-capability snapshot need.
type WiphyInfo struct {
	Wiphy                uint32
	MaxScanSSIDs         int
	SupportsRandomMAC    bool
	SupportsDuration     bool
	ExtendedCapabilities []byte
	Bands                []uint32 // representative center frequencies, one per supported band
}

// InterfaceInfo is the subset of GET_INTERFACE attributes needed to map a
// WDEV to its owning wiphy.
type InterfaceInfo struct {
	WDEV  WDEV
	Wiphy uint32
	Name  string
	MAC   [6]byte
}

// RegDomain is the subset of GET_REG this repository's scope needs: just
// enough to log the active regulatory domain, since driving the
// regulatory database itself is out of scope.
type RegDomain struct {
	Alpha2 string
}
