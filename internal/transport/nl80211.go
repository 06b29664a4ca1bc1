package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/airlayer/scand/pkg/ieee80211"
	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
)

const familyName = "nl80211"

// multicast group names nl80211 exposes; "scan" carries all four scan
// events this package subscribes to.
const mcGroupScan = "scan"

// NL80211 is the real transport, backed by a generic-netlink connection to
// the kernel's nl80211 family.
type NL80211 struct {
	conn     *genetlink.Conn
	familyID uint16

	mu       sync.Mutex
	nextID   CommandID
	pending  map[CommandID]struct{}

	acks   chan Ack
	events chan Event

	closeOnce sync.Once
	done      chan struct{}
}

// Dial opens a netlink connection, resolves the nl80211 family, and joins
// its "scan" multicast group.
func Dial() (*NL80211, error) {
	conn, err := genetlink.Dial(nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial genetlink: %w", err)
	}

	family, err := conn.GetFamily(familyName)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: resolve %s family: %w", familyName, err)
	}

	var scanGroup uint32
	found := false
	for _, g := range family.Groups {
		if g.Name == mcGroupScan {
			scanGroup = g.ID
			found = true
			break
		}
	}
	if !found {
		conn.Close()
		return nil, fmt.Errorf("transport: %s family has no %q multicast group", familyName, mcGroupScan)
	}
	if err := conn.JoinGroup(scanGroup); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: join scan group: %w", err)
	}

	t := &NL80211{
		conn:     conn,
		familyID: family.ID,
		pending:  make(map[CommandID]struct{}),
		acks:     make(chan Ack, 16),
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
	go t.receiveLoop()
	return t, nil
}

func (t *NL80211) Acks() <-chan Ack     { return t.acks }
func (t *NL80211) Events() <-chan Event { return t.events }

func (t *NL80211) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return t.conn.Close()
}

func (t *NL80211) allocID() CommandID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.pending[id] = struct{}{}
	return id
}

// CancelCommand marks id as canceled; a subsequent Ack for it (if the
// kernel still answers) is suppressed and replaced with ErrCanceled.
func (t *NL80211) CancelCommand(id CommandID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[id]; ok {
		delete(t.pending, id)
		select {
		case t.acks <- Ack{ID: id, Err: ErrCanceled}:
		default:
		}
	}
}

func (t *NL80211) TriggerScan(ctx context.Context, dev WDEV, params ScanParams) CommandID {
	id := t.allocID()
	go t.runCommand(ctx, id, cmdTriggerScan, func(ae *netlink.AttributeEncoder) {
		encodeScanParams(ae, dev, params)
	})
	return id
}

func (t *NL80211) StartSchedScan(ctx context.Context, dev WDEV, params ScanParams) CommandID {
	id := t.allocID()
	go t.runCommand(ctx, id, cmdStartSchedScan, func(ae *netlink.AttributeEncoder) {
		encodeScanParams(ae, dev, params)
	})
	return id
}

func (t *NL80211) runCommand(ctx context.Context, id CommandID, cmd uint8, encode func(*netlink.AttributeEncoder)) {
	ae := netlink.NewAttributeEncoder()
	encode(ae)
	body, err := ae.Encode()
	if err != nil {
		t.deliverAck(Ack{ID: id, Err: fmt.Errorf("transport: encode attributes: %w", err)})
		return
	}

	msg := genetlink.Message{
		Header: genetlink.Header{Command: cmd, Version: 1},
		Data:   body,
	}
	_, err = t.conn.Execute(msg, t.familyID, netlink.Request|netlink.Acknowledge)
	t.deliverAck(Ack{ID: id, Err: classifyError(err)})
}

func (t *NL80211) deliverAck(ack Ack) {
	t.mu.Lock()
	_, stillPending := t.pending[ack.ID]
	delete(t.pending, ack.ID)
	t.mu.Unlock()
	if !stillPending {
		return
	}
	select {
	case t.acks <- ack:
	case <-t.done:
	}
}

func (t *NL80211) GetScanDump(ctx context.Context, dev WDEV) ([]ScanDumpResult, error) {
	ae := netlink.NewAttributeEncoder()
	ae.Uint64(attrWDEV, uint64(dev))
	body, err := ae.Encode()
	if err != nil {
		return nil, fmt.Errorf("transport: encode GET_SCAN request: %w", err)
	}

	msgs, err := t.conn.Execute(genetlink.Message{
		Header: genetlink.Header{Command: cmdGetScan, Version: 1},
		Data:   body,
	}, t.familyID, netlink.Request|netlink.Dump)
	if err != nil {
		return nil, fmt.Errorf("transport: GET_SCAN dump: %w", err)
	}

	var out []ScanDumpResult
	for _, m := range msgs {
		attrs, err := netlink.UnmarshalAttributes(m.Data)
		if err != nil {
			continue
		}
		if res, ok := decodeBSSDumpEntry(dev, attrs); ok {
			out = append(out, res)
		}
	}
	return out, nil
}

func (t *NL80211) GetWiphy(ctx context.Context) ([]WiphyInfo, error) {
	msgs, err := t.conn.Execute(genetlink.Message{
		Header: genetlink.Header{Command: cmdGetWiphy, Version: 1},
	}, t.familyID, netlink.Request|netlink.Dump)
	if err != nil {
		return nil, fmt.Errorf("transport: GET_WIPHY dump: %w", err)
	}

	var out []WiphyInfo
	for _, m := range msgs {
		attrs, err := netlink.UnmarshalAttributes(m.Data)
		if err != nil {
			continue
		}
		out = append(out, decodeWiphyInfo(attrs))
	}
	return out, nil
}

func (t *NL80211) GetInterface(ctx context.Context) ([]InterfaceInfo, error) {
	msgs, err := t.conn.Execute(genetlink.Message{
		Header: genetlink.Header{Command: cmdGetInterface, Version: 1},
	}, t.familyID, netlink.Request|netlink.Dump)
	if err != nil {
		return nil, fmt.Errorf("transport: GET_INTERFACE dump: %w", err)
	}

	var out []InterfaceInfo
	for _, m := range msgs {
		attrs, err := netlink.UnmarshalAttributes(m.Data)
		if err != nil {
			continue
		}
		out = append(out, decodeInterfaceInfo(attrs))
	}
	return out, nil
}

func (t *NL80211) GetReg(ctx context.Context) (RegDomain, error) {
	msgs, err := t.conn.Execute(genetlink.Message{
		Header: genetlink.Header{Command: cmdGetReg, Version: 1},
	}, t.familyID, netlink.Request|netlink.Acknowledge)
	if err != nil {
		return RegDomain{}, fmt.Errorf("transport: GET_REG: %w", err)
	}
	if len(msgs) == 0 {
		return RegDomain{}, nil
	}
	attrs, err := netlink.UnmarshalAttributes(msgs[0].Data)
	if err != nil {
		return RegDomain{}, fmt.Errorf("transport: unmarshal GET_REG reply: %w", err)
	}
	var reg RegDomain
	for _, a := range attrs {
		if a.Type == attrReg8021 {
			reg.Alpha2 = string(a.Data)
		}
	}
	return reg, nil
}

func (t *NL80211) GetProtocolFeatures(ctx context.Context) (uint32, error) {
	msgs, err := t.conn.Execute(genetlink.Message{
		Header: genetlink.Header{Command: cmdGetProtocolFeatures, Version: 1},
	}, t.familyID, netlink.Request|netlink.Acknowledge)
	if err != nil {
		return 0, fmt.Errorf("transport: GET_PROTOCOL_FEATURES: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	attrs, err := netlink.UnmarshalAttributes(msgs[0].Data)
	if err != nil {
		return 0, fmt.Errorf("transport: unmarshal GET_PROTOCOL_FEATURES reply: %w", err)
	}
	for _, a := range attrs {
		if a.Type == attrProtocolFeatures {
			return nlenc32(a.Data), nil
		}
	}
	return 0, nil
}

func (t *NL80211) receiveLoop() {
	for {
		msgs, _, err := t.conn.Receive()
		if err != nil {
			return
		}
		for _, m := range msgs {
			if ev, ok := decodeEvent(m); ok {
				select {
				case t.events <- ev:
				case <-t.done:
					return
				}
			}
		}
		select {
		case <-t.done:
			return
		default:
		}
	}
}

func decodeEvent(m genetlink.Message) (Event, bool) {
	var kind EventKind
	switch m.Header.Command {
	case cmdTriggerScan:
		kind = EventTriggerScan
	case cmdNewScanResults:
		kind = EventNewScanResults
	case cmdSchedScanResults:
		kind = EventSchedScanResults
	case cmdScanAborted:
		kind = EventScanAborted
	default:
		return Event{}, false
	}

	attrs, err := netlink.UnmarshalAttributes(m.Data)
	if err != nil {
		return Event{}, false
	}

	ev := Event{Kind: kind}
	for _, a := range attrs {
		switch a.Type {
		case attrWDEV:
			ev.WDEV = WDEV(nlenc64(a.Data))
		case attrScanFlags:
			ev.Flush = nlenc32(a.Data)&scanFlagFlush != 0
		case attrScanSSIDs:
			nested, err := netlink.UnmarshalAttributes(a.Data)
			if err == nil {
				ev.SSIDs = len(nested)
			}
		}
	}
	return ev, true
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if opErr, ok := netlinkErrno(err); ok && opErr == busyErrno {
		return ErrBusy
	}
	return err
}
