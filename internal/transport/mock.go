package transport

import "context"

// Mock is an in-memory Transport for engine tests. Commands are recorded
// for assertions; acks and events are delivered by the test driving the
// scripted sequence via Reply/Emit.
type Mock struct {
	nextID CommandID

	TriggerCalls []MockTriggerCall

	acks      chan Ack
	events    chan Event
	triggered chan MockTriggerCall

	canceled map[CommandID]bool

	Wiphy   []WiphyInfo
	Ifaces  []InterfaceInfo
	Reg     RegDomain
	Feats   uint32
	ScanDumpFn func(dev WDEV) ([]ScanDumpResult, error)
}

// MockTriggerCall records one TriggerScan/StartSchedScan invocation.
type MockTriggerCall struct {
	ID     CommandID
	Dev    WDEV
	Params ScanParams
	Sched  bool
}

// NewMock returns a ready-to-use mock transport with buffered ack/event
// channels, sized generously so scripted tests don't need a reader
// goroutine running concurrently with the driver.
func NewMock() *Mock {
	return &Mock{
		acks:      make(chan Ack, 64),
		events:    make(chan Event, 64),
		triggered: make(chan MockTriggerCall, 64),
		canceled:  make(map[CommandID]bool),
	}
}

// Triggered delivers one notification per TriggerScan/StartSchedScan
// call, in issue order, so tests can synchronize on "the engine has sent
// its Nth fragment" without polling TriggerCalls.
func (m *Mock) Triggered() <-chan MockTriggerCall { return m.triggered }

func (m *Mock) TriggerScan(ctx context.Context, dev WDEV, params ScanParams) CommandID {
	m.nextID++
	id := m.nextID
	call := MockTriggerCall{ID: id, Dev: dev, Params: params}
	m.TriggerCalls = append(m.TriggerCalls, call)
	m.triggered <- call
	return id
}

func (m *Mock) StartSchedScan(ctx context.Context, dev WDEV, params ScanParams) CommandID {
	m.nextID++
	id := m.nextID
	call := MockTriggerCall{ID: id, Dev: dev, Params: params, Sched: true}
	m.TriggerCalls = append(m.TriggerCalls, call)
	m.triggered <- call
	return id
}

func (m *Mock) GetScanDump(ctx context.Context, dev WDEV) ([]ScanDumpResult, error) {
	if m.ScanDumpFn != nil {
		return m.ScanDumpFn(dev)
	}
	return nil, nil
}

func (m *Mock) GetWiphy(ctx context.Context) ([]WiphyInfo, error)       { return m.Wiphy, nil }
func (m *Mock) GetInterface(ctx context.Context) ([]InterfaceInfo, error) { return m.Ifaces, nil }
func (m *Mock) GetReg(ctx context.Context) (RegDomain, error)           { return m.Reg, nil }
func (m *Mock) GetProtocolFeatures(ctx context.Context) (uint32, error) { return m.Feats, nil }

func (m *Mock) Acks() <-chan Ack     { return m.acks }
func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) CancelCommand(id CommandID) {
	m.canceled[id] = true
}

func (m *Mock) Close() error { return nil }

// Reply pushes an Ack as if the kernel had responded. If CancelCommand was
// already called for id, the ack is replaced with ErrCanceled, mirroring
// the real transport's suppression behavior.
func (m *Mock) Reply(ack Ack) {
	if m.canceled[ack.ID] {
		ack = Ack{ID: ack.ID, Err: ErrCanceled}
	}
	m.acks <- ack
}

// Emit pushes a multicast event as if the driver had sent one.
func (m *Mock) Emit(ev Event) {
	m.events <- ev
}

var _ Transport = (*Mock)(nil)
