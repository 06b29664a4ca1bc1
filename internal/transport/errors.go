package transport

import "errors"

// ErrBusy is the Ack.Err value for a command the kernel rejected with
// -EBUSY: another scan is already in progress on this radio. It is not a
// request failure by itself; the engine reacts by moving the context to
// Passive and waiting for the in-progress scan's completion event.
var ErrBusy = errors.New("transport: device busy (-EBUSY)")

// ErrCanceled is the Ack.Err value for a command whose CancelCommand was
// called before the kernel replied.
var ErrCanceled = errors.New("transport: command canceled")
