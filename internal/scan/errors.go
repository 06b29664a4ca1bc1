package scan

import "errors"

// ErrUnknownDevice is returned when an operation names a device id that
// has no context (no add() was ever called, or it was already removed).
var ErrUnknownDevice = errors.New("scan: unknown device")

// ErrAgain is delivered to a request's completion callback when an
// external NEW_SCAN_RESULTS carrying the flush flag discarded our
// in-kernel mid-flight results.
var ErrAgain = errors.New("scan: results invalidated by external flush, retry")

// ErrCanceled is delivered to a request's completion callback when the
// scan was aborted after having already been locally triggered.
var ErrCanceled = errors.New("scan: canceled")

// ErrNoResults is returned by GetFirmwareScan when a dump yields no BSSes.
var ErrNoResults = errors.New("scan: no results")

// ErrNotFound is returned by Cancel when the named request id does not
// exist (already completed, already canceled, or never issued).
var ErrNotFound = errors.New("scan: request not found")
