package websocket

import (
	"errors"
	"fmt"
)

// Result classifies the outcome of a Client operation.
type Result int

// Result constants.
const (
	Success Result = iota
	// NotAvailable means the transport is not connected or has no data yet.
	NotAvailable
	// NotSupported means the frame or payload uses a protocol feature this
	// client does not implement: fragmentation or 64 bit lengths.
	NotSupported
	// InvalidFrame means a received frame is malformed.
	InvalidFrame
	// ReadTimeout means the context expired while waiting for the peer.
	ReadTimeout
	// ConnectFailure means the transport could not be connected.
	ConnectFailure
	// HandshakeFailure means the server did not complete a valid upgrade.
	HandshakeFailure
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case NotAvailable:
		return "not available"
	case NotSupported:
		return "not supported"
	case InvalidFrame:
		return "invalid frame"
	case ReadTimeout:
		return "read timeout"
	case ConnectFailure:
		return "connect failure"
	case HandshakeFailure:
		return "handshake failure"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Error is the error type returned by Client methods.
//
// Use errors.Is with the Err sentinels below, or ResultOf, to find out
// which kind of failure occurred.
type Error struct {
	Result Result
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "websocket: " + e.Result.String()
	}
	return fmt.Sprintf("websocket: %v: %v", e.Result, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any sentinel *Error with the same Result.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Result == e.Result
}

// Sentinels for use with errors.Is.
var (
	ErrNotAvailable     = &Error{Result: NotAvailable}
	ErrNotSupported     = &Error{Result: NotSupported}
	ErrInvalidFrame     = &Error{Result: InvalidFrame}
	ErrReadTimeout      = &Error{Result: ReadTimeout}
	ErrConnectFailure   = &Error{Result: ConnectFailure}
	ErrHandshakeFailure = &Error{Result: HandshakeFailure}
)

// ResultOf returns the Result carried by err.
// It returns Success for a nil error and -1 if err is not an *Error.
func ResultOf(err error) Result {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Result
	}
	return -1
}

func newError(r Result, err error) *Error {
	return &Error{Result: r, Err: err}
}
