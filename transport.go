package websocket

import (
	"context"
)

// Transport is the byte stream a Client runs over.
//
// NetTransport implements it for TCP and TLS. Any other stream, such as an
// in-memory pipe in tests, only needs these methods.
type Transport interface {
	// Connect opens the stream to host:port.
	Connect(ctx context.Context, host string, port int) error
	// Connected reports whether the stream is open or still has
	// unread data from the peer.
	Connected() bool
	// Available returns the number of bytes that can be read
	// without blocking.
	Available() int
	// ReadByte reads one byte. It is only called when Available
	// reports at least one byte.
	ReadByte() (byte, error)
	// Write queues p for sending.
	Write(p []byte) (int, error)
	// Flush sends everything queued by Write.
	Flush() error
	// Close closes the stream.
	Close() error
}
