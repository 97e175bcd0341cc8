package websocket

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"sync"

	"golang.org/x/xerrors"

	"github.com/streamwire/websocket/internal/bufpool"
)

// maxPendingRead bounds how much received data NetTransport buffers
// before it stops reading from the connection.
const maxPendingRead = 1 << 20

// NetTransport is a Transport over a TCP connection, wrapped in TLS if
// TLSConfig is set.
//
// A goroutine reads from the connection into a buffer so that Available
// can report what has been received without blocking.
type NetTransport struct {
	// Dialer is used to open the connection. Defaults to a zero net.Dialer.
	Dialer *net.Dialer
	// TLSConfig enables TLS when non nil. An empty ServerName is set to the
	// host passed to Connect.
	TLSConfig *tls.Config

	mu      sync.Mutex
	cond    *sync.Cond
	conn    net.Conn
	bw      *bufio.Writer
	pending []byte
	readErr error
	done    chan struct{}
}

var _ Transport = &NetTransport{}

// Connect dials host:port.
func (t *NetTransport) Connect(ctx context.Context, host string, port int) error {
	if port <= 0 || port > 65535 {
		return xerrors.Errorf("invalid port %v", port)
	}

	t.mu.Lock()
	connected := t.conn != nil
	t.mu.Unlock()
	if connected {
		return errors.New("transport is already connected")
	}

	d := t.Dialer
	if d == nil {
		d = &net.Dialer{}
	}

	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return xerrors.Errorf("failed to dial: %w", err)
	}

	if t.TLSConfig != nil {
		cfg := t.TLSConfig.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = host
		}
		tc := tls.Client(conn, cfg)
		err = tc.HandshakeContext(ctx)
		if err != nil {
			conn.Close()
			return xerrors.Errorf("failed to perform TLS handshake: %w", err)
		}
		conn = tc
	}

	done := make(chan struct{})

	t.mu.Lock()
	if t.cond == nil {
		t.cond = sync.NewCond(&t.mu)
	}
	t.conn = conn
	t.bw = bufpool.GetWriter(conn)
	t.pending = nil
	t.readErr = nil
	t.done = done
	t.mu.Unlock()

	go t.readLoop(conn, done)
	return nil
}

func (t *NetTransport) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	b := make([]byte, 32<<10)
	for {
		n, err := conn.Read(b)

		t.mu.Lock()
		t.pending = append(t.pending, b[:n]...)
		if err != nil {
			t.readErr = err
			t.mu.Unlock()
			return
		}
		for len(t.pending) >= maxPendingRead && t.conn == conn {
			t.cond.Wait()
		}
		t.mu.Unlock()
	}
}

// Connected reports whether the connection is open or received data
// remains to be read.
func (t *NetTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil && (t.readErr == nil || len(t.pending) > 0)
}

// Available returns the number of received bytes not yet read.
func (t *NetTransport) Available() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// ReadByte returns the next received byte.
func (t *NetTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.pending) == 0 {
		if t.readErr != nil {
			return 0, t.readErr
		}
		return 0, errors.New("no data available")
	}

	b := t.pending[0]
	t.pending = t.pending[1:]
	if len(t.pending) == 0 {
		t.pending = nil
	}
	if len(t.pending) < maxPendingRead {
		t.cond.Signal()
	}
	return b, nil
}

// Write buffers p. Call Flush to send it.
func (t *NetTransport) Write(p []byte) (int, error) {
	bw, err := t.writer()
	if err != nil {
		return 0, err
	}
	return bw.Write(p)
}

// Flush sends buffered data.
func (t *NetTransport) Flush() error {
	bw, err := t.writer()
	if err != nil {
		return err
	}
	return bw.Flush()
}

func (t *NetTransport) writer() (*bufio.Writer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil, errors.New("transport is not connected")
	}
	return t.bw, nil
}

// Close closes the connection and discards unread data.
// Closing a transport that is not connected is a no-op.
func (t *NetTransport) Close() error {
	t.mu.Lock()
	conn, bw, done := t.conn, t.bw, t.done
	t.conn = nil
	t.bw = nil
	t.pending = nil
	if t.cond != nil {
		t.cond.Broadcast()
	}
	t.mu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Close()
	<-done
	bufpool.PutWriter(bw)

	t.mu.Lock()
	t.pending = nil
	t.mu.Unlock()

	if err != nil {
		return xerrors.Errorf("failed to close connection: %w", err)
	}
	return nil
}
