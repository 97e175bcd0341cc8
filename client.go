package websocket

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/streamwire/websocket/internal/errd"
)

// State is the connection state of a Client.
type State int

// State constants.
const (
	StateDisconnected State = iota
	// StateConnected means the transport is connected but the
	// handshake has not started.
	StateConnected
	StateHandshaking
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateHandshaking:
		return "handshaking"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Observer is notified of handshakes and frames.
// See the wsmetrics package for a Prometheus implementation.
type Observer interface {
	HandshakeDone(r Result)
	FrameRead(op Opcode, n int)
	FrameWritten(op Opcode, n int)
}

type nopObserver struct{}

func (nopObserver) HandshakeDone(Result)      {}
func (nopObserver) FrameRead(Opcode, int)    {}
func (nopObserver) FrameWritten(Opcode, int) {}

// ClientOptions represents the options available to pass to NewClient.
type ClientOptions struct {
	// Subprotocol is sent in the Sec-WebSocket-Protocol header if set.
	Subprotocol string

	// Rand is the source of the handshake key and of every mask key.
	// Defaults to crypto/rand.Reader.
	Rand io.Reader

	// Logger receives debug logs of the handshake and of every frame.
	// Defaults to a no-op logger.
	Logger *zap.Logger

	// Observer is notified of handshakes and frames.
	Observer Observer

	// HandshakeTimeout bounds Connect, including the transport connect.
	// Zero means Connect only ends when its context does.
	HandshakeTimeout time.Duration

	// HandshakePollInterval is how often the transport is checked for the
	// handshake response. Defaults to 100ms.
	HandshakePollInterval time.Duration

	// ReadPollInterval is how often the transport is checked for the rest
	// of a frame being read. Defaults to 10ms.
	ReadPollInterval time.Duration

	// WriteBufferSize is the size of the chunks written to the transport.
	// Defaults to 1360 bytes.
	WriteBufferSize int

	// CloseGrace is how long Close waits after sending the close frame
	// before closing the transport. Defaults to 10ms.
	CloseGrace time.Duration
}

func (opts *ClientOptions) cloneWithDefaults() *ClientOptions {
	var o ClientOptions
	if opts != nil {
		o = *opts
	}
	if o.Rand == nil {
		o.Rand = rand.Reader
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.HandshakePollInterval <= 0 {
		o.HandshakePollInterval = 100 * time.Millisecond
	}
	if o.ReadPollInterval <= 0 {
		o.ReadPollInterval = 10 * time.Millisecond
	}
	if o.WriteBufferSize <= 0 {
		o.WriteBufferSize = 1360
	}
	if o.CloseGrace <= 0 {
		o.CloseGrace = 10 * time.Millisecond
	}
	return &o
}

// Client is a WebSocket client running over a Transport.
//
// A Client must not be used concurrently. Be sure to call Close when you
// are finished with it; a Client that is garbage collected while open is
// closed then.
type Client struct {
	t     Transport
	opts  *ClientOptions
	rand  io.Reader
	log   *zap.Logger
	obs   Observer
	state State
}

// NewClient returns a disconnected Client that will run over t.
func NewClient(t Transport, opts *ClientOptions) *Client {
	opts = opts.cloneWithDefaults()

	c := &Client{
		t:    t,
		opts: opts,
		rand: opts.Rand,
		log:  opts.Logger.Named("websocket"),
		obs:  opts.Observer,
	}

	runtime.SetFinalizer(c, func(c *Client) {
		c.Close()
	})

	return c
}

// Connect connects the transport to host:port and performs the WebSocket
// handshake for path. host is sent as is in the Host header.
//
// A transport failure is reported as ConnectFailure and a rejected
// handshake as HandshakeFailure, after which the transport is closed and
// Connect may be called again. Nothing is retried.
func (c *Client) Connect(ctx context.Context, host string, port int, path string) error {
	return c.connect(ctx, host, port, path, host)
}

// connect is Connect with a Host header that may differ from the host
// the transport connects to, such as the host and port of a URL.
func (c *Client) connect(ctx context.Context, host string, port int, path, hostHeader string) error {
	switch c.state {
	case StateDisconnected:
	case StateClosed:
		return newError(ConnectFailure, errors.New("client is closed"))
	default:
		return newError(ConnectFailure, fmt.Errorf("client is already %v", c.state))
	}

	if c.opts.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.HandshakeTimeout)
		defer cancel()
	}

	log := c.log.With(zap.String("host", host), zap.Int("port", port), zap.String("path", path))

	err := c.t.Connect(ctx, host, port)
	if err != nil {
		log.Debug("transport connect failed", zap.Error(err))
		return newError(ConnectFailure, err)
	}
	log.Debug("transport connected")
	c.state = StateConnected

	err = c.handshake(ctx, hostHeader, path, c.opts.Subprotocol)
	if err != nil {
		log.Debug("handshake failed", zap.Error(err))
		c.obs.HandshakeDone(HandshakeFailure)

		cerr := c.t.Close()
		if cerr != nil {
			log.Debug("failed to close transport", zap.Error(cerr))
		}
		c.state = StateDisconnected
		return newError(HandshakeFailure, err)
	}
	log.Debug("handshake completed")
	c.obs.HandshakeDone(Success)

	c.state = StateOpen
	return nil
}

// Close sends a close frame if the connection is open, waits CloseGrace
// for the peer to see it and closes the transport.
//
// Only the first call does anything; later calls return nil.
func (c *Client) Close() (err error) {
	if c.state == StateClosed {
		return nil
	}
	defer errd.Wrap(&err, "failed to close WebSocket")

	runtime.SetFinalizer(c, nil)

	if c.state == StateOpen && c.t.Connected() {
		err = c.writeFrame(OpClose, nil)
		if err != nil {
			c.log.Debug("failed to write close frame", zap.Error(err))
		}
		time.Sleep(c.opts.CloseGrace)
	}
	c.state = StateClosed

	cerr := c.t.Close()
	if err == nil {
		err = cerr
	}
	return err
}

// State returns the connection state.
func (c *Client) State() State {
	return c.state
}

// Connected reports whether the handshake completed and the transport
// is still connected.
func (c *Client) Connected() bool {
	return c.state == StateOpen && c.t.Connected()
}

// Available returns the number of received bytes not yet read.
func (c *Client) Available() int {
	return c.t.Available()
}

// WaitForAvailable blocks until data from the peer is available,
// checking every ReadPollInterval.
func (c *Client) WaitForAvailable(ctx context.Context) error {
	return waitAvailable(ctx, c.t, c.opts.ReadPollInterval)
}
