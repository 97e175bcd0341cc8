package websocket

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"
	"golang.org/x/xerrors"

	"github.com/streamwire/websocket/internal/errd"
)

var keyGUID = []byte("258EAFA5-E914-47DA-95CA-C5AB0DC85B11")

// Prefixes matched case insensitively against each line of the
// handshake response.
const (
	statusLine101       = "http/1.1 101 "
	headerUpgrade       = "upgrade: websocket"
	headerConnection    = "connection: upgrade"
	headerAcceptPrefix  = "sec-websocket-accept: "
	maxResponseLineSize = 8 << 10
)

// handshakeResponse holds what was learned from the server's
// handshake response.
type handshakeResponse struct {
	status101  bool
	upgrade    bool
	connection bool
	accept     string
}

func (r handshakeResponse) valid() bool {
	return r.status101 &&
		r.upgrade &&
		r.connection &&
		r.accept != ""
}

// parseLine records whatever line tells about the upgrade.
// The accept key is kept as received.
func (r *handshakeResponse) parseLine(line string) {
	switch {
	case hasPrefixFold(line, statusLine101):
		r.status101 = true
	case hasPrefixFold(line, headerUpgrade):
		r.upgrade = true
	case hasPrefixFold(line, headerConnection):
		r.connection = true
	case hasPrefixFold(line, headerAcceptPrefix):
		r.accept = line[len(headerAcceptPrefix):]
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// handshake performs the opening handshake over the connected transport.
// See https://tools.ietf.org/html/rfc6455#section-4.1
func (c *Client) handshake(ctx context.Context, host, path, protocol string) (err error) {
	defer errd.Wrap(&err, "failed to perform WebSocket handshake")

	if !c.t.Connected() {
		return errors.New("transport is not connected")
	}

	if path == "" {
		path = "/"
	}
	err = verifyRequest(host, path, protocol)
	if err != nil {
		return err
	}

	key, err := secWebSocketKey(c.rand)
	if err != nil {
		return err
	}
	c.log.Debug("generated handshake key", zap.String("key", key))

	c.state = StateHandshaking
	err = c.requestUpgrade(host, path, key, protocol)
	if err != nil {
		return err
	}

	err = waitAvailable(ctx, c.t, c.opts.HandshakePollInterval)
	if err != nil {
		return xerrors.Errorf("failed to wait for handshake response: %w", err)
	}

	resp, err := c.readResponse(ctx)
	if err != nil {
		return err
	}
	c.log.Debug("parsed handshake response",
		zap.Bool("status_101", resp.status101),
		zap.Bool("upgrade", resp.upgrade),
		zap.Bool("connection", resp.connection),
		zap.String("accept", resp.accept),
	)
	if !resp.valid() {
		return xerrors.Errorf("invalid handshake response: %+v", resp)
	}

	expAccept := secWebSocketAccept(key)
	c.log.Debug("comparing accept keys", zap.String("received", resp.accept), zap.String("expected", expAccept))
	if resp.accept != expAccept {
		return xerrors.Errorf("WebSocket protocol violation: invalid Sec-WebSocket-Accept %q, key %q", resp.accept, key)
	}

	return nil
}

func verifyRequest(host, path, protocol string) error {
	if !httpguts.ValidHostHeader(host) || host == "" {
		return xerrors.Errorf("invalid host %q", host)
	}
	if !httpguts.ValidHeaderFieldValue(path) || strings.ContainsAny(path, " \t") {
		return xerrors.Errorf("invalid path %q", path)
	}
	if !httpguts.ValidHeaderFieldValue(protocol) {
		return xerrors.Errorf("invalid subprotocol %q", protocol)
	}
	return nil
}

func (c *Client) requestUpgrade(host, path, key, protocol string) (err error) {
	tb := newTxBuffer(c.t, c.opts.WriteBufferSize)
	defer tb.release(&err)

	fmt.Fprintf(tb, "GET %s HTTP/1.1\r\n", path)
	fmt.Fprintf(tb, "Upgrade: websocket\r\n")
	fmt.Fprintf(tb, "Connection: Upgrade\r\n")
	fmt.Fprintf(tb, "Host: %s\r\n", host)
	fmt.Fprintf(tb, "Sec-WebSocket-Key: %s\r\n", key)
	if protocol != "" {
		fmt.Fprintf(tb, "Sec-WebSocket-Protocol: %s\r\n", protocol)
	}
	fmt.Fprintf(tb, "Sec-WebSocket-Version: 13\r\n")
	_, err = tb.Write([]byte("\r\n"))
	if err != nil {
		return xerrors.Errorf("failed to write upgrade request: %w", err)
	}
	return nil
}

// readResponse reads the response up to and including the blank line
// ending the headers and no further.
func (c *Client) readResponse(ctx context.Context) (handshakeResponse, error) {
	var resp handshakeResponse
	for {
		line, err := c.readLine(ctx)
		if err != nil {
			return resp, xerrors.Errorf("failed to read handshake response: %w", err)
		}
		if line == "" {
			return resp, nil
		}
		c.log.Debug("handshake response line", zap.String("line", line))
		resp.parseLine(line)
	}
}

// readLine reads up to the next LF and strips it along with a trailing CR.
func (c *Client) readLine(ctx context.Context) (string, error) {
	var sb strings.Builder
	for {
		b, err := c.readByte(ctx)
		if err != nil {
			return "", err
		}
		if b == '\n' {
			break
		}
		if sb.Len() >= maxResponseLineSize {
			return "", xerrors.Errorf("line exceeds %v bytes", maxResponseLineSize)
		}
		sb.WriteByte(b)
	}
	return strings.TrimSuffix(sb.String(), "\r"), nil
}

func secWebSocketKey(rr io.Reader) (string, error) {
	b := make([]byte, 16)
	_, err := io.ReadFull(rr, b)
	if err != nil {
		return "", xerrors.Errorf("failed to read random data from rand.Reader: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func secWebSocketAccept(secWebSocketKey string) string {
	h := sha1.New()
	h.Write([]byte(secWebSocketKey))
	h.Write(keyGUID)

	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
