package websocket

import (
	"bytes"
	"errors"
	"io"

	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/streamwire/websocket/internal/bufpool"
	"github.com/streamwire/websocket/internal/errd"
)

// WriteFrame writes p as a single masked frame with the given opcode.
//
// It returns NotAvailable without writing anything if the client is not
// open, and NotSupported without writing anything if p is longer than
// MaxPayloadLength.
func (c *Client) WriteFrame(op Opcode, p []byte) error {
	if c.state != StateOpen {
		c.log.Debug("write rejected", zap.Stringer("state", c.state))
		return newError(NotAvailable, xerrors.Errorf("connection is %v", c.state))
	}
	return c.writeFrame(op, p)
}

func (c *Client) writeFrame(op Opcode, p []byte) (err error) {
	defer errd.Wrap(&err, "failed to write %v frame", op)
	defer func() {
		if err != nil && ResultOf(err) < 0 {
			err = newError(NotAvailable, err)
		}
	}()

	if !c.t.Connected() {
		return newError(NotAvailable, errors.New("transport is not connected"))
	}
	if len(p) > MaxPayloadLength {
		return newError(NotSupported, xerrors.Errorf("payload length %v exceeds the maximum of %v", len(p), MaxPayloadLength))
	}

	h := header{
		fin:           true,
		opcode:        op,
		payloadLength: len(p),
		masked:        true,
	}
	_, err = io.ReadFull(c.rand, h.maskKey[:])
	if err != nil {
		return xerrors.Errorf("failed to generate masking key: %w", err)
	}

	tb := newTxBuffer(c.t, c.opts.WriteBufferSize)
	defer tb.release(&err)

	var hb [maxHeaderSize]byte
	_, err = tb.Write(h.bytes(hb[:0]))
	if err != nil {
		return err
	}

	err = tb.writeMasked(p, h.maskKey)
	if err != nil {
		return err
	}

	c.log.Debug("frame written", zap.Stringer("opcode", op), zap.Int("length", len(p)))
	c.obs.FrameWritten(op, len(p))
	return nil
}

// txBuffer batches writes to a Transport in chunks of at most size bytes.
//
// Whoever creates a txBuffer must defer its release so that buffered bytes
// always reach the transport, whichever way the writing function returns.
type txBuffer struct {
	t    Transport
	size int
	buf  *bytes.Buffer
	err  error
}

func newTxBuffer(t Transport, size int) *txBuffer {
	buf := bufpool.Get()
	buf.Grow(size)
	return &txBuffer{
		t:    t,
		size: size,
		buf:  buf,
	}
}

func (tb *txBuffer) free() int {
	return tb.size - tb.buf.Len()
}

// Write buffers p, flushing to the transport every time the buffer fills.
func (tb *txBuffer) Write(p []byte) (int, error) {
	var n int
	for len(p) > 0 && tb.err == nil {
		if tb.free() == 0 {
			tb.flush()
			continue
		}

		j := min(len(p), tb.free())
		tb.buf.Write(p[:j])
		p = p[j:]
		n += j
	}
	return n, tb.err
}

// writeMasked buffers p masked with key. p itself is not modified.
func (tb *txBuffer) writeMasked(p []byte, key [4]byte) error {
	var pos int
	for len(p) > 0 && tb.err == nil {
		if tb.free() == 0 {
			tb.flush()
			continue
		}

		// Start of the next write in the buffer.
		i := tb.buf.Len()

		j := min(len(p), tb.free())
		tb.buf.Write(p[:j])
		pos = mask(key, pos, tb.buf.Bytes()[i:])
		p = p[j:]
	}
	return tb.err
}

func (tb *txBuffer) flush() error {
	if tb.err != nil {
		return tb.err
	}
	if tb.buf.Len() == 0 {
		return nil
	}

	_, tb.err = tb.t.Write(tb.buf.Bytes())
	tb.buf.Reset()
	return tb.err
}

// release flushes pending bytes and the transport, then returns the buffer
// to the pool. A flush error is stored in *err unless it already holds one.
func (tb *txBuffer) release(err *error) {
	ferr := tb.flush()
	if ferr == nil {
		ferr = tb.t.Flush()
	}

	bufpool.Put(tb.buf)
	tb.buf = nil

	if *err == nil && ferr != nil {
		*err = xerrors.Errorf("failed to flush: %w", ferr)
	}
}
