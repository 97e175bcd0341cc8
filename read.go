package websocket

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/streamwire/websocket/internal/errd"
)

// ReadFrame reads the next frame from the peer.
//
// If the client is not open or no data has arrived yet, ReadFrame returns
// NotAvailable immediately. Once the first byte of a frame has been read,
// the rest of the frame is waited for, checking every ReadPollInterval,
// until ctx is done (ReadTimeout). A frame abandoned this way leaves the
// stream in the middle of a frame and the client should be closed.
//
// Fragmented frames and frames using the 64 bit length encoding are
// reported as NotSupported. A masked frame whose 4 byte mask key has not
// fully arrived with its header is reported as InvalidFrame.
//
// When a close frame is read the client answers it and becomes closed.
// The close frame is still returned.
func (c *Client) ReadFrame(ctx context.Context) (_ Frame, err error) {
	if c.state != StateOpen || c.t.Available() == 0 {
		return Frame{}, ErrNotAvailable
	}

	defer errd.Wrap(&err, "failed to read frame")

	b0, err := c.t.ReadByte()
	if err != nil {
		return Frame{}, newError(NotAvailable, err)
	}
	if b0&finBit == 0 {
		c.log.Debug("read rejected fragmented frame", zap.Uint8("first_byte", b0))
		return Frame{}, newError(NotSupported, errors.New("fragmented frames are not supported"))
	}

	b1, err := c.readByte(ctx)
	if err != nil {
		return Frame{}, err
	}

	h := header{
		fin:           true,
		opcode:        Opcode(b0 &^ finBit),
		masked:        b1&maskBit != 0,
		payloadLength: int(b1 &^ maskBit),
	}

	switch h.payloadLength {
	case payloadLength16:
		hi, err := c.readByte(ctx)
		if err != nil {
			return Frame{}, err
		}
		lo, err := c.readByte(ctx)
		if err != nil {
			return Frame{}, err
		}
		h.payloadLength = int(hi)<<8 | int(lo)
	case payloadLength64:
		c.log.Debug("read rejected 64 bit payload length")
		return Frame{}, newError(NotSupported, errors.New("64 bit payload lengths are not supported"))
	}

	if h.masked {
		if c.t.Available() < len(h.maskKey) {
			return Frame{}, newError(InvalidFrame, errors.New("incomplete mask key"))
		}
		for i := range h.maskKey {
			h.maskKey[i], err = c.t.ReadByte()
			if err != nil {
				return Frame{}, newError(InvalidFrame, err)
			}
		}
	}

	p := make([]byte, h.payloadLength)
	for i := range p {
		p[i], err = c.readByte(ctx)
		if err != nil {
			return Frame{}, err
		}
	}
	if h.masked {
		mask(h.maskKey, 0, p)
	}

	c.log.Debug("frame read", zap.Stringer("opcode", h.opcode), zap.Int("length", len(p)), zap.Bool("masked", h.masked))
	c.obs.FrameRead(h.opcode, len(p))

	f := Frame{
		Opcode:  h.opcode,
		Payload: p,
	}
	if f.Opcode == OpClose {
		err = c.Close()
		if err != nil {
			c.log.Warn("failed to answer close frame", zap.Error(err))
		}
	}
	return f, nil
}

// readByte waits for the next byte from the transport.
func (c *Client) readByte(ctx context.Context) (byte, error) {
	err := waitAvailable(ctx, c.t, c.opts.ReadPollInterval)
	if err != nil {
		return 0, err
	}

	b, err := c.t.ReadByte()
	if err != nil {
		return 0, newError(NotAvailable, err)
	}
	return b, nil
}
