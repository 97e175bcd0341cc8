package websocket

import (
	"encoding/binary"
	"math"
)

const (
	finBit  = 1 << 7
	maskBit = 1 << 7

	payloadLength16 = 126
	payloadLength64 = 127

	// MaxPayloadLength is the largest payload that fits the 16 bit length
	// encoding, the largest frame this client reads or writes.
	MaxPayloadLength = math.MaxUint16
)

// First byte contains fin and the opcode.
// Second byte contains the mask flag and the payload length code.
// Next 2 bytes are the extended 16 bit payload length.
// Last 4 bytes are the mask key.
// https://tools.ietf.org/html/rfc6455#section-5.2
const maxHeaderSize = 1 + 1 + 2 + 4

// Frame is a single, unfragmented WebSocket frame received from the peer.
type Frame struct {
	Opcode  Opcode
	Payload []byte
}

// header represents the parts of a frame header this client understands.
// See https://tools.ietf.org/html/rfc6455#section-5.2
type header struct {
	fin    bool
	opcode Opcode

	payloadLength int

	masked  bool
	maskKey [4]byte
}

// bytes appends the encoded header to b.
// The payload length must already be known to be at most MaxPayloadLength.
func (h header) bytes(b []byte) []byte {
	b0 := byte(h.opcode)
	if h.fin {
		b0 |= finBit
	}

	var b1 byte
	if h.masked {
		b1 |= maskBit
	}

	switch {
	case h.payloadLength < payloadLength16:
		b = append(b, b0, b1|byte(h.payloadLength))
	default:
		b = append(b, b0, b1|payloadLength16)
		b = binary.BigEndian.AppendUint16(b, uint16(h.payloadLength))
	}

	if h.masked {
		b = append(b, h.maskKey[:]...)
	}
	return b
}
