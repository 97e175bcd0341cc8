package websocket

import (
	"encoding/binary"
)

// mask applies the WebSocket masking algorithm to b with the given key
// where pos is the position in the key of the first byte of b.
// See https://tools.ietf.org/html/rfc6455#section-5.3
//
// Masking and unmasking are the same operation.
//
// The returned value is the position in the key of the next byte
// so that a payload can be masked in pieces.
func mask(key [4]byte, pos int, b []byte) int {
	// If the payload is greater than or equal to 16 bytes, then it's worth
	// masking 8 bytes at a time.
	// Optimization from https://github.com/golang/go/issues/31586#issuecomment-485530859
	if len(b) >= 16 {
		var alignedKey [8]byte
		for i := range alignedKey {
			alignedKey[i] = key[(i+pos)&3]
		}
		k := binary.LittleEndian.Uint64(alignedKey[:])

		for len(b) >= 8 {
			v := binary.LittleEndian.Uint64(b)
			binary.LittleEndian.PutUint64(b, v^k)
			b = b[8:]
		}
	}

	for i := range b {
		b[i] ^= key[pos&3]
		pos++
	}

	return pos & 3
}
