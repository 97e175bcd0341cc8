package websocket

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/gobwas/ws"

	"github.com/streamwire/websocket/internal/test/assert"
	"github.com/streamwire/websocket/internal/test/xrand"
)

func TestHeaderBytes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		h    header
		exp  []byte
	}{
		{
			name: "empty",
			h:    header{fin: true, opcode: OpText},
			exp:  []byte{0x81, 0x00},
		},
		{
			name: "125",
			h:    header{fin: true, opcode: OpBinary, payloadLength: 125},
			exp:  []byte{0x82, 0x7d},
		},
		{
			name: "126",
			h:    header{fin: true, opcode: OpBinary, payloadLength: 126},
			exp:  []byte{0x82, 0x7e, 0x00, 0x7e},
		},
		{
			name: "65535",
			h:    header{fin: true, opcode: OpBinary, payloadLength: 65535},
			exp:  []byte{0x82, 0x7e, 0xff, 0xff},
		},
		{
			name: "masked",
			h:    header{fin: true, opcode: OpText, payloadLength: 5, masked: true, maskKey: [4]byte{1, 2, 3, 4}},
			exp:  []byte{0x81, 0x85, 1, 2, 3, 4},
		},
		{
			name: "maskedClose",
			h:    header{fin: true, opcode: OpClose, masked: true, maskKey: [4]byte{9, 9, 9, 9}},
			exp:  []byte{0x88, 0x80, 9, 9, 9, 9},
		},
		{
			name: "noFin",
			h:    header{opcode: OpBinary},
			exp:  []byte{0x02, 0x00},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, "header", tc.exp, tc.h.bytes(nil))
		})
	}
}

func TestHeaderGobwas(t *testing.T) {
	t.Parallel()

	lengths := []int{0, 1, 124, 125, 126, 127, 1360, 65534, 65535}
	for _, n := range lengths {
		n := n
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			t.Parallel()

			for i := 0; i < 100; i++ {
				h := header{
					fin:           xrand.Bool(),
					opcode:        Opcode(xrand.Int(16)),
					payloadLength: n,
					masked:        xrand.Bool(),
				}
				if h.masked {
					copy(h.maskKey[:], xrand.Bytes(4))
				}

				b := h.bytes(nil)
				assert.Equal(t, "header size", ws.HeaderSize(ws.Header{
					Length: int64(n),
					Masked: h.masked,
				}), len(b))

				gh, err := ws.ReadHeader(bytes.NewReader(b))
				assert.Success(t, err)
				assert.Equal(t, "fin", h.fin, gh.Fin)
				assert.Equal(t, "opcode", byte(h.opcode), byte(gh.OpCode))
				assert.Equal(t, "length", int64(h.payloadLength), gh.Length)
				assert.Equal(t, "masked", h.masked, gh.Masked)
				if h.masked {
					assert.Equal(t, "mask key", h.maskKey, gh.Mask)
				}
			}
		})
	}
}

func TestOpcode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		op      Opcode
		name    string
		control bool
		data    bool
	}{
		{op: OpContinuation, name: "continuation"},
		{op: OpText, name: "text", data: true},
		{op: OpBinary, name: "binary", data: true},
		{op: 3, name: "Opcode(3)"},
		{op: OpClose, name: "close", control: true},
		{op: OpPing, name: "ping", control: true},
		{op: OpPong, name: "pong", control: true},
		{op: 15, name: "Opcode(15)"},
	}

	for _, tc := range testCases {
		assert.Equal(t, "name", tc.name, tc.op.String())
		assert.Equal(t, tc.name+" control", tc.control, tc.op.Control())
		assert.Equal(t, tc.name+" data", tc.data, tc.op.Data())
	}

	assert.Equal(t, "close", byte(0x8), byte(OpClose))
	assert.Equal(t, "pong", byte(0xa), byte(OpPong))
}
