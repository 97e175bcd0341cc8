package wsjson_test

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/streamwire/websocket"
	"github.com/streamwire/websocket/internal/test/assert"
	"github.com/streamwire/websocket/internal/test/wstest"
	"github.com/streamwire/websocket/internal/test/xrand"
	"github.com/streamwire/websocket/wsjson"
)

func echoClient(t *testing.T) (*websocket.Client, *wstest.Transport) {
	t.Helper()

	tr := &wstest.Transport{Respond: wstest.Echo()}
	c := websocket.NewClient(tr, nil)
	t.Cleanup(func() {
		c.Close()
	})

	err := c.Connect(context.Background(), "example.com", 80, "/")
	assert.Success(t, err)
	return c, tr
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("echo", func(t *testing.T) {
		t.Parallel()

		c, _ := echoClient(t)

		type message struct {
			ID   int               `json:"id"`
			Body string            `json:"body"`
			Tags map[string]string `json:"tags"`
		}
		exp := message{
			ID:   42,
			Body: xrand.String(512),
			Tags: map[string]string{"room": "a"},
		}

		err := wsjson.Write(c, exp)
		assert.Success(t, err)

		var got message
		err = wsjson.Read(context.Background(), c, &got)
		assert.Success(t, err)
		assert.Equal(t, "message", exp, got)
	})

	t.Run("skipsPing", func(t *testing.T) {
		t.Parallel()

		c, tr := echoClient(t)
		tr.Feed([]byte{0x89, 0x00})
		tr.Feed([]byte{0x81, 0x07, '"', 'h', 'e', 'l', 'l', 'o', '"'})

		var v interface{}
		err := wsjson.Read(context.Background(), c, &v)
		assert.Success(t, err)
		assert.Equal(t, "value", "hello", v)
	})

	t.Run("binary", func(t *testing.T) {
		t.Parallel()

		c, _ := echoClient(t)
		err := c.WriteFrame(websocket.OpBinary, []byte("{}"))
		assert.Success(t, err)

		var v interface{}
		err = wsjson.Read(context.Background(), c, &v)
		assert.Contains(t, err, "unexpected frame type")
	})

	t.Run("peerClose", func(t *testing.T) {
		t.Parallel()

		c, tr := echoClient(t)
		tr.Feed([]byte{0x88, 0x02, 0x03, 0xe9})

		var v interface{}
		err := wsjson.Read(context.Background(), c, &v)
		assert.Contains(t, err, "closed by peer")
		assert.Equal(t, "state", websocket.StateClosed, c.State())
	})

	t.Run("tooLarge", func(t *testing.T) {
		t.Parallel()

		c, _ := echoClient(t)
		err := wsjson.Write(c, strings.Repeat("x", websocket.MaxPayloadLength))
		assert.ErrorIs(t, websocket.ErrNotSupported, err)
	})

	t.Run("badJSON", func(t *testing.T) {
		t.Parallel()

		c, _ := echoClient(t)
		err := wsjson.Write(c, make(chan int))
		assert.Contains(t, err, "failed to encode json")
	})
}

func BenchmarkJSON(b *testing.B) {
	sizes := []int{
		8,
		16,
		32,
		128,
		256,
		512,
		1024,
		2048,
		4096,
		8192,
		16384,
	}

	b.Run("json.Encoder", func(b *testing.B) {
		for _, size := range sizes {
			b.Run(strconv.Itoa(size), func(b *testing.B) {
				msg := xrand.String(size)
				b.SetBytes(int64(size))
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					json.NewEncoder(io.Discard).Encode(msg)
				}
			})
		}
	})
	b.Run("json.Marshal", func(b *testing.B) {
		for _, size := range sizes {
			b.Run(strconv.Itoa(size), func(b *testing.B) {
				msg := xrand.String(size)
				b.SetBytes(int64(size))
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					json.Marshal(msg)
				}
			})
		}
	})
}
