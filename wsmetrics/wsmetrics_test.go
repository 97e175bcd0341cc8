package wsmetrics_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/streamwire/websocket"
	"github.com/streamwire/websocket/internal/test/assert"
	"github.com/streamwire/websocket/internal/test/wstest"
	"github.com/streamwire/websocket/wsmetrics"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := wsmetrics.New(reg, "test")

	tr := &wstest.Transport{Respond: wstest.Echo()}
	c := websocket.NewClient(tr, &websocket.ClientOptions{Observer: m})
	defer c.Close()

	err := c.Connect(context.Background(), "example.com", 80, "/")
	assert.Success(t, err)

	for _, msg := range []string{"hello", "world!"} {
		err = c.WriteFrame(websocket.OpText, []byte(msg))
		assert.Success(t, err)
		_, err = c.ReadFrame(context.Background())
		assert.Success(t, err)
	}

	assert.Equal(t, "handshakes", 1.0, testutil.ToFloat64(m.Handshakes.WithLabelValues("success")))
	assert.Equal(t, "frames read", 2.0, testutil.ToFloat64(m.Frames.WithLabelValues("read", "text")))
	assert.Equal(t, "frames written", 2.0, testutil.ToFloat64(m.Frames.WithLabelValues("written", "text")))
	assert.Equal(t, "bytes written", 11.0, testutil.ToFloat64(m.PayloadBytes.WithLabelValues("written")))
	assert.Equal(t, "histograms", 2, testutil.CollectAndCount(m.PayloadSize))
}

func TestMetricsHandshakeFailure(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := wsmetrics.New(reg, "")

	tr := &wstest.Transport{
		Respond: func([]byte) []byte {
			return []byte("HTTP/1.1 404 Not Found\r\n\r\n")
		},
	}
	c := websocket.NewClient(tr, &websocket.ClientOptions{Observer: m})
	defer c.Close()

	err := c.Connect(context.Background(), "example.com", 80, "/")
	assert.ErrorIs(t, websocket.ErrHandshakeFailure, err)

	assert.Equal(t, "failures", 1.0, testutil.ToFloat64(m.Handshakes.WithLabelValues("handshake failure")))

	n, err := testutil.GatherAndCount(reg, "websocket_handshakes_total")
	assert.Success(t, err)
	assert.Equal(t, "series", 1, n)
}
