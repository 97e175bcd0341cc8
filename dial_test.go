package websocket

import (
	"context"
	"testing"

	"github.com/streamwire/websocket/internal/test/assert"
	"github.com/streamwire/websocket/internal/test/wstest"
)

func TestParseURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		url     string
		exp     dialTarget
		success bool
	}{
		{
			name:    "ws",
			url:     "ws://example.com",
			exp:     dialTarget{host: "example.com", port: 80, path: "/", hostHeader: "example.com"},
			success: true,
		},
		{
			name:    "wss",
			url:     "wss://example.com/chat",
			exp:     dialTarget{host: "example.com", port: 443, path: "/chat", tls: true, hostHeader: "example.com"},
			success: true,
		},
		{
			name:    "port",
			url:     "ws://127.0.0.1:8080/echo?room=a",
			exp:     dialTarget{host: "127.0.0.1", port: 8080, path: "/echo?room=a", hostHeader: "127.0.0.1:8080"},
			success: true,
		},
		{
			name:    "ipv6",
			url:     "ws://[::1]:9000/",
			exp:     dialTarget{host: "::1", port: 9000, path: "/", hostHeader: "[::1]:9000"},
			success: true,
		},
		{
			name: "badURL",
			url:  "://noscheme",
		},
		{
			name: "badScheme",
			url:  "http://example.com",
		},
		{
			name: "noHost",
			url:  "ws:///path",
		},
		{
			name: "badPort",
			url:  "ws://example.com:port/",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			target, err := parseURL(tc.url)
			if !tc.success {
				assert.Error(t, err)
				return
			}
			assert.Success(t, err)
			assert.Equal(t, "target", tc.exp, target)
		})
	}
}

func TestConnectHostHeader(t *testing.T) {
	t.Parallel()

	target, err := parseURL("ws://[::1]:9000/chat")
	assert.Success(t, err)

	tr := &wstest.Transport{Respond: wstest.Upgrader()}
	c := newTestClient(t, tr, nil)
	err = c.connect(context.Background(), target.host, target.port, target.path, target.hostHeader)
	assert.Success(t, err)

	host, port := tr.Addr()
	assert.Equal(t, "dial host", "::1", host)
	assert.Equal(t, "dial port", 9000, port)

	written, _ := tr.TakeWritten()
	assert.Contains(t, string(written), "\r\nHost: [::1]:9000\r\n")
}

func TestBadDials(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		url  string
	}{
		{
			name: "badURLScheme",
			url:  "ftp://example.com",
		},
		{
			name: "refused",
			url:  "ws://127.0.0.1:1",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := Dial(context.Background(), tc.url, nil)
			assert.ErrorIs(t, ErrConnectFailure, err)
			if c != nil {
				t.Fatal("expected nil client")
			}
		})
	}
}
