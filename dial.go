package websocket

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"
	"strconv"

	"golang.org/x/xerrors"
)

// DialOptions represents the options available to pass to Dial.
type DialOptions struct {
	ClientOptions

	// Dialer is used to open the TCP connection.
	Dialer *net.Dialer

	// TLSConfig is used for wss URLs.
	TLSConfig *tls.Config
}

// Dial connects a new Client to the WebSocket server at u over a
// NetTransport. u must use the ws or wss scheme.
//
// The returned error carries ConnectFailure or HandshakeFailure,
// see Connect.
func Dial(ctx context.Context, u string, opts *DialOptions) (*Client, error) {
	if opts == nil {
		opts = &DialOptions{}
	}

	target, err := parseURL(u)
	if err != nil {
		return nil, newError(ConnectFailure, err)
	}

	t := &NetTransport{
		Dialer: opts.Dialer,
	}
	if target.tls {
		t.TLSConfig = opts.TLSConfig
		if t.TLSConfig == nil {
			t.TLSConfig = &tls.Config{}
		}
	}

	c := NewClient(t, &opts.ClientOptions)
	err = c.connect(ctx, target.host, target.port, target.path, target.hostHeader)
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

type dialTarget struct {
	host string
	port int
	path string
	tls  bool
	// hostHeader is the URL's host with its explicit port, if any,
	// and IPv6 brackets.
	hostHeader string
}

func parseURL(u string) (dialTarget, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return dialTarget{}, xerrors.Errorf("failed to parse url: %w", err)
	}

	var t dialTarget
	switch parsedURL.Scheme {
	case "ws":
		t.port = 80
	case "wss":
		t.port = 443
		t.tls = true
	default:
		return dialTarget{}, xerrors.Errorf("unexpected url scheme: %q", parsedURL.Scheme)
	}

	t.host = parsedURL.Hostname()
	t.hostHeader = parsedURL.Host
	if t.host == "" {
		return dialTarget{}, xerrors.Errorf("url has no host: %q", u)
	}
	if p := parsedURL.Port(); p != "" {
		t.port, err = strconv.Atoi(p)
		if err != nil {
			return dialTarget{}, xerrors.Errorf("invalid port %q: %w", p, err)
		}
	}
	t.path = parsedURL.RequestURI()

	return t, nil
}
