// Package wsmsg reads the frames that carry messages for the wsjson and
// wspb packages.
package wsmsg

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/streamwire/websocket"
)

// NextData waits for and returns the next data frame from c.
// Ping and pong frames received before it are discarded and a close frame
// is reported as an error.
func NextData(ctx context.Context, c *websocket.Client) (websocket.Frame, error) {
	for {
		err := c.WaitForAvailable(ctx)
		if err != nil {
			return websocket.Frame{}, err
		}

		f, err := c.ReadFrame(ctx)
		if err != nil {
			return websocket.Frame{}, err
		}

		switch f.Opcode {
		case websocket.OpPing, websocket.OpPong:
			continue
		case websocket.OpClose:
			code, reason, _ := f.CloseStatus()
			return websocket.Frame{}, xerrors.Errorf("connection closed by peer: %v %q", code, reason)
		}
		return f, nil
	}
}
