// Package wsjson provides helpers for JSON messages.
package wsjson

import (
	"context"
	"encoding/json"

	"golang.org/x/xerrors"

	"github.com/streamwire/websocket"
	"github.com/streamwire/websocket/internal/wsmsg"
)

// Read reads the next text frame from c and decodes it into v.
// Ping and pong frames received before it are discarded.
func Read(ctx context.Context, c *websocket.Client, v interface{}) error {
	err := read(ctx, c, v)
	if err != nil {
		return xerrors.Errorf("failed to read json: %w", err)
	}
	return nil
}

func read(ctx context.Context, c *websocket.Client, v interface{}) error {
	f, err := wsmsg.NextData(ctx, c)
	if err != nil {
		return err
	}

	if f.Opcode != websocket.OpText {
		return xerrors.Errorf("unexpected frame type for json (expected %v): %v", websocket.OpText, f.Opcode)
	}

	err = json.Unmarshal(f.Payload, v)
	if err != nil {
		return xerrors.Errorf("failed to decode json: %w", err)
	}

	return nil
}

// Write encodes v and writes it to c as a single text frame.
// The encoding must fit in websocket.MaxPayloadLength bytes.
func Write(c *websocket.Client, v interface{}) error {
	err := write(c, v)
	if err != nil {
		return xerrors.Errorf("failed to write json: %w", err)
	}
	return nil
}

func write(c *websocket.Client, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return xerrors.Errorf("failed to encode json: %w", err)
	}

	return c.WriteFrame(websocket.OpText, b)
}
