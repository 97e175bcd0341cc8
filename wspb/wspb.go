// Package wspb provides helpers for protobuf messages.
package wspb

import (
	"context"

	"github.com/golang/protobuf/proto"
	"golang.org/x/xerrors"

	"github.com/streamwire/websocket"
	"github.com/streamwire/websocket/internal/wsmsg"
)

// Read reads the next binary frame from c and unmarshals it into v.
// Ping and pong frames received before it are discarded.
func Read(ctx context.Context, c *websocket.Client, v proto.Message) error {
	err := read(ctx, c, v)
	if err != nil {
		return xerrors.Errorf("failed to read protobuf: %w", err)
	}
	return nil
}

func read(ctx context.Context, c *websocket.Client, v proto.Message) error {
	f, err := wsmsg.NextData(ctx, c)
	if err != nil {
		return err
	}

	if f.Opcode != websocket.OpBinary {
		return xerrors.Errorf("unexpected frame type for protobuf (expected %v): %v", websocket.OpBinary, f.Opcode)
	}

	err = proto.Unmarshal(f.Payload, v)
	if err != nil {
		return xerrors.Errorf("failed to unmarshal protobuf: %w", err)
	}

	return nil
}

// Write marshals v and writes it to c as a single binary frame.
func Write(c *websocket.Client, v proto.Message) error {
	err := write(c, v)
	if err != nil {
		return xerrors.Errorf("failed to write protobuf: %w", err)
	}
	return nil
}

func write(c *websocket.Client, v proto.Message) error {
	b, err := proto.Marshal(v)
	if err != nil {
		return xerrors.Errorf("failed to marshal protobuf: %w", err)
	}

	return c.WriteFrame(websocket.OpBinary, b)
}
