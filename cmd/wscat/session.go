package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/streamwire/websocket"
)

// session owns a client. Every client call happens in run.
type session struct {
	c            *websocket.Client
	log          *zap.Logger
	out          io.Writer
	pollInterval time.Duration
	// readTimeout bounds reading the rest of a frame once it started.
	// Zero means no bound.
	readTimeout time.Duration
}

// run sends every line received on lines and prints received frames
// until lines is closed, the connection ends or ctx is done.
func (s *session) run(ctx context.Context, lines <-chan string) error {
	t := time.NewTicker(s.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				_, err := s.drain(ctx)
				return err
			}
			err := s.c.WriteFrame(websocket.OpText, []byte(line))
			if err != nil {
				return xerrors.Errorf("failed to send line: %w", err)
			}
		case <-t.C:
			done, err := s.drain(ctx)
			if err != nil || done {
				return err
			}
		}
	}
}

// drain handles every frame already received.
// It reports whether the connection is over.
func (s *session) drain(ctx context.Context) (bool, error) {
	for s.c.Available() > 0 {
		done, err := s.readFrame(ctx)
		if err != nil || done {
			return done, err
		}
	}
	if !s.c.Connected() {
		s.log.Info("connection lost")
		return true, nil
	}
	return false, nil
}

func (s *session) readFrame(ctx context.Context) (bool, error) {
	if s.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.readTimeout)
		defer cancel()
	}

	f, err := s.c.ReadFrame(ctx)
	if err != nil {
		return false, xerrors.Errorf("failed to receive frame: %w", err)
	}

	switch f.Opcode {
	case websocket.OpText:
		fmt.Fprintln(s.out, string(f.Payload))
	case websocket.OpBinary:
		fmt.Fprintln(s.out, hex.EncodeToString(f.Payload))
	case websocket.OpPing:
		err = s.c.WriteFrame(websocket.OpPong, f.Payload)
		if err != nil {
			return false, xerrors.Errorf("failed to answer ping: %w", err)
		}
	case websocket.OpClose:
		code, reason, err := f.CloseStatus()
		if err != nil {
			s.log.Warn("invalid close frame", zap.Error(err))
		}
		s.log.Info("closed by peer", zap.Int("code", int(code)), zap.String("reason", reason))
		return true, nil
	case websocket.OpPong:
	default:
		s.log.Warn("ignoring frame", zap.Stringer("opcode", f.Opcode), zap.Int("length", len(f.Payload)))
	}
	return false, nil
}

// readLines sends every line of r on lines and closes it at EOF.
func readLines(ctx context.Context, r io.Reader, lines chan<- string) {
	defer close(lines)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 4096), websocket.MaxPayloadLength)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
}
