package websocket

import (
	"errors"
	"io"
	"testing"

	"golang.org/x/xerrors"

	"github.com/streamwire/websocket/internal/test/assert"
)

func TestError(t *testing.T) {
	t.Parallel()

	err := newError(InvalidFrame, io.ErrUnexpectedEOF)
	assert.Equal(t, "message", "websocket: invalid frame: unexpected EOF", err.Error())
	assert.ErrorIs(t, ErrInvalidFrame, err)
	assert.ErrorIs(t, io.ErrUnexpectedEOF, err)
	if errors.Is(err, ErrNotAvailable) {
		t.Fatal("invalid frame error matched ErrNotAvailable")
	}

	wrapped := xerrors.Errorf("failed to read: %w", err)
	assert.ErrorIs(t, ErrInvalidFrame, wrapped)
	assert.Equal(t, "result", InvalidFrame, ResultOf(wrapped))

	assert.Equal(t, "sentinel message", "websocket: read timeout", ErrReadTimeout.Error())
}

func TestResultOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "nil", Success, ResultOf(nil))
	assert.Equal(t, "foreign", Result(-1), ResultOf(io.EOF))
	assert.Equal(t, "sentinel", HandshakeFailure, ResultOf(ErrHandshakeFailure))
}

func TestResultString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", "success", Success.String())
	assert.Equal(t, "not supported", "not supported", NotSupported.String())
	assert.Equal(t, "connect failure", "connect failure", ConnectFailure.String())
	assert.Equal(t, "unknown", "Result(99)", Result(99).String())
}
