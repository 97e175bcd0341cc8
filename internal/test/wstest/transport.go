// Package wstest provides an in-memory transport and scripted peers
// for testing WebSocket clients.
package wstest

import (
	"bytes"
	"context"
	"errors"
)

// Transport is an in-memory websocket.Transport.
//
// Bytes queued with Feed are what the client reads. Everything the client
// writes is kept until TakeWritten. If Respond is set, it is called on every
// Flush with the bytes written since the previous Flush and whatever it
// returns is queued for the client to read.
//
// Transport is not safe for concurrent use.
type Transport struct {
	ConnectErr error
	Respond    func(p []byte) []byte

	host      string
	port      int
	connected bool

	in        bytes.Buffer
	out       bytes.Buffer
	unflushed bytes.Buffer

	writeSizes []int
	flushes    int
	closes     int
}

func (t *Transport) Connect(ctx context.Context, host string, port int) error {
	if t.ConnectErr != nil {
		return t.ConnectErr
	}
	t.host = host
	t.port = port
	t.connected = true
	return nil
}

func (t *Transport) Connected() bool {
	return t.connected
}

func (t *Transport) Available() int {
	return t.in.Len()
}

func (t *Transport) ReadByte() (byte, error) {
	return t.in.ReadByte()
}

func (t *Transport) Write(p []byte) (int, error) {
	if !t.connected {
		return 0, errors.New("wstest: transport is not connected")
	}
	t.writeSizes = append(t.writeSizes, len(p))
	t.out.Write(p)
	t.unflushed.Write(p)
	return len(p), nil
}

func (t *Transport) Flush() error {
	if !t.connected {
		return errors.New("wstest: transport is not connected")
	}
	t.flushes++
	if t.Respond != nil && t.unflushed.Len() > 0 {
		t.Feed(t.Respond(bytes.Clone(t.unflushed.Bytes())))
	}
	t.unflushed.Reset()
	return nil
}

func (t *Transport) Close() error {
	t.connected = false
	t.closes++
	return nil
}

// Feed queues p for the client to read.
func (t *Transport) Feed(p []byte) {
	t.in.Write(p)
}

// Disconnect drops the connection as if the peer went away.
// Data already fed stays readable.
func (t *Transport) Disconnect() {
	t.connected = false
}

// TakeWritten returns everything written since the last call and the
// size of each Write call.
func (t *Transport) TakeWritten() ([]byte, []int) {
	p := bytes.Clone(t.out.Bytes())
	sizes := t.writeSizes
	t.out.Reset()
	t.writeSizes = nil
	return p, sizes
}

// Addr returns the host and port of the last successful Connect.
func (t *Transport) Addr() (string, int) {
	return t.host, t.port
}

// Flushes returns the number of Flush calls.
func (t *Transport) Flushes() int {
	return t.flushes
}

// Closes returns the number of Close calls.
func (t *Transport) Closes() int {
	return t.closes
}
