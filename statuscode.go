package websocket

import (
	"encoding/binary"
	"errors"

	"golang.org/x/xerrors"
)

// StatusCode represents a WebSocket status code carried by a close frame.
// https://tools.ietf.org/html/rfc6455#section-7.4
type StatusCode int

// These codes were retrieved from:
// https://www.iana.org/assignments/websocket/websocket.xhtml#close-code-number
const (
	StatusNormalClosure StatusCode = 1000 + iota
	StatusGoingAway
	StatusProtocolError
	StatusUnsupportedData
	_ // 1004 is reserved.
	// StatusNoStatusRcvd is reported for a close frame without a payload.
	// It is never sent on the wire.
	StatusNoStatusRcvd
	statusAbnormalClosure
	StatusInvalidFramePayloadData
	StatusPolicyViolation
	StatusMessageTooBig
	StatusMandatoryExtension
	StatusInternalError
	StatusServiceRestart
	StatusTryAgainLater
	StatusBadGateway
	statusTLSHandshake
)

// CloseStatus parses the status code and reason of a close frame.
// A close frame with an empty payload yields StatusNoStatusRcvd.
func (f Frame) CloseStatus() (StatusCode, string, error) {
	if f.Opcode != OpClose {
		return 0, "", xerrors.Errorf("not a close frame: %v", f.Opcode)
	}
	return parseClosePayload(f.Payload)
}

func parseClosePayload(p []byte) (StatusCode, string, error) {
	if len(p) == 0 {
		return StatusNoStatusRcvd, "", nil
	}

	if len(p) < 2 {
		return 0, "", errors.New("close payload too small, cannot even contain the 2 byte status code")
	}

	code := StatusCode(binary.BigEndian.Uint16(p))
	if !validWireCloseCode(code) {
		return 0, "", xerrors.Errorf("invalid status code %v", code)
	}

	return code, string(p[2:]), nil
}

// See http://www.iana.org/assignments/websocket/websocket.xhtml#close-code-number
// and https://tools.ietf.org/html/rfc6455#section-7.4.1
func validWireCloseCode(code StatusCode) bool {
	if code >= StatusNormalClosure && code <= statusTLSHandshake {
		switch code {
		case 1004, StatusNoStatusRcvd, statusAbnormalClosure, statusTLSHandshake:
			return false
		default:
			return true
		}
	}
	if code >= 3000 && code <= 4999 {
		return true
	}

	return false
}
