package wstest

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gobwas/ws"
)

// AcceptKey computes the Sec-WebSocket-Accept value for key.
func AcceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key))
	h.Write([]byte("258EAFA5-E914-47DA-95CA-C5AB0DC85B11"))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// RequestKey returns the Sec-WebSocket-Key of a handshake request.
func RequestKey(req []byte) string {
	s := bufio.NewScanner(bytes.NewReader(req))
	for s.Scan() {
		k, v, ok := strings.Cut(s.Text(), ":")
		if ok && strings.EqualFold(k, "Sec-WebSocket-Key") {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// HandshakeResponse returns a 101 response whose accept key is computed
// from key. Extra header lines are inserted before the blank line.
func HandshakeResponse(key string, extra ...string) string {
	var sb strings.Builder
	sb.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	sb.WriteString("Upgrade: websocket\r\n")
	sb.WriteString("Connection: Upgrade\r\n")
	fmt.Fprintf(&sb, "Sec-WebSocket-Accept: %s\r\n", AcceptKey(key))
	for _, h := range extra {
		sb.WriteString(h + "\r\n")
	}
	sb.WriteString("\r\n")
	return sb.String()
}

// Upgrader returns a Respond func that accepts the handshake request and
// ignores everything written after it.
func Upgrader() func([]byte) []byte {
	var upgraded bool
	return func(p []byte) []byte {
		if upgraded {
			return nil
		}
		upgraded = true
		return []byte(HandshakeResponse(RequestKey(p)))
	}
}

// Echo returns a Respond func that accepts the handshake request and then
// sends every frame written back to the client unmasked, like a server
// would.
func Echo() func([]byte) []byte {
	var upgraded bool
	return func(p []byte) []byte {
		if !upgraded {
			upgraded = true
			return []byte(HandshakeResponse(RequestKey(p)))
		}
		b, err := Unmask(p)
		if err != nil {
			panic(fmt.Sprintf("wstest: failed to echo frames: %v", err))
		}
		return b
	}
}

// Unmask decodes the frames in p and encodes them again unmasked.
func Unmask(p []byte) ([]byte, error) {
	r := bytes.NewReader(p)
	var out bytes.Buffer
	for r.Len() > 0 {
		f, err := ws.ReadFrame(r)
		if err != nil {
			return nil, err
		}
		if f.Header.Masked {
			ws.Cipher(f.Payload, f.Header.Mask, 0)
			f.Header.Masked = false
		}
		err = ws.WriteFrame(&out, f)
		if err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}
