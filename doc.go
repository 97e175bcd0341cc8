// Package websocket is a minimal client side implementation of the WebSocket
// protocol that runs over any byte stream Transport.
//
// See https://tools.ietf.org/html/rfc6455
//
// The client performs the HTTP/1.1 upgrade handshake and then reads and
// writes single, unfragmented frames whose payloads fit the 16 bit length
// encoding. Fragmented frames and 64 bit lengths are reported as
// NotSupported. Compression, UTF-8 validation and automatic ping/pong
// handling are not implemented: control frames are returned to the caller
// like any other frame.
//
// A Client is not safe for concurrent use.
package websocket
