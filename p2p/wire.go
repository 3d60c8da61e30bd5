// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package p2p implements the P2P Transport interface (C13): a
// length-prefixed framed message protocol, a version handshake, and
// PING/PONG liveness, over an unreliable (loss/duplication/reordering
// tolerant) per-message delivery model (spec §6). The core depends only
// on the Transport interface; peer discovery, NAT traversal and the
// concrete socket plumbing are external collaborators per spec §1.
package p2p

import (
	"encoding/binary"
	"errors"
)

// MaxPayloadSize is the largest payload a single frame may carry (spec §6).
const MaxPayloadSize = 64 * 1024

// frameHeaderSize is the width of the u32 length prefix.
const frameHeaderSize = 4

// ProtocolVersion is the 2-byte version both peers exchange during the
// handshake; a connection is established only once both sides' versions
// match exactly (spec §6).
var ProtocolVersion = [2]byte{0x01, 0x00}

// pingPayload and pongPayload are the fixed 4-byte ASCII keep-alive
// payloads (spec §6).
var (
	pingPayload = [4]byte{'P', 'I', 'N', 'G'}
	pongPayload = [4]byte{'P', 'O', 'N', 'G'}
)

var (
	ErrPayloadTooLarge     = errors.New("p2p: payload exceeds 64 KiB frame limit")
	ErrFrameTooShort       = errors.New("p2p: frame shorter than length prefix")
	ErrFrameLengthMismatch = errors.New("p2p: declared length does not match payload size")
	ErrVersionMismatch     = errors.New("p2p: protocol version mismatch")
)

// EncodeFrame prepends payload with its u32 little-endian length, per spec
// §6's "u32 length || u8[length] payload".
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	out := make([]byte, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[:frameHeaderSize], uint32(len(payload)))
	copy(out[frameHeaderSize:], payload)
	return out, nil
}

// DecodeFrame splits a single received datagram into its declared-length
// payload, validating the length prefix against the actual datagram size.
// It does not assume a byte stream: every call consumes exactly one frame
// from one received message, matching the "unreliable datagram per
// message" delivery model (spec §6) rather than a TCP-style byte pipe.
func DecodeFrame(data []byte) ([]byte, error) {
	if len(data) < frameHeaderSize {
		return nil, ErrFrameTooShort
	}
	length := binary.LittleEndian.Uint32(data[:frameHeaderSize])
	if length > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	payload := data[frameHeaderSize:]
	if uint32(len(payload)) != length {
		return nil, ErrFrameLengthMismatch
	}
	return payload, nil
}

// IsPing reports whether payload is the 4-byte PING keep-alive.
func IsPing(payload []byte) bool {
	return len(payload) == 4 && [4]byte{payload[0], payload[1], payload[2], payload[3]} == pingPayload
}

// IsPong reports whether payload is the 4-byte PONG keep-alive.
func IsPong(payload []byte) bool {
	return len(payload) == 4 && [4]byte{payload[0], payload[1], payload[2], payload[3]} == pongPayload
}

// PingFrame returns an encoded PING frame.
func PingFrame() []byte {
	f, _ := EncodeFrame(pingPayload[:])
	return f
}

// PongFrame returns an encoded PONG frame.
func PongFrame() []byte {
	f, _ := EncodeFrame(pongPayload[:])
	return f
}

// HandshakeMatches reports whether a peer's advertised 2-byte version
// exactly matches ours; the connection is established only if this is true
// on both sides (spec §6).
func HandshakeMatches(peerVersion [2]byte) bool {
	return peerVersion == ProtocolVersion
}
