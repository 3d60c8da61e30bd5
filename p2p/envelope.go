// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package p2p

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// MessageType discriminates envelope payloads once a frame has been
// decoded; application-layer message kinds (batch broadcast, witness
// vote, proof announcement, …) are assigned their own MessageType by
// callers outside this package.
type MessageType uint32

const (
	fieldType    protowire.Number = 1
	fieldPayload protowire.Number = 2
)

var (
	ErrMalformedEnvelope = errors.New("p2p: malformed envelope")
)

// Envelope is the typed message carried inside a frame's payload. It is
// encoded using the protobuf wire format directly (field tag + varint/
// length-delimited value), without running a .proto toolchain, matching
// how `google.golang.org/protobuf/encoding/protowire` is meant to be used
// for hand-written low-level codecs.
type Envelope struct {
	Type MessageType
	Data []byte
}

// Encode serializes e using two protobuf wire fields: field 1 (varint) is
// the message type, field 2 (length-delimited) is the opaque payload.
func (e Envelope) Encode() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Type))
	b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
	b = protowire.AppendBytes(b, e.Data)
	return b
}

// DecodeEnvelope parses the wire format Encode produces. Fields may
// arrive in either order; an Envelope with a zero Type and nil Data is
// returned only if both field tags are absent.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var e Envelope
	var sawType, sawPayload bool

	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return Envelope{}, ErrMalformedEnvelope
		}
		b = b[tagLen:]

		switch {
		case num == fieldType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Envelope{}, ErrMalformedEnvelope
			}
			e.Type = MessageType(v)
			sawType = true
			b = b[n:]
		case num == fieldPayload && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Envelope{}, ErrMalformedEnvelope
			}
			e.Data = append([]byte(nil), v...)
			sawPayload = true
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Envelope{}, ErrMalformedEnvelope
			}
			b = b[n:]
		}
	}

	if !sawType && !sawPayload {
		return Envelope{}, nil
	}
	return e, nil
}
