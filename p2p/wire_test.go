// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package p2p

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	payload := []byte("hello peer")
	frame, err := EncodeFrame(payload)
	require.NoError(t, err)

	got, err := DecodeFrame(frame)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestEncodeFrameRejectsOversizedPayload(t *testing.T) {
	_, err := EncodeFrame(make([]byte, MaxPayloadSize+1))
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestDecodeFrameRejectsShortInput(t *testing.T) {
	_, err := DecodeFrame([]byte{0x01, 0x02})
	require.ErrorIs(t, err, ErrFrameTooShort)
}

func TestDecodeFrameRejectsLengthMismatch(t *testing.T) {
	frame, err := EncodeFrame([]byte("abc"))
	require.NoError(t, err)
	frame = append(frame, 'x') // trailing garbage makes declared length disagree with payload size
	_, err = DecodeFrame(frame)
	require.ErrorIs(t, err, ErrFrameLengthMismatch)
}

func TestPingPongRecognition(t *testing.T) {
	require.True(t, IsPing(pingPayload[:]))
	require.False(t, IsPing(pongPayload[:]))
	require.True(t, IsPong(pongPayload[:]))
	require.False(t, IsPong([]byte("PINGX")))
}

func TestHandshakeMatches(t *testing.T) {
	require.True(t, HandshakeMatches(ProtocolVersion))
	require.False(t, HandshakeMatches([2]byte{0x02, 0x00}))
}
