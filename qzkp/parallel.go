// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qzkp

import (
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// SegmentedTranscript is the concatenation of per-segment transcripts
// produced by ProveParallel (spec §4.3: "a parallel proving variant
// partitions the amplitude vector into N segments, generates per-segment
// transcripts, and concatenates").
type SegmentedTranscript struct {
	Segments []Transcript
}

// ProveParallel partitions state's amplitude vector into numSegments
// equal-qubit-count sub-states and proves each independently and
// concurrently, grounded on the teacher's use of
// golang.org/x/sync/errgroup for fan-out worker groups (spec §5: "parallel
// proving uses N independent worker tasks over disjoint index ranges; no
// shared mutation").
func ProveParallel(state *QState, numSegments int, cfg Config, seed int64, timestamp uint64) (SegmentedTranscript, error) {
	if numSegments <= 0 {
		return SegmentedTranscript{}, fmt.Errorf("qzkp: numSegments must be positive")
	}
	segments, err := splitState(state, numSegments)
	if err != nil {
		return SegmentedTranscript{}, err
	}

	out := make([]Transcript, len(segments))
	g := new(errgroup.Group)
	for idx, seg := range segments {
		idx, seg := idx, seg
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(idx)))
			t, err := Prove(seg, cfg, rng, timestamp)
			if err != nil {
				return err
			}
			out[idx] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SegmentedTranscript{}, err
	}
	return SegmentedTranscript{Segments: out}, nil
}

// VerifyParallel accepts concatenated transcripts iff every segment
// verifies against its corresponding claimed sub-state (spec §4.3: "the
// verifier must accept concatenated transcripts iff each segment
// verifies").
func VerifyParallel(transcript SegmentedTranscript, claimedState *QState, cfg Config, seed int64) ([]VerifyResult, bool, error) {
	segments, err := splitState(claimedState, len(transcript.Segments))
	if err != nil {
		return nil, false, err
	}

	results := make([]VerifyResult, len(segments))
	allValid := true
	for idx, seg := range segments {
		rng := rand.New(rand.NewSource(seed + int64(idx)))
		res, err := Verify(transcript.Segments[idx], seg, cfg, rng)
		if err != nil {
			return nil, false, err
		}
		results[idx] = res
		if res.Verdict != Valid {
			allValid = false
		}
	}
	return results, allValid, nil
}

// splitState partitions state's amplitude vector into numSegments
// contiguous sub-states, each renormalized independently.
func splitState(state *QState, numSegments int) ([]*QState, error) {
	dim := state.Dim()
	if numSegments > dim {
		numSegments = dim
	}
	segLen := dim / numSegments
	if segLen == 0 {
		segLen = dim
		numSegments = 1
	}

	amps := state.Amplitudes()
	out := make([]*QState, 0, numSegments)
	for i := 0; i < numSegments; i++ {
		start := i * segLen
		end := start + segLen
		if i == numSegments-1 {
			end = dim
		}
		chunk := amps[start:end]
		padded := make([]complex128, nextPow2(len(chunk), MinQubits))
		copy(padded, chunk)
		seg, err := NewFromAmplitudes(padded)
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, nil
}

func nextPow2(v, minExp int) int {
	n := minExp
	for (1 << uint(n)) < v {
		n++
	}
	return 1 << uint(n)
}
