// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

// Publish submits c to b unless the contract is already halted, sparing
// every caller (the batch processor, POBPC consensus) from duplicating
// the emergency-mode check before anchoring a commitment.
func Publish(b L1Bridge, c Commitment) error {
	if b.IsEmergencyMode() {
		return ErrEmergencyMode
	}
	return b.SubmitCommitment(c)
}
