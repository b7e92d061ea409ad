package application

import (
	"errors"
	"fmt"
)

// Boundary validation failures are ordinary structured errors; none of them
// aborts the process. Slashing and duty failure are recorded state
// transitions, not errors.
var (
	ErrQuorumNotMet          = errors.New("relayer quorum not met")
	ErrInvalidProof          = errors.New("proof rejected")
	ErrReplay                = errors.New("proof already processed")
	ErrDuplicateWithdrawal   = errors.New("withdrawal already pending")
	ErrUnknownCommitment     = errors.New("withdrawal not found")
	ErrChallengeWindowOpen   = errors.New("challenge window still open")
	ErrAlreadyChallenged     = errors.New("withdrawal already challenged")
	ErrNotChallenged         = errors.New("withdrawal not challenged")
	ErrInsufficientBond      = errors.New("relayer bond below minimum")
	ErrDigestMismatch        = errors.New("settlement proof digest mismatch")
	ErrSettlementMissing     = errors.New("settlement proof not attached")
	ErrSettlementNotRequired = errors.New("channel does not require settlement proofs")
)

type errChannelNotFound struct {
	asset string
}

func (e errChannelNotFound) Error() string {
	return fmt.Sprintf("bridge channel %s not found", e.asset)
}

type errDutyNotFound struct {
	id uint64
}

func (e errDutyNotFound) Error() string {
	return fmt.Sprintf("duty %d not found", e.id)
}
