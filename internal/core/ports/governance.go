package ports

import "errors"

var ErrClaimNotAuthorized = errors.New("reward claim not authorized")

// ClaimApprover gates reward claims behind governance-issued approvals. An
// approval key carries a remaining allowance consumed claim by claim.
type ClaimApprover interface {
	// Approve consumes amount from the approval's allowance. It returns
	// ErrClaimNotAuthorized when the key is unknown, bound to another
	// relayer, or the allowance cannot cover the amount.
	Approve(key, relayer string, amount uint64) error
}

// ChallengePolicy decides whether an upheld challenge slashes the withdrawal
// bundle. Adjudication itself is external governance; this module only asks
// for the recorded outcome.
type ChallengePolicy interface {
	Uphold(asset string, commitment [32]byte) bool
}
