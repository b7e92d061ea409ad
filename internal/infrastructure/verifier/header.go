package verifier

import (
	"crypto/sha256"

	"github.com/the-block/bridge/internal/core/ports"
)

// headerBoundVerifier accepts a deposit proof when the attached header hashes
// to the claimed header hash and the proof material is present. Full
// light-client inclusion checking runs in the external header relay; this
// gate only rejects malformed attestations before they reach the queue.
type headerBoundVerifier struct{}

func NewHeaderBoundVerifier() ports.ProofVerifier {
	return &headerBoundVerifier{}
}

func (v *headerBoundVerifier) VerifyDeposit(
	asset, user string, amount uint64, proof ports.DepositProof,
) bool {
	if len(asset) == 0 || len(user) == 0 || amount == 0 {
		return false
	}
	if len(proof.Header) == 0 || len(proof.Proof) == 0 {
		return false
	}
	return sha256.Sum256(proof.Header) == proof.HeaderHash
}
