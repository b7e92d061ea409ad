package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// WithdrawalCommitment derives the collision-resistant identifier binding a
// withdrawal's parameters. The channel nonce makes repeated requests for the
// same (asset, user, amount) distinct.
func WithdrawalCommitment(asset, user string, amount, nonce uint64) [32]byte {
	h := sha256.New()
	h.Write([]byte(asset))
	h.Write([]byte(user))
	h.Write(le64(amount))
	h.Write(le64(nonce))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SettlementProofDigest derives the attestation digest relayers submit when a
// withdrawal settles on the destination chain. The relayer roster is sorted
// and deduplicated before hashing, so the digest is invariant under
// permutation and duplication of the list. Verification recomputes the digest
// and compares for equality.
func SettlementProofDigest(
	asset string, commitment [32]byte, settlementChain string,
	settlementHeight uint64, user string, amount uint64, relayers []string,
) [32]byte {
	h := sha256.New()
	h.Write([]byte(asset))
	h.Write(commitment[:])
	h.Write([]byte(settlementChain))
	h.Write(le64(settlementHeight))
	h.Write([]byte(user))
	h.Write(le64(amount))

	roster := append([]string{}, relayers...)
	sort.Strings(roster)
	prev := ""
	for i, relayer := range roster {
		if i > 0 && relayer == prev {
			continue
		}
		h.Write([]byte(relayer))
		prev = relayer
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ProofFingerprint identifies a (header, proof) pair for deposit replay
// detection.
func ProofFingerprint(headerHash [32]byte, proof []byte) [32]byte {
	h := sha256.New()
	h.Write(headerHash[:])
	h.Write(proof)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func le64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}
