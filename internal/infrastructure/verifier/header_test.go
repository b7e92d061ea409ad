package verifier

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/the-block/bridge/internal/core/ports"
)

func proofFor(header, proof string) ports.DepositProof {
	return ports.DepositProof{
		HeaderHash: sha256.Sum256([]byte(header)),
		Header:     []byte(header),
		Proof:      []byte(proof),
	}
}

func TestVerifyDeposit(t *testing.T) {
	v := NewHeaderBoundVerifier()

	require.True(t, v.VerifyDeposit("btc", "alice", 100, proofFor("header", "proof")))

	require.False(t, v.VerifyDeposit("", "alice", 100, proofFor("header", "proof")))
	require.False(t, v.VerifyDeposit("btc", "", 100, proofFor("header", "proof")))
	require.False(t, v.VerifyDeposit("btc", "alice", 0, proofFor("header", "proof")))
	require.False(t, v.VerifyDeposit("btc", "alice", 100, proofFor("header", "")))
	require.False(t, v.VerifyDeposit("btc", "alice", 100, ports.DepositProof{
		HeaderHash: sha256.Sum256([]byte("header")),
		Proof:      []byte("proof"),
	}))
}

func TestVerifyDepositHeaderMismatch(t *testing.T) {
	v := NewHeaderBoundVerifier()

	tampered := proofFor("header", "proof")
	tampered.Header = []byte("other header")
	require.False(t, v.VerifyDeposit("btc", "alice", 100, tampered))
}
