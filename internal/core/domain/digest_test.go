package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/the-block/bridge/internal/core/domain"
)

func TestWithdrawalCommitment(t *testing.T) {
	base := domain.WithdrawalCommitment("btc", "alice", 1000, 0)

	require.Equal(t, base, domain.WithdrawalCommitment("btc", "alice", 1000, 0))
	require.NotEqual(t, base, domain.WithdrawalCommitment("btc", "alice", 1000, 1))
	require.NotEqual(t, base, domain.WithdrawalCommitment("btc", "alice", 1001, 0))
	require.NotEqual(t, base, domain.WithdrawalCommitment("btc", "bob", 1000, 0))
	require.NotEqual(t, base, domain.WithdrawalCommitment("ltc", "alice", 1000, 0))
}

func TestSettlementProofDigestRosterInvariance(t *testing.T) {
	commitment := domain.WithdrawalCommitment("btc", "alice", 1000, 0)

	digest := domain.SettlementProofDigest(
		"btc", commitment, "liquid", 42, "alice", 1000,
		[]string{"relayer1", "relayer2", "relayer3"},
	)

	permuted := domain.SettlementProofDigest(
		"btc", commitment, "liquid", 42, "alice", 1000,
		[]string{"relayer3", "relayer1", "relayer2"},
	)
	require.Equal(t, digest, permuted)

	duplicated := domain.SettlementProofDigest(
		"btc", commitment, "liquid", 42, "alice", 1000,
		[]string{"relayer2", "relayer1", "relayer2", "relayer3", "relayer1"},
	)
	require.Equal(t, digest, duplicated)

	differentRoster := domain.SettlementProofDigest(
		"btc", commitment, "liquid", 42, "alice", 1000,
		[]string{"relayer1", "relayer2"},
	)
	require.NotEqual(t, digest, differentRoster)

	differentHeight := domain.SettlementProofDigest(
		"btc", commitment, "liquid", 43, "alice", 1000,
		[]string{"relayer1", "relayer2", "relayer3"},
	)
	require.NotEqual(t, digest, differentHeight)
}

func TestProofFingerprint(t *testing.T) {
	var headerHash [32]byte
	copy(headerHash[:], "header-hash")

	fingerprint := domain.ProofFingerprint(headerHash, []byte("proof"))
	require.Equal(t, fingerprint, domain.ProofFingerprint(headerHash, []byte("proof")))
	require.NotEqual(t, fingerprint, domain.ProofFingerprint(headerHash, []byte("other")))

	var otherHash [32]byte
	copy(otherHash[:], "other-hash")
	require.NotEqual(t, fingerprint, domain.ProofFingerprint(otherHash, []byte("proof")))
}
