package governance

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/the-block/bridge/internal/core/ports"
)

func TestClaimApprover(t *testing.T) {
	approver := NewClaimApprover()

	require.ErrorIs(t, approver.Approve("missing", "relayer1", 10), ports.ErrClaimNotAuthorized)

	approver.IssueApproval("key1", "relayer1", 100)
	require.ErrorIs(t, approver.Approve("key1", "relayer2", 10), ports.ErrClaimNotAuthorized)
	require.ErrorIs(t, approver.Approve("key1", "relayer1", 101), ports.ErrClaimNotAuthorized)

	require.NoError(t, approver.Approve("key1", "relayer1", 60))
	require.NoError(t, approver.Approve("key1", "relayer1", 40))

	// allowance exhausted, key consumed
	require.ErrorIs(t, approver.Approve("key1", "relayer1", 1), ports.ErrClaimNotAuthorized)
}

func TestClaimApproverReissue(t *testing.T) {
	approver := NewClaimApprover()
	approver.IssueApproval("key1", "relayer1", 10)
	approver.IssueApproval("key1", "relayer1", 50)

	require.NoError(t, approver.Approve("key1", "relayer1", 50))
}

func TestChallengePolicy(t *testing.T) {
	policy := NewChallengePolicy()
	upheld := sha256.Sum256([]byte("upheld"))
	rejected := sha256.Sum256([]byte("rejected"))

	require.False(t, policy.Uphold("btc", upheld))

	policy.RecordVerdict("btc", upheld, true)
	policy.RecordVerdict("btc", rejected, false)

	require.True(t, policy.Uphold("btc", upheld))
	require.False(t, policy.Uphold("btc", rejected))
	require.False(t, policy.Uphold("eth", upheld))
}
