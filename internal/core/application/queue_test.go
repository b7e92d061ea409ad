package application_test

import (
	"context"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/the-block/bridge/internal/core/application"
	"github.com/the-block/bridge/internal/core/domain"
	"github.com/the-block/bridge/internal/core/ports"
	"github.com/the-block/bridge/internal/infrastructure/db"
)

var ctx = context.Background()

type stubVerifier struct {
	ok bool
}

func (v *stubVerifier) VerifyDeposit(
	asset, user string, amount uint64, proof ports.DepositProof,
) bool {
	return v.ok
}

type stubApprover struct {
	err      error
	approved []uint64
}

func (a *stubApprover) Approve(key, relayer string, amount uint64) error {
	if a.err != nil {
		return a.err
	}
	a.approved = append(a.approved, amount)
	return nil
}

type stubPolicy struct {
	uphold bool
}

func (p *stubPolicy) Uphold(asset string, commitment [32]byte) bool {
	return p.uphold
}

type fixture struct {
	repo     ports.RepoManager
	ledger   *application.LedgerService
	tracker  *application.DutyTracker
	queue    *application.WithdrawalQueue
	verifier *stubVerifier
	approver *stubApprover
	policy   *stubPolicy
}

func newFixture(t *testing.T) *fixture {
	repo, err := db.NewService(db.ServiceConfig{
		DataStoreType:   "badger",
		DataStoreConfig: []interface{}{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	verifier := &stubVerifier{ok: true}
	approver := &stubApprover{}
	policy := &stubPolicy{}

	ledger := application.NewLedgerService(repo.Relayers())
	tracker := application.NewDutyTracker(
		repo.Duties(), repo.Audit(), ledger, policy, domain.DefaultIncentiveParams(),
	)
	queue := application.NewWithdrawalQueue(repo, ledger, tracker, verifier, approver)

	return &fixture{
		repo:     repo,
		ledger:   ledger,
		tracker:  tracker,
		queue:    queue,
		verifier: verifier,
		approver: approver,
		policy:   policy,
	}
}

func (f *fixture) bond(t *testing.T, relayer string, amount uint64) {
	t.Helper()
	_, err := f.queue.BondRelayer(ctx, relayer, amount)
	require.NoError(t, err)
}

func (f *fixture) configure(t *testing.T, cfg domain.ChannelConfig) {
	t.Helper()
	require.NoError(t, f.queue.ConfigureAsset(ctx, cfg))
}

func makeProof(header, proof string) ports.DepositProof {
	return ports.DepositProof{
		HeaderHash: sha256.Sum256([]byte(header)),
		Header:     []byte(header),
		Proof:      []byte(proof),
	}
}

func TestVerifyDeposit(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)
	bundle := []string{"relayer1", "relayer2"}

	receipt, err := f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "alice", 1000, makeProof("h1", "p1"), bundle, 100,
	)
	require.NoError(t, err)
	require.Equal(t, uint64(0), receipt.Nonce)
	require.Equal(t, domain.WithdrawalCommitment("btc", "alice", 1000, 0), receipt.Commitment)

	locked, err := f.queue.LockedBalance(ctx, "btc", "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(1000), locked)

	// the deposit duty resolved in the same call, reward split across bundle
	account, err := f.ledger.GetAccount(ctx, "relayer1")
	require.NoError(t, err)
	require.Equal(t, uint64(1), account.DutiesCompleted)
	require.Equal(t, uint64(2), account.RewardsPending)

	// the second deposit advances the nonce
	receipt, err = f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "alice", 500, makeProof("h2", "p2"), bundle, 110,
	)
	require.NoError(t, err)
	require.Equal(t, uint64(1), receipt.Nonce)

	history, next, err := f.queue.DepositHistory(ctx, "btc", 0, 10)
	require.NoError(t, err)
	require.Nil(t, next)
	require.Len(t, history, 2)
}

func TestVerifyDepositQuorumNotMet(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)

	_, err := f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "alice", 1000, makeProof("h1", "p1"), []string{"relayer1"}, 100,
	)
	require.ErrorIs(t, err, application.ErrQuorumNotMet)
}

func TestVerifyDepositReplay(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)
	bundle := []string{"relayer1", "relayer2"}

	_, err := f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "alice", 1000, makeProof("h1", "p1"), bundle, 100,
	)
	require.NoError(t, err)

	_, err = f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "bob", 500, makeProof("h1", "p1"), bundle, 110,
	)
	require.ErrorIs(t, err, application.ErrReplay)
}

func TestVerifyDepositInsufficientBond(t *testing.T) {
	f := newFixture(t)
	bundle := []string{"relayer1", "relayer2"}

	_, err := f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "alice", 1000, makeProof("h1", "p1"), bundle, 100,
	)
	require.ErrorIs(t, err, application.ErrInsufficientBond)

	account, err := f.ledger.GetAccount(ctx, "relayer1")
	require.NoError(t, err)
	require.Equal(t, uint64(1), account.DutiesFailed)

	slashes, err := f.queue.SlashLog(ctx)
	require.NoError(t, err)
	require.Len(t, slashes, 1)
	require.Equal(t, "insufficient_bond", slashes[0].Reason)
}

func TestVerifyDepositInvalidProofAllowsResubmission(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)
	bundle := []string{"relayer1", "relayer2"}

	f.verifier.ok = false
	_, err := f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "alice", 1000, makeProof("h1", "p1"), bundle, 100,
	)
	require.ErrorIs(t, err, application.ErrInvalidProof)

	// the rejected fingerprint is released, a corrected resubmission passes
	f.verifier.ok = true
	f.bond(t, "relayer1", 100)
	_, err = f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "alice", 1000, makeProof("h1", "p1"), bundle, 110,
	)
	require.NoError(t, err)
}

func TestRequestWithdrawal(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)
	f.configure(t, domain.DefaultChannelConfig("btc"))
	bundle := []string{"relayer1", "relayer2"}

	commitment, err := f.queue.RequestWithdrawal(ctx, "btc", "relayer1", "alice", 500, bundle, 100)
	require.NoError(t, err)
	require.Equal(t, domain.WithdrawalCommitment("btc", "alice", 500, 0), commitment)

	pending, err := f.queue.PendingWithdrawals(ctx, "btc")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, commitment, pending[0].Commitment)
	require.Equal(t, int64(130), pending[0].Deadline)

	// the second request consumes the next nonce
	second, err := f.queue.RequestWithdrawal(ctx, "btc", "relayer1", "alice", 500, bundle, 105)
	require.NoError(t, err)
	require.NotEqual(t, commitment, second)
}

func TestRequestWithdrawalUnknownChannel(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)

	_, err := f.queue.RequestWithdrawal(
		ctx, "btc", "relayer1", "alice", 500, []string{"relayer1", "relayer2"}, 100,
	)
	require.Error(t, err)
}

func TestRequestWithdrawalQuorumNotMet(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)
	f.configure(t, domain.DefaultChannelConfig("btc"))

	_, err := f.queue.RequestWithdrawal(ctx, "btc", "relayer1", "alice", 500, []string{"relayer1"}, 100)
	require.ErrorIs(t, err, application.ErrQuorumNotMet)
}

func TestChallengeWithdrawal(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)
	f.configure(t, domain.DefaultChannelConfig("btc"))
	bundle := []string{"relayer1", "relayer2"}

	var unknown [32]byte
	_, err := f.queue.ChallengeWithdrawal(ctx, "btc", unknown, "carol", 100)
	require.ErrorIs(t, err, application.ErrUnknownCommitment)

	commitment, err := f.queue.RequestWithdrawal(ctx, "btc", "relayer1", "alice", 500, bundle, 100)
	require.NoError(t, err)

	record, err := f.queue.ChallengeWithdrawal(ctx, "btc", commitment, "carol", 110)
	require.NoError(t, err)
	require.Equal(t, "carol", record.Challenger)

	// re-challenging is idempotent
	again, err := f.queue.ChallengeWithdrawal(ctx, "btc", commitment, "dave", 120)
	require.NoError(t, err)
	require.Equal(t, record.Challenger, again.Challenger)

	challenges, err := f.queue.ActiveChallenges(ctx, "btc")
	require.NoError(t, err)
	require.Len(t, challenges, 1)

	// a challenged withdrawal cannot finalize even after its window
	err = f.queue.FinalizeWithdrawal(ctx, "btc", commitment, 100000)
	require.ErrorIs(t, err, application.ErrAlreadyChallenged)
}

func TestFinalizeWithdrawal(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)
	f.configure(t, domain.DefaultChannelConfig("btc"))
	bundle := []string{"relayer1", "relayer2"}

	_, err := f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "alice", 500, makeProof("h1", "p1"), bundle, 50,
	)
	require.NoError(t, err)

	commitment, err := f.queue.RequestWithdrawal(ctx, "btc", "relayer1", "alice", 500, bundle, 100)
	require.NoError(t, err)

	err = f.queue.FinalizeWithdrawal(ctx, "btc", commitment, 120)
	require.ErrorIs(t, err, application.ErrChallengeWindowOpen)

	require.NoError(t, f.queue.FinalizeWithdrawal(ctx, "btc", commitment, 130))

	pending, err := f.queue.PendingWithdrawals(ctx, "btc")
	require.NoError(t, err)
	require.Empty(t, pending)

	locked, err := f.queue.LockedBalance(ctx, "btc", "alice")
	require.NoError(t, err)
	require.Zero(t, locked)

	// finalized withdrawals are immutable
	err = f.queue.FinalizeWithdrawal(ctx, "btc", commitment, 140)
	require.ErrorIs(t, err, application.ErrUnknownCommitment)
}

func TestFinalizeAfterDutyExpiry(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)
	cfg := domain.DefaultChannelConfig("btc")
	cfg.ChallengePeriodSecs = 600
	f.configure(t, cfg)
	bundle := []string{"relayer1", "relayer2"}

	commitment, err := f.queue.RequestWithdrawal(ctx, "btc", "relayer1", "alice", 500, bundle, 100)
	require.NoError(t, err)

	// the duty deadline covers the whole challenge window
	expired, err := f.tracker.ExpirePending(ctx, 500)
	require.NoError(t, err)
	require.Empty(t, expired)

	expired, err = f.tracker.ExpirePending(ctx, 1100)
	require.NoError(t, err)
	require.Len(t, expired, 1)

	// an expired duty forfeits the reward but does not block finalization
	require.NoError(t, f.queue.FinalizeWithdrawal(ctx, "btc", commitment, 1200))

	pending, err := f.queue.PendingWithdrawals(ctx, "btc")
	require.NoError(t, err)
	require.Empty(t, pending)

	duty, err := f.tracker.GetDuty(ctx, expired[0])
	require.NoError(t, err)
	require.Equal(t, domain.DutyFailed, duty.Status.Code)
	require.Equal(t, domain.FailureExpired, duty.Status.Reason)

	account, err := f.ledger.GetAccount(ctx, "relayer1")
	require.NoError(t, err)
	require.Zero(t, account.RewardsPending)
}

func TestSubmitSettlement(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)

	cfg := domain.DefaultChannelConfig("btc")
	cfg.RequiresSettlementProof = true
	cfg.SettlementChain = "liquid"
	f.configure(t, cfg)
	bundle := []string{"relayer1", "relayer2"}

	commitment, err := f.queue.RequestWithdrawal(ctx, "btc", "relayer1", "alice", 500, bundle, 100)
	require.NoError(t, err)

	// missing proof blocks finalization even after the window
	err = f.queue.FinalizeWithdrawal(ctx, "btc", commitment, 1000)
	require.ErrorIs(t, err, application.ErrSettlementMissing)

	var bogus [32]byte
	err = f.queue.SubmitSettlement(ctx, "btc", "relayer1", commitment, "liquid", bogus, 42, 110)
	require.ErrorIs(t, err, application.ErrDigestMismatch)

	slashes, err := f.queue.SlashLog(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, slashes)

	digest := domain.SettlementProofDigest("btc", commitment, "liquid", 42, "alice", 500, bundle)
	require.NoError(t, f.queue.SubmitSettlement(
		ctx, "btc", "relayer1", commitment, "liquid", digest, 42, 120,
	))

	require.NoError(t, f.queue.FinalizeWithdrawal(ctx, "btc", commitment, 1000))

	records, next, err := f.queue.SettlementLog(ctx, "btc", 0, 10)
	require.NoError(t, err)
	require.Nil(t, next)
	require.Len(t, records, 1)
	require.Equal(t, digest, records[0].ProofHash)
}

func TestSubmitSettlementNotRequired(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)
	f.configure(t, domain.DefaultChannelConfig("btc"))
	bundle := []string{"relayer1", "relayer2"}

	commitment, err := f.queue.RequestWithdrawal(ctx, "btc", "relayer1", "alice", 500, bundle, 100)
	require.NoError(t, err)

	var digest [32]byte
	err = f.queue.SubmitSettlement(ctx, "btc", "relayer1", commitment, "liquid", digest, 42, 110)
	require.ErrorIs(t, err, application.ErrSettlementNotRequired)
}

func TestClaimRewards(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 100)
	bundle := []string{"relayer1", "relayer2"}

	_, err := f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "alice", 1000, makeProof("h1", "p1"), bundle, 100,
	)
	require.NoError(t, err)

	f.approver.err = ports.ErrClaimNotAuthorized
	_, err = f.queue.ClaimRewards(ctx, "relayer1", 2, "bad-key", 110)
	require.ErrorIs(t, err, ports.ErrClaimNotAuthorized)

	f.approver.err = nil
	receipt, err := f.queue.ClaimRewards(ctx, "relayer1", 100, "key-1", 120)
	require.NoError(t, err)
	// the claim is capped at the pending balance, and the approval only
	// consumes the capped amount
	require.Equal(t, uint64(2), receipt.Amount)
	require.Equal(t, []uint64{2}, f.approver.approved)

	claims, next, err := f.queue.RewardClaims(ctx, "relayer1", 0, 10)
	require.NoError(t, err)
	require.Nil(t, next)
	require.Len(t, claims, 1)
}

func TestRelayerQuorumView(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer2", 60)
	f.bond(t, "relayer1", 80)
	f.configure(t, domain.DefaultChannelConfig("btc"))

	view, err := f.queue.RelayerQuorum(ctx, "btc")
	require.NoError(t, err)
	require.Equal(t, 2, view.Quorum)
	require.Len(t, view.Relayers, 2)
	require.Equal(t, "relayer1", view.Relayers[0].Relayer)
	require.Equal(t, "relayer2", view.Relayers[1].Relayer)
}

func TestDepositHistoryPagination(t *testing.T) {
	f := newFixture(t)
	f.bond(t, "relayer1", 1000)
	bundle := []string{"relayer1", "relayer2"}

	for i := 0; i < 5; i++ {
		_, err := f.queue.VerifyDeposit(
			ctx, "btc", "relayer1", "alice", 100,
			makeProof(fmt.Sprintf("h%d", i), fmt.Sprintf("p%d", i)), bundle, int64(100+i),
		)
		require.NoError(t, err)
	}

	page1, next, err := f.queue.DepositHistory(ctx, "btc", 0, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)

	page2, next, err := f.queue.DepositHistory(ctx, "btc", *next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotNil(t, next)
	require.Greater(t, page2[0].Seq, page1[1].Seq)

	page3, next, err := f.queue.DepositHistory(ctx, "btc", *next, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	require.Nil(t, next)
}
