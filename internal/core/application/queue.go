package application

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/the-block/bridge/internal/core/domain"
	"github.com/the-block/bridge/internal/core/ports"
)

// WithdrawalQueue owns the per-asset pending withdrawal rows and the channel
// configuration they are judged against. All deadline and window checks run
// against the caller-supplied now; the queue never samples a clock.
type WithdrawalQueue struct {
	repoManager ports.RepoManager
	ledger      *LedgerService
	tracker     *DutyTracker
	verifier    ports.ProofVerifier
	approver    ports.ClaimApprover

	// serializes request/challenge/finalize against the same channel rows
	lock sync.Mutex
}

func NewWithdrawalQueue(
	repoManager ports.RepoManager,
	ledger *LedgerService,
	tracker *DutyTracker,
	verifier ports.ProofVerifier,
	approver ports.ClaimApprover,
) *WithdrawalQueue {
	return &WithdrawalQueue{
		repoManager: repoManager,
		ledger:      ledger,
		tracker:     tracker,
		verifier:    verifier,
		approver:    approver,
	}
}

// ConfigureAsset creates or replaces a channel configuration. Existing nonce
// and locked balances survive reconfiguration.
func (q *WithdrawalQueue) ConfigureAsset(ctx context.Context, cfg domain.ChannelConfig) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	channel, err := q.repoManager.Withdrawals().GetChannel(ctx, cfg.Asset)
	if err != nil {
		return err
	}
	if channel == nil {
		channel = domain.NewChannel(cfg)
	} else {
		channel.Config = cfg
	}
	if err := q.repoManager.Withdrawals().AddOrUpdateChannel(ctx, *channel); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"asset":            cfg.Asset,
		"challenge_period": cfg.ChallengePeriodSecs,
		"quorum":           cfg.RelayerQuorum,
		"settlement_proof": cfg.RequiresSettlementProof,
	}).Info("configured bridge channel")
	return nil
}

func (q *WithdrawalQueue) ensureChannel(ctx context.Context, asset string) (*domain.Channel, error) {
	channel, err := q.repoManager.Withdrawals().GetChannel(ctx, asset)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		channel = domain.NewChannel(domain.DefaultChannelConfig(asset))
		if err := q.repoManager.Withdrawals().AddOrUpdateChannel(ctx, *channel); err != nil {
			return nil, err
		}
	}
	return channel, nil
}

// VerifyDeposit digests a relayer deposit attestation: replay check, bond
// gate, opaque proof verification, then lock accounting and a deposit
// receipt. The deposit duty resolves in the same call.
func (q *WithdrawalQueue) VerifyDeposit(
	ctx context.Context, asset, relayer, user string, amount uint64,
	proof ports.DepositProof, bundle []string, now int64,
) (*domain.DepositReceipt, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	channel, err := q.ensureChannel(ctx, asset)
	if err != nil {
		return nil, err
	}
	if len(bundle) < channel.Config.RelayerQuorum {
		return nil, ErrQuorumNotMet
	}

	fingerprint := domain.ProofFingerprint(proof.HeaderHash, proof.Proof)
	fresh, err := q.repoManager.Withdrawals().MarkFingerprint(ctx, asset, fingerprint)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return nil, ErrReplay
	}

	duty, err := q.tracker.CreateDuty(
		ctx, domain.DutyKind{Type: domain.DutyDeposit}, relayer, asset, user, amount, bundle, now,
	)
	if err != nil {
		return nil, err
	}

	account, err := q.ledger.GetAccount(ctx, relayer)
	if err != nil {
		return nil, err
	}
	if account.Bond < q.tracker.Params().MinBond {
		if _, err := q.tracker.Fail(ctx, duty.Id, domain.FailureInsufficientBond, now); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientBond
	}

	if !q.verifier.VerifyDeposit(asset, user, amount, proof) {
		// a rejected proof may be resubmitted once corrected
		if err := q.repoManager.Withdrawals().UnmarkFingerprint(ctx, asset, fingerprint); err != nil {
			return nil, err
		}
		if _, err := q.tracker.Fail(ctx, duty.Id, domain.FailureInvalidProof, now); err != nil {
			return nil, err
		}
		return nil, ErrInvalidProof
	}

	if _, err := q.tracker.Complete(ctx, duty.Id, now); err != nil {
		return nil, err
	}

	nonce := channel.NextNonce
	channel.NextNonce++
	channel.Lock(user, amount)
	if err := q.repoManager.Withdrawals().AddOrUpdateChannel(ctx, *channel); err != nil {
		return nil, err
	}

	receipt := domain.DepositReceipt{
		Asset:            asset,
		Nonce:            nonce,
		User:             user,
		Amount:           amount,
		Relayer:          relayer,
		HeaderHash:       proof.HeaderHash,
		Commitment:       domain.WithdrawalCommitment(asset, user, amount, nonce),
		ProofFingerprint: fingerprint,
		BundleRelayers:   append([]string{}, bundle...),
		RecordedAt:       now,
	}
	if err := q.repoManager.Audit().AddDepositReceipt(ctx, receipt); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"asset": asset, "user": user, "amount": amount, "nonce": nonce,
	}).Info("verified bridge deposit")
	return &receipt, nil
}

// RequestWithdrawal enqueues a withdrawal backed by a relayer bundle and a
// pending withdrawal duty. The commitment binds (asset, user, amount, nonce).
func (q *WithdrawalQueue) RequestWithdrawal(
	ctx context.Context, asset, relayer, user string,
	amount uint64, bundle []string, now int64,
) ([32]byte, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	var zero [32]byte
	channel, err := q.repoManager.Withdrawals().GetChannel(ctx, asset)
	if err != nil {
		return zero, err
	}
	if channel == nil {
		return zero, errChannelNotFound{asset}
	}
	if len(bundle) < channel.Config.RelayerQuorum {
		return zero, ErrQuorumNotMet
	}

	account, err := q.ledger.GetAccount(ctx, relayer)
	if err != nil {
		return zero, err
	}
	if account.Bond < q.tracker.Params().MinBond {
		duty, err := q.tracker.CreateDuty(
			ctx, domain.DutyKind{Type: domain.DutyWithdrawal}, relayer, asset, user, amount, bundle, now,
		)
		if err != nil {
			return zero, err
		}
		if _, err := q.tracker.Fail(ctx, duty.Id, domain.FailureInsufficientBond, now); err != nil {
			return zero, err
		}
		return zero, ErrInsufficientBond
	}

	commitment := domain.WithdrawalCommitment(asset, user, amount, channel.NextNonce)
	// the nonce makes commitments distinct; this guards a rolled-back nonce
	// reusing a live row
	existing, err := q.repoManager.Withdrawals().GetWithdrawal(ctx, asset, commitment)
	if err != nil {
		return zero, err
	}
	if existing != nil {
		return zero, ErrDuplicateWithdrawal
	}

	// the bundle gets the duty window only once the challenge window closes
	deadline := now + int64(channel.Config.ChallengePeriodSecs) + q.tracker.Params().DutyWindowSecs
	duty, err := q.tracker.CreateDutyUntil(
		ctx, domain.DutyKind{Type: domain.DutyWithdrawal, Commitment: commitment},
		relayer, asset, user, amount, bundle, now, deadline,
	)
	if err != nil {
		return zero, err
	}

	channel.NextNonce++
	if err := q.repoManager.Withdrawals().AddOrUpdateChannel(ctx, *channel); err != nil {
		return zero, err
	}
	withdrawal := domain.PendingWithdrawal{
		Key:        domain.WithdrawalKey(asset, commitment),
		Asset:      asset,
		Commitment: commitment,
		User:       user,
		Amount:     amount,
		Relayers:   append([]string{}, bundle...),
		EnqueuedAt: now,
		DutyId:     duty.Id,
	}
	if err := q.repoManager.Withdrawals().AddWithdrawal(ctx, withdrawal); err != nil {
		return zero, err
	}
	log.WithFields(log.Fields{
		"asset": asset, "user": user, "amount": amount, "commitment": commitment,
	}).Info("enqueued bridge withdrawal")
	return commitment, nil
}

// ChallengeWithdrawal marks a pending withdrawal as disputed. Re-challenging
// is a no-op returning the original record; the flag is never cleared by
// this module.
func (q *WithdrawalQueue) ChallengeWithdrawal(
	ctx context.Context, asset string, commitment [32]byte, challenger string, now int64,
) (*domain.ChallengeRecord, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	withdrawal, err := q.repoManager.Withdrawals().GetWithdrawal(ctx, asset, commitment)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, ErrUnknownCommitment
	}
	if withdrawal.Challenged {
		records, err := q.repoManager.Audit().GetChallengeRecords(ctx, asset)
		if err != nil {
			return nil, err
		}
		for i := range records {
			if records[i].Commitment == commitment {
				return &records[i], nil
			}
		}
		return &domain.ChallengeRecord{
			Asset: asset, Commitment: commitment, Challenger: challenger, ChallengedAt: now,
		}, nil
	}

	withdrawal.Challenged = true
	if err := q.repoManager.Withdrawals().UpdateWithdrawal(ctx, *withdrawal); err != nil {
		return nil, err
	}
	record := domain.ChallengeRecord{
		Asset:        asset,
		Commitment:   commitment,
		Challenger:   challenger,
		ChallengedAt: now,
	}
	if err := q.repoManager.Audit().AddChallengeRecord(ctx, record); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"asset": asset, "commitment": commitment, "challenger": challenger,
	}).Info("challenged bridge withdrawal")
	return &record, nil
}

// ResolveChallenge reports a governance adjudication back into the duty state
// machine: the withdrawal's duty either fails with an accepted challenge,
// slashing the bundle, or completes normally. The withdrawal row itself stays
// challenged either way.
func (q *WithdrawalQueue) ResolveChallenge(
	ctx context.Context, asset string, commitment [32]byte, now int64,
) (*domain.Duty, error) {
	withdrawal, err := q.repoManager.Withdrawals().GetWithdrawal(ctx, asset, commitment)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, ErrUnknownCommitment
	}
	if !withdrawal.Challenged {
		return nil, ErrNotChallenged
	}
	return q.tracker.ResolveChallenge(ctx, withdrawal.DutyId, asset, commitment, now)
}

// SubmitSettlement attaches an external settlement proof to a pending
// withdrawal after recomputing and matching its digest. A matching submission
// earns the relayer a settlement duty reward; a mismatch slashes it.
func (q *WithdrawalQueue) SubmitSettlement(
	ctx context.Context, asset, relayer string, commitment [32]byte,
	settlementChain string, proofHash [32]byte, settlementHeight uint64, now int64,
) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	channel, err := q.repoManager.Withdrawals().GetChannel(ctx, asset)
	if err != nil {
		return err
	}
	if channel == nil {
		return errChannelNotFound{asset}
	}
	if !channel.Config.RequiresSettlementProof {
		return ErrSettlementNotRequired
	}
	withdrawal, err := q.repoManager.Withdrawals().GetWithdrawal(ctx, asset, commitment)
	if err != nil {
		return err
	}
	if withdrawal == nil {
		return ErrUnknownCommitment
	}

	duty, err := q.tracker.CreateDuty(
		ctx, domain.DutyKind{
			Type:            domain.DutySettlement,
			Commitment:      commitment,
			SettlementChain: settlementChain,
			ProofHash:       proofHash,
		},
		relayer, asset, withdrawal.User, withdrawal.Amount, withdrawal.Relayers, now,
	)
	if err != nil {
		return err
	}

	expected := domain.SettlementProofDigest(
		asset, commitment, settlementChain, settlementHeight,
		withdrawal.User, withdrawal.Amount, withdrawal.Relayers,
	)
	if expected != proofHash {
		if _, err := q.tracker.Fail(ctx, duty.Id, domain.FailureInvalidProof, now); err != nil {
			return err
		}
		return ErrDigestMismatch
	}

	withdrawal.Settlement = &domain.SettlementAttachment{
		Relayer:          relayer,
		SettlementChain:  settlementChain,
		ProofHash:        proofHash,
		SettlementHeight: settlementHeight,
		AttachedAt:       now,
	}
	if err := q.repoManager.Withdrawals().UpdateWithdrawal(ctx, *withdrawal); err != nil {
		return err
	}
	if _, err := q.tracker.Complete(ctx, duty.Id, now); err != nil {
		return err
	}
	if err := q.repoManager.Audit().AddSettlementRecord(ctx, domain.SettlementRecord{
		Asset:            asset,
		Commitment:       commitment,
		Relayer:          relayer,
		SettlementChain:  settlementChain,
		ProofHash:        proofHash,
		SettlementHeight: settlementHeight,
		RecordedAt:       now,
	}); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"asset": asset, "commitment": commitment, "chain": settlementChain, "height": settlementHeight,
	}).Info("recorded withdrawal settlement proof")
	return nil
}

// FinalizeWithdrawal removes a finalizable entry from the queue, releases its
// locked balance, and completes the withdrawal duty for its bundle. A duty
// already resolved by the expiry sweep forfeits the reward but does not block
// finalization. Finalized withdrawals are immutable.
func (q *WithdrawalQueue) FinalizeWithdrawal(
	ctx context.Context, asset string, commitment [32]byte, now int64,
) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	channel, err := q.repoManager.Withdrawals().GetChannel(ctx, asset)
	if err != nil {
		return err
	}
	if channel == nil {
		return errChannelNotFound{asset}
	}
	withdrawal, err := q.repoManager.Withdrawals().GetWithdrawal(ctx, asset, commitment)
	if err != nil {
		return err
	}
	if withdrawal == nil {
		return ErrUnknownCommitment
	}
	if withdrawal.Challenged {
		return ErrAlreadyChallenged
	}
	if now < withdrawal.Deadline(channel.Config) {
		return ErrChallengeWindowOpen
	}
	if channel.Config.RequiresSettlementProof && withdrawal.Settlement == nil {
		return ErrSettlementMissing
	}

	duty, err := q.tracker.GetDuty(ctx, withdrawal.DutyId)
	if err != nil {
		return err
	}
	if duty.Status.Code == domain.DutyPending {
		if _, err := q.tracker.Complete(ctx, withdrawal.DutyId, now); err != nil {
			return err
		}
	}

	if err := q.repoManager.Withdrawals().RemoveWithdrawal(ctx, asset, commitment); err != nil {
		return err
	}
	channel.Unlock(withdrawal.User, withdrawal.Amount)
	if err := q.repoManager.Withdrawals().AddOrUpdateChannel(ctx, *channel); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"asset": asset, "commitment": commitment, "user": withdrawal.User, "amount": withdrawal.Amount,
	}).Info("finalized bridge withdrawal")
	return nil
}

// Snapshot returns every pending withdrawal paired with the channel
// parameters needed to evaluate finality, for the router to schedule from.
func (q *WithdrawalQueue) Snapshot(ctx context.Context) ([]domain.WithdrawalSnapshot, error) {
	channels, err := q.repoManager.Withdrawals().GetChannels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.WithdrawalSnapshot, 0)
	for _, channel := range channels {
		withdrawals, err := q.repoManager.Withdrawals().GetWithdrawals(ctx, channel.Asset)
		if err != nil {
			return nil, err
		}
		for _, w := range withdrawals {
			out = append(out, domain.WithdrawalSnapshot{
				PendingWithdrawal:       w,
				ChallengePeriodSecs:     channel.Config.ChallengePeriodSecs,
				RequiresSettlementProof: channel.Config.RequiresSettlementProof,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnqueuedAt < out[j].EnqueuedAt })
	return out, nil
}

// BondRelayer credits bonded collateral; the account is created on first use.
func (q *WithdrawalQueue) BondRelayer(
	ctx context.Context, relayer string, amount uint64,
) (*domain.RelayerAccount, error) {
	return q.ledger.CreditBond(ctx, relayer, amount)
}

// ClaimRewards moves pending rewards to claimed, gated by a governance
// approval key. The claim is capped at the pending balance before the
// approval is consumed, so the allowance only ever pays for what is actually
// claimed.
func (q *WithdrawalQueue) ClaimRewards(
	ctx context.Context, relayer string, amount uint64, approvalKey string, now int64,
) (*domain.ClaimReceipt, error) {
	account, err := q.ledger.GetAccount(ctx, relayer)
	if err != nil {
		return nil, err
	}
	claim := amount
	if claim > account.RewardsPending {
		claim = account.RewardsPending
	}
	if err := q.approver.Approve(approvalKey, relayer, claim); err != nil {
		return nil, err
	}
	claimed, err := q.ledger.MarkClaimed(ctx, relayer, claim)
	if err != nil {
		return nil, err
	}
	receipt := domain.ClaimReceipt{
		Id:          uuid.New().String(),
		Relayer:     relayer,
		Amount:      claimed,
		ApprovalKey: approvalKey,
		ClaimedAt:   now,
	}
	if err := q.repoManager.Audit().AddClaimReceipt(ctx, receipt); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"relayer": relayer, "amount": claimed, "approval": approvalKey,
	}).Info("claimed relayer rewards")
	return &receipt, nil
}
