package application

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/the-block/bridge/internal/core/domain"
	"github.com/the-block/bridge/internal/core/ports"
)

// DutyTracker owns duty records and is the only writer of relayer reward and
// penalty fields, always through the ledger. Duties are terminal: a pending
// duty resolves exactly once, to Completed or Failed, and retrying the
// underlying work means creating a new duty.
type DutyTracker struct {
	repo   domain.DutyRepository
	audit  domain.AuditRepository
	ledger *LedgerService
	policy ports.ChallengePolicy

	paramsLock sync.RWMutex
	params     domain.IncentiveParams
}

func NewDutyTracker(
	repo domain.DutyRepository,
	audit domain.AuditRepository,
	ledger *LedgerService,
	policy ports.ChallengePolicy,
	params domain.IncentiveParams,
) *DutyTracker {
	return &DutyTracker{
		repo:   repo,
		audit:  audit,
		ledger: ledger,
		policy: policy,
		params: params,
	}
}

func (t *DutyTracker) Params() domain.IncentiveParams {
	t.paramsLock.RLock()
	defer t.paramsLock.RUnlock()
	return t.params
}

func (t *DutyTracker) SetParams(params domain.IncentiveParams) {
	t.paramsLock.Lock()
	defer t.paramsLock.Unlock()
	t.params = params
	log.WithFields(log.Fields{
		"min_bond":        params.MinBond,
		"duty_reward":     params.DutyReward,
		"failure_slash":   params.FailureSlash,
		"challenge_slash": params.ChallengeSlash,
	}).Info("updated bridge incentive params")
}

// CreateDuty records a new pending duty with deadline = now + duty window and
// increments the relayer's assignment counter.
func (t *DutyTracker) CreateDuty(
	ctx context.Context, kind domain.DutyKind,
	relayer, asset, user string, amount uint64, bundle []string, now int64,
) (*domain.Duty, error) {
	return t.CreateDutyUntil(
		ctx, kind, relayer, asset, user, amount, bundle, now, now+t.Params().DutyWindowSecs,
	)
}

// CreateDutyUntil records a pending duty with an explicit deadline, for work
// whose completion window is set by channel parameters rather than the flat
// duty window.
func (t *DutyTracker) CreateDutyUntil(
	ctx context.Context, kind domain.DutyKind,
	relayer, asset, user string, amount uint64, bundle []string, now, deadline int64,
) (*domain.Duty, error) {
	duty, err := domain.NewDuty(
		kind, relayer, asset, user, amount, bundle, now, deadline,
	)
	if err != nil {
		return nil, err
	}
	if err := t.repo.AddDuty(ctx, duty); err != nil {
		return nil, err
	}
	if _, err := t.ledger.AssignDuty(ctx, relayer); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"duty": duty.Id, "kind": kind.Type.String(), "relayer": relayer, "asset": asset,
	}).Debug("created relayer duty")
	return duty, nil
}

// Complete resolves a pending duty as completed, crediting the duty reward.
// With a bundle the reward is split evenly across the signers; each rewarded
// relayer's completion counter is incremented.
func (t *DutyTracker) Complete(ctx context.Context, dutyId uint64, now int64) (*domain.Duty, error) {
	duty, err := t.repo.GetDuty(ctx, dutyId)
	if err != nil {
		return nil, err
	}
	if duty == nil {
		return nil, errDutyNotFound{dutyId}
	}

	reward := t.Params().DutyReward
	if err := duty.Complete(reward, now); err != nil {
		return nil, err
	}
	if err := t.repo.UpdateDuty(ctx, *duty); err != nil {
		return nil, err
	}

	signers := duty.Signers()
	share := reward / uint64(len(signers))
	for _, signer := range signers {
		if share > 0 {
			if _, err := t.ledger.AccrueReward(ctx, signer, share); err != nil {
				return nil, err
			}
		}
		if _, err := t.ledger.CompleteDuty(ctx, signer); err != nil {
			return nil, err
		}
	}
	log.WithFields(log.Fields{
		"duty": duty.Id, "reward": reward, "signers": len(signers),
	}).Debug("completed relayer duty")
	return duty, nil
}

// Fail resolves a pending duty as failed. Challenge-class reasons (invalid
// proof, bundle mismatch, accepted challenge) slash every bundle signer;
// expiry and insufficient bond slash only the assigned relayer.
func (t *DutyTracker) Fail(
	ctx context.Context, dutyId uint64, reason domain.FailureReason, now int64,
) (*domain.Duty, error) {
	duty, err := t.repo.GetDuty(ctx, dutyId)
	if err != nil {
		return nil, err
	}
	if duty == nil {
		return nil, errDutyNotFound{dutyId}
	}

	params := t.Params()
	penalty := params.FailureSlash
	slashed := []string{duty.Relayer}
	if reason.ChallengeClass() {
		penalty = params.ChallengeSlash
		slashed = duty.Signers()
	}

	if err := duty.Fail(penalty, reason, now); err != nil {
		return nil, err
	}
	if err := t.repo.UpdateDuty(ctx, *duty); err != nil {
		return nil, err
	}

	for _, relayer := range slashed {
		if err := t.slash(ctx, relayer, duty.Asset, penalty, reason, now); err != nil {
			return nil, err
		}
	}
	if _, err := t.ledger.FailDuty(ctx, duty.Relayer); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"duty": duty.Id, "reason": reason.String(), "penalty": penalty, "slashed": len(slashed),
	}).Info("failed relayer duty")
	return duty, nil
}

// ResolveChallenge resolves the duty behind a challenged withdrawal by asking
// the governance policy whether the challenge is upheld. Upheld challenges
// slash the bundle; rejected ones complete the duty normally.
func (t *DutyTracker) ResolveChallenge(
	ctx context.Context, dutyId uint64, asset string, commitment [32]byte, now int64,
) (*domain.Duty, error) {
	if t.policy != nil && t.policy.Uphold(asset, commitment) {
		return t.Fail(ctx, dutyId, domain.FailureChallengeAccepted, now)
	}
	return t.Complete(ctx, dutyId, now)
}

// ExpirePending fails every pending duty whose deadline has passed and
// returns the ids it resolved. Expired duties are never retried in place.
func (t *DutyTracker) ExpirePending(ctx context.Context, now int64) ([]uint64, error) {
	pending, err := t.repo.GetPendingDuties(ctx)
	if err != nil {
		return nil, err
	}
	expired := make([]uint64, 0)
	for _, duty := range pending {
		if !duty.IsExpired(now) {
			continue
		}
		if _, err := t.Fail(ctx, duty.Id, domain.FailureExpired, now); err != nil {
			return nil, err
		}
		expired = append(expired, duty.Id)
	}
	return expired, nil
}

func (t *DutyTracker) DutyLog(
	ctx context.Context, relayer, asset string, limit int,
) ([]domain.Duty, error) {
	return t.repo.GetDuties(ctx, relayer, asset, limit)
}

func (t *DutyTracker) GetDuty(ctx context.Context, id uint64) (*domain.Duty, error) {
	duty, err := t.repo.GetDuty(ctx, id)
	if err != nil {
		return nil, err
	}
	if duty == nil {
		return nil, errDutyNotFound{id}
	}
	return duty, nil
}

// slash burns pending rewards, debits the bond, and appends to the slash log.
func (t *DutyTracker) slash(
	ctx context.Context, relayer, asset string,
	amount uint64, reason domain.FailureReason, now int64,
) error {
	if amount == 0 {
		return nil
	}
	if _, err := t.ledger.ApplyPenalty(ctx, relayer, amount); err != nil {
		return err
	}
	account, err := t.ledger.DebitBond(ctx, relayer, amount)
	if err != nil {
		return err
	}
	return t.audit.AddSlashRecord(ctx, domain.SlashRecord{
		Relayer:       relayer,
		Asset:         asset,
		Amount:        amount,
		RemainingBond: account.Bond,
		Reason:        reason.String(),
		OccurredAt:    now,
	})
}
