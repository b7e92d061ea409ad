package application

import (
	"context"
	"sort"

	"github.com/the-block/bridge/internal/core/domain"
)

// WithdrawalView is the operator-facing projection of a pending withdrawal.
type WithdrawalView struct {
	domain.PendingWithdrawal
	Deadline int64
}

// QuorumView lists a channel's quorum requirement and its known relayers.
type QuorumView struct {
	Asset    string
	Quorum   int
	Relayers []domain.RelayerAccount
}

// RelayerStatus is the per-relayer incentive summary.
type RelayerStatus struct {
	Account       domain.RelayerAccount
	PendingDuties int
}

// PendingWithdrawals returns pending entries for an asset (all assets when
// empty), ordered by enqueue time, with their challenge deadlines.
func (q *WithdrawalQueue) PendingWithdrawals(
	ctx context.Context, asset string,
) ([]WithdrawalView, error) {
	snapshots, err := q.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WithdrawalView, 0, len(snapshots))
	for _, s := range snapshots {
		if asset != "" && s.Asset != asset {
			continue
		}
		out = append(out, WithdrawalView{
			PendingWithdrawal: s.PendingWithdrawal,
			Deadline:          s.EnqueuedAt + int64(s.ChallengePeriodSecs),
		})
	}
	return out, nil
}

func (q *WithdrawalQueue) ActiveChallenges(
	ctx context.Context, asset string,
) ([]domain.ChallengeRecord, error) {
	records, err := q.repoManager.Audit().GetChallengeRecords(ctx, asset)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ChallengedAt < records[j].ChallengedAt
	})
	return records, nil
}

func (q *WithdrawalQueue) RelayerQuorum(ctx context.Context, asset string) (*QuorumView, error) {
	channel, err := q.repoManager.Withdrawals().GetChannel(ctx, asset)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, errChannelNotFound{asset}
	}
	relayers, err := q.ledger.GetAllAccounts(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(relayers, func(i, j int) bool {
		return relayers[i].Relayer < relayers[j].Relayer
	})
	return &QuorumView{
		Asset:    asset,
		Quorum:   channel.Config.RelayerQuorum,
		Relayers: relayers,
	}, nil
}

func (q *WithdrawalQueue) RelayerStatus(ctx context.Context, relayer string) (*RelayerStatus, error) {
	account, err := q.ledger.GetAccount(ctx, relayer)
	if err != nil {
		return nil, err
	}
	pending, err := q.repoManager.Duties().GetPendingDuties(ctx)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, duty := range pending {
		if duty.Relayer == relayer {
			count++
		}
	}
	return &RelayerStatus{Account: *account, PendingDuties: count}, nil
}

func (q *WithdrawalQueue) LockedBalance(
	ctx context.Context, asset, user string,
) (uint64, error) {
	channel, err := q.repoManager.Withdrawals().GetChannel(ctx, asset)
	if err != nil {
		return 0, err
	}
	if channel == nil {
		return 0, errChannelNotFound{asset}
	}
	return channel.Locked[user], nil
}

// DepositHistory pages deposit receipts by sequence number.
func (q *WithdrawalQueue) DepositHistory(
	ctx context.Context, asset string, cursor uint64, limit int,
) ([]domain.DepositReceipt, *uint64, error) {
	receipts, err := q.repoManager.Audit().GetDepositReceipts(ctx, asset)
	if err != nil {
		return nil, nil, err
	}
	page, next := pageBySeq(len(receipts), cursor, limit, func(i int) uint64 {
		return receipts[i].Seq
	})
	return receipts[page.start:page.end], next, nil
}

func (q *WithdrawalQueue) SlashLog(ctx context.Context) ([]domain.SlashRecord, error) {
	return q.repoManager.Audit().GetSlashRecords(ctx)
}

func (q *WithdrawalQueue) RewardClaims(
	ctx context.Context, relayer string, cursor uint64, limit int,
) ([]domain.ClaimReceipt, *uint64, error) {
	receipts, err := q.repoManager.Audit().GetClaimReceipts(ctx, relayer)
	if err != nil {
		return nil, nil, err
	}
	page, next := pageBySeq(len(receipts), cursor, limit, func(i int) uint64 {
		return receipts[i].Seq
	})
	return receipts[page.start:page.end], next, nil
}

func (q *WithdrawalQueue) SettlementLog(
	ctx context.Context, asset string, cursor uint64, limit int,
) ([]domain.SettlementRecord, *uint64, error) {
	records, err := q.repoManager.Audit().GetSettlementRecords(ctx, asset)
	if err != nil {
		return nil, nil, err
	}
	page, next := pageBySeq(len(records), cursor, limit, func(i int) uint64 {
		return records[i].Seq
	})
	return records[page.start:page.end], next, nil
}

type pageBounds struct {
	start, end int
}

// pageBySeq slices a sequence-ordered list at the first element with
// seq >= cursor, capped at limit. The returned next cursor is nil once the
// list is exhausted.
func pageBySeq(length int, cursor uint64, limit int, seqAt func(int) uint64) (pageBounds, *uint64) {
	if limit <= 0 {
		limit = 50
	}
	start := sort.Search(length, func(i int) bool { return seqAt(i) >= cursor })
	end := start + limit
	if end > length {
		end = length
	}
	if end < length {
		next := seqAt(end)
		return pageBounds{start, end}, &next
	}
	return pageBounds{start, end}, nil
}
