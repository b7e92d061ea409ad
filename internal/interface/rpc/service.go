package bridgerpc

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/the-block/bridge/internal/core/application"
	"github.com/the-block/bridge/internal/core/domain"
	"github.com/the-block/bridge/internal/core/ports"
)

// Service exposes the bridge settlement core over JSON-RPC 2.0. Handlers
// translate wire types, sample the clock, and delegate; all windows and
// deadlines are evaluated by the core against the sampled instant.
type Service struct {
	queue   *application.WithdrawalQueue
	tracker *application.DutyTracker
}

func NewService(
	queue *application.WithdrawalQueue, tracker *application.DutyTracker,
) *Service {
	return &Service{queue: queue, tracker: tracker}
}

func parseHex32(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("invalid hex: %s", err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func hex32(b [32]byte) string {
	return hex.EncodeToString(b[:])
}

// WithdrawalReply is the wire projection of a pending withdrawal.
type WithdrawalReply struct {
	Asset              string   `json:"asset"`
	Commitment         string   `json:"commitment"`
	User               string   `json:"user"`
	Amount             uint64   `json:"amount"`
	Relayers           []string `json:"relayers"`
	EnqueuedAt         int64    `json:"enqueuedAt"`
	Deadline           int64    `json:"deadline"`
	Challenged         bool     `json:"challenged"`
	SettlementAttached bool     `json:"settlementAttached"`
}

func newWithdrawalReply(view application.WithdrawalView) WithdrawalReply {
	return WithdrawalReply{
		Asset:              view.Asset,
		Commitment:         hex32(view.Commitment),
		User:               view.User,
		Amount:             view.Amount,
		Relayers:           view.Relayers,
		EnqueuedAt:         view.EnqueuedAt,
		Deadline:           view.Deadline,
		Challenged:         view.Challenged,
		SettlementAttached: view.Settlement != nil,
	}
}

// RelayerAccountReply is the wire projection of a relayer's incentive
// counters.
type RelayerAccountReply struct {
	Relayer          string `json:"relayer"`
	Bond             uint64 `json:"bond"`
	RewardsEarned    uint64 `json:"rewardsEarned"`
	RewardsPending   uint64 `json:"rewardsPending"`
	RewardsClaimed   uint64 `json:"rewardsClaimed"`
	PenaltiesApplied uint64 `json:"penaltiesApplied"`
	DutiesAssigned   uint64 `json:"dutiesAssigned"`
	DutiesCompleted  uint64 `json:"dutiesCompleted"`
	DutiesFailed     uint64 `json:"dutiesFailed"`
}

func newRelayerAccountReply(account domain.RelayerAccount) RelayerAccountReply {
	return RelayerAccountReply{
		Relayer:          account.Relayer,
		Bond:             account.Bond,
		RewardsEarned:    account.RewardsEarned,
		RewardsPending:   account.RewardsPending,
		RewardsClaimed:   account.RewardsClaimed,
		PenaltiesApplied: account.PenaltiesApplied,
		DutiesAssigned:   account.DutiesAssigned,
		DutiesCompleted:  account.DutiesCompleted,
		DutiesFailed:     account.DutiesFailed,
	}
}

// VerifyDepositArgs are the arguments for bridge.verify_deposit.
type VerifyDepositArgs struct {
	Asset         string   `json:"asset"`
	Relayer       string   `json:"relayer"`
	User          string   `json:"user"`
	Amount        uint64   `json:"amount"`
	HeaderHash    string   `json:"headerHash"`
	Header        string   `json:"header"`
	Proof         string   `json:"proof"`
	RelayerProofs []string `json:"relayerProofs"`
}

// VerifyDepositReply is the reply for bridge.verify_deposit.
type VerifyDepositReply struct {
	Asset            string   `json:"asset"`
	Nonce            uint64   `json:"nonce"`
	User             string   `json:"user"`
	Amount           uint64   `json:"amount"`
	Commitment       string   `json:"commitment"`
	ProofFingerprint string   `json:"proofFingerprint"`
	BundleRelayers   []string `json:"bundleRelayers"`
	RecordedAt       int64    `json:"recordedAt"`
}

func (s *Service) VerifyDeposit(
	r *http.Request, args *VerifyDepositArgs, reply *VerifyDepositReply,
) error {
	headerHash, err := parseHex32(args.HeaderHash)
	if err != nil {
		return err
	}
	header, err := hex.DecodeString(args.Header)
	if err != nil {
		return fmt.Errorf("invalid header hex: %s", err)
	}
	proofBytes, err := hex.DecodeString(args.Proof)
	if err != nil {
		return fmt.Errorf("invalid proof hex: %s", err)
	}

	proof := ports.DepositProof{HeaderHash: headerHash, Header: header, Proof: proofBytes}
	receipt, err := s.queue.VerifyDeposit(
		r.Context(), args.Asset, args.Relayer, args.User, args.Amount,
		proof, args.RelayerProofs, time.Now().Unix(),
	)
	if err != nil {
		return err
	}

	reply.Asset = receipt.Asset
	reply.Nonce = receipt.Nonce
	reply.User = receipt.User
	reply.Amount = receipt.Amount
	reply.Commitment = hex32(receipt.Commitment)
	reply.ProofFingerprint = hex32(receipt.ProofFingerprint)
	reply.BundleRelayers = receipt.BundleRelayers
	reply.RecordedAt = receipt.RecordedAt
	return nil
}

// RequestWithdrawalArgs are the arguments for bridge.request_withdrawal.
type RequestWithdrawalArgs struct {
	Asset         string   `json:"asset"`
	Relayer       string   `json:"relayer"`
	User          string   `json:"user"`
	Amount        uint64   `json:"amount"`
	RelayerProofs []string `json:"relayerProofs"`
}

// RequestWithdrawalReply is the reply for bridge.request_withdrawal.
type RequestWithdrawalReply struct {
	Commitment string `json:"commitment"`
	EnqueuedAt int64  `json:"enqueuedAt"`
}

func (s *Service) RequestWithdrawal(
	r *http.Request, args *RequestWithdrawalArgs, reply *RequestWithdrawalReply,
) error {
	now := time.Now().Unix()
	commitment, err := s.queue.RequestWithdrawal(
		r.Context(), args.Asset, args.Relayer, args.User, args.Amount,
		args.RelayerProofs, now,
	)
	if err != nil {
		return err
	}
	reply.Commitment = hex32(commitment)
	reply.EnqueuedAt = now
	return nil
}

// ChallengeWithdrawalArgs are the arguments for bridge.challenge_withdrawal.
type ChallengeWithdrawalArgs struct {
	Asset      string `json:"asset"`
	Commitment string `json:"commitment"`
	Challenger string `json:"challenger"`
}

// ChallengeWithdrawalReply is the reply for bridge.challenge_withdrawal.
type ChallengeWithdrawalReply struct {
	Asset        string `json:"asset"`
	Commitment   string `json:"commitment"`
	Challenger   string `json:"challenger"`
	ChallengedAt int64  `json:"challengedAt"`
}

func (s *Service) ChallengeWithdrawal(
	r *http.Request, args *ChallengeWithdrawalArgs, reply *ChallengeWithdrawalReply,
) error {
	commitment, err := parseHex32(args.Commitment)
	if err != nil {
		return err
	}
	record, err := s.queue.ChallengeWithdrawal(
		r.Context(), args.Asset, commitment, args.Challenger, time.Now().Unix(),
	)
	if err != nil {
		return err
	}
	reply.Asset = record.Asset
	reply.Commitment = hex32(record.Commitment)
	reply.Challenger = record.Challenger
	reply.ChallengedAt = record.ChallengedAt
	return nil
}

// ResolveChallengeArgs are the arguments for bridge.resolve_challenge.
type ResolveChallengeArgs struct {
	Asset      string `json:"asset"`
	Commitment string `json:"commitment"`
}

// ResolveChallengeReply is the reply for bridge.resolve_challenge.
type ResolveChallengeReply struct {
	DutyId uint64 `json:"dutyId"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (s *Service) ResolveChallenge(
	r *http.Request, args *ResolveChallengeArgs, reply *ResolveChallengeReply,
) error {
	commitment, err := parseHex32(args.Commitment)
	if err != nil {
		return err
	}
	duty, err := s.queue.ResolveChallenge(r.Context(), args.Asset, commitment, time.Now().Unix())
	if err != nil {
		return err
	}
	reply.DutyId = duty.Id
	reply.Status = duty.Status.Code.String()
	if duty.Status.Code == domain.DutyFailed {
		reply.Reason = duty.Status.Reason.String()
	}
	return nil
}

// PendingWithdrawalsArgs are the arguments for bridge.pending_withdrawals.
type PendingWithdrawalsArgs struct {
	Asset string `json:"asset,omitempty"`
}

// PendingWithdrawalsReply is the reply for bridge.pending_withdrawals.
type PendingWithdrawalsReply struct {
	Withdrawals []WithdrawalReply `json:"withdrawals"`
}

func (s *Service) PendingWithdrawals(
	r *http.Request, args *PendingWithdrawalsArgs, reply *PendingWithdrawalsReply,
) error {
	views, err := s.queue.PendingWithdrawals(r.Context(), args.Asset)
	if err != nil {
		return err
	}
	reply.Withdrawals = make([]WithdrawalReply, 0, len(views))
	for _, view := range views {
		reply.Withdrawals = append(reply.Withdrawals, newWithdrawalReply(view))
	}
	return nil
}

// ActiveChallengesArgs are the arguments for bridge.active_challenges.
type ActiveChallengesArgs struct {
	Asset string `json:"asset,omitempty"`
}

// ChallengeReply is a single recorded challenge.
type ChallengeReply struct {
	Asset        string `json:"asset"`
	Commitment   string `json:"commitment"`
	Challenger   string `json:"challenger"`
	ChallengedAt int64  `json:"challengedAt"`
}

// ActiveChallengesReply is the reply for bridge.active_challenges.
type ActiveChallengesReply struct {
	Challenges []ChallengeReply `json:"challenges"`
}

func (s *Service) ActiveChallenges(
	r *http.Request, args *ActiveChallengesArgs, reply *ActiveChallengesReply,
) error {
	records, err := s.queue.ActiveChallenges(r.Context(), args.Asset)
	if err != nil {
		return err
	}
	reply.Challenges = make([]ChallengeReply, 0, len(records))
	for _, record := range records {
		reply.Challenges = append(reply.Challenges, ChallengeReply{
			Asset:        record.Asset,
			Commitment:   hex32(record.Commitment),
			Challenger:   record.Challenger,
			ChallengedAt: record.ChallengedAt,
		})
	}
	return nil
}

// RelayerQuorumArgs are the arguments for bridge.relayer_quorum.
type RelayerQuorumArgs struct {
	Asset string `json:"asset"`
}

// RelayerQuorumReply is the reply for bridge.relayer_quorum.
type RelayerQuorumReply struct {
	Asset    string                `json:"asset"`
	Quorum   int                   `json:"quorum"`
	Relayers []RelayerAccountReply `json:"relayers"`
}

func (s *Service) RelayerQuorum(
	r *http.Request, args *RelayerQuorumArgs, reply *RelayerQuorumReply,
) error {
	view, err := s.queue.RelayerQuorum(r.Context(), args.Asset)
	if err != nil {
		return err
	}
	reply.Asset = view.Asset
	reply.Quorum = view.Quorum
	reply.Relayers = make([]RelayerAccountReply, 0, len(view.Relayers))
	for _, account := range view.Relayers {
		reply.Relayers = append(reply.Relayers, newRelayerAccountReply(account))
	}
	return nil
}

// RelayerStatusArgs are the arguments for bridge.relayer_status.
type RelayerStatusArgs struct {
	Relayer string `json:"relayer"`
}

// RelayerStatusReply is the reply for bridge.relayer_status.
type RelayerStatusReply struct {
	Account       RelayerAccountReply `json:"account"`
	PendingDuties int                 `json:"pendingDuties"`
}

func (s *Service) RelayerStatus(
	r *http.Request, args *RelayerStatusArgs, reply *RelayerStatusReply,
) error {
	status, err := s.queue.RelayerStatus(r.Context(), args.Relayer)
	if err != nil {
		return err
	}
	reply.Account = newRelayerAccountReply(status.Account)
	reply.PendingDuties = status.PendingDuties
	return nil
}

// DepositHistoryArgs are the arguments for bridge.deposit_history.
type DepositHistoryArgs struct {
	Asset  string `json:"asset"`
	Cursor uint64 `json:"cursor,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// DepositReceiptReply is a single recorded deposit.
type DepositReceiptReply struct {
	Seq              uint64   `json:"seq"`
	Asset            string   `json:"asset"`
	Nonce            uint64   `json:"nonce"`
	User             string   `json:"user"`
	Amount           uint64   `json:"amount"`
	Relayer          string   `json:"relayer"`
	Commitment       string   `json:"commitment"`
	ProofFingerprint string   `json:"proofFingerprint"`
	BundleRelayers   []string `json:"bundleRelayers"`
	RecordedAt       int64    `json:"recordedAt"`
}

// DepositHistoryReply is the reply for bridge.deposit_history.
type DepositHistoryReply struct {
	Deposits   []DepositReceiptReply `json:"deposits"`
	NextCursor *uint64               `json:"nextCursor"`
}

func (s *Service) DepositHistory(
	r *http.Request, args *DepositHistoryArgs, reply *DepositHistoryReply,
) error {
	receipts, next, err := s.queue.DepositHistory(r.Context(), args.Asset, args.Cursor, args.Limit)
	if err != nil {
		return err
	}
	reply.Deposits = make([]DepositReceiptReply, 0, len(receipts))
	for _, receipt := range receipts {
		reply.Deposits = append(reply.Deposits, DepositReceiptReply{
			Seq:              receipt.Seq,
			Asset:            receipt.Asset,
			Nonce:            receipt.Nonce,
			User:             receipt.User,
			Amount:           receipt.Amount,
			Relayer:          receipt.Relayer,
			Commitment:       hex32(receipt.Commitment),
			ProofFingerprint: hex32(receipt.ProofFingerprint),
			BundleRelayers:   receipt.BundleRelayers,
			RecordedAt:       receipt.RecordedAt,
		})
	}
	reply.NextCursor = next
	return nil
}

// SlashLogArgs are the arguments for bridge.slash_log (empty).
type SlashLogArgs struct{}

// SlashRecordReply is a single recorded slash.
type SlashRecordReply struct {
	Seq           uint64 `json:"seq"`
	Relayer       string `json:"relayer"`
	Asset         string `json:"asset"`
	Amount        uint64 `json:"amount"`
	RemainingBond uint64 `json:"remainingBond"`
	Reason        string `json:"reason"`
	OccurredAt    int64  `json:"occurredAt"`
}

// SlashLogReply is the reply for bridge.slash_log.
type SlashLogReply struct {
	Slashes []SlashRecordReply `json:"slashes"`
}

func (s *Service) SlashLog(
	r *http.Request, args *SlashLogArgs, reply *SlashLogReply,
) error {
	records, err := s.queue.SlashLog(r.Context())
	if err != nil {
		return err
	}
	reply.Slashes = make([]SlashRecordReply, 0, len(records))
	for _, record := range records {
		reply.Slashes = append(reply.Slashes, SlashRecordReply{
			Seq:           record.Seq,
			Relayer:       record.Relayer,
			Asset:         record.Asset,
			Amount:        record.Amount,
			RemainingBond: record.RemainingBond,
			Reason:        record.Reason,
			OccurredAt:    record.OccurredAt,
		})
	}
	return nil
}

// BondRelayerArgs are the arguments for bridge.bond_relayer.
type BondRelayerArgs struct {
	Relayer string `json:"relayer"`
	Amount  uint64 `json:"amount"`
}

// BondRelayerReply is the reply for bridge.bond_relayer.
type BondRelayerReply struct {
	Account RelayerAccountReply `json:"account"`
}

func (s *Service) BondRelayer(
	r *http.Request, args *BondRelayerArgs, reply *BondRelayerReply,
) error {
	account, err := s.queue.BondRelayer(r.Context(), args.Relayer, args.Amount)
	if err != nil {
		return err
	}
	reply.Account = newRelayerAccountReply(*account)
	return nil
}

// ClaimRewardsArgs are the arguments for bridge.claim_rewards.
type ClaimRewardsArgs struct {
	Relayer     string `json:"relayer"`
	Amount      uint64 `json:"amount"`
	ApprovalKey string `json:"approvalKey"`
}

// ClaimRewardsReply is the reply for bridge.claim_rewards.
type ClaimRewardsReply struct {
	Id        string `json:"id"`
	Relayer   string `json:"relayer"`
	Amount    uint64 `json:"amount"`
	ClaimedAt int64  `json:"claimedAt"`
}

func (s *Service) ClaimRewards(
	r *http.Request, args *ClaimRewardsArgs, reply *ClaimRewardsReply,
) error {
	receipt, err := s.queue.ClaimRewards(
		r.Context(), args.Relayer, args.Amount, args.ApprovalKey, time.Now().Unix(),
	)
	if err != nil {
		return err
	}
	reply.Id = receipt.Id
	reply.Relayer = receipt.Relayer
	reply.Amount = receipt.Amount
	reply.ClaimedAt = receipt.ClaimedAt
	return nil
}

// SubmitSettlementArgs are the arguments for bridge.submit_settlement.
type SubmitSettlementArgs struct {
	Asset            string `json:"asset"`
	Relayer          string `json:"relayer"`
	Commitment       string `json:"commitment"`
	SettlementChain  string `json:"settlementChain"`
	ProofHash        string `json:"proofHash"`
	SettlementHeight uint64 `json:"settlementHeight"`
}

// SubmitSettlementReply is the reply for bridge.submit_settlement.
type SubmitSettlementReply struct {
	Accepted bool `json:"accepted"`
}

func (s *Service) SubmitSettlement(
	r *http.Request, args *SubmitSettlementArgs, reply *SubmitSettlementReply,
) error {
	commitment, err := parseHex32(args.Commitment)
	if err != nil {
		return err
	}
	proofHash, err := parseHex32(args.ProofHash)
	if err != nil {
		return err
	}
	if err := s.queue.SubmitSettlement(
		r.Context(), args.Asset, args.Relayer, commitment,
		args.SettlementChain, proofHash, args.SettlementHeight, time.Now().Unix(),
	); err != nil {
		return err
	}
	reply.Accepted = true
	return nil
}

// RewardClaimsArgs are the arguments for bridge.reward_claims.
type RewardClaimsArgs struct {
	Relayer string `json:"relayer,omitempty"`
	Cursor  uint64 `json:"cursor,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// ClaimReceiptReply is a single recorded claim.
type ClaimReceiptReply struct {
	Seq       uint64 `json:"seq"`
	Id        string `json:"id"`
	Relayer   string `json:"relayer"`
	Amount    uint64 `json:"amount"`
	ClaimedAt int64  `json:"claimedAt"`
}

// RewardClaimsReply is the reply for bridge.reward_claims.
type RewardClaimsReply struct {
	Claims     []ClaimReceiptReply `json:"claims"`
	NextCursor *uint64             `json:"nextCursor"`
}

func (s *Service) RewardClaims(
	r *http.Request, args *RewardClaimsArgs, reply *RewardClaimsReply,
) error {
	receipts, next, err := s.queue.RewardClaims(r.Context(), args.Relayer, args.Cursor, args.Limit)
	if err != nil {
		return err
	}
	reply.Claims = make([]ClaimReceiptReply, 0, len(receipts))
	for _, receipt := range receipts {
		reply.Claims = append(reply.Claims, ClaimReceiptReply{
			Seq:       receipt.Seq,
			Id:        receipt.Id,
			Relayer:   receipt.Relayer,
			Amount:    receipt.Amount,
			ClaimedAt: receipt.ClaimedAt,
		})
	}
	reply.NextCursor = next
	return nil
}

// SettlementLogArgs are the arguments for bridge.settlement_log.
type SettlementLogArgs struct {
	Asset  string `json:"asset,omitempty"`
	Cursor uint64 `json:"cursor,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// SettlementRecordReply is a single recorded settlement.
type SettlementRecordReply struct {
	Seq              uint64 `json:"seq"`
	Asset            string `json:"asset"`
	Commitment       string `json:"commitment"`
	Relayer          string `json:"relayer"`
	SettlementChain  string `json:"settlementChain"`
	ProofHash        string `json:"proofHash"`
	SettlementHeight uint64 `json:"settlementHeight"`
	RecordedAt       int64  `json:"recordedAt"`
}

// SettlementLogReply is the reply for bridge.settlement_log.
type SettlementLogReply struct {
	Settlements []SettlementRecordReply `json:"settlements"`
	NextCursor  *uint64                 `json:"nextCursor"`
}

func (s *Service) SettlementLog(
	r *http.Request, args *SettlementLogArgs, reply *SettlementLogReply,
) error {
	records, next, err := s.queue.SettlementLog(r.Context(), args.Asset, args.Cursor, args.Limit)
	if err != nil {
		return err
	}
	reply.Settlements = make([]SettlementRecordReply, 0, len(records))
	for _, record := range records {
		reply.Settlements = append(reply.Settlements, SettlementRecordReply{
			Seq:              record.Seq,
			Asset:            record.Asset,
			Commitment:       hex32(record.Commitment),
			Relayer:          record.Relayer,
			SettlementChain:  record.SettlementChain,
			ProofHash:        hex32(record.ProofHash),
			SettlementHeight: record.SettlementHeight,
			RecordedAt:       record.RecordedAt,
		})
	}
	reply.NextCursor = next
	return nil
}

// ConfigureAssetArgs are the arguments for bridge.configure_asset. Omitted
// fields keep their channel defaults.
type ConfigureAssetArgs struct {
	Asset                   string  `json:"asset"`
	ConfirmDepth            *uint64 `json:"confirmDepth,omitempty"`
	FeePerByte              *uint64 `json:"feePerByte,omitempty"`
	ChallengePeriodSecs     *uint64 `json:"challengePeriodSecs,omitempty"`
	RelayerQuorum           *int    `json:"relayerQuorum,omitempty"`
	HeadersDir              *string `json:"headersDir,omitempty"`
	RequiresSettlementProof *bool   `json:"requiresSettlementProof,omitempty"`
	SettlementChain         *string `json:"settlementChain,omitempty"`
}

// ConfigureAssetReply is the reply for bridge.configure_asset.
type ConfigureAssetReply struct {
	Asset               string `json:"asset"`
	ConfirmDepth        uint64 `json:"confirmDepth"`
	ChallengePeriodSecs uint64 `json:"challengePeriodSecs"`
	RelayerQuorum       int    `json:"relayerQuorum"`
}

func (s *Service) ConfigureAsset(
	r *http.Request, args *ConfigureAssetArgs, reply *ConfigureAssetReply,
) error {
	if len(args.Asset) == 0 {
		return fmt.Errorf("missing asset")
	}

	cfg := domain.DefaultChannelConfig(args.Asset)
	if args.ConfirmDepth != nil {
		cfg.ConfirmDepth = *args.ConfirmDepth
	}
	if args.FeePerByte != nil {
		cfg.FeePerByte = *args.FeePerByte
	}
	if args.ChallengePeriodSecs != nil {
		cfg.ChallengePeriodSecs = *args.ChallengePeriodSecs
	}
	if args.RelayerQuorum != nil {
		cfg.RelayerQuorum = *args.RelayerQuorum
	}
	if args.HeadersDir != nil {
		cfg.HeadersDir = *args.HeadersDir
	}
	if args.RequiresSettlementProof != nil {
		cfg.RequiresSettlementProof = *args.RequiresSettlementProof
	}
	if args.SettlementChain != nil {
		cfg.SettlementChain = *args.SettlementChain
	}

	if err := s.queue.ConfigureAsset(r.Context(), cfg); err != nil {
		return err
	}
	reply.Asset = cfg.Asset
	reply.ConfirmDepth = cfg.ConfirmDepth
	reply.ChallengePeriodSecs = cfg.ChallengePeriodSecs
	reply.RelayerQuorum = cfg.RelayerQuorum
	return nil
}

// SetIncentiveParamsArgs are the arguments for bridge.set_incentive_params.
// Omitted fields keep their current values.
type SetIncentiveParamsArgs struct {
	DutyReward     *uint64 `json:"dutyReward,omitempty"`
	FailureSlash   *uint64 `json:"failureSlash,omitempty"`
	ChallengeSlash *uint64 `json:"challengeSlash,omitempty"`
	MinBond        *uint64 `json:"minBond,omitempty"`
	DutyWindowSecs *int64  `json:"dutyWindowSecs,omitempty"`
}

// SetIncentiveParamsReply is the reply for bridge.set_incentive_params.
type SetIncentiveParamsReply struct {
	DutyReward     uint64 `json:"dutyReward"`
	FailureSlash   uint64 `json:"failureSlash"`
	ChallengeSlash uint64 `json:"challengeSlash"`
	MinBond        uint64 `json:"minBond"`
	DutyWindowSecs int64  `json:"dutyWindowSecs"`
}

func (s *Service) SetIncentiveParams(
	r *http.Request, args *SetIncentiveParamsArgs, reply *SetIncentiveParamsReply,
) error {
	params := s.tracker.Params()
	if args.DutyReward != nil {
		params.DutyReward = *args.DutyReward
	}
	if args.FailureSlash != nil {
		params.FailureSlash = *args.FailureSlash
	}
	if args.ChallengeSlash != nil {
		params.ChallengeSlash = *args.ChallengeSlash
	}
	if args.MinBond != nil {
		params.MinBond = *args.MinBond
	}
	if args.DutyWindowSecs != nil {
		params.DutyWindowSecs = *args.DutyWindowSecs
	}
	s.tracker.SetParams(params)

	reply.DutyReward = params.DutyReward
	reply.FailureSlash = params.FailureSlash
	reply.ChallengeSlash = params.ChallengeSlash
	reply.MinBond = params.MinBond
	reply.DutyWindowSecs = params.DutyWindowSecs
	return nil
}
