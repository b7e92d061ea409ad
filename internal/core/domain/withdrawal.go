package domain

import "fmt"

// ChannelConfig is the per-asset bridge channel configuration. It is set by
// the operator and read by the withdrawal queue; the queue never mutates it.
type ChannelConfig struct {
	Asset                   string
	ConfirmDepth            uint64
	FeePerByte              uint64
	ChallengePeriodSecs     uint64
	RelayerQuorum           int
	HeadersDir              string
	RequiresSettlementProof bool
	SettlementChain         string
}

func DefaultChannelConfig(asset string) ChannelConfig {
	return ChannelConfig{
		Asset:               asset,
		ConfirmDepth:        6,
		FeePerByte:          0,
		ChallengePeriodSecs: 30,
		RelayerQuorum:       2,
		HeadersDir:          fmt.Sprintf("bridge_headers/%s", asset),
	}
}

// Channel is the persisted per-asset state: the configuration, the nonce used
// to derive commitments, and the per-user locked balances.
type Channel struct {
	Asset     string `badgerhold:"key"`
	Config    ChannelConfig
	NextNonce uint64
	Locked    map[string]uint64
}

func NewChannel(config ChannelConfig) *Channel {
	return &Channel{
		Asset:  config.Asset,
		Config: config,
		Locked: make(map[string]uint64),
	}
}

func (c *Channel) Lock(user string, amount uint64) {
	if c.Locked == nil {
		c.Locked = make(map[string]uint64)
	}
	c.Locked[user] = satAdd(c.Locked[user], amount)
}

func (c *Channel) Unlock(user string, amount uint64) {
	if c.Locked == nil {
		return
	}
	c.Locked[user] = satSub(c.Locked[user], amount)
}

// SettlementAttachment records an accepted external settlement proof on a
// pending withdrawal.
type SettlementAttachment struct {
	Relayer          string
	SettlementChain  string
	ProofHash        [32]byte
	SettlementHeight uint64
	AttachedAt       int64
}

// PendingWithdrawal is a queued withdrawal awaiting its challenge window.
// Entries are removed only on finalization; the challenged flag can be set
// but never cleared.
type PendingWithdrawal struct {
	Key        string `badgerhold:"key"`
	Asset      string
	Commitment [32]byte
	User       string
	Amount     uint64
	Relayers   []string
	EnqueuedAt int64
	Challenged bool
	Settlement *SettlementAttachment
	// DutyId links back to the withdrawal duty resolved at finalization.
	DutyId uint64
}

func WithdrawalKey(asset string, commitment [32]byte) string {
	return fmt.Sprintf("%s/%x", asset, commitment)
}

func (w PendingWithdrawal) Deadline(cfg ChannelConfig) int64 {
	return w.EnqueuedAt + int64(cfg.ChallengePeriodSecs)
}

// Finalizable reports whether the withdrawal may leave the queue: it must be
// unchallenged, its challenge window must have elapsed, and, when the channel
// demands it, a verified settlement proof must be attached.
func (w PendingWithdrawal) Finalizable(cfg ChannelConfig, now int64) bool {
	if w.Challenged {
		return false
	}
	if now < w.Deadline(cfg) {
		return false
	}
	if cfg.RequiresSettlementProof && w.Settlement == nil {
		return false
	}
	return true
}

// WithdrawalSnapshot pairs a pending withdrawal with the channel parameters
// the router needs to evaluate finality without reaching back into the queue.
type WithdrawalSnapshot struct {
	PendingWithdrawal
	ChallengePeriodSecs     uint64
	RequiresSettlementProof bool
}

func (s WithdrawalSnapshot) Finalizable(now int64) bool {
	cfg := ChannelConfig{
		ChallengePeriodSecs:     s.ChallengePeriodSecs,
		RequiresSettlementProof: s.RequiresSettlementProof,
	}
	return s.PendingWithdrawal.Finalizable(cfg, now)
}
