package domain

import (
	"sort"
	"time"
)

const (
	// Kind values double as the fixed tiebreak precedence: withdrawals
	// before escrow releases before trust rebalances.
	IntentBridgeWithdrawal IntentKind = iota
	IntentDexEscrow
	IntentTrustRebalance
)

type IntentKind int

func (k IntentKind) String() string {
	switch k {
	case IntentBridgeWithdrawal:
		return "bridge_withdrawal"
	case IntentDexEscrow:
		return "dex_escrow"
	case IntentTrustRebalance:
		return "trust_rebalance"
	default:
		return "unknown"
	}
}

// LiquidityIntent is a candidate store mutation merged into a settlement
// batch. The variant set is closed: bridge withdrawals, DEX escrow releases,
// and trust-credit rebalances.
type LiquidityIntent interface {
	Kind() IntentKind
	// Identity returns the bytes that, together with the batch entropy and
	// the kind discriminant, determine the intent's slot.
	Identity() []byte
	// Timestamp is the intent's origin time, used by the fairness tiebreak.
	Timestamp() int64
}

type BridgeWithdrawalIntent struct {
	Asset      string
	Commitment [32]byte
	User       string
	Amount     uint64
	EnqueuedAt int64
}

func (i BridgeWithdrawalIntent) Kind() IntentKind { return IntentBridgeWithdrawal }
func (i BridgeWithdrawalIntent) Timestamp() int64 { return i.EnqueuedAt }
func (i BridgeWithdrawalIntent) Identity() []byte { return i.Commitment[:] }

type DexEscrowIntent struct {
	EscrowId uint64
	Buyer    string
	Seller   string
	Quantity uint64
	Price    uint64
	LockedAt int64
}

func (i DexEscrowIntent) Kind() IntentKind { return IntentDexEscrow }
func (i DexEscrowIntent) Timestamp() int64 { return i.LockedAt }
func (i DexEscrowIntent) Identity() []byte { return le64(i.EscrowId) }

type TrustRebalanceIntent struct {
	Path       []string
	Amount     uint64
	DetectedAt int64
}

func (i TrustRebalanceIntent) Kind() IntentKind { return IntentTrustRebalance }
func (i TrustRebalanceIntent) Timestamp() int64 { return i.DetectedAt }

func (i TrustRebalanceIntent) Identity() []byte {
	hops := append([]string{}, i.Path...)
	sort.Strings(hops)
	out := make([]byte, 0, len(hops)*8)
	for _, hop := range hops {
		out = append(out, hop...)
		out = append(out, 0)
	}
	return out
}

// SequencedIntent is an intent with its deterministic ordering key assigned.
type SequencedIntent struct {
	Intent LiquidityIntent
	Slot   uint64
	// Aged marks intents older than the fairness window; they win slot
	// ties so a stream of newer candidates cannot starve them.
	Aged bool
}

// Batch is a bounded, reproducible ordering of intents. Identical
// (state, entropy) inputs produce an identical batch.
type Batch struct {
	Id        string
	PlannedAt int64
	Entropy   [32]byte
	Intents   []SequencedIntent
}

func (b Batch) IsEmpty() bool {
	return len(b.Intents) == 0
}

// Execution reports what a batch application actually mutated. Intents whose
// precondition vanished between schedule and apply are counted in Skipped and
// excluded from the per-kind results.
type Execution struct {
	ReleasedEscrows      []uint64
	FinalizedWithdrawals []WithdrawalRef
	TrustRebalances      []TrustRebalance
	Skipped              int
}

type WithdrawalRef struct {
	Asset      string
	Commitment [32]byte
}

type TrustRebalance struct {
	Path   []string
	Amount uint64
}

// RouterConfig carries the governance-exposed knobs of the liquidity router.
type RouterConfig struct {
	BatchSize         int
	FairnessWindow    time.Duration
	MaxTrustHops      int
	MinTrustRebalance uint64
}

func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		BatchSize:         32,
		FairnessWindow:    250 * time.Millisecond,
		MaxTrustHops:      6,
		MinTrustRebalance: 1,
	}
}
