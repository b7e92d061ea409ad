package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/the-block/bridge/internal/core/domain"
	"github.com/the-block/bridge/internal/core/ports"
)

// LiquidityRouter merges candidate intents from the withdrawal queue, the
// DEX escrow store, and the trust-credit ledger into bounded, reproducible
// batches and applies them. The router holds no state of its own: Schedule
// and ApplyBatch are pure, bounded computations over the snapshots they are
// handed, and identical (state, entropy) inputs yield identical batches.
// Callers must serialize Schedule/ApplyBatch against the same stores.
type LiquidityRouter struct {
	config domain.RouterConfig
}

func NewLiquidityRouter(config domain.RouterConfig) *LiquidityRouter {
	return &LiquidityRouter{config}
}

func (r *LiquidityRouter) Config() domain.RouterConfig {
	return r.config
}

// slotFor derives the deterministic ordering key: the first 8 bytes of
// sha256(entropy || kind discriminant || identity bytes).
func slotFor(entropy [32]byte, intent domain.LiquidityIntent) uint64 {
	h := sha256.New()
	h.Write(entropy[:])
	h.Write([]byte{byte(intent.Kind())})
	h.Write(intent.Identity())
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

// Schedule builds the next batch from read snapshots: finalizable pending
// withdrawals (challenged entries are never candidates), satisfied escrow
// locks, and trust imbalances above the rebalance floor. Candidates are
// sorted ascending by slot; ties break aged-first (fairness window), then by
// kind precedence, then by identity bytes. The batch is truncated to the
// configured size and omitted candidates reappear on the next call.
func (r *LiquidityRouter) Schedule(
	orderBook ports.OrderBookSource,
	escrow ports.EscrowStore,
	withdrawals []domain.WithdrawalSnapshot,
	trust ports.TrustLedger,
	entropy [32]byte,
	now int64,
) domain.Batch {
	ageFloor := now - int64(r.config.FairnessWindow/1e9)
	sequenced := make([]domain.SequencedIntent, 0)

	push := func(intent domain.LiquidityIntent) {
		sequenced = append(sequenced, domain.SequencedIntent{
			Intent: intent,
			Slot:   slotFor(entropy, intent),
			Aged:   intent.Timestamp() <= ageFloor,
		})
	}

	for _, s := range withdrawals {
		if !s.Finalizable(now) {
			continue
		}
		push(domain.BridgeWithdrawalIntent{
			Asset:      s.Asset,
			Commitment: s.Commitment,
			User:       s.User,
			Amount:     s.Amount,
			EnqueuedAt: s.EnqueuedAt,
		})
	}

	for _, lock := range escrow.ReadyLocks() {
		push(domain.DexEscrowIntent{
			EscrowId: lock.Id,
			Buyer:    lock.Buyer,
			Seller:   lock.Seller,
			Quantity: lock.Quantity,
			Price:    lock.Price,
			LockedAt: lock.LockedAt,
		})
	}

	for _, line := range trust.Lines() {
		if line.Balance <= 0 {
			continue
		}
		amount := uint64(line.Balance)
		if amount < r.config.MinTrustRebalance {
			continue
		}
		path, ok := r.resolvePath(trust, line.From, line.To, amount)
		if !ok {
			continue
		}
		push(domain.TrustRebalanceIntent{Path: path, Amount: amount, DetectedAt: now})
	}

	sort.Slice(sequenced, func(i, j int) bool {
		a, b := sequenced[i], sequenced[j]
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		if a.Aged != b.Aged {
			return a.Aged
		}
		if a.Intent.Kind() != b.Intent.Kind() {
			return a.Intent.Kind() < b.Intent.Kind()
		}
		return bytes.Compare(a.Intent.Identity(), b.Intent.Identity()) < 0
	})
	if len(sequenced) > r.config.BatchSize {
		sequenced = sequenced[:r.config.BatchSize]
	}

	if orderBook != nil {
		bids, asks := orderBook.Depth()
		log.WithFields(log.Fields{
			"intents": len(sequenced), "bids": bids, "asks": asks,
		}).Debug("scheduled liquidity batch")
	}

	return domain.Batch{
		Id:        uuid.New().String(),
		PlannedAt: now,
		Entropy:   entropy,
		Intents:   sequenced,
	}
}

// resolvePath asks the trust ledger for the best path within the hop budget,
// falling back to the ledger's unconstrained route when the best one is too
// long. Candidates without any usable path are dropped for this round; there
// is no partial-hop execution.
func (r *LiquidityRouter) resolvePath(
	trust ports.TrustLedger, from, to string, amount uint64,
) ([]string, bool) {
	best, fallback, ok := trust.FindBestPath(from, to, amount)
	if !ok {
		return nil, false
	}
	if best != nil && len(best)-1 <= r.config.MaxTrustHops {
		return best, true
	}
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

// ApplyBatch applies intents in slot order with per-intent atomicity: an
// intent whose precondition vanished since scheduling is skipped and excluded
// from the result, and the batch never aborts as a whole. Each intent's own
// store mutation is atomic.
func (r *LiquidityRouter) ApplyBatch(
	ctx context.Context,
	batch domain.Batch,
	escrow ports.EscrowStore,
	orderBook ports.OrderBookSource,
	trust ports.TrustLedger,
	queue *WithdrawalQueue,
	now int64,
) domain.Execution {
	execution := domain.Execution{}
	for _, seq := range batch.Intents {
		switch intent := seq.Intent.(type) {
		case domain.BridgeWithdrawalIntent:
			if err := queue.FinalizeWithdrawal(ctx, intent.Asset, intent.Commitment, now); err != nil {
				log.WithError(err).WithField("commitment", intent.Commitment).
					Debug("skipping withdrawal intent")
				execution.Skipped++
				continue
			}
			execution.FinalizedWithdrawals = append(
				execution.FinalizedWithdrawals,
				domain.WithdrawalRef{Asset: intent.Asset, Commitment: intent.Commitment},
			)
		case domain.DexEscrowIntent:
			value, ok := tradeValue(intent.Price, intent.Quantity)
			if !ok || !escrow.Release(intent.EscrowId, value) {
				execution.Skipped++
				continue
			}
			if orderBook != nil {
				orderBook.LogTrade(ports.EscrowLock{
					Id:       intent.EscrowId,
					Buyer:    intent.Buyer,
					Seller:   intent.Seller,
					Quantity: intent.Quantity,
					Price:    intent.Price,
					LockedAt: intent.LockedAt,
				}, value)
			}
			execution.ReleasedEscrows = append(execution.ReleasedEscrows, intent.EscrowId)
		case domain.TrustRebalanceIntent:
			if !trust.SettlePath(intent.Path, intent.Amount) {
				execution.Skipped++
				continue
			}
			execution.TrustRebalances = append(execution.TrustRebalances, domain.TrustRebalance{
				Path:   intent.Path,
				Amount: intent.Amount,
			})
		}
	}
	log.WithFields(log.Fields{
		"batch":       batch.Id,
		"withdrawals": len(execution.FinalizedWithdrawals),
		"escrows":     len(execution.ReleasedEscrows),
		"rebalances":  len(execution.TrustRebalances),
		"skipped":     execution.Skipped,
	}).Debug("applied liquidity batch")
	return execution
}

func tradeValue(price, quantity uint64) (uint64, bool) {
	if price == 0 || quantity == 0 {
		return 0, true
	}
	value := price * quantity
	if value/price != quantity {
		return 0, false
	}
	return value, true
}
