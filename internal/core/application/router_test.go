package application_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/the-block/bridge/internal/core/application"
	"github.com/the-block/bridge/internal/core/domain"
	"github.com/the-block/bridge/internal/core/ports"
	inmemorylivestore "github.com/the-block/bridge/internal/infrastructure/live-store/inmemory"
)

func testEntropy(seed byte) [32]byte {
	var entropy [32]byte
	entropy[0] = seed
	return entropy
}

func snapshotAt(asset, user string, amount uint64, enqueuedAt int64) domain.WithdrawalSnapshot {
	commitment := domain.WithdrawalCommitment(asset, user, amount, 0)
	return domain.WithdrawalSnapshot{
		PendingWithdrawal: domain.PendingWithdrawal{
			Key:        domain.WithdrawalKey(asset, commitment),
			Asset:      asset,
			Commitment: commitment,
			User:       user,
			Amount:     amount,
			EnqueuedAt: enqueuedAt,
		},
		ChallengePeriodSecs: 30,
	}
}

func TestScheduleDeterminism(t *testing.T) {
	router := application.NewLiquidityRouter(domain.DefaultRouterConfig())
	escrow := inmemorylivestore.NewEscrowStore()
	trust := inmemorylivestore.NewTrustLedger()

	for i := uint64(1); i <= 5; i++ {
		escrow.AddLock(ports.EscrowLock{Id: i, Buyer: "buyer", Seller: "seller", Quantity: i, Price: 10})
		escrow.SetReady(i)
	}
	trust.SetLine("A", "B", 40)
	withdrawals := []domain.WithdrawalSnapshot{
		snapshotAt("btc", "alice", 100, 900),
		snapshotAt("btc", "bob", 200, 910),
	}

	entropy := testEntropy(7)
	first := router.Schedule(nil, escrow, withdrawals, trust, entropy, 1000)
	second := router.Schedule(nil, escrow, withdrawals, trust, entropy, 1000)

	require.Equal(t, len(first.Intents), len(second.Intents))
	for i := range first.Intents {
		require.Equal(t, first.Intents[i].Slot, second.Intents[i].Slot)
		require.Equal(t, first.Intents[i].Intent, second.Intents[i].Intent)
	}

	// different entropy reshuffles the slots
	reseeded := router.Schedule(nil, escrow, withdrawals, trust, testEntropy(8), 1000)
	require.Equal(t, len(first.Intents), len(reseeded.Intents))
	sameOrder := true
	for i := range first.Intents {
		if first.Intents[i].Slot != reseeded.Intents[i].Slot {
			sameOrder = false
			break
		}
	}
	require.False(t, sameOrder)
}

func TestScheduleSlotsMonotone(t *testing.T) {
	router := application.NewLiquidityRouter(domain.DefaultRouterConfig())
	escrow := inmemorylivestore.NewEscrowStore()
	trust := inmemorylivestore.NewTrustLedger()

	for i := uint64(1); i <= 20; i++ {
		escrow.AddLock(ports.EscrowLock{Id: i, Buyer: "buyer", Seller: "seller", Quantity: 1, Price: 1})
		escrow.SetReady(i)
	}

	batch := router.Schedule(nil, escrow, nil, trust, testEntropy(3), 1000)
	require.Len(t, batch.Intents, 20)
	for i := 1; i < len(batch.Intents); i++ {
		require.GreaterOrEqual(t, batch.Intents[i].Slot, batch.Intents[i-1].Slot)
	}
}

func TestScheduleExcludesChallengedAndUnripe(t *testing.T) {
	router := application.NewLiquidityRouter(domain.DefaultRouterConfig())
	escrow := inmemorylivestore.NewEscrowStore()
	trust := inmemorylivestore.NewTrustLedger()

	ready := snapshotAt("btc", "alice", 100, 900)
	challenged := snapshotAt("btc", "bob", 200, 900)
	challenged.Challenged = true
	unripe := snapshotAt("btc", "carol", 300, 990)
	unsettled := snapshotAt("btc", "dave", 400, 900)
	unsettled.RequiresSettlementProof = true

	batch := router.Schedule(
		nil, escrow,
		[]domain.WithdrawalSnapshot{ready, challenged, unripe, unsettled},
		trust, testEntropy(1), 1000,
	)
	require.Len(t, batch.Intents, 1)
	intent, ok := batch.Intents[0].Intent.(domain.BridgeWithdrawalIntent)
	require.True(t, ok)
	require.Equal(t, "alice", intent.User)
}

func TestScheduleOverflowRollover(t *testing.T) {
	f := newFixture(t)
	config := domain.DefaultRouterConfig()
	config.BatchSize = 2
	router := application.NewLiquidityRouter(config)
	escrow := inmemorylivestore.NewEscrowStore()
	trust := inmemorylivestore.NewTrustLedger()

	for i := uint64(1); i <= 3; i++ {
		escrow.AddLock(ports.EscrowLock{Id: i, Buyer: "buyer", Seller: "seller", Quantity: 2, Price: 5})
		escrow.SetReady(i)
	}

	first := router.Schedule(nil, escrow, nil, trust, testEntropy(9), 1000)
	require.Len(t, first.Intents, 2)

	execution := router.ApplyBatch(ctx, first, escrow, nil, trust, f.queue, 1000)
	require.Len(t, execution.ReleasedEscrows, 2)
	require.Zero(t, execution.Skipped)

	// the omitted candidate reappears untouched on the next call
	second := router.Schedule(nil, escrow, nil, trust, testEntropy(9), 1001)
	require.Len(t, second.Intents, 1)
	released := map[uint64]struct{}{}
	for _, id := range execution.ReleasedEscrows {
		released[id] = struct{}{}
	}
	intent := second.Intents[0].Intent.(domain.DexEscrowIntent)
	_, alreadyReleased := released[intent.EscrowId]
	require.False(t, alreadyReleased)

	execution = router.ApplyBatch(ctx, second, escrow, nil, trust, f.queue, 1001)
	require.Len(t, execution.ReleasedEscrows, 1)
	require.Empty(t, escrow.ReadyLocks())
}

func TestScheduleTrustFallbackPath(t *testing.T) {
	f := newFixture(t)
	config := domain.DefaultRouterConfig()
	config.MaxTrustHops = 0
	router := application.NewLiquidityRouter(config)
	escrow := inmemorylivestore.NewEscrowStore()
	trust := inmemorylivestore.NewTrustLedger()

	trust.SetLine("A", "B", 10)
	trust.RegisterFallback("A", "B", []string{"A", "C", "B"})

	batch := router.Schedule(nil, escrow, nil, trust, testEntropy(2), 1000)
	require.Len(t, batch.Intents, 1)
	intent := batch.Intents[0].Intent.(domain.TrustRebalanceIntent)
	require.Equal(t, []string{"A", "C", "B"}, intent.Path)
	require.Equal(t, uint64(10), intent.Amount)

	execution := router.ApplyBatch(ctx, batch, escrow, nil, trust, f.queue, 1000)
	require.Len(t, execution.TrustRebalances, 1)
	require.Equal(t, []string{"A", "C", "B"}, execution.TrustRebalances[0].Path)
	require.Equal(t, uint64(10), execution.TrustRebalances[0].Amount)

	// the line is discharged
	for _, line := range trust.Lines() {
		require.False(t, line.From == "A" && line.To == "B")
	}
}

// corridorOnlyLedger offers a fallback corridor without any funded best path,
// the way an external ledger may when bilateral settlement is disallowed
// outright.
type corridorOnlyLedger struct {
	line     ports.TrustLine
	corridor []string
}

func (l *corridorOnlyLedger) Lines() []ports.TrustLine { return []ports.TrustLine{l.line} }

func (l *corridorOnlyLedger) FindBestPath(from, to string, amount uint64) (best, fallback []string, ok bool) {
	return nil, append([]string(nil), l.corridor...), true
}

func (l *corridorOnlyLedger) SettlePath(path []string, amount uint64) bool { return true }

func TestScheduleCorridorWithoutBestPath(t *testing.T) {
	router := application.NewLiquidityRouter(domain.DefaultRouterConfig())
	escrow := inmemorylivestore.NewEscrowStore()
	trust := &corridorOnlyLedger{
		line:     ports.TrustLine{From: "A", To: "B", Balance: 10},
		corridor: []string{"A", "C", "B"},
	}

	batch := router.Schedule(nil, escrow, nil, trust, testEntropy(6), 1000)
	require.Len(t, batch.Intents, 1)
	intent := batch.Intents[0].Intent.(domain.TrustRebalanceIntent)
	require.Equal(t, []string{"A", "C", "B"}, intent.Path)
}

func TestScheduleTrustWithoutPathIsDropped(t *testing.T) {
	config := domain.DefaultRouterConfig()
	config.MaxTrustHops = 0
	router := application.NewLiquidityRouter(config)
	escrow := inmemorylivestore.NewEscrowStore()
	trust := inmemorylivestore.NewTrustLedger()

	trust.SetLine("A", "B", 10)

	batch := router.Schedule(nil, escrow, nil, trust, testEntropy(2), 1000)
	require.True(t, batch.IsEmpty())
}

func TestApplyBatchSkipsVanishedIntents(t *testing.T) {
	f := newFixture(t)
	router := application.NewLiquidityRouter(domain.DefaultRouterConfig())
	escrow := inmemorylivestore.NewEscrowStore()
	trust := inmemorylivestore.NewTrustLedger()

	escrow.AddLock(ports.EscrowLock{Id: 1, Buyer: "buyer", Seller: "seller", Quantity: 2, Price: 5})
	escrow.SetReady(1)
	trust.SetLine("A", "B", 10)

	batch := router.Schedule(nil, escrow, nil, trust, testEntropy(4), 1000)
	require.Len(t, batch.Intents, 2)

	// both preconditions vanish between schedule and apply
	require.True(t, escrow.Release(1, 10))
	require.True(t, trust.SettlePath([]string{"A", "B"}, 10))

	execution := router.ApplyBatch(ctx, batch, escrow, nil, trust, f.queue, 1000)
	require.Equal(t, 2, execution.Skipped)
	require.Empty(t, execution.ReleasedEscrows)
	require.Empty(t, execution.TrustRebalances)
}

func TestRouterEndToEnd(t *testing.T) {
	f := newFixture(t)
	router := application.NewLiquidityRouter(domain.DefaultRouterConfig())
	escrow := inmemorylivestore.NewEscrowStore()
	orderBook := inmemorylivestore.NewOrderBook()
	trust := inmemorylivestore.NewTrustLedger()

	f.bond(t, "relayer1", 100)
	f.configure(t, domain.DefaultChannelConfig("btc"))
	bundle := []string{"relayer1", "relayer2"}

	now := int64(1000)
	_, err := f.queue.VerifyDeposit(
		ctx, "btc", "relayer1", "alice", 500, makeProof("h1", "p1"), bundle, now-30,
	)
	require.NoError(t, err)
	commitment, err := f.queue.RequestWithdrawal(
		ctx, "btc", "relayer1", "alice", 500, bundle, now-30,
	)
	require.NoError(t, err)

	escrow.AddLock(ports.EscrowLock{Id: 1, Buyer: "buyer", Seller: "seller", Quantity: 3, Price: 7})
	escrow.SetReady(1)
	trust.SetLine("A", "B", 25)

	snapshot, err := f.queue.Snapshot(ctx)
	require.NoError(t, err)

	batch := router.Schedule(orderBook, escrow, snapshot, trust, testEntropy(5), now)
	require.Len(t, batch.Intents, 3)
	kinds := map[domain.IntentKind]bool{}
	for _, seq := range batch.Intents {
		kinds[seq.Intent.Kind()] = true
	}
	require.True(t, kinds[domain.IntentBridgeWithdrawal])
	require.True(t, kinds[domain.IntentDexEscrow])
	require.True(t, kinds[domain.IntentTrustRebalance])

	execution := router.ApplyBatch(ctx, batch, escrow, orderBook, trust, f.queue, now)
	require.Zero(t, execution.Skipped)
	require.Equal(t,
		[]domain.WithdrawalRef{{Asset: "btc", Commitment: commitment}},
		execution.FinalizedWithdrawals,
	)
	require.Equal(t, []uint64{1}, execution.ReleasedEscrows)
	require.Equal(t,
		[]domain.TrustRebalance{{Path: []string{"A", "B"}, Amount: 25}},
		execution.TrustRebalances,
	)

	pending, err := f.queue.PendingWithdrawals(ctx, "btc")
	require.NoError(t, err)
	require.Empty(t, pending)
	require.Empty(t, escrow.ReadyLocks())
	require.Empty(t, trust.Lines())

	value, ok := escrow.ReleasedValue(1)
	require.True(t, ok)
	require.Equal(t, uint64(21), value)
}
