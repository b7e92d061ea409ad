package main

import (
	"context"
	"crypto/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/the-block/bridge/internal/config"
	bridgerpc "github.com/the-block/bridge/internal/interface/rpc"
)

//nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	svc := bridgerpc.NewService(cfg.WithdrawalQueue(), cfg.DutyTracker())
	server, err := bridgerpc.NewServer(cfg.Port, svc)
	if err != nil {
		log.Fatal(err)
	}

	scheduler := cfg.SchedulerService()
	if err := scheduler.ScheduleTick(
		time.Duration(cfg.RoundInterval)*time.Second, settlementTick(cfg),
	); err != nil {
		log.Fatal(err)
	}

	log.Info("starting service...")
	scheduler.Start()
	server.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, os.Interrupt)
	<-sigChan

	log.Info("shutting down service...")
	server.Stop()
	scheduler.Stop()
	cfg.RepoManager().Close()
	log.Exit(0)
}

// settlementTick runs one scheduling round: expire overdue duties, snapshot
// the stores, build a batch from fresh entropy, and apply it.
func settlementTick(cfg *config.Config) func() {
	queue := cfg.WithdrawalQueue()
	tracker := cfg.DutyTracker()
	router := cfg.LiquidityRouter()
	escrow := cfg.EscrowStore()
	trust := cfg.TrustLedger()
	orderBook := cfg.OrderBook()

	return func() {
		ctx := context.Background()
		now := time.Now().Unix()

		expired, err := tracker.ExpirePending(ctx, now)
		if err != nil {
			log.WithError(err).Error("failed to expire pending duties")
			return
		}
		if len(expired) > 0 {
			log.WithField("duties", len(expired)).Info("expired overdue duties")
		}

		snapshot, err := queue.Snapshot(ctx)
		if err != nil {
			log.WithError(err).Error("failed to snapshot withdrawal queue")
			return
		}

		var entropy [32]byte
		if _, err := rand.Read(entropy[:]); err != nil {
			log.WithError(err).Error("failed to draw batch entropy")
			return
		}

		batch := router.Schedule(orderBook, escrow, snapshot, trust, entropy, now)
		if batch.IsEmpty() {
			return
		}
		execution := router.ApplyBatch(ctx, batch, escrow, orderBook, trust, queue, now)
		log.WithFields(log.Fields{
			"batch":       batch.Id,
			"withdrawals": len(execution.FinalizedWithdrawals),
			"escrows":     len(execution.ReleasedEscrows),
			"rebalances":  len(execution.TrustRebalances),
			"skipped":     execution.Skipped,
		}).Info("settlement round applied")
	}
}
