package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/the-block/bridge/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const (
	channelStoreDir     = "channels"
	withdrawalStoreDir  = "withdrawals"
	fingerprintStoreDir = "fingerprints"
)

// fingerprintRecord marks a deposit proof as already redeemed. The key is the
// asset joined with the hex fingerprint, so replays fail on insert.
type fingerprintRecord struct {
	Key string `badgerhold:"key"`
}

func fingerprintKey(asset string, fingerprint [32]byte) string {
	return fmt.Sprintf("%s/%x", asset, fingerprint)
}

type withdrawalRepository struct {
	channelStore     *badgerhold.Store
	withdrawalStore  *badgerhold.Store
	fingerprintStore *badgerhold.Store
}

func NewWithdrawalRepository(config ...interface{}) (domain.WithdrawalRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var channelDir, withdrawalDir, fingerprintDir string
	if len(baseDir) > 0 {
		channelDir = filepath.Join(baseDir, channelStoreDir)
		withdrawalDir = filepath.Join(baseDir, withdrawalStoreDir)
		fingerprintDir = filepath.Join(baseDir, fingerprintStoreDir)
	}
	channelStore, err := createDB(channelDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open channel store: %s", err)
	}
	withdrawalStore, err := createDB(withdrawalDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open withdrawal store: %s", err)
	}
	fingerprintStore, err := createDB(fingerprintDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open fingerprint store: %s", err)
	}

	return &withdrawalRepository{channelStore, withdrawalStore, fingerprintStore}, nil
}

func (r *withdrawalRepository) AddOrUpdateChannel(
	ctx context.Context, channel domain.Channel,
) error {
	return r.channelStore.Upsert(channel.Asset, channel)
}

func (r *withdrawalRepository) GetChannel(
	ctx context.Context, asset string,
) (*domain.Channel, error) {
	var channel domain.Channel
	err := r.channelStore.Get(asset, &channel)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *withdrawalRepository) GetChannels(ctx context.Context) ([]domain.Channel, error) {
	channels := make([]domain.Channel, 0)
	query := badgerhold.Where("Asset").Ne("")
	if err := r.channelStore.Find(&channels, query); err != nil {
		return nil, err
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Asset < channels[j].Asset
	})
	return channels, nil
}

func (r *withdrawalRepository) AddWithdrawal(
	ctx context.Context, withdrawal domain.PendingWithdrawal,
) error {
	return r.withdrawalStore.Insert(withdrawal.Key, withdrawal)
}

func (r *withdrawalRepository) UpdateWithdrawal(
	ctx context.Context, withdrawal domain.PendingWithdrawal,
) error {
	return r.withdrawalStore.Update(withdrawal.Key, withdrawal)
}

func (r *withdrawalRepository) RemoveWithdrawal(
	ctx context.Context, asset string, commitment [32]byte,
) error {
	key := domain.WithdrawalKey(asset, commitment)
	return r.withdrawalStore.Delete(key, domain.PendingWithdrawal{})
}

func (r *withdrawalRepository) GetWithdrawal(
	ctx context.Context, asset string, commitment [32]byte,
) (*domain.PendingWithdrawal, error) {
	var withdrawal domain.PendingWithdrawal
	err := r.withdrawalStore.Get(domain.WithdrawalKey(asset, commitment), &withdrawal)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *withdrawalRepository) GetWithdrawals(
	ctx context.Context, asset string,
) ([]domain.PendingWithdrawal, error) {
	withdrawals := make([]domain.PendingWithdrawal, 0)
	query := badgerhold.Where("Key").Ne("")
	if len(asset) > 0 {
		query = badgerhold.Where("Asset").Eq(asset)
	}
	if err := r.withdrawalStore.Find(&withdrawals, query); err != nil {
		return nil, err
	}
	sort.Slice(withdrawals, func(i, j int) bool {
		return withdrawals[i].EnqueuedAt < withdrawals[j].EnqueuedAt
	})
	return withdrawals, nil
}

func (r *withdrawalRepository) MarkFingerprint(
	ctx context.Context, asset string, fingerprint [32]byte,
) (bool, error) {
	record := fingerprintRecord{Key: fingerprintKey(asset, fingerprint)}
	err := r.fingerprintStore.Insert(record.Key, record)
	if err == badgerhold.ErrKeyExists {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *withdrawalRepository) UnmarkFingerprint(
	ctx context.Context, asset string, fingerprint [32]byte,
) error {
	key := fingerprintKey(asset, fingerprint)
	err := r.fingerprintStore.Delete(key, fingerprintRecord{})
	if err == badgerhold.ErrNotFound {
		return nil
	}
	return err
}

func (r *withdrawalRepository) Close() {
	// nolint:all
	r.channelStore.Close()
	// nolint:all
	r.withdrawalStore.Close()
	// nolint:all
	r.fingerprintStore.Close()
}
