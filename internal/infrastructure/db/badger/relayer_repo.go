package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/the-block/bridge/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const relayerStoreDir = "relayers"

type relayerRepository struct {
	store *badgerhold.Store
}

func NewRelayerRepository(config ...interface{}) (domain.RelayerRepository, error) {
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

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, relayerStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open relayer store: %s", err)
	}

	return &relayerRepository{store}, nil
}

func (r *relayerRepository) AddOrUpdateAccount(
	ctx context.Context, account domain.RelayerAccount,
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return r.store.TxUpsert(tx, account.Relayer, account)
	}
	return r.store.Upsert(account.Relayer, account)
}

func (r *relayerRepository) GetAccount(
	ctx context.Context, relayer string,
) (*domain.RelayerAccount, error) {
	var account domain.RelayerAccount
	err := r.store.Get(relayer, &account)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *relayerRepository) GetAllAccounts(ctx context.Context) ([]domain.RelayerAccount, error) {
	accounts := make([]domain.RelayerAccount, 0)
	if err := r.store.Find(&accounts, badgerhold.Where("Relayer").Ne("")); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *relayerRepository) Close() {
	// nolint:all
	r.store.Close()
}
