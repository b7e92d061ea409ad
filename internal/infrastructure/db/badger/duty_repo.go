package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/the-block/bridge/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const dutyStoreDir = "duties"

type dutyRepository struct {
	store *badgerhold.Store
}

func NewDutyRepository(config ...interface{}) (domain.DutyRepository, error) {
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
		dir = filepath.Join(baseDir, dutyStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open duty store: %s", err)
	}

	return &dutyRepository{store}, nil
}

func (r *dutyRepository) AddDuty(ctx context.Context, duty *domain.Duty) error {
	return r.store.Insert(badgerhold.NextSequence(), duty)
}

func (r *dutyRepository) UpdateDuty(ctx context.Context, duty domain.Duty) error {
	return r.store.Update(duty.Id, duty)
}

func (r *dutyRepository) GetDuty(ctx context.Context, id uint64) (*domain.Duty, error) {
	var duty domain.Duty
	err := r.store.Get(id, &duty)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &duty, nil
}

func (r *dutyRepository) GetDuties(
	ctx context.Context, relayer, asset string, limit int,
) ([]domain.Duty, error) {
	query := badgerhold.Where("Id").Ge(uint64(0))
	if len(relayer) > 0 {
		query = query.And("Relayer").Eq(relayer)
	}
	if len(asset) > 0 {
		query = query.And("Asset").Eq(asset)
	}
	query = query.SortBy("Id").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	duties := make([]domain.Duty, 0)
	if err := r.store.Find(&duties, query); err != nil {
		return nil, err
	}
	return duties, nil
}

func (r *dutyRepository) GetPendingDuties(ctx context.Context) ([]domain.Duty, error) {
	duties := make([]domain.Duty, 0)
	query := badgerhold.Where("Status.Code").Eq(domain.DutyPending)
	if err := r.store.Find(&duties, query); err != nil {
		return nil, err
	}
	return duties, nil
}

func (r *dutyRepository) Close() {
	// nolint:all
	r.store.Close()
}
