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

const auditStoreDir = "audit"

type auditRepository struct {
	store *badgerhold.Store
}

func NewAuditRepository(config ...interface{}) (domain.AuditRepository, error) {
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
		dir = filepath.Join(baseDir, auditStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit store: %s", err)
	}

	return &auditRepository{store}, nil
}

func (r *auditRepository) AddDepositReceipt(
	ctx context.Context, receipt domain.DepositReceipt,
) error {
	if err := r.store.Insert(badgerhold.NextSequence(), &receipt); err != nil {
		return err
	}
	return r.trim(receipt.Seq, domain.DepositReceiptRetention, &domain.DepositReceipt{})
}

func (r *auditRepository) GetDepositReceipts(
	ctx context.Context, asset string,
) ([]domain.DepositReceipt, error) {
	receipts := make([]domain.DepositReceipt, 0)
	query := badgerhold.Where("Seq").Ge(uint64(0))
	if len(asset) > 0 {
		query = badgerhold.Where("Asset").Eq(asset)
	}
	if err := r.store.Find(&receipts, query); err != nil {
		return nil, err
	}
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].Seq < receipts[j].Seq
	})
	return receipts, nil
}

func (r *auditRepository) AddChallengeRecord(
	ctx context.Context, record domain.ChallengeRecord,
) error {
	if err := r.store.Insert(badgerhold.NextSequence(), &record); err != nil {
		return err
	}
	return r.trim(record.Seq, domain.ChallengeRecordRetention, &domain.ChallengeRecord{})
}

func (r *auditRepository) GetChallengeRecords(
	ctx context.Context, asset string,
) ([]domain.ChallengeRecord, error) {
	records := make([]domain.ChallengeRecord, 0)
	query := badgerhold.Where("Seq").Ge(uint64(0))
	if len(asset) > 0 {
		query = badgerhold.Where("Asset").Eq(asset)
	}
	if err := r.store.Find(&records, query); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})
	return records, nil
}

func (r *auditRepository) AddSlashRecord(
	ctx context.Context, record domain.SlashRecord,
) error {
	if err := r.store.Insert(badgerhold.NextSequence(), &record); err != nil {
		return err
	}
	return r.trim(record.Seq, domain.SlashRecordRetention, &domain.SlashRecord{})
}

func (r *auditRepository) GetSlashRecords(ctx context.Context) ([]domain.SlashRecord, error) {
	records := make([]domain.SlashRecord, 0)
	query := badgerhold.Where("Seq").Ge(uint64(0))
	if err := r.store.Find(&records, query); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})
	return records, nil
}

func (r *auditRepository) AddClaimReceipt(
	ctx context.Context, receipt domain.ClaimReceipt,
) error {
	if err := r.store.Insert(badgerhold.NextSequence(), &receipt); err != nil {
		return err
	}
	return r.trim(receipt.Seq, domain.ClaimReceiptRetention, &domain.ClaimReceipt{})
}

func (r *auditRepository) GetClaimReceipts(
	ctx context.Context, relayer string,
) ([]domain.ClaimReceipt, error) {
	receipts := make([]domain.ClaimReceipt, 0)
	query := badgerhold.Where("Seq").Ge(uint64(0))
	if len(relayer) > 0 {
		query = badgerhold.Where("Relayer").Eq(relayer)
	}
	if err := r.store.Find(&receipts, query); err != nil {
		return nil, err
	}
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].Seq < receipts[j].Seq
	})
	return receipts, nil
}

func (r *auditRepository) AddSettlementRecord(
	ctx context.Context, record domain.SettlementRecord,
) error {
	if err := r.store.Insert(badgerhold.NextSequence(), &record); err != nil {
		return err
	}
	return r.trim(record.Seq, domain.SettlementRecordRetention, &domain.SettlementRecord{})
}

func (r *auditRepository) GetSettlementRecords(
	ctx context.Context, asset string,
) ([]domain.SettlementRecord, error) {
	records := make([]domain.SettlementRecord, 0)
	query := badgerhold.Where("Seq").Ge(uint64(0))
	if len(asset) > 0 {
		query = badgerhold.Where("Asset").Eq(asset)
	}
	if err := r.store.Find(&records, query); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})
	return records, nil
}

// trim drops records older than the retention window. Sequence numbers are
// assigned monotonically, so everything below lastSeq-retention+1 is stale.
func (r *auditRepository) trim(lastSeq uint64, retention int, dataType interface{}) error {
	if lastSeq+1 <= uint64(retention) {
		return nil
	}
	threshold := lastSeq + 1 - uint64(retention)
	return r.store.DeleteMatching(dataType, badgerhold.Where("Seq").Lt(threshold))
}

func (r *auditRepository) Close() {
	// nolint:all
	r.store.Close()
}
