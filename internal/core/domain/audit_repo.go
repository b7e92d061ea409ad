package domain

import "context"

type AuditRepository interface {
	AddDepositReceipt(ctx context.Context, receipt DepositReceipt) error
	GetDepositReceipts(ctx context.Context, asset string) ([]DepositReceipt, error)

	AddChallengeRecord(ctx context.Context, record ChallengeRecord) error
	GetChallengeRecords(ctx context.Context, asset string) ([]ChallengeRecord, error)

	AddSlashRecord(ctx context.Context, record SlashRecord) error
	GetSlashRecords(ctx context.Context) ([]SlashRecord, error)

	AddClaimReceipt(ctx context.Context, receipt ClaimReceipt) error
	GetClaimReceipts(ctx context.Context, relayer string) ([]ClaimReceipt, error)

	AddSettlementRecord(ctx context.Context, record SettlementRecord) error
	GetSettlementRecords(ctx context.Context, asset string) ([]SettlementRecord, error)

	Close()
}
