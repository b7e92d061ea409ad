package domain

import "context"

type WithdrawalRepository interface {
	AddOrUpdateChannel(ctx context.Context, channel Channel) error
	GetChannel(ctx context.Context, asset string) (*Channel, error)
	GetChannels(ctx context.Context) ([]Channel, error)

	AddWithdrawal(ctx context.Context, withdrawal PendingWithdrawal) error
	UpdateWithdrawal(ctx context.Context, withdrawal PendingWithdrawal) error
	RemoveWithdrawal(ctx context.Context, asset string, commitment [32]byte) error
	GetWithdrawal(ctx context.Context, asset string, commitment [32]byte) (*PendingWithdrawal, error)
	// GetWithdrawals returns pending withdrawals for an asset, or for all
	// assets when asset is empty, ordered by enqueue time.
	GetWithdrawals(ctx context.Context, asset string) ([]PendingWithdrawal, error)

	// MarkFingerprint records a deposit proof fingerprint and reports
	// whether it was seen for the first time.
	MarkFingerprint(ctx context.Context, asset string, fingerprint [32]byte) (bool, error)
	UnmarkFingerprint(ctx context.Context, asset string, fingerprint [32]byte) error

	Close()
}
