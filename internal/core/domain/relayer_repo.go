package domain

import "context"

type RelayerRepository interface {
	AddOrUpdateAccount(ctx context.Context, account RelayerAccount) error
	GetAccount(ctx context.Context, relayer string) (*RelayerAccount, error)
	GetAllAccounts(ctx context.Context) ([]RelayerAccount, error)
	Close()
}
