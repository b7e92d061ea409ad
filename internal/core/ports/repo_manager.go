package ports

import "github.com/the-block/bridge/internal/core/domain"

type RepoManager interface {
	Relayers() domain.RelayerRepository
	Duties() domain.DutyRepository
	Withdrawals() domain.WithdrawalRepository
	Audit() domain.AuditRepository
	Close()
}
