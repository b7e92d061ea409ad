package db

import (
	"fmt"

	"github.com/the-block/bridge/internal/core/domain"
	"github.com/the-block/bridge/internal/core/ports"
	badgerdb "github.com/the-block/bridge/internal/infrastructure/db/badger"
)

var (
	relayerStoreTypes = map[string]func(...interface{}) (domain.RelayerRepository, error){
		"badger": badgerdb.NewRelayerRepository,
	}
	dutyStoreTypes = map[string]func(...interface{}) (domain.DutyRepository, error){
		"badger": badgerdb.NewDutyRepository,
	}
	withdrawalStoreTypes = map[string]func(...interface{}) (domain.WithdrawalRepository, error){
		"badger": badgerdb.NewWithdrawalRepository,
	}
	auditStoreTypes = map[string]func(...interface{}) (domain.AuditRepository, error){
		"badger": badgerdb.NewAuditRepository,
	}
)

type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	relayerStore    domain.RelayerRepository
	dutyStore       domain.DutyRepository
	withdrawalStore domain.WithdrawalRepository
	auditStore      domain.AuditRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	relayerStoreFactory, ok := relayerStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	dutyStoreFactory, ok := dutyStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	withdrawalStoreFactory, ok := withdrawalStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	auditStoreFactory, ok := auditStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	relayerStore, err := relayerStoreFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create relayer store: %w", err)
	}

	dutyStore, err := dutyStoreFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create duty store: %w", err)
	}

	withdrawalStore, err := withdrawalStoreFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create withdrawal store: %w", err)
	}

	auditStore, err := auditStoreFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit store: %w", err)
	}

	return &service{
		relayerStore:    relayerStore,
		dutyStore:       dutyStore,
		withdrawalStore: withdrawalStore,
		auditStore:      auditStore,
	}, nil
}

func (s *service) Relayers() domain.RelayerRepository {
	return s.relayerStore
}

func (s *service) Duties() domain.DutyRepository {
	return s.dutyStore
}

func (s *service) Withdrawals() domain.WithdrawalRepository {
	return s.withdrawalStore
}

func (s *service) Audit() domain.AuditRepository {
	return s.auditStore
}

func (s *service) Close() {
	s.relayerStore.Close()
	s.dutyStore.Close()
	s.withdrawalStore.Close()
	s.auditStore.Close()
}
