package application

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/the-block/bridge/internal/core/domain"
)

// LedgerService owns RelayerAccount rows. Every mutation for a given relayer
// runs under that relayer's lock so concurrently resolving duties cannot lose
// updates.
type LedgerService struct {
	repo domain.RelayerRepository

	lock  sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedgerService(repo domain.RelayerRepository) *LedgerService {
	return &LedgerService{
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *LedgerService) accountLock(relayer string) *sync.Mutex {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.locks[relayer]; !ok {
		s.locks[relayer] = &sync.Mutex{}
	}
	return s.locks[relayer]
}

// mutate loads (or creates) the account, applies fn, and persists the result
// under the per-relayer lock.
func (s *LedgerService) mutate(
	ctx context.Context, relayer string, fn func(*domain.RelayerAccount),
) (*domain.RelayerAccount, error) {
	mtx := s.accountLock(relayer)
	mtx.Lock()
	defer mtx.Unlock()

	account, err := s.repo.GetAccount(ctx, relayer)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = domain.NewRelayerAccount(relayer)
	}
	fn(account)
	if err := s.repo.AddOrUpdateAccount(ctx, *account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *LedgerService) CreditBond(
	ctx context.Context, relayer string, amount uint64,
) (*domain.RelayerAccount, error) {
	account, err := s.mutate(ctx, relayer, func(a *domain.RelayerAccount) {
		a.CreditBond(amount)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"relayer": relayer, "amount": amount, "bond": account.Bond,
	}).Debug("credited relayer bond")
	return account, nil
}

func (s *LedgerService) DebitBond(
	ctx context.Context, relayer string, amount uint64,
) (*domain.RelayerAccount, error) {
	return s.mutate(ctx, relayer, func(a *domain.RelayerAccount) {
		a.DebitBond(amount)
	})
}

func (s *LedgerService) AccrueReward(
	ctx context.Context, relayer string, amount uint64,
) (*domain.RelayerAccount, error) {
	return s.mutate(ctx, relayer, func(a *domain.RelayerAccount) {
		a.AccrueReward(amount)
	})
}

func (s *LedgerService) ApplyPenalty(
	ctx context.Context, relayer string, amount uint64,
) (*domain.RelayerAccount, error) {
	return s.mutate(ctx, relayer, func(a *domain.RelayerAccount) {
		a.ApplyPenalty(amount)
	})
}

// MarkClaimed moves up to amount from pending to claimed rewards and returns
// the amount actually claimed.
func (s *LedgerService) MarkClaimed(
	ctx context.Context, relayer string, amount uint64,
) (uint64, error) {
	var claimed uint64
	if _, err := s.mutate(ctx, relayer, func(a *domain.RelayerAccount) {
		claimed = a.MarkClaimed(amount)
	}); err != nil {
		return 0, err
	}
	return claimed, nil
}

func (s *LedgerService) AssignDuty(ctx context.Context, relayer string) (*domain.RelayerAccount, error) {
	return s.mutate(ctx, relayer, func(a *domain.RelayerAccount) {
		a.AssignDuty()
	})
}

func (s *LedgerService) CompleteDuty(ctx context.Context, relayer string) (*domain.RelayerAccount, error) {
	return s.mutate(ctx, relayer, func(a *domain.RelayerAccount) {
		a.CompleteDuty()
	})
}

func (s *LedgerService) FailDuty(ctx context.Context, relayer string) (*domain.RelayerAccount, error) {
	return s.mutate(ctx, relayer, func(a *domain.RelayerAccount) {
		a.FailDuty()
	})
}

// GetAccount returns the account, or a zero-valued one if the relayer never
// bonded.
func (s *LedgerService) GetAccount(
	ctx context.Context, relayer string,
) (*domain.RelayerAccount, error) {
	account, err := s.repo.GetAccount(ctx, relayer)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = domain.NewRelayerAccount(relayer)
	}
	return account, nil
}

func (s *LedgerService) GetAllAccounts(ctx context.Context) ([]domain.RelayerAccount, error) {
	return s.repo.GetAllAccounts(ctx)
}
