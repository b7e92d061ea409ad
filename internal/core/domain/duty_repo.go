package domain

import "context"

type DutyRepository interface {
	// AddDuty persists a new duty and assigns its sequential id.
	AddDuty(ctx context.Context, duty *Duty) error
	UpdateDuty(ctx context.Context, duty Duty) error
	GetDuty(ctx context.Context, id uint64) (*Duty, error)
	// GetDuties returns duties filtered by relayer and asset; empty strings
	// match everything. Results are ordered by id descending (most recent
	// first) and capped at limit.
	GetDuties(ctx context.Context, relayer, asset string, limit int) ([]Duty, error)
	GetPendingDuties(ctx context.Context) ([]Duty, error)
	Close()
}
