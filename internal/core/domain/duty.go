package domain

import "fmt"

const (
	DutyDeposit DutyType = iota
	DutyWithdrawal
	DutySettlement
)

type DutyType int

func (t DutyType) String() string {
	switch t {
	case DutyDeposit:
		return "deposit"
	case DutyWithdrawal:
		return "withdrawal"
	case DutySettlement:
		return "settlement"
	default:
		return "unknown"
	}
}

// DutyKind tags a duty with its responsibility. Commitment is set for
// withdrawal and settlement duties; SettlementChain and ProofHash only for
// settlement duties.
type DutyKind struct {
	Type            DutyType
	Commitment      [32]byte
	SettlementChain string
	ProofHash       [32]byte
}

const (
	DutyPending DutyStatusCode = iota
	DutyCompleted
	DutyFailed
)

type DutyStatusCode int

func (c DutyStatusCode) String() string {
	switch c {
	case DutyPending:
		return "pending"
	case DutyCompleted:
		return "completed"
	case DutyFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	FailureInvalidProof FailureReason = iota
	FailureBundleMismatch
	FailureChallengeAccepted
	FailureExpired
	FailureInsufficientBond
)

type FailureReason int

func (r FailureReason) String() string {
	switch r {
	case FailureInvalidProof:
		return "invalid_proof"
	case FailureBundleMismatch:
		return "bundle_mismatch"
	case FailureChallengeAccepted:
		return "challenge_accepted"
	case FailureExpired:
		return "expired"
	case FailureInsufficientBond:
		return "insufficient_bond"
	default:
		return "unknown"
	}
}

// ChallengeClass reports whether the failure slashes every bundle signer
// rather than the assigned relayer alone.
func (r FailureReason) ChallengeClass() bool {
	switch r {
	case FailureInvalidProof, FailureBundleMismatch, FailureChallengeAccepted:
		return true
	default:
		return false
	}
}

type DutyStatus struct {
	Code        DutyStatusCode
	Reward      uint64
	CompletedAt int64
	Penalty     uint64
	FailedAt    int64
	Reason      FailureReason
}

// Duty is a unit of relayer-assigned work with a deadline and a terminal
// outcome. Status transitions only Pending -> Completed or Pending -> Failed.
type Duty struct {
	Id             uint64 `badgerhold:"key"`
	Relayer        string
	Asset          string
	User           string
	Amount         uint64
	AssignedAt     int64
	Deadline       int64
	BundleRelayers []string
	Kind           DutyKind
	Status         DutyStatus
}

func NewDuty(
	kind DutyKind, relayer, asset, user string,
	amount uint64, bundle []string, assignedAt, deadline int64,
) (*Duty, error) {
	if len(relayer) <= 0 {
		return nil, fmt.Errorf("missing relayer")
	}
	if deadline < assignedAt {
		return nil, fmt.Errorf("duty deadline %d precedes assignment %d", deadline, assignedAt)
	}
	return &Duty{
		Relayer:        relayer,
		Asset:          asset,
		User:           user,
		Amount:         amount,
		AssignedAt:     assignedAt,
		Deadline:       deadline,
		BundleRelayers: append([]string{}, bundle...),
		Kind:           kind,
		Status:         DutyStatus{Code: DutyPending},
	}, nil
}

func (d *Duty) IsPending() bool {
	return d.Status.Code == DutyPending
}

func (d *Duty) IsExpired(now int64) bool {
	return d.IsPending() && now > d.Deadline
}

// Signers returns the set of relayers accountable for the duty: the bundle
// when one was recorded, otherwise the assigned relayer alone.
func (d *Duty) Signers() []string {
	if len(d.BundleRelayers) > 0 {
		return d.BundleRelayers
	}
	return []string{d.Relayer}
}

func (d *Duty) Complete(reward uint64, now int64) error {
	if !d.IsPending() {
		return fmt.Errorf("duty %d already resolved", d.Id)
	}
	d.Status = DutyStatus{Code: DutyCompleted, Reward: reward, CompletedAt: now}
	return nil
}

func (d *Duty) Fail(penalty uint64, reason FailureReason, now int64) error {
	if !d.IsPending() {
		return fmt.Errorf("duty %d already resolved", d.Id)
	}
	d.Status = DutyStatus{Code: DutyFailed, Penalty: penalty, FailedAt: now, Reason: reason}
	return nil
}

// IncentiveParams are the governance-controlled knobs of the relayer duty
// state machine.
type IncentiveParams struct {
	MinBond        uint64
	DutyReward     uint64
	FailureSlash   uint64
	ChallengeSlash uint64
	DutyWindowSecs int64
}

func DefaultIncentiveParams() IncentiveParams {
	return IncentiveParams{
		MinBond:        50,
		DutyReward:     5,
		FailureSlash:   10,
		ChallengeSlash: 25,
		DutyWindowSecs: 300,
	}
}
