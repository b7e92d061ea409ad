package domain

// RelayerAccount aggregates the incentive counters kept for a single relayer.
// Accounts are created on the first bond deposit and never deleted; every
// counter is unsigned and every mutation saturates instead of wrapping.
type RelayerAccount struct {
	Relayer          string `badgerhold:"key"`
	Bond             uint64
	RewardsEarned    uint64
	RewardsPending   uint64
	RewardsClaimed   uint64
	PenaltiesApplied uint64
	DutiesAssigned   uint64
	DutiesCompleted  uint64
	DutiesFailed     uint64
}

func NewRelayerAccount(relayer string) *RelayerAccount {
	return &RelayerAccount{Relayer: relayer}
}

func satAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint64(0)
}

func satSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func (a *RelayerAccount) CreditBond(amount uint64) {
	a.Bond = satAdd(a.Bond, amount)
}

func (a *RelayerAccount) DebitBond(amount uint64) {
	a.Bond = satSub(a.Bond, amount)
}

// AccrueReward adds to both the lifetime earned counter and the claimable
// pending balance.
func (a *RelayerAccount) AccrueReward(amount uint64) {
	a.RewardsEarned = satAdd(a.RewardsEarned, amount)
	a.RewardsPending = satAdd(a.RewardsPending, amount)
}

// ApplyPenalty burns pending rewards up to the penalty amount. The full input
// amount is recorded in PenaltiesApplied even when pending rewards cannot
// cover it; the pending balance never goes negative.
func (a *RelayerAccount) ApplyPenalty(amount uint64) {
	a.PenaltiesApplied = satAdd(a.PenaltiesApplied, amount)
	a.RewardsPending = satSub(a.RewardsPending, amount)
}

// MarkClaimed moves up to amount from pending to claimed and returns the
// amount actually claimed.
func (a *RelayerAccount) MarkClaimed(amount uint64) uint64 {
	claim := amount
	if claim > a.RewardsPending {
		claim = a.RewardsPending
	}
	a.RewardsPending -= claim
	a.RewardsClaimed = satAdd(a.RewardsClaimed, claim)
	return claim
}

func (a *RelayerAccount) AssignDuty() {
	a.DutiesAssigned = satAdd(a.DutiesAssigned, 1)
}

func (a *RelayerAccount) CompleteDuty() {
	a.DutiesCompleted = satAdd(a.DutiesCompleted, 1)
}

func (a *RelayerAccount) FailDuty() {
	a.DutiesFailed = satAdd(a.DutiesFailed, 1)
}
