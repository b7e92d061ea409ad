package governance

import (
	"sync"

	"github.com/the-block/bridge/internal/core/ports"
)

// ClaimApprover keeps governance-issued claim approvals in memory. Each key
// carries a remaining allowance bound to one relayer and is consumed claim by
// claim.
type ClaimApprover struct {
	lock      sync.Mutex
	approvals map[string]*approval
}

type approval struct {
	relayer   string
	allowance uint64
}

func NewClaimApprover() *ClaimApprover {
	return &ClaimApprover{approvals: make(map[string]*approval)}
}

// IssueApproval registers an approval key with an allowance for a relayer.
// Re-issuing a key replaces its allowance.
func (a *ClaimApprover) IssueApproval(key, relayer string, allowance uint64) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.approvals[key] = &approval{relayer: relayer, allowance: allowance}
}

func (a *ClaimApprover) Approve(key, relayer string, amount uint64) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	grant, ok := a.approvals[key]
	if !ok || grant.relayer != relayer || grant.allowance < amount {
		return ports.ErrClaimNotAuthorized
	}
	grant.allowance -= amount
	if grant.allowance == 0 {
		delete(a.approvals, key)
	}
	return nil
}

// ChallengePolicy replays verdicts recorded by the external adjudicator.
// Unrecorded challenges are not upheld.
type ChallengePolicy struct {
	lock     sync.RWMutex
	verdicts map[string]bool
}

func NewChallengePolicy() *ChallengePolicy {
	return &ChallengePolicy{verdicts: make(map[string]bool)}
}

func verdictKey(asset string, commitment [32]byte) string {
	return asset + "/" + string(commitment[:])
}

// RecordVerdict stores the adjudication outcome for a challenged withdrawal.
func (p *ChallengePolicy) RecordVerdict(asset string, commitment [32]byte, upheld bool) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.verdicts[verdictKey(asset, commitment)] = upheld
}

func (p *ChallengePolicy) Uphold(asset string, commitment [32]byte) bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.verdicts[verdictKey(asset, commitment)]
}
