package inmemorylivestore

import (
	"sort"
	"sync"

	"github.com/the-block/bridge/internal/core/ports"
)

type edge struct {
	from string
	to   string
}

type TrustLedger struct {
	lock      sync.RWMutex
	balances  map[edge]int64
	fallbacks map[edge][]string
}

func NewTrustLedger() *TrustLedger {
	return &TrustLedger{
		balances:  make(map[edge]int64),
		fallbacks: make(map[edge][]string),
	}
}

// SetLine sets the imbalance on an ordered pair, creating the line if needed.
func (m *TrustLedger) SetLine(from, to string, balance int64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	key := edge{from, to}
	if balance == 0 {
		delete(m.balances, key)
		return
	}
	m.balances[key] = balance
}

// RegisterFallback installs an operator-provisioned corridor used when the
// shortest funded path between the endpoints exceeds a caller's hop budget.
// The path must start at from and end at to.
func (m *TrustLedger) RegisterFallback(from, to string, path []string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.fallbacks[edge{from, to}] = append([]string(nil), path...)
}

func (m *TrustLedger) Lines() []ports.TrustLine {
	m.lock.RLock()
	defer m.lock.RUnlock()

	lines := make([]ports.TrustLine, 0, len(m.balances))
	for key, balance := range m.balances {
		lines = append(lines, ports.TrustLine{From: key.from, To: key.to, Balance: balance})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].From != lines[j].From {
			return lines[i].From < lines[j].From
		}
		return lines[i].To < lines[j].To
	})
	return lines
}

func (m *TrustLedger) FindBestPath(
	from, to string, amount uint64,
) (best, fallback []string, ok bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	best = m.shortestFundedPath(from, to, amount)
	if registered, has := m.fallbacks[edge{from, to}]; has {
		fallback = append([]string(nil), registered...)
	}
	if best == nil && fallback == nil {
		return nil, nil, false
	}
	return best, fallback, true
}

// SettlePath discharges amount of the imbalance between the path endpoints.
// The endpoint line must still carry the amount, otherwise the ledger is left
// untouched and false is returned. Intermediate hops are adjusted as well; a
// hop driven negative simply records the reversed obligation.
func (m *TrustLedger) SettlePath(path []string, amount uint64) bool {
	if len(path) < 2 || amount == 0 {
		return false
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	line := edge{path[0], path[len(path)-1]}
	if m.balances[line] < int64(amount) {
		return false
	}
	m.subtract(line, amount)
	for i := 0; i < len(path)-1; i++ {
		hop := edge{path[i], path[i+1]}
		if hop == line {
			continue
		}
		m.subtract(hop, amount)
	}
	return true
}

func (m *TrustLedger) subtract(key edge, amount uint64) {
	m.balances[key] -= int64(amount)
	if m.balances[key] == 0 {
		delete(m.balances, key)
	}
}

// shortestFundedPath runs a breadth-first search over edges whose imbalance
// covers amount. Neighbors are visited in lexical order so equal-length paths
// resolve the same way on every call.
func (m *TrustLedger) shortestFundedPath(from, to string, amount uint64) []string {
	if from == to {
		return nil
	}

	adjacency := make(map[string][]string)
	for key, balance := range m.balances {
		if balance < int64(amount) {
			continue
		}
		adjacency[key.from] = append(adjacency[key.from], key.to)
	}
	for _, neighbors := range adjacency {
		sort.Strings(neighbors)
	}

	parents := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, neighbor := range adjacency[node] {
			if _, seen := parents[neighbor]; seen {
				continue
			}
			parents[neighbor] = node
			if neighbor == to {
				path := []string{to}
				for at := node; at != ""; at = parents[at] {
					path = append([]string{at}, path...)
				}
				return path
			}
			queue = append(queue, neighbor)
		}
	}
	return nil
}
