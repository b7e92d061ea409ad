package ports

// TrustLine is an ordered account pair with its current credit imbalance.
// A positive balance means From owes To.
type TrustLine struct {
	From    string
	To      string
	Balance int64
}

// TrustLedger is the credit-network collaborator the router rebalances
// against. The router only ever reads lines, asks for paths, and settles
// along paths it was given; pathfinding internals stay behind this interface.
type TrustLedger interface {
	// Lines returns a snapshot of every ordered pair carrying a non-zero
	// imbalance.
	Lines() []TrustLine
	// FindBestPath returns the shortest funded path from one account to
	// another for the given amount. The second path, when non-nil, is an
	// unconstrained fallback the ledger offers for callers whose hop
	// budget the best path exceeds.
	FindBestPath(from, to string, amount uint64) (best, fallback []string, ok bool)
	// SettlePath discharges amount of the imbalance between the path's
	// endpoints, adjusting intermediate hops along the way. It reports
	// false and leaves the ledger untouched when the endpoint line no
	// longer carries the amount.
	SettlePath(path []string, amount uint64) bool
}
