package ports

// EscrowLock is a read-snapshot view of a DEX escrow lock.
type EscrowLock struct {
	Id       uint64
	Buyer    string
	Seller   string
	Quantity uint64
	Price    uint64
	LockedAt int64
}

// EscrowStore exposes the DEX escrow snapshot the router schedules from and
// the single mutation it applies. Order matching happens elsewhere; only
// locks whose release condition is already satisfied are visible here.
type EscrowStore interface {
	ReadyLocks() []EscrowLock
	// Release pays out the lock for the given trade value. It reports
	// false when the lock no longer exists or was already released.
	Release(id uint64, value uint64) bool
}

// OrderBookSource is the read-only order book surface consumed for
// telemetry; the router never mutates it.
type OrderBookSource interface {
	// Depth returns the number of resting bids and asks.
	Depth() (bids, asks int)
	// LogTrade records an executed escrow release against the book.
	LogTrade(lock EscrowLock, value uint64)
}
