package inmemorylivestore

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/the-block/bridge/internal/core/ports"
)

type OrderBook struct {
	lock sync.RWMutex
	bids int
	asks int
}

func NewOrderBook() *OrderBook {
	return &OrderBook{}
}

// SetDepth updates the resting order counts reported to the router.
func (m *OrderBook) SetDepth(bids, asks int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.bids = bids
	m.asks = asks
}

func (m *OrderBook) Depth() (bids, asks int) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.bids, m.asks
}

func (m *OrderBook) LogTrade(escrowLock ports.EscrowLock, value uint64) {
	log.WithFields(log.Fields{
		"escrow": escrowLock.Id,
		"buyer":  escrowLock.Buyer,
		"seller": escrowLock.Seller,
		"value":  value,
	}).Debug("escrow released against book")
}
