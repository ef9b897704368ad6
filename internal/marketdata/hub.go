package marketdata

import (
	"strings"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"

	"brokerage-api/pkg/market"
)

const defaultSubscriberBuffer = 64

// Subscription receives quotes for a set of symbols. An empty set receives
// every symbol.
type Subscription struct {
	id      uint64
	ch      chan market.Quote
	symbols map[string]struct{}
}

// C returns the delivery channel. It is closed by Unsubscribe and Close.
func (s *Subscription) C() <-chan market.Quote {
	return s.ch
}

func (s *Subscription) wants(symbol string) bool {
	if len(s.symbols) == 0 {
		return true
	}
	_, ok := s.symbols[symbol]
	return ok
}

// Hub fans simulated quotes out to subscribers. Publish never blocks: when a
// subscriber's buffer is full its oldest quote is dropped.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
}

// NewHub creates a hub whose subscribers buffer up to buffer quotes.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Hub{subs: make(map[uint64]*Subscription), buffer: buffer}
}

// Subscribe registers a subscriber for symbols.
func (h *Hub) Subscribe(symbols ...string) *Subscription {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			set[s] = struct{}{}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub := &Subscription{id: h.nextID, ch: make(chan market.Quote, h.buffer), symbols: set}
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes sub and closes its channel. Repeated calls are no-ops.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; ok {
		delete(h.subs, sub.id)
		close(sub.ch)
	}
}

// Publish delivers q to every interested subscriber and returns how many
// received it.
func (h *Hub) Publish(q market.Quote) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, sub := range h.subs {
		if !sub.wants(q.Symbol) {
			continue
		}
		select {
		case sub.ch <- q:
		default:
			// Full: drop the oldest buffered quote, then retry once.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- q:
			default:
				logx.Infow("hub: dropped quote for slow subscriber",
					logx.Field("subscriber", sub.id), logx.Field("symbol", q.Symbol))
				continue
			}
		}
		delivered++
	}
	return delivered
}

// Subscribers reports the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unsubscribes everyone; later subscriptions are returned closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
	h.closed = true
}
