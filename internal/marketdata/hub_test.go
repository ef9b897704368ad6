package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage-api/pkg/market"
)

func TestHubFiltersBySymbol(t *testing.T) {
	h := NewHub(4)
	apple := h.Subscribe("aapl")
	all := h.Subscribe()

	assert.Equal(t, 2, h.Publish(market.Quote{Symbol: "AAPL", Price: 1}))
	assert.Equal(t, 1, h.Publish(market.Quote{Symbol: "MSFT", Price: 2}))

	require.Len(t, apple.C(), 1)
	assert.Equal(t, "AAPL", (<-apple.C()).Symbol)
	require.Len(t, all.C(), 2)
}

func TestHubDropsOldestForSlowSubscriber(t *testing.T) {
	h := NewHub(2)
	sub := h.Subscribe()
	for i := 1; i <= 3; i++ {
		assert.Equal(t, 1, h.Publish(market.Quote{Symbol: "AAPL", Price: float64(i)}))
	}

	first := <-sub.C()
	second := <-sub.C()
	assert.Equal(t, 2.0, first.Price)
	assert.Equal(t, 3.0, second.Price)
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub(0)
	sub := h.Subscribe("TSLA")
	require.Equal(t, 1, h.Subscribers())

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	assert.Equal(t, 0, h.Subscribers())
	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Publish(market.Quote{Symbol: "TSLA"}))
}

func TestHubClose(t *testing.T) {
	h := NewHub(1)
	sub := h.Subscribe()
	h.Close()

	_, ok := <-sub.C()
	assert.False(t, ok)

	late := h.Subscribe()
	_, ok = <-late.C()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers())
}
