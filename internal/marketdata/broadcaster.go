package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"brokerage-api/internal/cache"
	"brokerage-api/pkg/market/synthetic"
)

const (
	defaultSchedule     = "@every 5s"
	defaultSimulatedTTL = time.Minute
)

// BroadcasterConfig wires a Broadcaster.
type BroadcasterConfig struct {
	Symbols   []string
	Schedule  string
	TTL       time.Duration
	Cache     cache.Store
	Hub       *Hub
	Synthetic *synthetic.Generator
}

// Broadcaster periodically publishes synthetic quotes for a fixed symbol list
// and writes each one to the quote cache. It does not talk to the gateway.
type Broadcaster struct {
	symbols  []string
	schedule string
	ttl      time.Duration
	cache    cache.Store
	hub      *Hub
	gen      *synthetic.Generator

	mu      sync.Mutex
	cron    *cron.Cron
	done    chan struct{}
	running bool
}

func NewBroadcaster(cfg BroadcasterConfig) (*Broadcaster, error) {
	if cfg.Cache == nil {
		return nil, errors.New("marketdata: broadcaster needs a cache")
	}
	b := &Broadcaster{
		schedule: strings.TrimSpace(cfg.Schedule),
		ttl:      cfg.TTL,
		cache:    cfg.Cache,
		hub:      cfg.Hub,
		gen:      cfg.Synthetic,
	}
	for _, s := range cfg.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			b.symbols = append(b.symbols, s)
		}
	}
	if len(b.symbols) == 0 {
		b.symbols = append(b.symbols, DefaultBatchSymbols...)
	}
	if b.schedule == "" {
		b.schedule = defaultSchedule
	}
	if b.ttl <= 0 {
		b.ttl = defaultSimulatedTTL
	}
	if b.hub == nil {
		b.hub = NewHub(0)
	}
	if b.gen == nil {
		b.gen = synthetic.NewGenerator()
	}
	return b, nil
}

// Hub returns the hub ticks are published to.
func (b *Broadcaster) Hub() *Hub {
	return b.hub
}

// Symbols returns the broadcast symbol list.
func (b *Broadcaster) Symbols() []string {
	return append([]string(nil), b.symbols...)
}

// Tick publishes and caches one quote per symbol. A failing symbol is logged
// and does not stop the others; the number of cached quotes is returned.
func (b *Broadcaster) Tick(ctx context.Context) int {
	cached := 0
	for _, sym := range b.symbols {
		if ctx.Err() != nil {
			return cached
		}
		q := b.gen.Quote(sym)
		b.hub.Publish(q)
		if err := cache.PutJSON(ctx, b.cache, cache.PriceKey(sym), q, b.ttl); err != nil {
			logx.WithContext(ctx).Errorf("broadcaster: cache %s: %v", sym, err)
			continue
		}
		cached++
	}
	return cached
}

// Start schedules Tick until ctx is done or Stop is called. Overlapping ticks
// are skipped.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return errors.New("marketdata: broadcaster already running")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(b.schedule, func() { b.Tick(ctx) }); err != nil {
		return fmt.Errorf("marketdata: schedule %q: %w", b.schedule, err)
	}
	c.Start()
	done := make(chan struct{})
	b.cron, b.done, b.running = c, done, true
	logx.Infow("broadcaster started",
		logx.Field("schedule", b.schedule), logx.Field("symbols", strings.Join(b.symbols, ",")))

	go func() {
		select {
		case <-ctx.Done():
			b.Stop()
		case <-done:
		}
	}()
	return nil
}

// Stop halts scheduling and waits for a running tick to finish.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	c, done, running := b.cron, b.done, b.running
	b.cron, b.done, b.running = nil, nil, false
	b.mu.Unlock()
	if !running {
		return
	}
	close(done)
	<-c.Stop().Done()
	logx.Info("broadcaster stopped")
}
