package synthetic

import (
	"context"

	"brokerage-api/pkg/market"
)

// Provider serves generator output through the market.Provider contract so a
// deployment can run without any upstream credentials.
type Provider struct {
	gen *Generator
}

var (
	_ market.Provider  = (*Provider)(nil)
	_ market.Simulated = (*Provider)(nil)
)

// NewProvider wraps gen; a nil gen gets a fresh generator.
func NewProvider(gen *Generator) *Provider {
	if gen == nil {
		gen = NewGenerator()
	}
	return &Provider{gen: gen}
}

func init() {
	market.RegisterProvider("synthetic", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		var opts []Option
		if cfg.Seed != 0 {
			opts = append(opts, WithSeed(cfg.Seed))
		}
		return NewProvider(NewGenerator(opts...)), nil
	})
}

// Simulated marks generator output so the gateway labels it synthetic.
func (p *Provider) Simulated() bool { return true }

func (p *Provider) Quote(ctx context.Context, symbol string) (*market.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := p.gen.Quote(symbol)
	return &q, nil
}

func (p *Provider) Series(ctx context.Context, symbol string, timeframe market.Timeframe, _ market.OutputSize) ([]market.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.gen.History(symbol, timeframe), nil
}

func (p *Provider) Search(ctx context.Context, keywords string) ([]market.SecurityMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Search(keywords), nil
}
