package market_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	market "brokerage-api/pkg/market"
	_ "brokerage-api/pkg/market/alphavantage"
	_ "brokerage-api/pkg/market/synthetic"
)

func TestLoadMarketConfig(t *testing.T) {
	dir := t.TempDir()
	configYAML := `
default: alphavantage
providers:
  alphavantage:
    type: alphavantage
    base_url: https://www.alphavantage.co/query
    api_key: demo
    http_timeout: 12s
  demo:
    type: synthetic
    seed: 42
`
	path := filepath.Join(dir, "market.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := market.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Default != "alphavantage" {
		t.Fatalf("unexpected default: %s", cfg.Default)
	}
	if cfg.Providers["demo"].Seed != 42 {
		t.Fatalf("seed not decoded: %d", cfg.Providers["demo"].Seed)
	}

	providers, err := cfg.BuildProviders()
	if err != nil {
		t.Fatalf("BuildProviders error: %v", err)
	}
	if len(providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(providers))
	}
	if _, ok := providers["alphavantage"]; !ok {
		t.Fatalf("provider map missing alphavantage")
	}
}

func TestMarketConfigInvalidType(t *testing.T) {
	dir := t.TempDir()
	configYAML := `
providers:
  demo:
    type: foobar
`
	path := filepath.Join(dir, "market.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := market.LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestMarketConfigUnknownDefault(t *testing.T) {
	_, err := market.LoadConfigFromReader(strings.NewReader(`
default: missing
providers:
  demo:
    type: synthetic
`))
	if err == nil || !strings.Contains(err.Error(), "not defined") {
		t.Fatalf("expected undefined default error, got %v", err)
	}
}

// Ensures env placeholders are expanded and durations parsed.
func TestMarketConfig_EnvExpansionAndDurations(t *testing.T) {
	t.Setenv("AV_BASE_URL", "https://av.test/query")
	t.Setenv("AV_KEY", "secret")
	t.Setenv("HTTP_TOUT", "13s")

	cfg, err := market.LoadConfigFromReader(strings.NewReader(`
default: av
providers:
  av:
    type: alphavantage
    base_url: ${AV_BASE_URL}
    api_key: ${AV_KEY}
    http_timeout: ${HTTP_TOUT}
`))
	if err != nil {
		t.Fatalf("LoadConfigFromReader: %v", err)
	}
	p := cfg.Providers["av"]
	if p == nil {
		t.Fatalf("provider av missing")
	}
	if p.BaseURL != "https://av.test/query" || p.APIKey != "secret" {
		t.Fatalf("env not expanded, base_url=%q api_key=%q", p.BaseURL, p.APIKey)
	}
	if p.HTTPTimeout.String() != "13s" {
		t.Fatalf("http_timeout not parsed, got %s", p.HTTPTimeout)
	}
}

func TestMarketConfigRejectsBadDuration(t *testing.T) {
	_, err := market.LoadConfigFromReader(strings.NewReader(`
providers:
  demo:
    type: synthetic
    http_timeout: soon
`))
	if err == nil || !strings.Contains(err.Error(), "http_timeout") {
		t.Fatalf("expected http_timeout error, got %v", err)
	}
}

func TestBuildDefaultNeedsNameWithSeveralProviders(t *testing.T) {
	cfg := &market.Config{Providers: map[string]*market.ProviderConfig{
		"a": {Type: "synthetic"},
		"b": {Type: "synthetic"},
	}}
	if _, err := cfg.BuildDefault(); err == nil {
		t.Fatalf("expected error without default")
	}
	cfg.Default = "b"
	if p, err := cfg.BuildDefault(); err != nil || p == nil {
		t.Fatalf("BuildDefault: provider=%v err=%v", p, err)
	}
}

func TestRegisteredTypes(t *testing.T) {
	types := market.RegisteredTypes()
	joined := strings.Join(types, ",")
	if !strings.Contains(joined, "alphavantage") || !strings.Contains(joined, "synthetic") {
		t.Fatalf("registry missing providers: %v", types)
	}
}

func TestBuildDefaultSkipsOtherProviders(t *testing.T) {
	cfg := &market.Config{
		Default: "demo",
		Providers: map[string]*market.ProviderConfig{
			"demo": {Type: "synthetic"},
			"av":   {Type: "alphavantage"},
		},
	}
	p, err := cfg.BuildDefault()
	if err != nil || p == nil {
		t.Fatalf("BuildDefault: provider=%v err=%v", p, err)
	}
	if _, err := cfg.BuildProviders(); err == nil {
		t.Fatalf("expected BuildProviders to fail for alphavantage without api key")
	}
}
