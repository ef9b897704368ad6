package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"brokerage-api/internal/config"
	"brokerage-api/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Listen: %s:%d", cfg.Host, cfg.Port),
		fmt.Sprintf("Postgres: %s", backend(cfg.Postgres.DSN != "", "in-memory store")),
		fmt.Sprintf("Redis: %s", backend(strings.TrimSpace(cfg.Redis.Host) != "", "in-memory cache")),
		fmt.Sprintf("TTL (quote/history/search/simulated): %ds / %ds / %ds / %ds",
			cfg.TTL.Quote, cfg.TTL.History, cfg.TTL.Search, cfg.TTL.Simulated),
		fmt.Sprintf("Upstream: one call per %s, timeouts %s quote / %s history",
			cfg.MarketData.RateInterval, cfg.MarketData.QuoteTimeout, cfg.MarketData.HistoryTimeout),
		fmt.Sprintf("Market hours zone: %s", cfg.MarketData.Timezone),
		simulationLine(cfg.Simulation),
		sectionLine("Market config", cfg.Market),
	}
	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func backend(configured bool, fallback string) string {
	if configured {
		return "configured"
	}
	return "not configured, using " + fallback
}

func simulationLine(sim config.SimulationConf) string {
	if !sim.Enabled {
		return "Simulation: disabled"
	}
	return fmt.Sprintf("Simulation: %s over %s", sim.Schedule, strings.Join(sim.Symbols, ","))
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case section.Value != nil && strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s (not loaded)", name, section.File)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
