package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"brokerage-api/internal/cli"
	"brokerage-api/internal/config"
	"brokerage-api/internal/marketdata"
	"brokerage-api/internal/svc"
)

const shutdownTimeout = 10 * time.Second

var (
	configFile = flag.String("f", "etc/brokerage.yaml", "the config file")
	symbols    = flag.String("symbols", "", "comma separated symbols to broadcast, overrides the config")
	schedule   = flag.String("schedule", "", "cron spec for ticks, overrides the config")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting price simulator...")

	appCfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] Failed to load config: %v", err)
	}
	appCfg.Simulation.Enabled = true
	if s := strings.TrimSpace(*symbols); s != "" {
		appCfg.Simulation.Symbols = strings.Split(s, ",")
	}
	if s := strings.TrimSpace(*schedule); s != "" {
		appCfg.Simulation.Schedule = s
	}

	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(appCfg) {
		log.Printf("  - %s", line)
	}

	svcCtx, err := svc.Build(*appCfg)
	if err != nil {
		log.Fatalf("[main] Failed to build services: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub := svcCtx.Hub.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		logTicks(sub)
	}()

	if err := svcCtx.StartSimulation(ctx); err != nil {
		log.Fatalf("[main] Failed to start broadcaster: %v", err)
	}
	log.Printf("[main] Broadcasting %v on %q. Press Ctrl+C to stop.",
		svcCtx.Broadcaster.Symbols(), appCfg.Simulation.Schedule)

	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping broadcaster...")
	svcCtx.Close()

	select {
	case <-done:
		log.Println("[main] Simulator stopped cleanly")
	case <-time.After(shutdownTimeout):
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}
}

// logTicks drains sub until the hub closes it.
func logTicks(sub *marketdata.Subscription) {
	for q := range sub.C() {
		log.Printf("[tick] %-6s %10.2f %+8.2f (%+.2f%%) vol=%d", q.Symbol, q.Price, q.Change, q.ChangePercent, q.Volume)
	}
}
