package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/rest"

	"brokerage-api/internal/cli"
	"brokerage-api/internal/config"
	"brokerage-api/internal/handler"
	"brokerage-api/internal/svc"
)

var configFile = flag.String("f", "etc/brokerage.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(*cfg)
	defer ctx.Close()
	cli.LogConfigSummary(cfg)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := ctx.StartSimulation(runCtx); err != nil {
		panic(err)
	}

	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
