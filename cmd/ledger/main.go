package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	ledgerapp "maskedvaccine/internal/app/ledger"
	"maskedvaccine/internal/app/ledger/config"
	"maskedvaccine/internal/utils/logger"
)

func main() {
	conf := config.MustLoad()
	log := logger.New(conf.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	node, err := ledgerapp.NewNode(ctx, conf, log)
	if err != nil {
		log.Error("failed to start ledger node", "error", err)
		os.Exit(1)
	}
	defer node.Close()

	if err := node.Run(ctx); err != nil {
		log.Error("ledger node stopped with error", "error", err)
		os.Exit(1)
	}
}
