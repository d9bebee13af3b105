package main

import (
	"context"
	"log"

	"github.com/prrathnayake/conveyancers-marketplace/platform/config"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/app/bootstrap"
)

func main() {
	r, err := bootstrap.NewRuntime(context.Background(), config.EnvOrDefault("CONFIG_PATH", "configs/default.yaml"))
	if err != nil {
		log.Fatalf("bootstrap runtime: %v", err)
	}
	if err := r.RunWorker(context.Background()); err != nil {
		log.Fatalf("run worker: %v", err)
	}
}
