package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Apurer/go-gin-order-service/internal/app/iam"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := iam.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := iam.Run(ctx, cfg); err != nil {
		log.Fatalf("credential issuer failed: %v", err)
	}
}
