package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/arklim/casting-agency/internal/infra/app"
	"github.com/arklim/casting-agency/internal/infra/config"
)

func main() {
	_ = godotenv.Load()

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, a ...any) {
		log.Printf(format, a...)
	}))
	defer undo()
	if err != nil {
		log.Printf("failed to set GOMAXPROCS: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Printf("application stopped: %v", err)
		os.Exit(1)
	}
}
