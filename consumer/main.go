package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-catalog-service/config"
	"github.com/tnqbao/gau-catalog-service/consumer/worker"
	infraPkg "github.com/tnqbao/gau-catalog-service/infra"
	"github.com/tnqbao/gau-catalog-service/repository"
)

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	archiveConsumer := worker.NewArchiveConsumer(infra.RabbitMQ.Channel, infra, repo, cfg.EnvConfig.PrivateKey)
	if err := archiveConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start archive consumer: %v", err)
		log.Fatalf("Failed to start archive consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = infra.RabbitMQ.Close()
	_ = infra.Telemetry.Shutdown(shutdownCtx)
	_ = infra.Logger.Shutdown(shutdownCtx)
}
