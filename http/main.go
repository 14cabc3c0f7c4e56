package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-catalog-service/config"
	"github.com/tnqbao/gau-catalog-service/http/controller"
	routes "github.com/tnqbao/gau-catalog-service/http/route"
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

	ctrl := controller.NewController(cfg, infra, repo)

	router := routes.SetupRouter(ctrl)

	server := &http.Server{
		Addr:    ":" + cfg.EnvConfig.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("HTTP Server started on :" + cfg.EnvConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	_ = infra.RabbitMQ.Close()
	_ = infra.Telemetry.Shutdown(shutdownCtx)
	_ = infra.Logger.Shutdown(shutdownCtx)
}
