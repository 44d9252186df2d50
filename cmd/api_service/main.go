package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/langowen/cryant/deploy/config"
	apiApp "github.com/langowen/cryant/internal/api_service/app"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalln("Failed to read config", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := apiApp.NewApiApp(cfg)
	serverDone, err := app.Start(ctx)
	if err != nil {
		cancel()
		log.Fatalln("Failed to start server", "error", err)
	}

	done := make(chan os.Signal, 1)

	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-done
	slog.Info("Gracefully shutting down")

	cancel()
	slog.Info("stopping server")

	<-serverDone
	slog.Info("server stopped")
}
