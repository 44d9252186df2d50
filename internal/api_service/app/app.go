package apiApp

import (
	"context"
	"log/slog"
	"os"

	"github.com/langowen/cryant/deploy/config"
	"github.com/langowen/cryant/internal/api_service/ports/http/public"
	"github.com/pkg/errors"
)

type ApiApp struct {
	cfg *config.Config
}

func NewApiApp(cfg *config.Config) *ApiApp {
	return &ApiApp{cfg: cfg}
}

// Start brings the server up and returns a channel closed after shutdown.
func (a *ApiApp) Start(ctx context.Context) (<-chan struct{}, error) {
	const op = "apiApp.Start"

	a.initLogger()
	slog.Info("Logger initialized")

	slog.With("config", a.cfg).Info("starting server")

	server, err := public.StartServer(ctx, a.cfg)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	slog.Info("server started")

	return server.Done(), nil
}

func (a *ApiApp) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     a.cfg.Log.SlogLevel(),
		AddSource: false,
	}))
	slog.SetDefault(logger)
}
