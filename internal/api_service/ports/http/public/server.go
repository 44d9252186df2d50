package public

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/langowen/cryant/deploy/config"
	mwLogger "github.com/langowen/cryant/internal/api_service/ports/http/public/middleware/logger"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const notFoundMessage = "This route does not exist."

type Server struct {
	Server   *http.Server
	cfg      *config.Config
	listener net.Listener
	done     chan struct{}
}

func NewServer(server *http.Server, listener net.Listener, cfg *config.Config) *Server {
	return &Server{
		Server:   server,
		cfg:      cfg,
		listener: listener,
		done:     make(chan struct{}),
	}
}

// NewRouter serves /metrics and answers everything else with 404.
func NewRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mwLogger.New())
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(NotFound)

	return r
}

// StartServer listens and serves until ctx is canceled. The returned server's
// Done channel is closed once shutdown has finished.
func StartServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	const op = "public.StartServer"

	listener, err := listen(cfg)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	serverConfig := &http.Server{
		Handler:      NewRouter(),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	server := NewServer(serverConfig, listener, cfg)

	go func() {
		if err := server.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Http server error", "error", err)
		}
	}()

	slog.Info("listening", "addr", server.Addr())

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		if err := server.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop server", "error", err)
		}

		close(server.done)
	}()

	return server, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Done() <-chan struct{} {
	return s.done
}

// listen prefers a socket handed over by systemd or systemfd, then binds the configured address.
func listen(cfg *config.Config) (net.Listener, error) {
	listeners, err := activation.Listeners()
	if err != nil {
		return nil, errors.Wrap(err, "socket activation")
	}

	if len(listeners) > 0 && listeners[0] != nil {
		for _, extra := range listeners[1:] {
			if extra != nil {
				_ = extra.Close()
			}
		}
		return listeners[0], nil
	}

	listener, err := net.Listen("tcp", cfg.HTTPServer.Addr())
	if err != nil {
		return nil, errors.Wrap(err, "listen")
	}

	return listener, nil
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	RespondWithError(w, http.StatusNotFound, notFoundMessage)
}

func RespondWithError(w http.ResponseWriter, code int, message string, details ...string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)

	errorText := message
	if len(details) > 0 {
		errorText += "\nDetails: " + details[0]
	}

	if _, err := w.Write([]byte(errorText)); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
