package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger   *slog.Logger
	handlers *handlers
}

func New(logger *slog.Logger, session gameSession) *Server {
	return &Server{
		logger:   logger.With("component", "rest"),
		handlers: newHandlers(logger, session),
	}
}

// Handler exposes the routes without a listener.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.handlers.ping)

	mux.HandleFunc("GET /{$}", that.handlers.index)
	mux.HandleFunc("POST /move", that.handlers.move)
	mux.HandleFunc("POST /reset", that.handlers.reset)

	mux.HandleFunc("GET /api/state", that.handlers.apiState)
	mux.HandleFunc("POST /api/move", that.handlers.apiMove)
	mux.HandleFunc("POST /api/reset", that.handlers.apiReset)
	mux.HandleFunc("GET /api/audit", that.handlers.apiAudit)

	return mux
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
