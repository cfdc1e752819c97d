package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-audit/internal/audit"
	"github.com/rocketscienceinc/tictactoe-audit/internal/config"
	"github.com/rocketscienceinc/tictactoe-audit/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-audit/internal/repository"
	"github.com/rocketscienceinc/tictactoe-audit/internal/repository/memory"
	"github.com/rocketscienceinc/tictactoe-audit/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-audit/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-audit/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT/SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	auditStore, closeStore, err := newAuditStore(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeStore()

	sessionID, err := pkg.GenerateNewSessionID()
	if err != nil {
		return fmt.Errorf("could not create session id: %w", err)
	}

	recorder := audit.NewRecorder(auditStore)
	session := usecase.NewGameSession(logger, recorder, sessionID)

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "sessionID", sessionID, "auditStore", conf.Audit.Store)

	if err = rest.New(logger, session).Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newAuditStore(ctx context.Context, log *slog.Logger, conf *config.Config) (audit.Store, func(), error) {
	if conf.Audit.Store != config.AuditStoreRedis {
		return memory.NewAuditStore(conf.Audit.MaxEvents), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeStore := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewAuditRepository(redisStorage, conf.SessionTTL, conf.Audit.MaxEvents), closeStore, nil
}
