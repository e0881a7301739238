// Package server initializes and runs the HR auth application server.
// It opens the database, applies schema migrations, builds the hashing and
// token-signing components, and starts the HTTP server together with the
// revocation ledger purge loop. Misconfiguration is fatal at startup: the
// process refuses to serve with weakened hashing costs or a short secret.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mpetrenko/hrauth/internal/logging"
	"github.com/mpetrenko/hrauth/internal/server/auth/password"
	"github.com/mpetrenko/hrauth/internal/server/auth/token"
	"github.com/mpetrenko/hrauth/internal/server/config"
	"github.com/mpetrenko/hrauth/internal/server/httpapi"
	"github.com/mpetrenko/hrauth/internal/server/repositories/repomanager"
	"github.com/mpetrenko/hrauth/internal/server/services"
)

type App struct {
	config           *config.Config
	logger           logging.Logger
	db               *sql.DB
	principalService *services.PrincipalService
	employeeService  *services.EmployeeService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	hashParams := password.DefaultParams()
	hashParams.Time = cfg.Argon2Time
	hashParams.Memory = cfg.Argon2Memory
	hashParams.Threads = cfg.Argon2Threads
	hasher, err := password.NewHasher(hashParams)
	if err != nil {
		return nil, err
	}

	issuer, err := token.NewIssuer([]byte(cfg.SecretKey), cfg.AccessTokenValidity, cfg.ClockSkewLeeway)
	if err != nil {
		return nil, err
	}

	ps := services.NewPrincipalService(db, m, hasher, issuer, cfg)
	es := services.NewEmployeeService(db, m)

	return &App{
		config:           cfg,
		logger:           logger,
		db:               db,
		principalService: ps,
		employeeService:  es,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.principalService, app.employeeService)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startPurgeLoop periodically drops revocation ledger entries for tokens
// that have expired on their own and can no longer be presented.
func (app *App) startPurgeLoop(ctx context.Context) {
	ticker := time.NewTicker(app.config.RevocationPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.principalService.PurgeExpiredRevocations(ctx, time.Now())
			if err != nil {
				app.logger.Error(ctx, "revocation purge failed", "error", err.Error())
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "purged expired revocations", "count", n)
			} else {
				app.logger.Debug(ctx, "revocation purge pass found nothing to drop")
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startPurgeLoop(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err.Error())
	}
}
