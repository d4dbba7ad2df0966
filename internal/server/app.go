// Package server wires the record store: PostgreSQL records, S3 settings,
// the per-owner rate limiter and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/urgekeeper/internal/logging"
	"github.com/dmitrijs2005/urgekeeper/internal/server/config"
	gs "github.com/dmitrijs2005/urgekeeper/internal/server/grpc"
	"github.com/dmitrijs2005/urgekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/urgekeeper/internal/server/repositories/settings"
	"github.com/dmitrijs2005/urgekeeper/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager(logger)
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	s3Client, err := settings.NewS3Client(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("s3 init error: %w", err)
	}

	limiter, err := gs.NewLimiter(c.RateLimit, c.RedisURL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("rate limiter init error: %w", err)
	}

	rs := services.NewRecordService(db, rm)
	ss := services.NewSettingsService(settings.NewS3Repository(s3Client, c.S3Bucket))
	srv := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, rs, ss, limiter, c.SecretKey)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives or the server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}()

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}
	return nil
}
