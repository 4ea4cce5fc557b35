package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	apimw "github.com/srgulbay/flashbox/internal/api/middleware"
	"github.com/srgulbay/flashbox/internal/config"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/domain/srs"
	"github.com/srgulbay/flashbox/internal/events"
	"github.com/srgulbay/flashbox/internal/platform/sqlstore"
	"github.com/srgulbay/flashbox/internal/service/auth"
	"github.com/srgulbay/flashbox/internal/service/review"
	"github.com/srgulbay/flashbox/internal/store"
)

// limiterIdleTTL is how long an idle user's rate limit bucket is kept.
const limiterIdleTTL = 10 * time.Minute

// application holds the shared dependencies of the server and owns their
// cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	jwtService    auth.JWTService
	reviewService review.ReviewService
	eventEmitter  *events.InMemoryEventEmitter
	limiter       *apimw.UserRateLimiter
}

// newApplication wires stores, services and the event pipeline over an open
// database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	scheduler, err := newScheduler(cfg.Scheduler)
	if err != nil {
		return nil, err
	}

	var catalog review.Catalog
	if cfg.Scheduler.VerifyReferences {
		catalog, err = sqlstore.NewCatalog(db, cfg.Scheduler.Catalog, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize catalog: %w", err)
		}
	} else {
		logger.Warn("reference verification disabled; unknown users and items will be scheduled")
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewLoggingHandler(logger))

	app.reviewService, err = review.NewReviewService(
		store.NewTransactor(db),
		sqlstore.NewReviewStore(db, logger),
		scheduler,
		catalog,
		app.eventEmitter,
		review.Options{
			MaxSaveAttempts: cfg.Scheduler.MaxSaveAttempts,
			DefaultDueLimit: cfg.Scheduler.DefaultDueLimit,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review service: %w", err)
	}

	app.limiter = apimw.NewUserRateLimiter(cfg.RateLimit.SubmissionsPerSecond, cfg.RateLimit.Burst)

	logger.Info("application initialized",
		slog.Any("box_intervals_days", scheduler.Params().BoxIntervalDays))
	return app, nil
}

// newScheduler builds the box scheduler from the configured interval table.
func newScheduler(cfg config.SchedulerConfig) (srs.Service, error) {
	var pc srs.ParamsConfig
	if len(cfg.BoxIntervalsDays) != 0 {
		if len(cfg.BoxIntervalsDays) != domain.MaxBoxNumber {
			return nil, fmt.Errorf("%w: expected %d box intervals, got %d",
				srs.ErrInvalidParams, domain.MaxBoxNumber, len(cfg.BoxIntervalsDays))
		}
		copy(pc.BoxIntervalDays[:], cfg.BoxIntervalsDays)
	}

	params, err := srs.NewParams(pc)
	if err != nil {
		return nil, fmt.Errorf("failed to build scheduler params: %w", err)
	}
	return srs.NewServiceWithParams(params)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	go app.pruneLimiter(ctx)

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// pruneLimiter periodically forgets the rate limit state of idle users.
func (app *application) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterIdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.limiter.Prune(limiterIdleTTL); n > 0 {
				app.logger.Debug("pruned idle rate limit buckets", slog.Int("count", n))
			}
		}
	}
}

// cleanup releases the application's resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
}
