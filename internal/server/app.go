// Package server wires the API server together: configuration, the pgx
// connection pool and migrations, services, the rate limiter, and the REST
// and gRPC health servers, and stops them on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/projectboard/internal/dbx"
	"github.com/dmitrijs2005/projectboard/internal/logging"
	"github.com/dmitrijs2005/projectboard/internal/server/config"
	"github.com/dmitrijs2005/projectboard/internal/server/metrics"
	"github.com/dmitrijs2005/projectboard/internal/server/ratelimit"
	"github.com/dmitrijs2005/projectboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/projectboard/internal/server/rest"
	"github.com/dmitrijs2005/projectboard/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/projectboard/internal/server/grpc"
)

const healthProbeInterval = 15 * time.Second

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	redis          *redis.Client
	limiter        ratelimit.Limiter
	metrics        *metrics.Metrics
	userService    *services.UserService
	projectService *services.ProjectService
	healthService  *services.HealthService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := dbx.Open(c.DatabaseDSN, poolConfig(c))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{
		config:         c,
		logger:         logger,
		db:             db,
		metrics:        metrics.New(),
		userService:    services.NewUserService(db, rm, c),
		projectService: services.NewProjectService(db, rm),
		healthService:  services.NewHealthService(db),
	}

	app.limiter, app.redis = newLimiter(c)

	return app, nil
}

func poolConfig(c *config.Config) dbx.PoolConfig {
	return dbx.PoolConfig{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
}

// newLimiter shares the auth window through redis when an address is
// configured and keeps it in process otherwise.
func newLimiter(c *config.Config) (ratelimit.Limiter, *redis.Client) {
	if c.RedisAddr == "" {
		return ratelimit.NewMemoryLimiter(c.AuthRateLimit, c.AuthRateWindow), nil
	}
	rc := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	return ratelimit.NewRedisLimiter(rc, c.AuthRateLimit, c.AuthRateWindow), rc
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
	s := rest.NewServer(app.config.EndpointAddrHTTP, rest.Deps{
		Users:          app.userService,
		Projects:       app.projectService,
		Health:         app.healthService,
		Limiter:        app.limiter,
		Metrics:        app.metrics,
		Logger:         app.logger,
		Secret:         []byte(app.config.SecretKey),
		CORSOrigin:     app.config.CORSOrigin,
		TrustedProxies: app.config.TrustedProxies,
	}, app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.healthService, healthProbeInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or a server fails, then stops both
// servers and releases the pool.
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

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	if ml, ok := app.limiter.(*ratelimit.MemoryLimiter); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ml.Run(ctx, time.Hour)
		}()
	}

	wg.Wait()

	app.close(context.Background())
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close error", "error", err.Error())
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err.Error())
	}
	app.logger.Info(ctx, "App stopped")
}
