package server

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/projectboard/internal/logging"
	"github.com/dmitrijs2005/projectboard/internal/server/config"
	"github.com/dmitrijs2005/projectboard/internal/server/metrics"
	"github.com/dmitrijs2005/projectboard/internal/server/ratelimit"
	"github.com/dmitrijs2005/projectboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/projectboard/internal/server/services"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, c *config.Config) (*App, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	rm := repomanager.NewPostgresRepositoryManager()
	return &App{
		config:         c,
		logger:         logging.Nop{},
		db:             db,
		limiter:        ratelimit.NewMemoryLimiter(c.AuthRateLimit, c.AuthRateWindow),
		metrics:        metrics.New(),
		userService:    services.NewUserService(db, rm, c),
		projectService: services.NewProjectService(db, rm),
		healthService:  services.NewHealthService(db),
	}, mock
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = ""
	c.SecretKey = "secret"
	c.ShutdownTimeout = time.Second
	return c
}

func runAsync(ctx context.Context, app *App) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()
	return done
}

func TestApp_Run_StopsOnCancel(t *testing.T) {
	app, mock := newTestApp(t, testConfig())
	mock.ExpectClose()

	mr := miniredis.RunT(t)
	app.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, app)

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	require.NoError(t, mock.ExpectationsWereMet())
	assert.ErrorIs(t, app.redis.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestApp_Run_HTTPFailureStopsApp(t *testing.T) {
	c := testConfig()
	c.EndpointAddrHTTP = "127.0.0.1:-1"

	app, mock := newTestApp(t, c)
	mock.ExpectClose()

	done := runAsync(context.Background(), app)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after listen failure")
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewLimiter(t *testing.T) {
	t.Run("memory without redis address", func(t *testing.T) {
		l, rc := newLimiter(testConfig())
		assert.Nil(t, rc)
		_, ok := l.(*ratelimit.MemoryLimiter)
		assert.True(t, ok)
	})

	t.Run("redis when address set", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c := testConfig()
		c.RedisAddr = mr.Addr()

		l, rc := newLimiter(c)
		require.NotNil(t, rc)
		t.Cleanup(func() { _ = rc.Close() })

		_, ok := l.(*ratelimit.RedisLimiter)
		require.True(t, ok)

		d, err := l.Allow(context.Background(), "auth:127.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, c.AuthRateLimit-1, d.Remaining)
	})
}

func TestPoolConfig_FromConfig(t *testing.T) {
	c := testConfig()
	c.DBMaxOpenConns = 8
	c.DBMaxIdleConns = 3
	c.DBConnMaxLifetime = 5 * time.Minute

	pc := poolConfig(c)
	assert.Equal(t, 8, pc.MaxOpenConns)
	assert.Equal(t, 3, pc.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, pc.ConnMaxLifetime)
}
