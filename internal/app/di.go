// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	auditUseCase "github.com/allisson/gatekeeper/internal/audit/usecase"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	"github.com/allisson/gatekeeper/internal/cache"
	"github.com/allisson/gatekeeper/internal/config"
	"github.com/allisson/gatekeeper/internal/database"
	"github.com/allisson/gatekeeper/internal/http"
	"github.com/allisson/gatekeeper/internal/metrics"
	outboxUseCase "github.com/allisson/gatekeeper/internal/outbox/usecase"
	registryService "github.com/allisson/gatekeeper/internal/registry/service"
	registryUseCase "github.com/allisson/gatekeeper/internal/registry/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	cache           *cache.RedisCache
	kmsKeeper       authService.KMSKeeper
	signingKeyRing  *authDomain.SigningKeyRing
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Repositories
	userRepository     authUseCase.UserRepository
	sessionRepository  authUseCase.SessionRepository
	captchaRepository  authUseCase.CaptchaRepository
	clientRepository   registryUseCase.ClientRepository
	outboxRepository   outboxUseCase.OutboxEventRepository
	auditLogRepository auditUseCase.AuditLogRepository

	// Services
	passwordService authService.PasswordService
	tokenCodec      authService.TokenCodec
	captchaService  authService.CaptchaService
	secretService   registryService.SecretService

	// Use Cases
	captchaUseCase  authUseCase.CaptchaUseCase
	sessionUseCase  authUseCase.SessionUseCase
	userUseCase     authUseCase.UserUseCase
	clientUseCase   registryUseCase.ClientUseCase
	auditLogUseCase auditUseCase.AuditLogUseCase
	eventProcessor  auditUseCase.EventProcessor
	outboxUseCase   outboxUseCase.UseCase

	// Servers and Workers
	dispatcher    *outboxUseCase.Dispatcher
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	cacheInit              sync.Once
	kmsKeeperInit          sync.Once
	signingKeyRingInit     sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	txManagerInit          sync.Once
	userRepositoryInit     sync.Once
	sessionRepositoryInit  sync.Once
	captchaRepositoryInit  sync.Once
	clientRepositoryInit   sync.Once
	outboxRepositoryInit   sync.Once
	auditLogRepositoryInit sync.Once
	passwordServiceInit    sync.Once
	tokenCodecInit         sync.Once
	captchaServiceInit     sync.Once
	secretServiceInit      sync.Once
	captchaUseCaseInit     sync.Once
	sessionUseCaseInit     sync.Once
	userUseCaseInit        sync.Once
	clientUseCaseInit      sync.Once
	auditLogUseCaseInit    sync.Once
	eventProcessorInit     sync.Once
	outboxUseCaseInit      sync.Once
	dispatcherInit         sync.Once
	httpServerInit         sync.Once
	metricsServerInit      sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Cache returns the Redis-backed session cache.
func (c *Container) Cache() (*cache.RedisCache, error) {
	var err error
	c.cacheInit.Do(func() {
		c.cache, err = c.initCache()
		if err != nil {
			c.initErrors["cache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cache"]; exists {
		return nil, storedErr
	}
	return c.cache, nil
}

// KMSKeeper returns the keeper used to unwrap signing keys, or nil when KMS_KEY_URI
// is not configured.
func (c *Container) KMSKeeper() (authService.KMSKeeper, error) {
	var err error
	c.kmsKeeperInit.Do(func() {
		c.kmsKeeper, err = c.initKMSKeeper()
		if err != nil {
			c.initErrors["kmsKeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kmsKeeper"]; exists {
		return nil, storedErr
	}
	return c.kmsKeeper, nil
}

// SigningKeyRing returns the signing key ring loaded from SIGNING_KEYS.
func (c *Container) SigningKeyRing() (*authDomain.SigningKeyRing, error) {
	var err error
	c.signingKeyRingInit.Do(func() {
		c.signingKeyRing, err = c.initSigningKeyRing()
		if err != nil {
			c.initErrors["signingKeyRing"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signingKeyRing"]; exists {
		return nil, storedErr
	}
	return c.signingKeyRing, nil
}

// MetricsProvider returns the OpenTelemetry metrics provider. It is nil when metrics
// are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder used by the use case decorators.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the HTTP server with every route registered.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down, after the dispatcher
// has drained.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("cache close: %w", err))
		}
	}

	if c.kmsKeeper != nil {
		if err := c.kmsKeeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms keeper close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initCache connects to Redis, through Sentinel when a master name is configured.
func (c *Container) initCache() (*cache.RedisCache, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cache.DefaultDialTimeout)
	defer cancel()

	redisCache, err := cache.New(ctx, cache.Config{
		Addr:           c.config.RedisAddr,
		Username:       c.config.RedisUsername,
		Password:       c.config.RedisPassword,
		DB:             c.config.RedisDB,
		SentinelMaster: c.config.RedisSentinelMaster,
		SentinelAddrs:  c.config.SentinelAddrs(),
		KeyPrefix:      c.config.RedisKeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}
	return redisCache, nil
}

func (c *Container) initKMSKeeper() (authService.KMSKeeper, error) {
	if c.config.KMSKeyURI == "" {
		return nil, nil
	}

	keeper, err := authService.NewKMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, err
	}

	c.Logger().Info("kms keeper opened", slog.String("kms_provider", c.config.KMSProvider))
	return keeper, nil
}

// initSigningKeyRing parses SIGNING_KEYS, unwrapping each value through KMS when
// KMS_KEY_URI is set.
func (c *Container) initSigningKeyRing() (*authDomain.SigningKeyRing, error) {
	keeper, err := c.KMSKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get kms keeper for signing keys: %w", err)
	}

	var decrypter authDomain.KeyDecrypter
	if keeper != nil {
		decrypter = keeper
	}

	ring, err := authDomain.ParseSigningKeyRing(context.Background(), c.config.SigningKeys, decrypter)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}

	c.Logger().Info("signing keys loaded",
		slog.String("active_kid", ring.Active().ID),
		slog.Any("kids", ring.IDs()),
	)
	return ring, nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initHTTPServer creates the HTTP server and registers the authenticator and registry routes.
func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	redisCache, err := c.Cache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for http server: %w", err)
	}

	sessionUseCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for http server: %w", err)
	}

	captchaHandler, err := c.CaptchaHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get captcha handler for http server: %w", err)
	}

	sessionHandler, err := c.SessionHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get session handler for http server: %w", err)
	}

	userHandler, err := c.UserHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get user handler for http server: %w", err)
	}

	clientHandler, err := c.ClientHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get client handler for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(
		context.Background(),
		c.config,
		redisCache,
		sessionUseCase,
		captchaHandler,
		sessionHandler,
		userHandler,
		clientHandler,
		metricsProvider,
	)
	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
