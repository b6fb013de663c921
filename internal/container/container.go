package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/infrastructure/auth"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	httpserver "github.com/garyjia/billed/internal/interfaces/http"
)

// Version is reported by /health
var Version = "1.0.0"

// Container manages all application dependencies and lifecycle.
// Components are initialized in order and torn down in reverse order.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	database *DatabaseBundle
	files    *storage.LocalFileStorage
	store    port.BillStore
	drafts   *DraftBundle
	metrics  *MetricsBundle
	tokens   *auth.TokenService

	// Application
	factory *service.Factory
	server  *httpserver.Server

	// Lifecycle
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database (local store only)
// 2. Bill store
// 3. Drafts
// 4. Metrics and session tokens
// 5. Page components and HTTP server
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization",
		zap.String("store", c.config.Store.Backend),
		zap.String("drafts", c.config.Drafts.Backend))

	// Step 1: Initialize database
	if err := c.initDatabase(); err != nil {
		c.teardown()
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Step 2: Initialize the bill store
	if err := c.initStore(); err != nil {
		c.teardown()
		return fmt.Errorf("failed to initialize bill store: %w", err)
	}
	c.logger.Info("Bill store initialized", zap.String("backend", c.config.Store.Backend))

	// Step 3: Initialize drafts
	drafts, err := ProvideDrafts(c.ctx, &c.config.Drafts, c.logger)
	if err != nil {
		c.teardown()
		return fmt.Errorf("failed to initialize drafts: %w", err)
	}
	c.drafts = drafts
	c.startDraftSweeper()

	// Step 4: Initialize metrics and tokens
	c.metrics = ProvideMetrics()
	tokens, err := ProvideTokens(&c.config.Session)
	if err != nil {
		c.teardown()
		return fmt.Errorf("failed to initialize session tokens: %w", err)
	}
	c.tokens = tokens

	// Step 5: Initialize page components and the server
	if err := c.initServer(); err != nil {
		c.teardown()
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	errs := c.teardown()

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// teardown releases whatever Start managed to initialize
func (c *Container) teardown() []error {
	var errs []error

	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	// Server is stopped by whoever called Start on it

	if c.drafts != nil && c.drafts.Redis != nil {
		if err := c.drafts.Redis.Close(); err != nil {
			c.logger.Error("Failed to close redis", zap.Error(err))
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		} else {
			c.logger.Info("Redis closed")
		}
	}
	c.drafts = nil

	if c.database != nil {
		if err := c.database.Conn.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}
	c.database = nil

	return errs
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	switch {
	case c.config.Store.Backend != config.StoreLocal:
		status.Components["database"] = ComponentHealth{Healthy: true, Message: "not used"}
	case c.database == nil:
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	default:
		if err := c.database.Conn.Ping(); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	}

	switch {
	case c.drafts == nil:
		status.Components["drafts"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	case c.drafts.Redis != nil:
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.drafts.Redis.Ping(ctx); err != nil {
			status.Components["drafts"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("redis ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["drafts"] = ComponentHealth{Healthy: true, Message: "redis"}
		}
	default:
		status.Components["drafts"] = ComponentHealth{
			Healthy: true,
			Message: fmt.Sprintf("memory, %d pending", c.drafts.Memory.Len()),
		}
	}

	if c.store != nil {
		status.Components["store"] = ComponentHealth{Healthy: true, Message: c.config.Store.Backend}
	} else {
		status.Components["store"] = ComponentHealth{Healthy: true, Message: "none"}
	}

	return status
}

func (c *Container) initDatabase() error {
	if c.config.Store.Backend != config.StoreLocal {
		return nil
	}

	db, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.database = db
	c.logger.Info("Database initialized", zap.String("path", c.config.Database.Path))

	files, err := ProvideStorage(&c.config.Storage, c.logger)
	if err != nil {
		return err
	}
	c.files = files
	c.logger.Info("Storage initialized", zap.String("upload_dir", files.BaseDir()))

	return nil
}

func (c *Container) initStore() error {
	var (
		billStore port.BillStore
		err       error
	)

	switch c.config.Store.Backend {
	case config.StoreLocal:
		billStore, err = ProvideLocalStore(c.database, c.files, &c.config.Storage, c.logger)
	case config.StoreRemote:
		billStore, err = ProvideRemoteStore(&c.config.Store.Remote, c.logger)
	case config.StoreNone:
		c.logger.Warn("No bill store configured, pages render without data")
	default:
		err = fmt.Errorf("unknown store backend %q", c.config.Store.Backend)
	}
	if err != nil {
		return err
	}

	c.store = billStore
	return nil
}

// startDraftSweeper evicts expired in-memory drafts; redis expires them itself
func (c *Container) startDraftSweeper() {
	if c.drafts.Memory == nil || c.config.Drafts.TTL <= 0 {
		return
	}

	memory := c.drafts.Memory
	interval := c.config.Drafts.TTL / 2
	if interval < time.Second {
		interval = time.Second
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-c.ctx.Done():
				return
			case <-ticker.C:
				if n := memory.Sweep(); n > 0 {
					c.logger.Debug("Swept expired drafts", zap.Int("count", n))
				}
			}
		}
	}()
}

func (c *Container) initServer() error {
	factory, err := ProvideFactory(c.store, &c.config.UI, c.logger)
	if err != nil {
		return err
	}
	c.factory = factory

	deps := httpserver.Deps{
		Factory: factory,
		Store:   c.store,
		Drafts:  c.drafts.Store,
		Tokens:  c.tokens,
		Metrics: c.metrics.Recorder,
		Health:  func() interface{} { return c.Health() },
		Logger:  &zapLoggerAdapter{logger: c.logger},
	}
	// a typed nil would pass the server's nil checks
	if c.files != nil {
		deps.Files = c.files
	}
	if c.config.Metrics.Enabled {
		deps.Gatherer = c.metrics.Registry
	}

	c.server = httpserver.NewServer(c.serverConfig(), deps)
	return nil
}

func (c *Container) serverConfig() httpserver.ServerConfig {
	cfg := httpserver.DefaultServerConfig()
	cfg.Host = c.config.Server.Host
	cfg.Port = c.config.Server.Port
	cfg.ReadTimeout = c.config.Server.ReadTimeout
	cfg.WriteTimeout = c.config.Server.WriteTimeout
	cfg.CookieName = c.config.Session.CookieName
	cfg.DraftCookie = c.config.Session.DraftCookie
	cfg.DraftTTL = c.config.Drafts.TTL
	cfg.PublicPath = c.config.Storage.PublicPath
	cfg.MaxUploadSize = c.config.Storage.MaxUploadSize
	cfg.CORSOrigins = c.config.CORS.AllowOrigins
	cfg.CORSAllowCredentials = c.config.CORS.AllowCredentials
	cfg.CORSMaxAge = c.config.CORS.MaxAge
	cfg.MetricsPath = c.config.Metrics.Path
	cfg.Version = Version
	return cfg
}

// Getters for accessing container components

// Store returns the bill store; nil when no backend is configured.
func (c *Container) Store() port.BillStore {
	return c.store
}

// Drafts returns the draft store.
func (c *Container) Drafts() port.DraftStore {
	if c.drafts == nil {
		return nil
	}
	return c.drafts.Store
}

// Tokens returns the session token service.
func (c *Container) Tokens() *auth.TokenService {
	return c.tokens
}

// Factory returns the page component factory.
func (c *Container) Factory() *service.Factory {
	return c.factory
}

// Server returns the HTTP server.
func (c *Container) Server() *httpserver.Server {
	return c.server
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the key-value logger interfaces.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
