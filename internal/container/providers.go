// Package container provides dependency injection and lifecycle management
// for the Billed server.
package container

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/infrastructure/auth"
	"github.com/garyjia/billed/internal/infrastructure/draft"
	"github.com/garyjia/billed/internal/infrastructure/external/billedapi"
	"github.com/garyjia/billed/internal/infrastructure/metrics"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	"github.com/garyjia/billed/internal/infrastructure/store"
	"github.com/garyjia/billed/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Conn           *database.DB
	TransactionMgr *sqlite.DB
	Bills          *repository.BillRepository
}

// DraftBundle holds the draft store and its closer, if any.
type DraftBundle struct {
	Store  port.DraftStore
	Memory *draft.MemoryStore
	Redis  *draft.RedisStore
}

// MetricsBundle holds the metrics registry and the recorder.
type MetricsBundle struct {
	Registry *prometheus.Registry
	Recorder *metrics.Metrics
}

// ProvideDatabase opens the sqlite database and runs pending migrations
// when auto_migrate is set. Migrations come from migrations_dir when
// configured, the embedded set otherwise.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	conn, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if _, err := RunMigrations(conn, cfg.MigrationsDir, logger); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	return &DatabaseBundle{
		Conn:           conn,
		TransactionMgr: sqlite.NewDB(conn.DB, logger),
		Bills:          repository.NewBillRepository(conn.DB, logger),
	}, nil
}

// RunMigrations applies pending migrations from dir, or the embedded set
// when dir is empty. It returns the number of applied migrations.
func RunMigrations(conn *database.DB, dir string, logger *zap.Logger) (int, error) {
	migrator := database.NewMigrator(conn, logger)

	var (
		applied int
		err     error
	)
	if dir != "" {
		applied, err = migrator.RunDir(dir)
	} else {
		applied, err = migrator.RunEmbedded()
	}
	if err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	return applied, nil
}

// ProvideStorage creates the proof file storage and its upload directory.
func ProvideStorage(cfg *config.StorageConfig, logger *zap.Logger) (*storage.LocalFileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return storage.NewLocalFileStorage(cfg.UploadDir, logger), nil
}

// ProvideLocalStore creates the bill store backed by sqlite and the file storage.
func ProvideLocalStore(db *DatabaseBundle, files port.FileStorage, cfg *config.StorageConfig, logger *zap.Logger) (port.BillStore, error) {
	if db == nil || files == nil {
		return nil, fmt.Errorf("database and file storage are required for the local store")
	}

	return store.NewLocalStore(db.Bills, files, db.TransactionMgr, store.LocalConfig{
		PublicPath:    cfg.PublicPath,
		MaxUploadSize: cfg.MaxUploadSize,
	}, logger), nil
}

// ProvideRemoteStore creates the bill store backed by a remote Billed API.
func ProvideRemoteStore(cfg *config.RemoteConfig, logger *zap.Logger) (port.BillStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("remote store config is required")
	}

	client, err := billedapi.NewClient(billedapi.Config{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Timeout: cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create billed api client: %w", err)
	}
	return client, nil
}

// ProvideDrafts creates the draft store. A redis backend must answer a ping.
func ProvideDrafts(ctx context.Context, cfg *config.DraftsConfig, logger *zap.Logger) (*DraftBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("drafts config is required")
	}

	switch cfg.Backend {
	case config.DraftsRedis:
		redisStore := draft.NewRedisStore(draft.NewRedisClient(draft.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisStore.Ping(pingCtx); err != nil {
			_ = redisStore.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}

		logger.Info("Using redis drafts", zap.String("addr", cfg.Redis.Addr))
		return &DraftBundle{Store: redisStore, Redis: redisStore}, nil
	case config.DraftsMemory, "":
		memory := draft.NewMemoryStore()
		return &DraftBundle{Store: memory, Memory: memory}, nil
	default:
		return nil, fmt.Errorf("unknown drafts backend %q", cfg.Backend)
	}
}

// ProvideMetrics creates a registry with the process and Go collectors and
// the Billed metrics.
func ProvideMetrics() *MetricsBundle {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsBundle{
		Registry: registry,
		Recorder: metrics.New(registry),
	}
}

// ProvideTokens creates the session token service.
func ProvideTokens(cfg *config.SessionConfig) (*auth.TokenService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("session config is required")
	}
	return auth.NewTokenService(cfg.JWTSecret)
}

// ProvideFactory creates the page component factory.
func ProvideFactory(billStore port.BillStore, cfg *config.UIConfig, logger *zap.Logger) (*service.Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ui config is required")
	}

	policy := service.NavigationPolicy(cfg.SubmitNavigation)
	if policy == "" {
		policy = service.NavigateOptimistic
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("unknown submit navigation %q", cfg.SubmitNavigation)
	}

	return service.NewFactory(service.FactoryConfig{
		Store:      billStore,
		Lang:       cfg.Language,
		Policy:     policy,
		ModalWidth: cfg.ModalWidth,
		Logger:     &zapLoggerAdapter{logger: logger},
	}), nil
}
