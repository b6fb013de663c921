package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/garyjia/billed/internal/i18n"
	"github.com/garyjia/billed/pkg/utils"
)

// EnvPrefix prefixes every environment override, e.g. BILLED_SERVER_PORT
const EnvPrefix = "BILLED"

// Store backends
const (
	StoreLocal  = "local"
	StoreRemote = "remote"
	StoreNone   = "none"
)

// Draft backends
const (
	DraftsMemory = "memory"
	DraftsRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Store    StoreConfig    `mapstructure:"store"`
	Drafts   DraftsConfig   `mapstructure:"drafts"`
	Session  SessionConfig  `mapstructure:"session"`
	UI       UIConfig       `mapstructure:"ui"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// MigrationsDir overrides the embedded migrations when set
	MigrationsDir string `mapstructure:"migrations_dir"`
	AutoMigrate   bool   `mapstructure:"auto_migrate"`
}

// StorageConfig holds proof file storage configuration
type StorageConfig struct {
	UploadDir     string `mapstructure:"upload_dir"`
	PublicPath    string `mapstructure:"public_path"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

// StoreConfig selects the bill store backend
type StoreConfig struct {
	Backend string       `mapstructure:"backend"`
	Remote  RemoteConfig `mapstructure:"remote"`
}

// RemoteConfig holds the settings of the remote Billed API
type RemoteConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DraftsConfig selects where pending uploads are kept between requests
type DraftsConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig holds session token settings
type SessionConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	CookieName  string        `mapstructure:"cookie_name"`
	DraftCookie string        `mapstructure:"draft_cookie"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

// UIConfig holds employee page settings
type UIConfig struct {
	Language         string `mapstructure:"language"`
	SubmitNavigation string `mapstructure:"submit_navigation"`
	ModalWidth       int    `mapstructure:"modal_width"`
}

// CORSConfig holds cross-origin settings of the API
type CORSConfig struct {
	AllowOrigins     []string      `mapstructure:"allow_origins"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from defaults, an optional YAML file, a .env
// file in the working directory and BILLED_* environment variables.
// An empty configPath skips the file.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.path", "data/billed.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("storage.upload_dir", "data/uploads")
	v.SetDefault("storage.public_path", "/files")
	v.SetDefault("storage.max_upload_size", 10<<20)

	v.SetDefault("store.backend", StoreLocal)
	v.SetDefault("store.remote.base_url", "")
	v.SetDefault("store.remote.token", "")
	v.SetDefault("store.remote.timeout", 10*time.Second)

	v.SetDefault("drafts.backend", DraftsMemory)
	v.SetDefault("drafts.ttl", time.Hour)
	v.SetDefault("drafts.redis.addr", "localhost:6379")
	v.SetDefault("drafts.redis.password", "")
	v.SetDefault("drafts.redis.db", 0)

	v.SetDefault("session.jwt_secret", "")
	v.SetDefault("session.cookie_name", "jwt")
	v.SetDefault("session.draft_cookie", "bill_draft")
	v.SetDefault("session.token_ttl", 24*time.Hour)

	v.SetDefault("ui.language", i18n.DefaultLang)
	v.SetDefault("ui.submit_navigation", "optimistic")
	v.SetDefault("ui.modal_width", 800)

	v.SetDefault("cors.allow_origins", []string{"http://localhost:8080"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 12*time.Hour)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds the short names of secrets
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("session.jwt_secret", EnvPrefix+"_SESSION_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("store.remote.token", EnvPrefix+"_STORE_REMOTE_TOKEN", "BILLED_API_TOKEN")
	_ = v.BindEnv("drafts.redis.password", EnvPrefix+"_DRAFTS_REDIS_PASSWORD", "REDIS_PASSWORD")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Store.Backend {
	case StoreLocal:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the local store")
		}
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("storage.upload_dir is required for the local store")
		}
		if !strings.HasPrefix(c.Storage.PublicPath, "/") {
			return fmt.Errorf("storage.public_path must start with /")
		}
	case StoreRemote:
		if c.Store.Remote.BaseURL == "" {
			return fmt.Errorf("store.remote.base_url is required for the remote store")
		}
	case StoreNone:
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}

	switch c.Drafts.Backend {
	case DraftsMemory:
	case DraftsRedis:
		if c.Drafts.Redis.Addr == "" {
			return fmt.Errorf("drafts.redis.addr is required for the redis drafts")
		}
	default:
		return fmt.Errorf("unknown drafts.backend %q", c.Drafts.Backend)
	}

	if c.Session.JWTSecret == "" {
		return fmt.Errorf("session.jwt_secret is required")
	}
	if c.Session.CookieName == "" || c.Session.DraftCookie == "" {
		return fmt.Errorf("session cookie names are required")
	}

	if !i18n.Supported(c.UI.Language) {
		return fmt.Errorf("unsupported ui.language %q", c.UI.Language)
	}
	if c.UI.SubmitNavigation != "optimistic" && c.UI.SubmitNavigation != "confirmed" {
		return fmt.Errorf("ui.submit_navigation must be optimistic or confirmed")
	}

	if _, err := utils.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("logger.level: %w", err)
	}

	return nil
}
