package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config global application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Event    EventConfig    `mapstructure:"event"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port           int             `mapstructure:"port"`
	BodyLimitBytes int64           `mapstructure:"body_limit_bytes"`
	CORS           CORSConfig      `mapstructure:"cors"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig cross-origin settings; "*" allows every origin
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig limits public self-registration per client IP (needs redis)
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// StorageConfig selects the medium that backs the guest store
type StorageConfig struct {
	Driver   string `mapstructure:"driver"`
	FilePath string `mapstructure:"file_path"`
	SeedFile string `mapstructure:"seed_file"` // memory driver only
	RedisKey string `mapstructure:"redis_key"`
}

// DatabaseConfig SQL database settings (postgres / mysql)
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // minutes
}

// PostgresDSN builds the PostgreSQL connection string
func (c *DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// MySQLDSN builds the MySQL connection string
func (c *DatabaseConfig) MySQLDSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MongoConfig MongoDB settings
type MongoConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// AuthConfig admin authentication
type AuthConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	AdminUsername     string        `mapstructure:"admin_username"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"` // bcrypt
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AccessTokenTTL    time.Duration `mapstructure:"access_token_ttl"`
}

// EventConfig the party the guest list belongs to
type EventConfig struct {
	Name      string        `mapstructure:"name"`
	StartsAt  string        `mapstructure:"starts_at"` // RFC 3339
	Duration  time.Duration `mapstructure:"duration"`
	Location  string        `mapstructure:"location"`
	Host      string        `mapstructure:"host"`
	InviteURL string        `mapstructure:"invite_url"` // public registration page, encoded in invite QR codes
}

// Start parses StartsAt
func (e *EventConfig) Start() (time.Time, error) {
	return time.Parse(time.RFC3339, e.StartsAt)
}

// LogConfig logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment.
// Precedence: environment > config file > defaults. A .env file in the
// working directory is loaded into the environment first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.body_limit_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"*"})
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.limit", 20)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.file_path", "data/guests.json")
	v.SetDefault("storage.seed_file", "")
	v.SetDefault("storage.redis_key", "birthday-guests")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "birthday_guests")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "birthday-guests")
	v.SetDefault("mongo.collection", "guests")
	v.SetDefault("mongo.timeout", "10s")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password_hash", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "12h")

	v.SetDefault("event.name", "Aniversário do Marcos Farias")
	v.SetDefault("event.starts_at", "2025-07-15T19:00:00-03:00")
	v.SetDefault("event.duration", "5h")
	v.SetDefault("event.location", "Salão de Festas Premium")
	v.SetDefault("event.host", "Marcos Farias")
	v.SetDefault("event.invite_url", "http://localhost:3000/")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("GUESTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverRedis, DriverMongo, DriverPostgres, DriverMySQL:
	case DriverFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("invalid config: storage.file_path is required for the file driver")
		}
	default:
		return fmt.Errorf("invalid config: unknown storage.driver %q", c.Storage.Driver)
	}

	if c.Storage.Driver == DriverRedis && c.Redis.Addr == "" {
		return fmt.Errorf("invalid config: redis.addr is required for the redis driver")
	}

	if c.Auth.Enabled {
		if len(c.Auth.JWTSecret) < 16 {
			return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
		}
		if c.Auth.AdminPasswordHash == "" {
			return fmt.Errorf("invalid config: auth.admin_password_hash is required when auth is enabled")
		}
	}

	if _, err := c.Event.Start(); err != nil {
		return fmt.Errorf("invalid config: event.starts_at: %w", err)
	}

	if c.Event.InviteURL != "" {
		u, err := url.Parse(c.Event.InviteURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid config: event.invite_url must be an absolute URL")
		}
	}

	return nil
}
