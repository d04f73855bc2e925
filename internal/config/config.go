package config

import (
	"github.com/maxviazov/marketplace-items-service/internal/logger"
)

// Store backends understood by the server.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config is the root application configuration.
type Config struct {
	App        AppConfig           `mapstructure:"app"`
	Logger     logger.LoggerConfig `mapstructure:"logger" validate:"-"` // validated by logger.New after defaults
	Store      StoreConfig         `mapstructure:"store"`
	Postgres   PostgresConfig      `mapstructure:"postgres"`
	Redis      RedisConfig         `mapstructure:"redis"`
	Pagination PaginationConfig    `mapstructure:"pagination"`
}

type AppConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	Env  string `mapstructure:"env" validate:"required"`
	Port int    `mapstructure:"port" validate:"gt=0,lt=65536"`
	// ShutdownTimeout is the graceful shutdown budget in seconds.
	ShutdownTimeout int `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=postgres redis memory"`
}

// PostgresConfig holds connection and pool tuning. Durations are in seconds.
type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port" validate:"gte=0,lt=65536"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"db"`
	SSLMode           string `mapstructure:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"gte=0"`
	MinConns          int32  `mapstructure:"min_conns" validate:"gte=0"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime" validate:"gte=0"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time" validate:"gte=0"`
	HealthCheckPeriod int    `mapstructure:"health_check_period" validate:"gte=0"`
	// AutoMigrate applies embedded goose migrations on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// PaginationConfig tunes the most-recent-items query.
type PaginationConfig struct {
	// MaxPageSize caps the page size; 0 leaves it uncapped.
	MaxPageSize int `mapstructure:"max_page_size" validate:"gte=0"`
	// ConsistentReads reads count and items in one snapshot when the store
	// supports it. When false, the legacy two independent reads are used.
	ConsistentReads bool `mapstructure:"consistent_reads"`
}
