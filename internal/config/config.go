package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	Env             string        `mapstructure:"env"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SchedulerConfig struct {
	SettlementSpec string `mapstructure:"settlement_spec"`
	ReminderSpec   string `mapstructure:"reminder_spec"`
	Timezone       string `mapstructure:"timezone"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BusinessConfig struct {
	PaymentCycleDays        int           `mapstructure:"payment_cycle_days"`
	GatewaySettleDelay      time.Duration `mapstructure:"gateway_settle_delay"`
	StrictStatusTransitions bool          `mapstructure:"strict_status_transitions"`
	PaymentLockBackend      string        `mapstructure:"payment_lock_backend"`
	PaymentLockTTL          time.Duration `mapstructure:"payment_lock_ttl"`
	PaymentMaxRetries       int           `mapstructure:"payment_max_retries"`
	IdempotencyTTL          time.Duration `mapstructure:"idempotency_ttl"`
	ReportCacheTTL          time.Duration `mapstructure:"report_cache_ttl"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]any{
	"server.port":             "8080",
	"server.host":             "0.0.0.0",
	"server.env":              "development",
	"server.read_timeout":     "15s",
	"server.write_timeout":    "15s",
	"server.shutdown_timeout": "30s",

	"database.driver":            DriverPostgres,
	"database.url":               "",
	"database.host":              "localhost",
	"database.port":              "5432",
	"database.name":              "emi_ledger",
	"database.user":              "postgres",
	"database.password":          "",
	"database.sslmode":           "disable",
	"database.max_open_conns":    25,
	"database.max_idle_conns":    5,
	"database.conn_max_lifetime": "30m",
	"database.auto_migrate":      true,

	"redis.url":      "",
	"redis.host":     "localhost",
	"redis.port":     "6379",
	"redis.password": "",
	"redis.db":       0,

	"scheduler.settlement_spec": "0 * * * * *",
	"scheduler.reminder_spec":   "0 0 9 * * *",
	"scheduler.timezone":        "Asia/Kolkata",

	"logging.level":  "info",
	"logging.format": "json",

	"business.payment_cycle_days":        30,
	"business.gateway_settle_delay":      "2s",
	"business.strict_status_transitions": false,
	"business.payment_lock_backend":      LockBackendLocal,
	"business.payment_lock_ttl":          "10s",
	"business.payment_max_retries":       3,
	"business.idempotency_ttl":           "24h",
	"business.report_cache_ttl":          "1m",

	"health.timeout": "5s",
}

// Load reads configuration from an optional .env file and the environment.
// Keys map to env vars by upper-casing and replacing dots, e.g. server.port -> SERVER_PORT.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := newViper()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the built-in defaults without consulting the environment.
func Default() *Config {
	var config Config
	if err := newViper().Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return &config
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
			return fmt.Errorf("DATABASE_URL or DATABASE_HOST/DATABASE_NAME is required")
		}
	case DriverSQLite:
		if c.Database.URL == "" && c.Database.Name == "" {
			return fmt.Errorf("DATABASE_URL or DATABASE_NAME is required for sqlite3")
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	if c.Business.PaymentCycleDays <= 0 {
		return fmt.Errorf("BUSINESS_PAYMENT_CYCLE_DAYS must be greater than 0")
	}

	if c.Business.GatewaySettleDelay < 0 {
		return fmt.Errorf("BUSINESS_GATEWAY_SETTLE_DELAY must not be negative")
	}

	if c.Business.PaymentMaxRetries < 0 {
		return fmt.Errorf("BUSINESS_PAYMENT_MAX_RETRIES must not be negative")
	}

	switch c.Business.PaymentLockBackend {
	case LockBackendLocal, LockBackendRedis:
	default:
		return fmt.Errorf("BUSINESS_PAYMENT_LOCK_BACKEND must be %q or %q", LockBackendLocal, LockBackendRedis)
	}

	if c.Business.PaymentLockTTL <= 0 {
		return fmt.Errorf("BUSINESS_PAYMENT_LOCK_TTL must be greater than 0")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_TIMEOUT must be greater than 0")
	}

	return nil
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == DriverSQLite {
		return d.Name
	}
	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.SSLMode)
	if d.Password != "" {
		dsn += " password=" + d.Password
	}
	return dsn
}

// Addr returns host:port for the redis server.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// Location returns the scheduler time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
