package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Business.PaymentCycleDays)
	assert.Equal(t, 2*time.Second, cfg.Business.GatewaySettleDelay)
	assert.False(t, cfg.Business.StrictStatusTransitions)
	assert.Equal(t, LockBackendLocal, cfg.Business.PaymentLockBackend)
	assert.Equal(t, 5*time.Second, cfg.Health.Timeout)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", DriverSQLite)
	t.Setenv("DATABASE_NAME", "emi.db")
	t.Setenv("BUSINESS_STRICT_STATUS_TRANSITIONS", "true")
	t.Setenv("BUSINESS_GATEWAY_SETTLE_DELAY", "250ms")
	t.Setenv("LOGGING_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "emi.db", cfg.Database.DSN())
	assert.True(t, cfg.Business.StrictStatusTransitions)
	assert.Equal(t, 250*time.Millisecond, cfg.Business.GatewaySettleDelay)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "DATABASE_DRIVER",
		},
		{
			name:    "zero cycle days",
			mutate:  func(c *Config) { c.Business.PaymentCycleDays = 0 },
			wantErr: "BUSINESS_PAYMENT_CYCLE_DAYS",
		},
		{
			name:    "unknown lock backend",
			mutate:  func(c *Config) { c.Business.PaymentLockBackend = "etcd" },
			wantErr: "BUSINESS_PAYMENT_LOCK_BACKEND",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" },
			wantErr: "SCHEDULER_TIMEZONE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     "5432",
		Name:     "emi",
		User:     "app",
		Password: "secret",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 dbname=emi user=app sslmode=disable password=secret", db.DSN())

	db.URL = "postgres://app@db/emi"
	assert.Equal(t, "postgres://app@db/emi", db.DSN())
}
