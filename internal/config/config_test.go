package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable read by FromEnv so that the test environment does not leak in.
func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "APP_ENV", "NODE_ENV", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT",
		"IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT", "MAX_BODY_BYTES", "GIN_MODE", "GIN_LOGGING",
		"STATIC_DIR", "INDEX_FILE", "DATABASE_URL", "DB_DRIVER", "DB_MAX_OPEN_CONNS",
		"DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "AUTO_MIGRATE", "LOG_LEVEL", "LOG_PRETTY",
		"METRICS_ENABLED", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
	} {
		t.Setenv(k, "")
	}
}

// TestDefaults checks the values used when only the database URL is set.
func TestDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/contacts")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.Production())
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "web", cfg.StaticDir)
	assert.Equal(t, "index.html", cfg.IndexFile)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, "release", cfg.GinMode)
	assert.True(t, cfg.GinLogging)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.AutoMigrate)
	assert.False(t, cfg.OTEL.Enabled)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
}

// TestOverrides checks that environment variables take precedence over the defaults.
func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "dirk:secret@tcp(localhost:3306)/test")
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("GIN_LOGGING", "OFF")
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("AUTO_MIGRATE", "yes")
	t.Setenv("WRITE_TIMEOUT", "5s")
	t.Setenv("DB_MAX_OPEN_CONNS", "not a number")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Production())
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.False(t, cfg.GinLogging)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 10, cfg.MaxOpenConns)
}

// TestNodeEnvFallback checks that NODE_ENV is honoured when APP_ENV is not set.
func TestNodeEnvFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/contacts")
	t.Setenv("NODE_ENV", "production")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
}

// TestValidationErrors runs FromEnv with invalid values. Each of them must be rejected.
func TestValidationErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing database url": {},
		"bad port":             {"DATABASE_URL": "x", "PORT": "eighty"},
		"port out of range":    {"DATABASE_URL": "x", "PORT": "70000"},
		"unknown driver":       {"DATABASE_URL": "x", "DB_DRIVER": "oracle"},
		"bad log level":        {"DATABASE_URL": "x", "LOG_LEVEL": "loud"},
		"negative timeout":     {"DATABASE_URL": "x", "READ_TIMEOUT": "-1s"},
		"zero body limit":      {"DATABASE_URL": "x", "MAX_BODY_BYTES": "0"},
		"sample ratio":         {"DATABASE_URL": "x", "OTEL_TRACES_SAMPLER_ARG": "1.5"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
