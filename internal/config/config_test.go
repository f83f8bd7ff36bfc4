package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clusterboard/dashboard-api/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Auth.AccountLockoutAttempts)
	assert.Equal(t, 8, cfg.Auth.TokenExpiryHours)
	assert.Equal(t, "token", cfg.Auth.CookieName)
	assert.False(t, cfg.Server.TLSEnabled())
}

func TestLoadConfig_LockoutAttemptsFromEnv(t *testing.T) {
	t.Setenv("ACCOUNT_LOCKOUT_ATTEMPTS", "3")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Auth.AccountLockoutAttempts)
}

func TestLoadConfig_PrefixedOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_AUTH_JWT_SECRET", "from-env")
	t.Setenv("DASHBOARD_MONITORING_PROMETHEUS_API_HOST", "http://prometheus:9090")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "http://prometheus:9090", cfg.Monitoring.PrometheusAPIHost)
}
