package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"link-router/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.DomainCacheTTL)
	assert.Equal(t, 2*time.Minute, cfg.LinkCacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.DomainCacheSweep)
	assert.Equal(t, 5*time.Minute, cfg.LinkCacheSweep)
	assert.Equal(t, 1000, cfg.ClickBufferSize)
	assert.Equal(t, 4, cfg.ClickWorkerCount)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DOMAIN_CACHE_TTL_SECONDS", "60")
	t.Setenv("CLICK_WORKER_COUNT", "8")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.DomainCacheTTL)
	assert.Equal(t, 8, cfg.ClickWorkerCount)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	t.Setenv("CLICK_BUFFER_SIZE", "0")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestValidate_ProductionRequiresDBPassword(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PASSWORD", "")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}
