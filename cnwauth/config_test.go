package cnwauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.RevalidateInterval)
	assert.Equal(t, 20*time.Minute, cfg.PersistInterval)
	assert.Equal(t, time.Hour, cfg.PruneInterval)
	assert.NotEmpty(t, cfg.ConfigDir)
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.RevalidateInterval)
	assert.NotEmpty(t, cfg.ConfigDir)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("CNW_AUTH_ENDPOINT", "https://license.example.com/v1/vpn")
	t.Setenv("CNW_AUTH_CONFIG_DIR", "/tmp/cnw-test")
	t.Setenv("CNW_AUTH_TIMEOUT", "3s")
	t.Setenv("CNW_AUTH_REVALIDATE_INTERVAL", "90s")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://license.example.com/v1/vpn", cfg.Endpoint)
	assert.Equal(t, "/tmp/cnw-test", cfg.ConfigDir)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 90*time.Second, cfg.RevalidateInterval)
}
