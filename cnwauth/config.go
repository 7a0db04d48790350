package cnwauth

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config carries the tunables for the subsystem. Zero values are filled by
// DefaultConfig; ConfigFromEnv reads overrides from CNW_AUTH_* variables.
type Config struct {
	// Endpoint is the URL prefix the credential is appended to.
	Endpoint string `envconfig:"ENDPOINT"`

	// ConfigDir is where auth.json lives. Defaults to the per-user config
	// directory.
	ConfigDir string `envconfig:"CONFIG_DIR"`

	// Timeout bounds each license call.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`

	// UserAgent is sent with every request.
	UserAgent string `envconfig:"USER_AGENT" default:"cnw-device-auth-go/1.0"`

	// RevalidateInterval is the cadence of background revalidation.
	RevalidateInterval time.Duration `envconfig:"REVALIDATE_INTERVAL" default:"5m"`

	// PersistInterval is the cadence of the session-persistence task.
	PersistInterval time.Duration `envconfig:"PERSIST_INTERVAL" default:"20m"`

	// PruneInterval is the cadence of expired temp-file pruning; PruneMaxAge
	// is how old a file must be before it is removed. Pruning only runs when
	// TempDir is set.
	PruneInterval time.Duration `envconfig:"PRUNE_INTERVAL" default:"1h"`
	PruneMaxAge   time.Duration `envconfig:"PRUNE_MAX_AGE" default:"720h"`
	TempDir       string        `envconfig:"TEMP_DIR"`
}

// DefaultConfig returns a Config with all defaults applied and ConfigDir
// pointing into the per-user configuration directory.
func DefaultConfig() Config {
	cfg := Config{
		Timeout:            defaultTimeout,
		UserAgent:          "cnw-device-auth-go/1.0",
		RevalidateInterval: 5 * time.Minute,
		PersistInterval:    20 * time.Minute,
		PruneInterval:      time.Hour,
		PruneMaxAge:        30 * 24 * time.Hour,
	}
	if dir, err := os.UserConfigDir(); err == nil {
		cfg.ConfigDir = filepath.Join(dir, "cnw-device-auth")
	}
	return cfg
}

// ConfigFromEnv builds a Config from CNW_AUTH_* environment variables on top
// of the defaults.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("CNW_AUTH", &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if cfg.ConfigDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.ConfigDir = filepath.Join(dir, "cnw-device-auth")
	}
	return cfg, nil
}
