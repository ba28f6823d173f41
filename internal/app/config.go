package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shhac/mipo/internal/storage"
)

// DefaultServerURL is used when no server is configured.
const DefaultServerURL = "http://localhost:3001"

const (
	keyServerURL      = "server_url"
	keyDebug          = "debug"
	keyStoragePath    = "storage_path"
	keyRequestTimeout = "request_timeout"
	keyStripTimeout   = "strip_timeout"
	keyPhotoMaxEdge   = "photo_max_edge"
)

// Config holds application-wide configuration.
type Config struct {
	// ServerURL is the generation server origin, without a trailing slash.
	ServerURL string

	// Debug enables debug logging and additional diagnostics
	Debug bool

	// StoragePath is the directory holding preferences, gallery and session
	StoragePath string

	RequestTimeout time.Duration
	StripTimeout   time.Duration

	// PhotoMaxEdge downsizes photos before upload. Zero sends originals.
	PhotoMaxEdge int
}

// Overrides are command-line values that win over every other source.
// Zero values are ignored.
type Overrides struct {
	ServerURL   string
	StoragePath string
	Debug       bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      DefaultServerURL,
		RequestTimeout: 30 * time.Second,
		StripTimeout:   120 * time.Second,
	}
}

// LoadConfig resolves the configuration from, in increasing priority:
// defaults, a config.{toml,yaml,json} file in the storage directory,
// environment variables and overrides.
//
// The server URL is read from EXPO_PUBLIC_MIPO_SERVER_URL, then
// EXPO_PUBLIC_SERVER_URL, then MIPO_SERVER_URL.
func LoadConfig(o Overrides) (*Config, error) {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault(keyServerURL, def.ServerURL)
	v.SetDefault(keyDebug, def.Debug)
	v.SetDefault(keyRequestTimeout, def.RequestTimeout)
	v.SetDefault(keyStripTimeout, def.StripTimeout)
	v.SetDefault(keyPhotoMaxEdge, 0)

	binds := map[string][]string{
		keyServerURL:      {"EXPO_PUBLIC_MIPO_SERVER_URL", "EXPO_PUBLIC_SERVER_URL", "MIPO_SERVER_URL"},
		keyDebug:          {"MIPO_DEBUG"},
		keyStoragePath:    {"MIPO_STORAGE_PATH"},
		keyRequestTimeout: {"MIPO_REQUEST_TIMEOUT"},
		keyStripTimeout:   {"MIPO_STRIP_TIMEOUT"},
		keyPhotoMaxEdge:   {"MIPO_PHOTO_MAX_EDGE"},
	}
	for key, envs := range binds {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if o.StoragePath != "" {
		v.Set(keyStoragePath, o.StoragePath)
	}
	storagePath := v.GetString(keyStoragePath)
	if storagePath == "" {
		p, err := storage.DefaultStoragePath()
		if err != nil {
			return nil, fmt.Errorf("failed to determine storage path: %w", err)
		}
		storagePath = p
	}

	v.SetConfigName("config")
	v.AddConfigPath(storagePath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if o.ServerURL != "" {
		v.Set(keyServerURL, o.ServerURL)
	}
	if o.Debug {
		v.Set(keyDebug, true)
	}

	cfg := &Config{
		ServerURL:      normalizeServerURL(v.GetString(keyServerURL)),
		Debug:          v.GetBool(keyDebug),
		StoragePath:    storagePath,
		RequestTimeout: v.GetDuration(keyRequestTimeout),
		StripTimeout:   v.GetDuration(keyStripTimeout),
		PhotoMaxEdge:   v.GetInt(keyPhotoMaxEdge),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", keyRequestTimeout, c.RequestTimeout)
	}
	if c.StripTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", keyStripTimeout, c.StripTimeout)
	}
	if c.PhotoMaxEdge < 0 {
		return fmt.Errorf("%s must not be negative, got %d", keyPhotoMaxEdge, c.PhotoMaxEdge)
	}
	return nil
}

// normalizeServerURL trims whitespace and one trailing slash; an empty
// value falls back to the default.
func normalizeServerURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return DefaultServerURL
	}
	return strings.TrimSuffix(u, "/")
}
