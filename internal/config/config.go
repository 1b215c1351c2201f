// Package config resolves the CLI's settings: an optional TOML file
// layered under environment variables, with sensible defaults when
// neither is present.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	baseURLEnvVar   = "CLINIC_BASE_URL"
	timeoutEnvVar   = "CLINIC_TIMEOUT_SECONDS"
	dataDirEnvVar   = "CLINIC_DATA_DIR"
	redisAddrEnvVar = "CLINIC_REDIS_ADDR"

	defaultBaseURL = "http://localhost:8000/api/v1"
	defaultTimeout = 45 * time.Second
)

// Config holds everything the CLI needs to build a client.
type Config struct {
	// BaseURL is the backend root, e.g. "https://clinic.example.com/api/v1".
	BaseURL string
	// Timeout is the default per-call timeout.
	Timeout time.Duration
	// DataDir holds the file-backed store (credentials, cache, queue).
	DataDir string
	// RedisAddr, when set, selects the Redis store backend instead of
	// the file one.
	RedisAddr string
}

// StorePath is the location of the file-backed store document.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, "clinic-client.json")
}

// Load reads the TOML config at path (defaults apply when the file is
// missing), then lets environment variables override individual fields.
func Load(path string) (Config, error) {
	cfg := Config{
		BaseURL: defaultBaseURL,
		Timeout: defaultTimeout,
		DataDir: defaultDataDir(),
	}

	raw, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Wrap(err, "[Load] read config file")
	}
	if err == nil {
		var file struct {
			BaseURL        string `toml:"base_url"`
			TimeoutSeconds int    `toml:"timeout_seconds"`
			DataDir        string `toml:"data_dir"`
			RedisAddr      string `toml:"redis_addr"`
		}
		if err := toml.Unmarshal(raw, &file); err != nil {
			return Config{}, errors.Wrap(err, "[Load] parse config file")
		}
		if strings.TrimSpace(file.BaseURL) != "" {
			cfg.BaseURL = strings.TrimSpace(file.BaseURL)
		}
		if file.TimeoutSeconds > 0 {
			cfg.Timeout = time.Duration(file.TimeoutSeconds) * time.Second
		}
		if strings.TrimSpace(file.DataDir) != "" {
			cfg.DataDir = strings.TrimSpace(file.DataDir)
		}
		cfg.RedisAddr = strings.TrimSpace(file.RedisAddr)
	}

	if v := os.Getenv(baseURLEnvVar); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(timeoutEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return Config{}, errors.Errorf("[Load] invalid %s: %q", timeoutEnvVar, v)
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	}
	if v := os.Getenv(dataDirEnvVar); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(redisAddrEnvVar); v != "" {
		cfg.RedisAddr = v
	}

	return cfg, nil
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "clinic-client.toml"
	}
	return filepath.Join(home, ".config", "clinic-client", "config.toml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clinic-client"
	}
	return filepath.Join(home, ".local", "share", "clinic-client")
}
