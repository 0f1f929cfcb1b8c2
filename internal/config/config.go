// Package config loads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "STOREFRONT"

// Session persistence backends
const (
	SessionKeyring = "keyring"
	SessionFile    = "file"
	SessionSQLite  = "sqlite"
	SessionMemory  = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// APIURL overrides the backend profile chosen from storefront.yaml
	APIURL string `envconfig:"API_URL"`

	// Session persistence: keyring, file, sqlite or memory
	SessionBackend string `envconfig:"SESSION_BACKEND" default:"keyring"`

	// DataDir holds the session file and the local sqlite database
	DataDir string `envconfig:"DATA_DIR"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	RedirectDelay  time.Duration `envconfig:"REDIRECT_DELAY" default:"2s"`

	// Credentials for non-interactive login
	Email    string `envconfig:"EMAIL"`
	Password string `envconfig:"PASSWORD"`

	Logging LoggingConfig `envconfig:"LOG"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `envconfig:"LEVEL" default:"warn"`
	Format string `envconfig:"FORMAT" default:"console"` // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	switch cfg.SessionBackend {
	case SessionKeyring, SessionFile, SessionSQLite, SessionMemory:
	default:
		return nil, fmt.Errorf("invalid %s_SESSION_BACKEND %q, must be one of: keyring, file, sqlite, memory", envPrefix, cfg.SessionBackend)
	}

	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}

	return &cfg, nil
}

func defaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "storefront"), nil
}

// SessionFilePath returns the session file of a backend profile
func (c *Config) SessionFilePath(profile string) string {
	return filepath.Join(c.DataDir, "sessions", profileFileName(profile)+".json")
}

// DatabasePath returns the local sqlite database path
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "storefront.sqlite")
}

// profileFileName maps a backend URL onto a safe file name
func profileFileName(profile string) string {
	profile = strings.TrimPrefix(profile, "https://")
	profile = strings.TrimPrefix(profile, "http://")
	var b strings.Builder
	for _, r := range profile {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}
