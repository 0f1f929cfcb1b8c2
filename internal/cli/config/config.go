package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = "storefront.yaml"

// ErrNotFound is returned when no storefront.yaml exists up the directory tree
var ErrNotFound = errors.New("storefront.yaml not found")

// Server represents a catalog backend profile
type Server struct {
	Alias string `yaml:"alias"`
	URL   string `yaml:"url"`
}

// Config represents the CLI configuration file
type Config struct {
	Servers []Server `yaml:"servers"`
}

// NormalizeURL validates a backend URL and strips its trailing slash
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid backend URL %q: must be http(s)://host[:port]", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// FindConfigFile searches for storefront.yaml in dir and its parent directories
func FindConfigFile(dir string) (string, error) {
	start := dir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, start)
}

// Load reads the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadFromDir loads config from dir or its parent directories
func LoadFromDir(dir string) (*Config, string, error) {
	configPath, err := FindConfigFile(dir)
	if err != nil {
		return nil, "", err
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AddServer adds a profile, or renames the alias of an existing one with the same URL.
// It reports whether a new profile was added.
func (c *Config) AddServer(server Server) bool {
	for i := range c.Servers {
		if c.Servers[i].URL == server.URL {
			if server.Alias != "" {
				c.Servers[i].Alias = server.Alias
			}
			return false
		}
	}
	c.Servers = append(c.Servers, server)
	return true
}

// GetServer finds a server by URL or alias
func (c *Config) GetServer(urlOrAlias string) (*Server, error) {
	// First try by URL
	normalized, _ := NormalizeURL(urlOrAlias)
	for i := range c.Servers {
		if normalized != "" && c.Servers[i].URL == normalized {
			return &c.Servers[i], nil
		}
	}

	// Then try by alias
	for i := range c.Servers {
		if c.Servers[i].Alias == urlOrAlias {
			return &c.Servers[i], nil
		}
	}

	return nil, fmt.Errorf("server with URL or alias '%s' not found", urlOrAlias)
}

// Label is the display form of a server
func (s Server) Label() string {
	if s.Alias == "" {
		return s.URL
	}
	return fmt.Sprintf("%s (%s)", s.Alias, s.URL)
}
