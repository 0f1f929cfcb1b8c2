package userconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "storefront"
	configFileName = "config.yaml"
)

// UserConfig represents the user's local configuration stored in
// $XDG_CONFIG_HOME/storefront/config.yaml (~/.config by default)
type UserConfig struct {
	SelectedServerURL string `yaml:"selected_server_url"`
	// LastEmails maps a backend URL to the email last signed in there
	LastEmails map[string]string `yaml:"last_emails,omitempty"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		base = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(base, configDirName, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		// If config doesn't exist, return empty config
		if os.IsNotExist(err) {
			return &UserConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	// Holds account emails
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetSelectedServer updates the selected server URL and saves the config
func SetSelectedServer(serverURL string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.SelectedServerURL = serverURL
	return Save(cfg)
}

// GetSelectedServer returns the selected server URL, or empty string if not set
func GetSelectedServer() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.SelectedServerURL, nil
}

// SetLastEmail remembers the email that signed in to serverURL. An empty email
// forgets it.
func SetLastEmail(serverURL, email string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	if email == "" {
		delete(cfg.LastEmails, serverURL)
	} else {
		if cfg.LastEmails == nil {
			cfg.LastEmails = map[string]string{}
		}
		cfg.LastEmails[serverURL] = email
	}
	return Save(cfg)
}

// GetLastEmail returns the email last signed in to serverURL, or empty string
func GetLastEmail(serverURL string) (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.LastEmails[serverURL], nil
}
