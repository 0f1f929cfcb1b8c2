package commands

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "init <api-url>",
		Short: "Add a catalog backend to ./storefront.yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(envFrom(cmd), args[0], alias)
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Alias of the backend (defaults to its host name)")

	return cmd
}

func runInit(env *Env, rawURL, alias string) error {
	apiURL, err := config.NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	configPath := filepath.Join(env.Dir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Fprintf(env.Out, "Found existing %s\n", config.ConfigFileName)
	} else {
		cfg = &config.Config{Servers: []config.Server{}}
		isNewConfig = true
	}

	if alias == "" {
		u, _ := url.Parse(apiURL)
		alias = u.Hostname()
		if alias == "localhost" || alias == "127.0.0.1" {
			alias = "local"
		}
	}

	if !cfg.AddServer(config.Server{Alias: alias, URL: apiURL}) {
		fmt.Fprintf(env.Out, "Server %s already exists in %s, alias set to %s\n", apiURL, config.ConfigFileName, alias)
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Fprintf(env.Out, "✓ Created ./%s with server %s (%s)\n", config.ConfigFileName, apiURL, alias)
	} else {
		fmt.Fprintf(env.Out, "✓ Saved server %s (%s) to ./%s\n", apiURL, alias, config.ConfigFileName)
	}

	fmt.Fprintln(env.Out, "\nNext steps:")
	fmt.Fprintln(env.Out, "  1. Run 'storefront signup' to create an account")
	fmt.Fprintln(env.Out, "  2. Run 'storefront login' to authenticate")

	return nil
}
