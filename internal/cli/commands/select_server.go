package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/cli/config"
)

// NewSelectServerCmd creates the select-server command
func NewSelectServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-server [url-or-alias]",
		Short: "Select the backend to use for commands",
		Long: `Select the backend to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ storefront select-server                        # Interactive selection
  $ storefront select-server http://localhost:5000  # Select by URL
  $ storefront select-server local                  # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectServer(envFrom(cmd), urlOrAlias)
		},
	}

	return cmd
}

func runSelectServer(env *Env, urlOrAlias string) error {
	cfg, _, err := config.LoadFromDir(env.Dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'storefront init <api-url>' to create a configuration file", err)
	}

	server, err := env.Selector.Select(cfg, urlOrAlias)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "Selected server: %s\n", server.Label())
	return nil
}
