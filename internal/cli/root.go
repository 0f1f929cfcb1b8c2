package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/cli/commands"
	"github.com/branchd-dev/storefront/internal/config"
	"github.com/branchd-dev/storefront/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree around env
func NewRootCmd(env *commands.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront - browse and manage the product catalog",
		Long: `Storefront CLI - sign in to a catalog backend, browse products by brand
and type, keep favorites, and manage the catalog as an admin.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: commands.Authorize,
	}

	rootCmd.PersistentFlags().StringVar(&env.Server, "server", "", "Backend URL or alias from storefront.yaml")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(env.Out, "storefront version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
	rootCmd.AddCommand(commands.NewSignUpCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewResetPasswordCmd())
	rootCmd.AddCommand(commands.NewWhoAmICmd())
	rootCmd.AddCommand(commands.NewBrowseCmd())
	rootCmd.AddCommand(commands.NewProductCmd())
	rootCmd.AddCommand(commands.NewFavoriteCmd())
	rootCmd.AddCommand(commands.NewAdminCmd())

	rootCmd.SetOut(env.Out)
	rootCmd.SetErr(env.Err)
	return rootCmd
}

// Run executes args against env
func Run(ctx context.Context, env *commands.Env, args []string) error {
	defer func() {
		if err := env.Close(); err != nil {
			env.Logger.Warn().Err(err).Msg("Failed to close local database")
		}
	}()

	rootCmd := NewRootCmd(env)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(commands.WithEnv(ctx, env))
	if err != nil && !errors.Is(err, commands.ErrReported) {
		fmt.Fprintf(env.Err, "Error: %v\n", err)
	}
	return err
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	return Run(ctx, commands.NewEnv(cfg, logger.GetLogger()), os.Args[1:])
}
