package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/cli/userconfig"
	"github.com/branchd-dev/storefront/internal/flows"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the storefront",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set STOREFRONT_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set STOREFRONT_PASSWORD, will prompt if not provided)")

	return withRoute(cmd, flows.SignInPath)
}

func runLogin(cmd *cobra.Command, email, password string) error {
	env := envFrom(cmd)
	ctx := cmd.Context()

	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = env.Config.Email
	}
	if password == "" {
		password = env.Config.Password
	}

	api, err := env.API()
	if err != nil {
		return err
	}

	if email == "" {
		// Offer the account last used on this backend
		last, _ := userconfig.GetLastEmail(env.server.URL)
		if email, err = env.Prompter.Text("Email", last); err != nil {
			return fmt.Errorf("email is required (use --email flag or STOREFRONT_EMAIL env var): %w", err)
		}
	}
	if password, err = promptIfEmpty(env.Prompter, password, "Password", true); err != nil {
		return fmt.Errorf("password is required (use --password flag or STOREFRONT_PASSWORD env var): %w", err)
	}

	store, err := env.Session(ctx)
	if err != nil {
		return err
	}

	var redirected string
	flow := flows.NewSignIn(api, store, env.FlowOptions(func(path string) { redirected = path })...)
	flow.Open(ctx)
	defer flow.Close()

	fmt.Fprintf(env.Out, "Logging in to %s...\n", env.server.Label())

	user, err := flow.Submit(email, password)
	if err != nil {
		return env.flowError(err)
	}

	if err := userconfig.SetLastEmail(env.server.URL, user.Email); err != nil {
		env.Logger.Warn().Err(err).Msg("Failed to remember login email")
	}

	fmt.Fprintln(env.Out, "✓ Login successful!")
	fmt.Fprintf(env.Out, "  User: %s (%s)\n", user.FullName(), user.Email)
	if user.IsAdmin() {
		fmt.Fprintln(env.Out, "  Role: Admin")
	}
	env.Logger.Debug().Str("path", redirected).Msg("Redirect")
	fmt.Fprintln(env.Out, "\nBrowse the catalog with 'storefront browse'")

	return nil
}
