package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/flows"
)

// NewResetPasswordCmd creates the reset-password command
func NewResetPasswordCmd() *cobra.Command {
	var email, code, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a forgotten password with an emailed code",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResetPassword(cmd, email, code, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the account")
	cmd.Flags().StringVar(&code, "code", "", "Reset code from the email (will prompt if not provided)")
	cmd.Flags().StringVar(&password, "password", "", "New password (will prompt if not provided)")

	return withRoute(cmd, flows.SignInPath)
}

func runResetPassword(cmd *cobra.Command, email, code, password string) error {
	env := envFrom(cmd)
	ctx := cmd.Context()

	api, err := env.API()
	if err != nil {
		return err
	}

	flow := flows.NewPasswordReset(api, env.FlowOptions(nil)...)
	flow.Open(ctx)
	defer flow.Close()

	if email, err = promptIfEmpty(env.Prompter, email, "Email", false); err != nil {
		return err
	}
	if err := flow.SubmitEmail(email); err != nil {
		return env.flowError(err)
	}

	if code, err = promptIfEmpty(env.Prompter, code, "Reset code", false); err != nil {
		return err
	}
	if err := flow.SubmitCode(code); err != nil {
		return env.flowError(err)
	}

	if password, err = promptIfEmpty(env.Prompter, password, "New password", true); err != nil {
		return err
	}
	if err := flow.SubmitNewPassword(password); err != nil {
		return env.flowError(err)
	}

	// The flow resets itself after the redirect delay
	select {
	case <-flow.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	fmt.Fprintln(env.Out, "✓ Password updated. Run 'storefront login' to sign in")
	return nil
}
