package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/flows"
)

const maxCodeAttempts = 3

// NewSignUpCmd creates the signup command
func NewSignUpCmd() *cobra.Command {
	var (
		form flows.Registration
		code string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and verify its email address",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignUp(cmd, form, code)
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "First name")
	cmd.Flags().StringVar(&form.Lastname, "lastname", "", "Last name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&code, "code", "", "Verification code from the email (will prompt if not provided)")

	return withRoute(cmd, "/sign-up")
}

func runSignUp(cmd *cobra.Command, form flows.Registration, code string) error {
	env := envFrom(cmd)
	ctx := cmd.Context()

	var err error
	if form.Name, err = promptIfEmpty(env.Prompter, form.Name, "Name", false); err != nil {
		return err
	}
	if form.Lastname, err = promptIfEmpty(env.Prompter, form.Lastname, "Last name", false); err != nil {
		return err
	}
	if form.Email, err = promptIfEmpty(env.Prompter, form.Email, "Email", false); err != nil {
		return err
	}
	if form.Password, err = promptIfEmpty(env.Prompter, form.Password, "Password", true); err != nil {
		return err
	}

	api, err := env.API()
	if err != nil {
		return err
	}

	redirects := make(chan string, 1)
	flow := flows.NewSignUp(api, env.FlowOptions(func(path string) { redirects <- path })...)
	flow.Open(ctx)
	defer flow.Close()

	if err := flow.Submit(form); err != nil {
		return env.flowError(err)
	}
	fmt.Fprintf(env.Out, "A verification code was sent to %s\n", flow.State().PendingEmail)

	codeFromFlag := code != ""
	for attempt := 1; ; attempt++ {
		if !codeFromFlag {
			if code, err = env.Prompter.Text("Verification code (empty to go back)", ""); err != nil {
				return err
			}
			if code == "" {
				_ = flow.Dismiss()
				return errors.New("verification dismissed; run 'storefront signup' again to resend the code")
			}
		}

		err = flow.Verify(code)
		if err == nil {
			break
		}
		if codeFromFlag || attempt >= maxCodeAttempts {
			return env.flowError(err)
		}
		if errors.Is(err, flows.ErrBusy) || errors.Is(err, flows.ErrFlowClosed) {
			return err
		}
	}

	select {
	case path := <-redirects:
		fmt.Fprintf(env.Out, "✓ Account created. Continue at %s with 'storefront login'\n", path)
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
