package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/auth"
	"github.com/branchd-dev/storefront/internal/flows"
)

// NewWhoAmICmd creates the whoami command
func NewWhoAmICmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoAmI(cmd, refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Reload the user record from the backend")

	return withRoute(cmd, flows.HomePath)
}

func runWhoAmI(cmd *cobra.Command, refresh bool) error {
	env := envFrom(cmd)
	ctx := cmd.Context()

	store, err := env.Session(ctx)
	if err != nil {
		return err
	}
	sess := store.Session()

	if refresh {
		api, err := env.API()
		if err != nil {
			return err
		}
		user, err := api.Me(ctx, sess.Token)
		if err != nil {
			return env.report(err)
		}
		if err := store.SignIn(ctx, *user, sess.Token); err != nil {
			return err
		}
		sess = store.Session()
	}

	fmt.Fprintf(env.Out, "Server: %s\n", env.server.Label())
	fmt.Fprintf(env.Out, "User:   %s (%s)\n", sess.User.FullName(), sess.User.Email)
	fmt.Fprintf(env.Out, "Role:   %s\n", sess.User.Role)

	info, err := auth.Inspect(sess.Token)
	if err != nil {
		// Opaque tokens carry no expiry
		env.Logger.Debug().Err(err).Msg("Token is not inspectable")
		return nil
	}
	if info.ExpiresAt.IsZero() {
		fmt.Fprintln(env.Out, "Token:  no expiry")
		return nil
	}
	now := time.Now()
	if info.Expired(now) {
		fmt.Fprintf(env.Out, "Token:  expired at %s; run 'storefront login'\n", info.ExpiresAt.Format(time.RFC3339))
		return nil
	}
	fmt.Fprintf(env.Out, "Token:  expires %s (in %s)\n", info.ExpiresAt.Format(time.RFC3339), info.ExpiresAt.Sub(now).Round(time.Minute))
	return nil
}
