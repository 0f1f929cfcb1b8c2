package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFrom(cmd)
			store, err := env.Session(cmd.Context())
			if err != nil {
				return err
			}

			wasSignedIn := store.Session().IsAuthenticated
			// Clear persistence even when hydration found nothing usable
			if err := store.SignOut(cmd.Context()); err != nil {
				return err
			}
			if !wasSignedIn {
				fmt.Fprintln(env.Out, "Not signed in.")
				return nil
			}
			fmt.Fprintf(env.Out, "✓ Signed out of %s\n", env.server.Label())
			return nil
		},
	}
}
