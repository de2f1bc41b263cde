package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dennisonbertram/mcp-gmail/internal/config"
)

func newRevokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Delete the stored OAuth token",
		Long: `Delete the token stored under .credentials/token.json. Subsequent Gmail
access requires running the auth command again.

Note that this only removes the local copy; to revoke the grant itself visit
https://myaccount.google.com/permissions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevoke(cmd)
		},
	}

	return cmd
}

func runRevoke(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	paths, err := config.DefaultPaths()
	if err != nil {
		return err
	}

	if err := removeToken(paths); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}

	fmt.Fprintf(out, "Removed token at %s\n", paths.TokenPath())
	return nil
}

func removeToken(paths *config.Paths) error {
	if err := os.Remove(paths.TokenPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
