package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"google.golang.org/api/googleapi"

	"github.com/dennisonbertram/mcp-gmail/internal/config"
	"github.com/dennisonbertram/mcp-gmail/internal/gmail"
	"github.com/dennisonbertram/mcp-gmail/internal/google"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current authorization status",
		Long: `Report where credentials were resolved from, whether a token is stored,
and which account it belongs to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}

	return cmd
}

func runStatus(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	paths, err := config.DefaultPaths()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Credentials file: %s\n", paths.CredentialsFile())
	fmt.Fprintf(out, "Token path:       %s\n", paths.TokenPath())

	creds, err := config.NewResolver(paths).Resolve()
	if err != nil {
		fmt.Fprintf(out, "Credentials:      not configured (%v)\n", err)
		return nil
	}
	fmt.Fprintf(out, "Client ID:        %s\n", creds.ClientID)
	fmt.Fprintf(out, "Redirect URI:     %s\n", creds.RedirectURI)

	manager := google.NewManager(creds, paths)
	if !manager.HasToken() {
		fmt.Fprintln(out, "Token:            not stored (run 'mcp-gmail auth' to authorize)")
		return nil
	}

	httpClient, err := manager.AuthenticatedClient(ctx)
	if err != nil {
		fmt.Fprintf(out, "Token:            stored but unreadable (%v)\n", err)
		return nil
	}
	client, err := gmail.NewClient(ctx, httpClient)
	if err != nil {
		return err
	}
	profile, err := client.GetProfile(ctx)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
			fmt.Fprintln(out, "Token:            expired or revoked (run 'mcp-gmail auth --force' to re-authorize)")
			return nil
		}
		fmt.Fprintf(out, "Token:            stored but invalid (%v)\n", err)
		return nil
	}

	fmt.Fprintf(out, "Token:            valid, authorized as %s\n", profile.EmailAddress)
	return nil
}
