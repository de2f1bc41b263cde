package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dennisonbertram/mcp-gmail/internal/config"
	"github.com/dennisonbertram/mcp-gmail/internal/gmail"
	"github.com/dennisonbertram/mcp-gmail/internal/google"
	"github.com/dennisonbertram/mcp-gmail/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var (
		force   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Gmail access and store the OAuth token",
		Long: `Run the OAuth consent flow against Google and store the resulting token
next to the binary under .credentials/token.json.

Client credentials are resolved in order:
  1. GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables
  2. credentials.json next to the binary ("installed" application section)
  3. credentials.json next to the binary ("web" application section)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd, force, timeout)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-run the consent flow even when a token is already stored")
	cmd.Flags().DurationVar(&timeout, "timeout", google.DefaultConsentTimeout, "How long to wait for the browser consent to complete")

	return cmd
}

func runAuth(cmd *cobra.Command, force bool, timeout time.Duration) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	paths, err := config.DefaultPaths()
	if err != nil {
		return err
	}

	creds, err := config.NewResolver(paths).Resolve()
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) || errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(cmd.ErrOrStderr(), credentialsRemediation(paths))
		}
		return err
	}

	manager := google.NewManager(creds, paths)
	manager.ConsentTimeout = timeout

	if manager.HasToken() && !force {
		fmt.Fprintf(out, "Token already present at %s (use --force to re-authorize)\n", manager.TokenPath())
	} else {
		if force {
			if err := manager.ClearToken(); err != nil {
				return fmt.Errorf("clearing stored token: %w", err)
			}
		}
		if _, err := manager.Authorize(ctx); err != nil {
			return fmt.Errorf("authorization failed: %w", err)
		}
	}

	// Verify the stored token by fetching the account profile.
	httpClient, err := manager.AuthenticatedClient(ctx)
	if err != nil {
		return err
	}
	client, err := gmail.NewClient(ctx, httpClient)
	if err != nil {
		return err
	}
	profile, err := client.GetProfile(ctx)
	if err != nil {
		return fmt.Errorf("token verification failed: %w", err)
	}
	slog.Info("authorization verified",
		logging.Operation("auth"),
		logging.UserHash(profile.EmailAddress))

	fmt.Fprintf(out, "Authorized as %s (%d messages, %d threads)\n",
		profile.EmailAddress, profile.MessagesTotal, profile.ThreadsTotal)
	fmt.Fprintf(out, "Token stored at %s\n", manager.TokenPath())
	return nil
}

func credentialsRemediation(paths *config.Paths) string {
	return fmt.Sprintf(`No Google OAuth client credentials found.

Either set the environment variables:
  export %s=your-client-id
  export %s=your-client-secret

or place the credentials.json downloaded from the Google Cloud console at:
  %s`, config.EnvClientID, config.EnvClientSecret, paths.CredentialsFile())
}
