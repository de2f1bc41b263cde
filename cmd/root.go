package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dennisonbertram/mcp-gmail/internal/logging"
)

// rootCmd represents the base command for the mcp-gmail application
var rootCmd = &cobra.Command{
	Use:   "mcp-gmail",
	Short: "Gmail access for AI assistants over the Model Context Protocol",
	Long: `mcp-gmail exposes a Gmail account to AI assistants over the Model
Context Protocol (MCP).

It can run as:
  - A one-shot OAuth setup tool (default: the auth command)
  - An MCP server over stdio (the serve command)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-gmail version %s\n" .Version}}`)

	// If no subcommand is provided, run the auth command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "auth")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	logLevel  string
	logFormat string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// stdout stays reserved for command output and the stdio transport.
		logging.Setup(os.Stderr, logLevel, logFormat)
	}

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRevokeCmd())
	rootCmd.AddCommand(newServeCmd())
}
