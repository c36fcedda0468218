// Package commands implements the dctl admin CLI commands.
package commands

import (
	"os"

	"github.com/shraw06/docsplusplus/cmd/dctl/cmdutil"
	ctxcmd "github.com/shraw06/docsplusplus/cmd/dctl/commands/context"
	filecmd "github.com/shraw06/docsplusplus/cmd/dctl/commands/file"
	requestcmd "github.com/shraw06/docsplusplus/cmd/dctl/commands/request"
	sscmd "github.com/shraw06/docsplusplus/cmd/dctl/commands/ss"
	usercmd "github.com/shraw06/docsplusplus/cmd/dctl/commands/user"
	"github.com/spf13/cobra"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dctl",
	Short: "Admin CLI for the name server's read-only admin API",
	Long: `dctl is the command-line client for observing a name server remotely.

It is a read-only tool: it can list storage servers, user sessions,
pending access requests, and file metadata, but it can never issue a
LOCK_SENTENCE, WRITE, COMMIT_WRITE, or any other state-mutating wire
operation. Those remain exclusive to the NM/SS/client protocol.

Use "dctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Token, _ = cmd.Flags().GetString("token")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute adds all child commands to the root command and executes it.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Admin API URL (overrides stored credential)")
	rootCmd.PersistentFlags().String("token", "", "Bearer token (overrides stored credential)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(ctxcmd.Cmd)
	rootCmd.AddCommand(sscmd.Cmd)
	rootCmd.AddCommand(usercmd.Cmd)
	rootCmd.AddCommand(filecmd.Cmd)
	rootCmd.AddCommand(requestcmd.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
