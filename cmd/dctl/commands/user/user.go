// Package user implements user session observability commands for dctl.
package user

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for user session observation.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Observe user sessions",
	Long: `View the name server's user registry: which usernames have ever
registered and whether their session is currently active. This surface is
read-only — registration and deregistration happen only through the NM
client protocol.

Examples:
  # List all known users
  dctl user list

  # Get one user's session state
  dctl user get alice`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
}
