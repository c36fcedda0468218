// Package ss implements storage-server observability commands for dctl.
package ss

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for storage-server observation.
var Cmd = &cobra.Command{
	Use:     "ss",
	Aliases: []string{"storage-server"},
	Short:   "Observe storage servers",
	Long: `View storage server membership and health state tracked by the
name server. This surface is read-only: enrolling or evicting a storage
server happens only through the NM/SS registration protocol.

Examples:
  # List all storage servers
  dctl ss list

  # Get one storage server's health record
  dctl ss get 1`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
}
