// Package file implements file metadata observability commands for dctl.
package file

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for file metadata observation.
var Cmd = &cobra.Command{
	Use:   "file",
	Short: "Observe file metadata",
	Long: `View entries in the name server's file index: owner, storage
server assignment, ACL, and access history. This surface is read-only —
creating, locking, or writing a file happens only through the NM/SS/client
wire protocol.

Examples:
  # List every file
  dctl file list

  # List files under a folder prefix
  dctl file list --prefix notes/

  # Get one file's metadata
  dctl file get notes/todo.txt`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
}
