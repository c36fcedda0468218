// Package request implements access-request observability commands for
// dctl.
package request

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for access-request observation.
var Cmd = &cobra.Command{
	Use:     "request",
	Aliases: []string{"access-request"},
	Short:   "Observe pending access requests",
	Long: `View pending request_access(file, access_kind) entries tracked by
the name server. This surface is read-only: approving or denying a
request is a state-mutating wire operation and can only be issued through
the NM/client protocol, never through this CLI.

Examples:
  # List pending access requests
  dctl request list

  # Get one request by ID
  dctl request get 7`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
}
