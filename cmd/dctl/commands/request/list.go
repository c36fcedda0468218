package request

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shraw06/docsplusplus/cmd/dctl/cmdutil"
	"github.com/shraw06/docsplusplus/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending access requests",
	Long: `List every pending access request known to the name server.

Examples:
  dctl request list`,
	RunE: runList,
}

// List is a list of access requests for table rendering.
type List []apiclient.AccessRequest

// Headers implements TableRenderer.
func (l List) Headers() []string {
	return []string{"ID", "FILE", "USER", "ACCESS", "SATISFIED"}
}

// Rows implements TableRenderer.
func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			r.File,
			r.User,
			r.Access,
			cmdutil.BoolToYesNo(r.Satisfied),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	requests, err := client.ListAccessRequests()
	if err != nil {
		return fmt.Errorf("failed to list access requests: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, requests, len(requests) == 0, "No pending access requests.", List(requests))
}
