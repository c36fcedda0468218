package request

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shraw06/docsplusplus/cmd/dctl/cmdutil"
	"github.com/shraw06/docsplusplus/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get an access request",
	Long: `Get detailed state for one pending access request.

Examples:
  dctl request get 7`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// Detail wraps a single access request for table rendering.
type Detail []apiclient.AccessRequest

// Headers implements TableRenderer.
func (d Detail) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (d Detail) Rows() [][]string {
	if len(d) == 0 {
		return nil
	}
	r := d[0]
	return [][]string{
		{"ID", strconv.Itoa(r.ID)},
		{"File", r.File},
		{"User", r.User},
		{"Access", r.Access},
		{"Satisfied", cmdutil.BoolToYesNo(r.Satisfied)},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid request id %q: %w", args[0], err)
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	req, err := client.GetAccessRequest(id)
	if err != nil {
		return fmt.Errorf("failed to get access request: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, req, Detail{*req})
}
