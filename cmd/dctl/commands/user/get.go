package user

import (
	"fmt"
	"os"

	"github.com/shraw06/docsplusplus/cmd/dctl/cmdutil"
	"github.com/shraw06/docsplusplus/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Get a user's session state",
	Long: `Get the current session state for one username.

Examples:
  dctl user get alice`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// Detail wraps a single user for table rendering.
type Detail []apiclient.User

// Headers implements TableRenderer.
func (d Detail) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (d Detail) Rows() [][]string {
	if len(d) == 0 {
		return nil
	}
	u := d[0]
	return [][]string{
		{"Username", u.Username},
		{"Client IP", cmdutil.EmptyOr(u.ClientIP, "-")},
		{"Active", cmdutil.BoolToYesNo(u.Active)},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	user, err := client.GetUser(username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, user, Detail{*user})
}
