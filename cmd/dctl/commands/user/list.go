package user

import (
	"fmt"
	"os"

	"github.com/shraw06/docsplusplus/cmd/dctl/cmdutil"
	"github.com/shraw06/docsplusplus/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known users",
	Long: `List every username the name server has ever registered.

Examples:
  dctl user list
  dctl user list -o yaml`,
	RunE: runList,
}

// List is a list of users for table rendering.
type List []apiclient.User

// Headers implements TableRenderer.
func (l List) Headers() []string {
	return []string{"USERNAME", "CLIENT IP", "ACTIVE"}
}

// Rows implements TableRenderer.
func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, u := range l {
		rows = append(rows, []string{u.Username, cmdutil.EmptyOr(u.ClientIP, "-"), cmdutil.BoolToYesNo(u.Active)})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	users, err := client.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, users, len(users) == 0, "No users registered.", List(users))
}
