package file

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shraw06/docsplusplus/cmd/dctl/cmdutil"
	"github.com/shraw06/docsplusplus/internal/cli/timeutil"
	"github.com/shraw06/docsplusplus/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get file metadata",
	Long: `Get detailed metadata for one file.

Examples:
  dctl file get notes/todo.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// Detail wraps a single file for table rendering.
type Detail []apiclient.File

// Headers implements TableRenderer.
func (d Detail) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (d Detail) Rows() [][]string {
	if len(d) == 0 {
		return nil
	}
	f := d[0]

	acl := "-"
	if len(f.ACL) > 0 {
		names := make([]string, 0, len(f.ACL))
		for user := range f.ACL {
			names = append(names, user)
		}
		sort.Strings(names)
		entries := make([]string, 0, len(names))
		for _, user := range names {
			entries = append(entries, fmt.Sprintf("%s:%s", user, f.ACL[user]))
		}
		acl = strings.Join(entries, ", ")
	}

	return [][]string{
		{"Name", f.Name},
		{"Owner", f.Owner},
		{"Storage Server", fmt.Sprintf("%d", f.StorageServer)},
		{"ACL", acl},
		{"Created", f.Created.Format(timeutil.LocalTimeFormat)},
		{"Accessed", f.Accessed.Format(timeutil.LocalTimeFormat)},
		{"Last Accessed By", cmdutil.EmptyOr(f.LastAccessedBy, "-")},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	name := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	file, err := client.GetFile(name)
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, file, Detail{*file})
}
