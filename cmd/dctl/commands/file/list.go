package file

import (
	"fmt"
	"os"

	"github.com/shraw06/docsplusplus/cmd/dctl/cmdutil"
	"github.com/shraw06/docsplusplus/internal/cli/timeutil"
	"github.com/shraw06/docsplusplus/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listPrefix string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List files",
	Long: `List files tracked in the name server's index, optionally
restricted to one folder prefix.

Examples:
  dctl file list
  dctl file list --prefix notes/`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "Restrict results to this folder prefix")
}

// List is a list of files for table rendering.
type List []apiclient.File

// Headers implements TableRenderer.
func (l List) Headers() []string {
	return []string{"NAME", "OWNER", "SS", "ACCESSED", "LAST ACCESSED BY"}
}

// Rows implements TableRenderer.
func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, f := range l {
		rows = append(rows, []string{
			f.Name,
			f.Owner,
			fmt.Sprintf("%d", f.StorageServer),
			f.Accessed.Format(timeutil.LocalTimeFormat),
			cmdutil.EmptyOr(f.LastAccessedBy, "-"),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	files, err := client.ListFiles(listPrefix)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, files, len(files) == 0, "No files found.", List(files))
}
