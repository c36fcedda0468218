package ss

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shraw06/docsplusplus/cmd/dctl/cmdutil"
	"github.com/shraw06/docsplusplus/internal/cli/timeutil"
	"github.com/shraw06/docsplusplus/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get storage server details",
	Long: `Get detailed health information about one storage server.

Examples:
  dctl ss get 1
  dctl ss get 1 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// Detail wraps a single storage server for table rendering.
type Detail []apiclient.StorageServer

// Headers implements TableRenderer.
func (d Detail) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (d Detail) Rows() [][]string {
	if len(d) == 0 {
		return nil
	}
	s := d[0]
	return [][]string{
		{"ID", strconv.Itoa(s.ID)},
		{"IP", s.IP},
		{"NM Port", strconv.Itoa(s.NMPort)},
		{"Client Port", strconv.Itoa(s.ClientPort)},
		{"Files", strconv.Itoa(s.FileCount)},
		{"Active", cmdutil.BoolToYesNo(s.Active)},
		{"Last Heartbeat", s.LastHeartbeat.Format(timeutil.LocalTimeFormat)},
		{"Registered At", s.RegisteredAt.Format(timeutil.LocalTimeFormat)},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid storage server id %q: %w", args[0], err)
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	server, err := client.GetStorageServer(id)
	if err != nil {
		return fmt.Errorf("failed to get storage server: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, server, Detail{*server})
}
