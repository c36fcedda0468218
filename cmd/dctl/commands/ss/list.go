package ss

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shraw06/docsplusplus/cmd/dctl/cmdutil"
	"github.com/shraw06/docsplusplus/internal/cli/timeutil"
	"github.com/shraw06/docsplusplus/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List storage servers",
	Long: `List every storage server the name server has registered,
active or not.

Examples:
  dctl ss list
  dctl ss list -o json`,
	RunE: runList,
}

// List is a list of storage servers for table rendering.
type List []apiclient.StorageServer

// Headers implements TableRenderer.
func (l List) Headers() []string {
	return []string{"ID", "ADDRESS", "FILES", "ACTIVE", "LAST HEARTBEAT", "REGISTERED"}
}

// Rows implements TableRenderer.
func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		addr := fmt.Sprintf("%s:%d", s.IP, s.ClientPort)
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			addr,
			strconv.Itoa(s.FileCount),
			cmdutil.BoolToYesNo(s.Active),
			timeutil.FormatUptime(time.Since(s.LastHeartbeat).String()) + " ago",
			s.RegisteredAt.Format(timeutil.LocalTimeFormat),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	servers, err := client.ListStorageServers()
	if err != nil {
		return fmt.Errorf("failed to list storage servers: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, servers, len(servers) == 0, "No storage servers registered.", List(servers))
}
