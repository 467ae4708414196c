package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/corey/curricula/internal/app"
	"github.com/corey/curricula/internal/domain/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the server last reported",
	Long:  "Reads .curricula/status.json, written by `curricula serve` on start and after every reload.",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(projectRoot())
	sd, err := status.ReadJSON(paths.Status)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(cmd.OutOrStdout(), "⚡ no status yet: start the server with `curricula serve`")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	url, ok := serverURL(paths)
	fmt.Fprint(cmd.OutOrStdout(), formatStatus(sd, ok && pingServer(url)))
	return nil
}
