package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/curricula/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows project root, DB path, config file, subjects and server status. No server required.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)

	settings, err := app.LoadSettings(paths.Config)
	if err != nil {
		return err
	}

	url, ok := serverURL(paths)
	running := ok && pingServer(url)
	serverStatus := warnStyle.Sprint("✗ not running")
	if running {
		serverStatus = okStyle.Sprint("✓ running")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, boldStyle.Sprint("⚡ curricula config"))
	fmt.Fprintf(out, "  Root:       %s\n", root)
	fmt.Fprintf(out, "  DB:         %s\n", paths.DB)
	fmt.Fprintf(out, "  Config:     %s\n", paths.Config)
	fmt.Fprintf(out, "  Exports:    %s\n", paths.ExportsDir)
	fmt.Fprintf(out, "  Server:     %s\n", serverStatus)
	if running {
		fmt.Fprintf(out, "  API:        %s/api\n", url)
	}
	if !paths.Exists() {
		fmt.Fprintln(out, grayStyle.Sprint("  (no project here: run `curricula init`)"))
		return nil
	}

	fmt.Fprintf(out, "  Subjects:   %d\n", len(settings.Subjects))
	for _, s := range settings.Subjects {
		state := okStyle.Sprint("active")
		if !s.Active {
			state = grayStyle.Sprint("inactive")
		}
		fmt.Fprintf(out, "    %s  %s  %s\n", codeStyle.Sprint(s.Code), s.DatasetPath(root), state)
	}
	return nil
}
