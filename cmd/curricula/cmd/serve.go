package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/curricula/internal/app"
)

var servePortFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API with hot reload of the workbooks",
	Long: "Loads every active subject, serves the JSON API and reloads a subject\n" +
		"whenever its workbook changes on disk. Stops on Ctrl-C.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePortFlag, "port", "p", 0, "HTTP port (default: config, then a port derived from the project path)")
}

func runServe(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)

	if url, ok := serverURL(paths); ok && pingServer(url) {
		fmt.Printf("⚡ server already running at %s\n", url)
		return nil
	}
	if datasetFlag == "" && !paths.Exists() {
		return fmt.Errorf("no %s/ project in %s\n  → create one:  curricula init", app.DirName, root)
	}

	cfg := app.Config{
		ProjectRoot: root,
		Dataset:     datasetFlag,
		HTTPPort:    servePortFlag,
	}
	if verboseFlag {
		cfg.Logger = app.NewLogger(os.Stderr, "debug")
	}
	a, err := app.New(cfg)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("cannot serve: %s", diagnoseDBLock(root))
		}
		return fmt.Errorf("init: %w", err)
	}

	if err := a.LoadSubjects(cmd.Context()); err != nil {
		a.Stop()
		return err
	}
	if err := a.Start(); err != nil {
		a.Stop()
		return err
	}

	loaded := 0
	for _, s := range a.Subjects() {
		if s.Loaded {
			loaded++
		}
	}
	fmt.Printf("⚡ curricula serving %d subjects at %s\n", loaded, a.WebServer.URL())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\n⚡ shutting down...")
	return a.Stop()
}
