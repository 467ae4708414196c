package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/curricula/internal/adapters/xlsx"
	"github.com/corey/curricula/internal/app"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a curricula project in the current directory",
	Long: "Creates .curricula/ with a default config.yaml and, when missing, an\n" +
		"empty template workbook with the sheets and headers the loader expects.\n" +
		"Existing files are left untouched.",
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	out := cmd.OutOrStdout()

	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s dirs: %w", app.DirName, err)
	}

	settings := app.DefaultSettings()
	if _, err := os.Stat(paths.Config); errors.Is(err, fs.ErrNotExist) {
		if err := app.WriteSettings(paths.Config, settings); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(out, "⚡ wrote %s\n", paths.Config)
	} else if err != nil {
		return err
	} else {
		if settings, err = app.LoadSettings(paths.Config); err != nil {
			return err
		}
		fmt.Fprintf(out, "⚡ kept existing %s\n", paths.Config)
	}

	for _, s := range settings.Subjects {
		path := s.DatasetPath(root)
		if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := writeTemplate(path); err != nil {
			return fmt.Errorf("write template %s: %w", path, err)
		}
		fmt.Fprintf(out, "⚡ wrote template workbook %s\n", path)
	}

	fmt.Fprintln(out, grayStyle.Sprint("  fill the workbook, then: curricula report --codes \"CE1\""))
	return nil
}

func writeTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if err := xlsx.WriteDataset(f, nil); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
