package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/corey/curricula/internal/app"
	"github.com/corey/curricula/internal/domain/curriculum"
)

// Persistent flags shared by every command.
var (
	datasetFlag string
	subjectFlag string
	colorFlag   string
	noColorFlag bool
	verboseFlag bool
)

// useColor is resolved once per invocation from --color/--no-color.
var useColor bool

var rootCmd = &cobra.Command{
	Use:   "curricula",
	Short: "curricula — curriculum cross-reference reports",
	Long: "Maps SSBB, CE, CEv and DO codes of a curriculum workbook and builds\n" +
		"relation reports for a selection of codes.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		useColor = resolveColor(colorFlag, noColorFlag)
		color.NoColor = !useColor
	},
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&datasetFlag, "dataset", "", "Read this workbook directly, ignoring the project catalog")
	pf.StringVarP(&subjectFlag, "subject", "s", "", "Subject code from .curricula/config.yaml")
	pf.StringVar(&colorFlag, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&noColorFlag, "no-color", false, "Disable color output")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Log dataset loading to stderr")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(codesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
}

// cliLogLevel keeps one-shot commands quiet unless --verbose.
func cliLogLevel() string {
	if verboseFlag {
		return "debug"
	}
	return "warn"
}

// openApp wires the app for a one-shot command. It fails early when there
// is neither a --dataset nor an initialized project.
func openApp(root string) (*app.App, error) {
	if datasetFlag == "" && !app.NewPaths(root).Exists() {
		return nil, fmt.Errorf("no %s/ project in %s\n"+
			"  → create one:      curricula init\n"+
			"  → or read a file:  curricula --dataset FILE.xlsx ...", app.DirName, root)
	}
	a, err := app.New(app.Config{
		ProjectRoot: root,
		Dataset:     datasetFlag,
		Logger:      app.NewLogger(os.Stderr, cliLogLevel()),
	})
	if err != nil {
		if isDBLockError(err) {
			return nil, fmt.Errorf("cannot open project: %s", diagnoseDBLock(root))
		}
		return nil, err
	}
	return a, nil
}

// openSubject opens the app and loads the one subject the command works on.
func openSubject(ctx context.Context) (*app.App, string, error) {
	a, err := openApp(projectRoot())
	if err != nil {
		return nil, "", err
	}
	subject, err := pickSubject(a)
	if err != nil {
		a.Stop()
		return nil, "", err
	}
	if err := a.LoadSubjects(ctx, subject); err != nil {
		a.Stop()
		return nil, "", err
	}
	if _, err := a.Index(subject); err != nil {
		a.Stop()
		return nil, "", err
	}
	return a, subject, nil
}

// pickSubject resolves --subject, falling back to the only configured subject.
func pickSubject(a *app.App) (string, error) {
	if subjectFlag != "" {
		return subjectFlag, nil
	}
	if s := a.DefaultSubject(); s != "" {
		return s, nil
	}
	codes := make([]string, 0, len(a.Settings.Subjects))
	for _, s := range a.Settings.Subjects {
		codes = append(codes, s.Code)
	}
	if len(codes) == 0 {
		return "", fmt.Errorf("no subjects configured in %s", a.Paths.Config)
	}
	return "", fmt.Errorf("several subjects configured; pass --subject (one of: %s)", strings.Join(codes, ", "))
}

// codesInput joins --codes and positional args into one free-text selection.
// A lone "-" reads the selection from stdin.
func codesInput(codesFlag string, args []string, stdin io.Reader) (string, error) {
	parts := args
	if codesFlag != "" {
		parts = append([]string{codesFlag}, args...)
	}
	if len(parts) == 1 && parts[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		parts = []string{string(b)}
	}
	raw := strings.Join(parts, ", ")
	if len(curriculum.SplitTokens(raw)) == 0 {
		return "", fmt.Errorf("no codes given: pass --codes \"CE1, A.1\" or codes as arguments")
	}
	return raw, nil
}
