package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/curricula/internal/domain/curriculum"
)

var (
	exportCodesFlag string
	exportOutFlag   string
)

var exportCmd = &cobra.Command{
	Use:   "export [CODES...]",
	Short: "Write the relation reports to a workbook",
	Long: "Writes the three reports as an .xlsx workbook with the selected codes\n" +
		"highlighted. Without --out the file goes to .curricula/exports/. Every\n" +
		"attempt is recorded in the project's export history.",
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportCodesFlag, "codes", "c", "", "Selected codes, comma or space separated (\"-\" reads stdin)")
	exportCmd.Flags().StringVarP(&exportOutFlag, "out", "o", "", "Output workbook path")
}

func runExport(cmd *cobra.Command, args []string) error {
	raw, err := codesInput(exportCodesFlag, args, os.Stdin)
	if err != nil {
		return err
	}
	if datasetFlag != "" && exportOutFlag == "" {
		return fmt.Errorf("--dataset has no project exports directory: pass --out FILE.xlsx")
	}
	a, subject, err := openSubject(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Stop()

	job, err := a.ExportFile(cmd.Context(), subject, raw, curriculum.SplitTokens(raw), exportOutFlag)
	if err != nil {
		if isNormalizationError(err) {
			idx, _ := a.Index(subject)
			fmt.Fprint(os.Stderr, formatNormalizeFailure(err, idx))
			return exitError{code: 2, err: err, silent: true}
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ export written to %s\n", codeStyle.Sprint(job.OutputPath))
	if a.Store != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "  job %s\n", grayStyle.Sprint(job.ID))
	}
	return nil
}
