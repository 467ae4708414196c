package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/curricula/internal/domain/curriculum"
)

var (
	reportCodesFlag string
	reportJSONFlag  bool
)

var reportCmd = &cobra.Command{
	Use:   "report [CODES...]",
	Short: "Print the relation reports for a selection of codes",
	Long: "Normalizes the selected codes (prefixes like CE/CEv/DO/SSBB are optional,\n" +
		"SSBB shortcuts like A.1 are resolved) and prints the relation summary,\n" +
		"the per-code expansions and the descriptions of every related code.",
	Example: "  curricula report --codes \"CE2, A.1\"\n" +
		"  curricula --dataset 1ESO_GeH.xlsx report CCL1 2.1",
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportCodesFlag, "codes", "c", "", "Selected codes, comma or space separated (\"-\" reads stdin)")
	reportCmd.Flags().BoolVar(&reportJSONFlag, "json", false, "Print the reports as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	raw, err := codesInput(reportCodesFlag, args, os.Stdin)
	if err != nil {
		return err
	}
	a, subject, err := openSubject(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Stop()

	bundle, err := a.Generate(subject, curriculum.SplitTokens(raw))
	if err != nil {
		if isNormalizationError(err) {
			idx, _ := a.Index(subject)
			fmt.Fprint(os.Stderr, formatNormalizeFailure(err, idx))
			return exitError{code: 2, err: err, silent: true}
		}
		return err
	}

	if reportJSONFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatReport(bundle))
	return nil
}
