package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/curricula/internal/domain/curriculum"
)

var normalizeCodesFlag string

var normalizeCmd = &cobra.Command{
	Use:   "normalize [CODES...]",
	Short: "Resolve user-typed codes to canonical registry codes",
	Long: "Prints one canonical code per input token, in input order. On failure\n" +
		"prints every ambiguous or unknown token plus example codes of each\n" +
		"class, and exits with status 2.",
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeCodesFlag, "codes", "c", "", "Codes to resolve (\"-\" reads stdin)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	raw, err := codesInput(normalizeCodesFlag, args, os.Stdin)
	if err != nil {
		return err
	}
	a, subject, err := openSubject(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Stop()

	codes, err := a.Normalize(subject, curriculum.SplitTokens(raw))
	if err != nil {
		if isNormalizationError(err) {
			idx, _ := a.Index(subject)
			fmt.Fprint(os.Stderr, formatNormalizeFailure(err, idx))
			return exitError{code: 2, err: err, silent: true}
		}
		return err
	}
	for _, c := range codes {
		fmt.Fprintln(cmd.OutOrStdout(), c)
	}
	return nil
}
