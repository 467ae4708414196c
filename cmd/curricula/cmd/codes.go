package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/curricula/internal/domain/curriculum"
)

var (
	codesQueryFlag string
	codesClassFlag string
	codesLimitFlag int
	codesJSONFlag  bool
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List or search the registry codes of a subject",
	RunE:  runCodes,
}

func init() {
	codesCmd.Flags().StringVarP(&codesQueryFlag, "query", "q", "", "Search codes and descriptions")
	codesCmd.Flags().StringVar(&codesClassFlag, "class", "", "Only this class: SSBB, CE, CEv, DO")
	codesCmd.Flags().IntVarP(&codesLimitFlag, "limit", "n", 0, "Maximum results (default 50 for searches, 500 otherwise)")
	codesCmd.Flags().BoolVar(&codesJSONFlag, "json", false, "Print entries as JSON")
}

func runCodes(cmd *cobra.Command, args []string) error {
	var class curriculum.Class
	if codesClassFlag != "" {
		c, ok := curriculum.ParseClass(codesClassFlag)
		if !ok {
			return fmt.Errorf("unknown class %q: want SSBB, CE, CEv or DO", codesClassFlag)
		}
		class = c
	}

	a, subject, err := openSubject(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Stop()
	idx, err := a.Index(subject)
	if err != nil {
		return err
	}

	var entries []curriculum.CodeEntry
	if codesClassFlag == "" {
		entries = curriculum.Search(idx, codesQueryFlag, codesLimitFlag)
	} else {
		// Filter the whole result set before applying the limit.
		limit := codesLimitFlag
		all := curriculum.Search(idx, codesQueryFlag, len(curriculum.Catalog(idx)))
		for _, e := range all {
			if e.Class == class && (limit <= 0 || len(entries) < limit) {
				entries = append(entries, e)
			}
		}
	}

	if codesJSONFlag {
		if entries == nil {
			entries = []curriculum.CodeEntry{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatCodes(entries))
	return nil
}
