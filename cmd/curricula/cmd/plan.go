package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/corey/curricula/internal/app"
	"github.com/corey/curricula/internal/domain/planner"
)

var planNameFlag string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage teaching plans and check their coverage",
	Long: "A plan is a YAML file naming units and the SSBB and CEv codes each\n" +
		"unit works on:\n\n" +
		"  name: primer-trimestre\n" +
		"  units:\n" +
		"    - name: Relieve\n" +
		"      ssbb: [1.A.1]\n" +
		"      cev: [2.1]",
}

var planSaveCmd = &cobra.Command{
	Use:   "save [FILE]",
	Short: "Store a plan (reads stdin when piped)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlanSave,
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plans",
	Args:  cobra.NoArgs,
	RunE:  runPlanList,
}

var planShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a stored plan as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanShow,
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a stored plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanDelete,
}

var planCoverageCmd = &cobra.Command{
	Use:   "coverage [FILE]",
	Short: "Report which SSBB and CEv codes a plan leaves out",
	Long:  "Analyzes a plan file, or a stored plan with --name, against the subject's registries.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlanCoverage,
}

func init() {
	planCoverageCmd.Flags().StringVar(&planNameFlag, "name", "", "Analyze a stored plan instead of a file")

	planCmd.AddCommand(planSaveCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planDeleteCmd)
	planCmd.AddCommand(planCoverageCmd)
}

// readPlan decodes a plan from FILE, or from stdin when it is piped.
func readPlan(args []string) (*planner.Plan, error) {
	var r io.Reader
	switch {
	case len(args) == 1 && args[0] != "-":
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	case len(args) == 1 || isStdinPipe():
		r = os.Stdin
	default:
		return nil, errors.New("no plan given: pass a YAML file or pipe one to stdin")
	}
	return decodePlan(r)
}

func decodePlan(r io.Reader) (*planner.Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p planner.Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty plan")
		}
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return &p, nil
}

func runPlanSave(cmd *cobra.Command, args []string) error {
	p, err := readPlan(args)
	if err != nil {
		return err
	}
	a, subject, err := openCatalog()
	if err != nil {
		return err
	}
	defer a.Stop()

	p.Subject = subject
	if err := a.SavePlan(p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ plan %s saved (%d units)\n", codeStyle.Sprint(p.Name), len(p.Units))
	return nil
}

func runPlanList(cmd *cobra.Command, args []string) error {
	a, subject, err := openCatalog()
	if err != nil {
		return err
	}
	defer a.Stop()

	recs, err := a.Plans(subject)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatPlans(subject, recs))
	return nil
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	a, subject, err := openCatalog()
	if err != nil {
		return err
	}
	defer a.Stop()

	rec, err := a.Plan(subject, args[0])
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(rec.Plan); err != nil {
		return err
	}
	return enc.Close()
}

func runPlanDelete(cmd *cobra.Command, args []string) error {
	a, subject, err := openCatalog()
	if err != nil {
		return err
	}
	defer a.Stop()

	if err := a.DeletePlan(subject, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ plan %s deleted\n", args[0])
	return nil
}

func runPlanCoverage(cmd *cobra.Command, args []string) error {
	var p *planner.Plan
	if planNameFlag == "" {
		var err error
		if p, err = readPlan(args); err != nil {
			return err
		}
	}
	a, subject, err := openSubject(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Stop()

	if p == nil {
		rec, err := a.Plan(subject, planNameFlag)
		if err != nil {
			return err
		}
		p = &rec.Plan
	}
	cov, err := a.Coverage(subject, p)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatCoverage(cov))
	return nil
}

// openCatalog opens the project without reading any workbook.
func openCatalog() (*app.App, string, error) {
	if datasetFlag != "" {
		return nil, "", fmt.Errorf("--dataset has no project store: run this inside a %s/ project", app.DirName)
	}
	a, err := openApp(projectRoot())
	if err != nil {
		return nil, "", err
	}
	subject, err := pickSubject(a)
	if err != nil {
		a.Stop()
		return nil, "", err
	}
	return a, subject, nil
}
