package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/domain/planner"
	"github.com/corey/curricula/internal/domain/report"
	"github.com/corey/curricula/internal/domain/status"
	"github.com/corey/curricula/internal/ports"
)

// Terminal styles. fatih/color drops the escapes when color.NoColor is set.
var (
	boldStyle  = color.New(color.Bold)
	codeStyle  = color.New(color.FgCyan)
	classStyle = color.New(color.FgMagenta)
	grayStyle  = color.New(color.FgHiBlack)
	okStyle    = color.New(color.FgGreen)
	warnStyle  = color.New(color.FgYellow)
	selStyle   = color.New(color.FgRed, color.Bold)
)

// exampleCodes is how many codes per class a normalization failure lists.
const exampleCodes = 15

// highlight marks the selected codes of a rendered cell: bold red with
// color, »code« without.
func highlight(cell string, selected map[string]bool) string {
	if !useColor {
		return report.MarkSelected(cell, selected)
	}
	parts := report.SplitCell(cell)
	if len(parts) == 0 {
		return grayStyle.Sprint(cell)
	}
	for i, p := range parts {
		if selected[p] {
			parts[i] = selStyle.Sprint(p)
		}
	}
	return strings.Join(parts, report.Separator)
}

// formatReport renders the three reports of a bundle.
//
//	⚡ Relaciones por tipo
//	  Competencia Específica  2
//	    SSBB  1.A.1
//	⚡ Relaciones individuales
//	  SSBB
//	    1.A.1  CE 2 │ CEv 2.1 │ DO D1
//	⚡ Descripciones │ 4 elementos
//	  SSBB  1.A.1  Geografía física
func formatReport(b *report.Bundle) string {
	sel := report.SelectionSet(b.Selection)
	var sb strings.Builder

	sb.WriteString(boldStyle.Sprint("⚡ Relaciones por tipo") + "\n")
	if len(b.Summary) == 0 {
		sb.WriteString(grayStyle.Sprint("  (sin códigos seleccionados)") + "\n")
	}
	for _, row := range b.Summary {
		fmt.Fprintf(&sb, "  %s  %s\n", classStyle.Sprint(row.ClassLabel), highlight(row.Selected, sel))
		for _, c := range curriculum.Classes {
			if c == row.Class {
				continue
			}
			fmt.Fprintf(&sb, "    %-4s  %s\n", c, highlight(row.Related(c), sel))
		}
	}

	sb.WriteString(boldStyle.Sprint("⚡ Relaciones individuales") + "\n")
	for _, anchor := range curriculum.Classes {
		rows := b.Expansions.Anchored(anchor)
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  %s\n", classStyle.Sprint(anchor))
		for _, row := range rows {
			code := codeStyle.Sprint(row.Code)
			if sel[row.Code] {
				code = highlight(row.Code, sel)
			}
			var cols []string
			for _, c := range curriculum.Classes {
				if c == anchor {
					continue
				}
				cell := report.JoinCodes(row.Column(c), "")
				cols = append(cols, fmt.Sprintf("%s %s", grayStyle.Sprint(c), highlight(cell, sel)))
			}
			fmt.Fprintf(&sb, "    %s  %s\n", code, strings.Join(cols, " │ "))
		}
	}

	fmt.Fprintf(&sb, "%s │ %d elementos\n", boldStyle.Sprint("⚡ Descripciones"), len(b.Closure))
	for _, row := range b.Closure {
		desc := row.Description
		if desc == report.DescriptionNotFound {
			desc = warnStyle.Sprint(desc)
		}
		fmt.Fprintf(&sb, "  %-4s  %s  %s\n", row.Class, highlight(row.Element, sel), desc)
	}
	return sb.String()
}

// formatCodes renders catalog entries one per line.
func formatCodes(entries []curriculum.CodeEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", boldStyle.Sprintf("⚡ %d códigos", len(entries)))
	for _, e := range entries {
		fmt.Fprintf(&sb, "  %-4s  %s  %s\n", classStyle.Sprint(e.Class), codeStyle.Sprint(e.Code), grayStyle.Sprint(e.Description))
	}
	return sb.String()
}

// formatNormalizeFailure explains a normalization error and lists example
// codes of every class, so the user can see what the registry looks like.
func formatNormalizeFailure(err error, idx *curriculum.Index) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %v\n", warnStyle.Sprint("✗"), err)

	var amb *curriculum.AmbiguousCodeError
	if errors.As(err, &amb) {
		sb.WriteString(grayStyle.Sprint("  write the full SSBB code, e.g. "+amb.Candidates[0]) + "\n")
	}

	sb.WriteString(boldStyle.Sprint("⚡ Códigos de ejemplo") + "\n")
	for _, c := range curriculum.Classes {
		codes := idx.Codes(c)
		more := ""
		if len(codes) > exampleCodes {
			more = grayStyle.Sprintf(" … (+%d)", len(codes)-exampleCodes)
			codes = codes[:exampleCodes]
		}
		fmt.Fprintf(&sb, "  %-4s  %s%s\n", classStyle.Sprint(c), strings.Join(codes, report.Separator), more)
	}
	return sb.String()
}

// formatJobs renders export jobs newest first.
func formatJobs(subject string, jobs []*ports.ExportJob) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", boldStyle.Sprintf("⚡ %d exports │ %s", len(jobs), subject))
	for _, j := range jobs {
		st := okStyle.Sprint("✓")
		detail := j.OutputPath
		if j.Status != ports.JobSuccess {
			st = warnStyle.Sprint("✗")
			detail = firstLine(j.ErrorMessage)
		}
		fmt.Fprintf(&sb, "  %s %s  %s  %s\n    %s\n", st,
			j.CreatedAt.Local().Format("2006-01-02 15:04"), grayStyle.Sprint(j.ID[:min(8, len(j.ID))]),
			codeStyle.Sprint(j.CodesRaw), grayStyle.Sprint(detail))
	}
	return sb.String()
}

// formatPlans renders stored plans ordered by name.
func formatPlans(subject string, recs []*ports.PlanRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", boldStyle.Sprintf("⚡ %d plans │ %s", len(recs), subject))
	for _, r := range recs {
		fmt.Fprintf(&sb, "  %s  %d units  %s\n", codeStyle.Sprint(r.Plan.Name), len(r.Plan.Units),
			grayStyle.Sprint(r.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	return sb.String()
}

// formatCoverage renders a coverage analysis with the codes a plan misses.
func formatCoverage(cov planner.Coverage) string {
	var sb strings.Builder
	mark := okStyle.Sprint("✓ complete")
	if !cov.Complete() {
		mark = warnStyle.Sprintf("%.0f%%", cov.Percent())
	}
	fmt.Fprintf(&sb, "%s │ %s\n", boldStyle.Sprintf("⚡ %s │ %d units", cov.Plan, cov.Units), mark)
	fmt.Fprintf(&sb, "  SSBB  %d/%d\n", cov.UsedSSBB, cov.AllSSBB)
	fmt.Fprintf(&sb, "  CEv   %d/%d\n", cov.UsedCEv, cov.AllCEv)
	writeMissing(&sb, "SSBB sin usar", cov.MissingSSBB)
	writeMissing(&sb, "CEv sin usar", cov.MissingCEv)
	if len(cov.UnknownCodes) > 0 {
		fmt.Fprintf(&sb, "  %s %s\n", warnStyle.Sprint("códigos desconocidos:"), strings.Join(cov.UnknownCodes, report.Separator))
	}
	return sb.String()
}

func writeMissing(sb *strings.Builder, title string, items []planner.Labeled) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "  %s\n", classStyle.Sprint(title))
	for _, m := range items {
		fmt.Fprintf(sb, "    %s  %s\n", codeStyle.Sprint(m.Code), grayStyle.Sprint(m.Description))
	}
}

// formatStatus renders the status file of a running or stopped server.
func formatStatus(sd *status.StatusData, running bool) string {
	var sb strings.Builder
	state := warnStyle.Sprint("✗ not running")
	if running {
		state = okStyle.Sprint("✓ running")
	}
	sb.WriteString(boldStyle.Sprint("⚡ curricula server") + "\n")
	fmt.Fprintf(&sb, "  Server:    %s\n", state)
	if sd.Port > 0 {
		fmt.Fprintf(&sb, "  Port:      %d\n", sd.Port)
	}
	fmt.Fprintf(&sb, "  Subjects:  %d loaded of %d\n", sd.Loaded, sd.Subjects)
	if len(sd.Failed) > 0 {
		fmt.Fprintf(&sb, "  Failed:    %s\n", warnStyle.Sprint(strings.Join(sd.Failed, ", ")))
	}
	if len(sd.TopSubjects) > 0 {
		fmt.Fprintf(&sb, "  Largest:   %s\n", strings.Join(sd.TopSubjects, ", "))
	}
	fmt.Fprintf(&sb, "  Reloads:   %d\n", sd.Reloads)
	fmt.Fprintf(&sb, "  Updated:   %s\n", sd.UpdatedAt.Local().Format(time.DateTime))
	return sb.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
