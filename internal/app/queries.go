package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/domain/planner"
	"github.com/corey/curricula/internal/domain/report"
	"github.com/corey/curricula/internal/ports"
)

// exportTimeLayout stamps export filenames to the minute.
const exportTimeLayout = "2006-01-02_15-04"

// Normalize resolves raw tokens to canonical codes of a subject.
// Implements web.AppQueries.
func (a *App) Normalize(code string, tokens []string) ([]string, error) {
	idx, err := a.Index(code)
	if err != nil {
		return nil, err
	}
	return curriculum.NormalizeCodes(tokens, idx)
}

// Generate normalizes tokens and builds the three reports.
// Implements web.AppQueries.
func (a *App) Generate(code string, tokens []string) (*report.Bundle, error) {
	idx, err := a.Index(code)
	if err != nil {
		return nil, err
	}
	codes, err := curriculum.NormalizeCodes(tokens, idx)
	if err != nil {
		return nil, err
	}
	return report.Generate(codes, idx), nil
}

// Export writes the report workbook for tokens under .curricula/exports/.
// codesRaw is only recorded on the job. Implements web.AppQueries.
func (a *App) Export(ctx context.Context, code, codesRaw string, tokens []string) (*ports.ExportJob, error) {
	return a.ExportFile(ctx, code, codesRaw, tokens, "")
}

// ExportFile writes the report workbook to outPath, or to a timestamped file
// under .curricula/exports/ when outPath is empty. Every attempt on a known
// subject is recorded as a job when a store is open; the job is returned
// alongside any error.
func (a *App) ExportFile(ctx context.Context, code, codesRaw string, tokens []string, outPath string) (*ports.ExportJob, error) {
	if _, err := a.subject(code); err != nil {
		return nil, err
	}
	job := &ports.ExportJob{
		ID:        uuid.NewString(),
		Subject:   code,
		CodesRaw:  codesRaw,
		CreatedAt: a.now(),
	}
	if outPath == "" {
		name := fmt.Sprintf("export_%s_%s.xlsx", code, job.CreatedAt.Format(exportTimeLayout))
		outPath = filepath.Join(a.Paths.ExportsDir, name)
	}

	err := a.export(ctx, code, tokens, outPath)
	if err != nil {
		job.Status = ports.JobFailed
		job.ErrorMessage = truncate(err.Error(), ports.MaxJobError)
	} else {
		job.Status = ports.JobSuccess
		job.OutputPath = outPath
	}
	if a.Store != nil {
		if serr := a.Store.SaveJob(job); serr != nil {
			a.log.Warn("record export job", "id", job.ID, "err", serr)
		}
	}
	if err != nil {
		return job, err
	}
	a.log.Info("export written", "subject", code, "path", outPath, "id", job.ID)
	return job, nil
}

// export writes to a temp file in the target directory and renames it into
// place, so readers never see a partial workbook.
func (a *App) export(ctx context.Context, code string, tokens []string, outPath string) error {
	bundle, err := a.Generate(code, tokens)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.xlsx")
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := a.Exporter.Export(tmp, bundle); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// Jobs lists a subject's export jobs, newest first.
// Implements web.AppQueries.
func (a *App) Jobs(code string, limit int) ([]*ports.ExportJob, error) {
	if _, err := a.subject(code); err != nil {
		return nil, err
	}
	if a.Store == nil {
		return nil, ErrNoStore
	}
	return a.Store.ListJobs(code, limit)
}

// SavePlan validates and stores a plan under its subject.
// Implements web.AppQueries.
func (a *App) SavePlan(plan *planner.Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	if _, err := a.subject(plan.Subject); err != nil {
		return err
	}
	if a.Store == nil {
		return ErrNoStore
	}
	return a.Store.SavePlan(&ports.PlanRecord{Plan: *plan, UpdatedAt: a.now()})
}

// Plans lists a subject's plans by name. Implements web.AppQueries.
func (a *App) Plans(code string) ([]*ports.PlanRecord, error) {
	if _, err := a.subject(code); err != nil {
		return nil, err
	}
	if a.Store == nil {
		return nil, ErrNoStore
	}
	return a.Store.ListPlans(code)
}

// Plan returns one stored plan. Implements web.AppQueries.
func (a *App) Plan(code, name string) (*ports.PlanRecord, error) {
	if _, err := a.subject(code); err != nil {
		return nil, err
	}
	if a.Store == nil {
		return nil, ErrNoStore
	}
	rec, err := a.Store.LoadPlan(code, name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %q", ports.ErrPlanNotFound, name)
	}
	return rec, nil
}

// DeletePlan removes a stored plan. Deleting a missing plan is not an error.
// Implements web.AppQueries.
func (a *App) DeletePlan(code, name string) error {
	if _, err := a.subject(code); err != nil {
		return err
	}
	if a.Store == nil {
		return ErrNoStore
	}
	return a.Store.DeletePlan(code, name)
}

// Coverage analyzes a plan against a subject's index.
// Implements web.AppQueries.
func (a *App) Coverage(code string, plan *planner.Plan) (planner.Coverage, error) {
	if err := plan.Validate(); err != nil {
		return planner.Coverage{}, err
	}
	idx, err := a.Index(code)
	if err != nil {
		return planner.Coverage{}, err
	}
	return planner.Analyze(plan, idx), nil
}
