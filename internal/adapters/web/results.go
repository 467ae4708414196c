package web

import (
	"context"
	"time"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/domain/planner"
	"github.com/corey/curricula/internal/domain/report"
	"github.com/corey/curricula/internal/ports"
)

// AppQueries is the slice of the app the HTTP API serves. Subject lookups
// fail with ports.ErrUnknownSubject; plan lookups with ports.ErrPlanNotFound.
type AppQueries interface {
	Subjects() []SubjectInfo
	Index(subject string) (*curriculum.Index, error)
	Normalize(subject string, tokens []string) ([]string, error)
	Generate(subject string, tokens []string) (*report.Bundle, error)
	Export(ctx context.Context, subject, codesRaw string, tokens []string) (*ports.ExportJob, error)
	Jobs(subject string, limit int) ([]*ports.ExportJob, error)
	SavePlan(plan *planner.Plan) error
	Plans(subject string) ([]*ports.PlanRecord, error)
	Plan(subject, name string) (*ports.PlanRecord, error)
	DeletePlan(subject, name string) error
	Coverage(subject string, plan *planner.Plan) (planner.Coverage, error)
}

// SubjectInfo describes one catalog subject and its loaded dataset.
type SubjectInfo struct {
	Code     string         `json:"code"`
	Name     string         `json:"name"`
	Dataset  string         `json:"dataset"`
	Active   bool           `json:"active"`
	Loaded   bool           `json:"loaded"`
	LoadedAt time.Time      `json:"loaded_at,omitzero"`
	Counts   map[string]int `json:"counts,omitempty"`
	Dangling int            `json:"dangling,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// HealthResult is the response of GET /api/health.
type HealthResult struct {
	Status   string `json:"status"`
	Subjects int    `json:"subjects"`
	Loaded   int    `json:"loaded"`
	Uptime   string `json:"uptime"`
}

// SubjectsResult is the response of GET /api/subjects.
type SubjectsResult struct {
	Subjects []SubjectInfo `json:"subjects"`
	Count    int           `json:"count"`
}

// CodesResult is the response of GET /api/subjects/{code}/codes.
type CodesResult struct {
	Query string                 `json:"query"`
	Codes []curriculum.CodeEntry `json:"codes"`
	Count int                    `json:"count"`
}

// NormalizeResult is the response of POST /api/subjects/{code}/normalize.
type NormalizeResult struct {
	Codes []string `json:"codes"`
}

// JobsResult is the response of GET /api/subjects/{code}/jobs.
type JobsResult struct {
	Jobs  []*ports.ExportJob `json:"jobs"`
	Count int                `json:"count"`
}

// PlansResult is the response of GET /api/subjects/{code}/plans.
type PlansResult struct {
	Plans []*ports.PlanRecord `json:"plans"`
	Count int                 `json:"count"`
}

// ErrorResult is the body of every non-2xx response.
type ErrorResult struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// CodesRequest is the body of code-taking endpoints. Codes is free text;
// CodesList wins when both are set.
type CodesRequest struct {
	Codes     string   `json:"codes"`
	CodesList []string `json:"codes_list"`
}

// tokens splits the request into raw tokens.
func (r CodesRequest) tokens() []string {
	if len(r.CodesList) > 0 {
		return r.CodesList
	}
	return curriculum.SplitTokens(r.Codes)
}

// raw renders the request as the free text recorded on export jobs.
func (r CodesRequest) raw() string {
	if len(r.CodesList) > 0 {
		return joinTokens(r.CodesList)
	}
	return r.Codes
}
