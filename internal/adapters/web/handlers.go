package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/domain/planner"
	"github.com/corey/curricula/internal/ports"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func joinTokens(tokens []string) string { return strings.Join(tokens, ", ") }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses: bad codes and plans are
// 400, unknown subjects and plans 404, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, curriculum.ErrAmbiguousCode),
		errors.Is(err, curriculum.ErrNotFound),
		errors.Is(err, planner.ErrInvalidPlan):
		status = http.StatusBadRequest
	case errors.Is(err, ports.ErrUnknownSubject),
		errors.Is(err, ports.ErrPlanNotFound):
		status = http.StatusNotFound
	}

	res := ErrorResult{Error: err.Error()}
	var nerr *curriculum.NormalizationError
	if errors.As(err, &nerr) {
		for _, e := range nerr.Errs {
			res.Details = append(res.Details, e.Error())
		}
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, res)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func (s *Server) decodeCodes(r *http.Request) (CodesRequest, error) {
	var req CodesRequest
	if err := decodeBody(r, &req); err != nil {
		return req, err
	}
	if len(req.tokens()) == 0 {
		return req, fmt.Errorf("%w: no codes given", errBadRequest)
	}
	return req, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	subjects := s.queries.Subjects()
	loaded := 0
	for _, info := range subjects {
		if info.Loaded {
			loaded++
		}
	}
	writeJSON(w, http.StatusOK, HealthResult{
		Status:   "ok",
		Subjects: len(subjects),
		Loaded:   loaded,
		Uptime:   time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects := s.queries.Subjects()
	writeJSON(w, http.StatusOK, SubjectsResult{Subjects: subjects, Count: len(subjects)})
}

func (s *Server) handleCodes(w http.ResponseWriter, r *http.Request) {
	idx, err := s.queries.Index(r.PathValue("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := r.URL.Query().Get("q")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			s.writeError(w, fmt.Errorf("%w: limit %q", errBadRequest, v))
			return
		}
	}
	codes := curriculum.Search(idx, q, limit)
	writeJSON(w, http.StatusOK, CodesResult{Query: q, Codes: codes, Count: len(codes)})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("code")
	req, err := s.decodeCodes(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	codes, err := s.queries.Normalize(subject, req.tokens())
	if err != nil {
		s.countNormalizeFailure(subject, err)
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NormalizeResult{Codes: codes})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("code")
	req, err := s.decodeCodes(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	bundle, err := s.queries.Generate(subject, req.tokens())
	if err != nil {
		s.countNormalizeFailure(subject, err)
		s.writeError(w, err)
		return
	}
	s.metrics.reports.WithLabelValues(subject, "report").Inc()
	writeJSON(w, http.StatusOK, bundle)
}

// handleExport writes the workbook and streams it back. The job is recorded
// by the app whether or not the export succeeds.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("code")
	req, err := s.decodeCodes(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	job, err := s.queries.Export(r.Context(), subject, req.raw(), req.tokens())
	if err != nil {
		s.countNormalizeFailure(subject, err)
		s.writeError(w, err)
		return
	}
	data, err := os.ReadFile(job.OutputPath)
	if err != nil {
		s.writeError(w, fmt.Errorf("read export: %w", err))
		return
	}
	s.metrics.reports.WithLabelValues(subject, "export").Inc()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(job.OutputPath)))
	w.Header().Set("X-Job-ID", job.ID)
	w.Write(data)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: limit %q", errBadRequest, v))
			return
		}
		limit = n
	}
	jobs, err := s.queries.Jobs(r.PathValue("code"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if jobs == nil {
		jobs = []*ports.ExportJob{}
	}
	writeJSON(w, http.StatusOK, JobsResult{Jobs: jobs, Count: len(jobs)})
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.queries.Plans(r.PathValue("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if plans == nil {
		plans = []*ports.PlanRecord{}
	}
	writeJSON(w, http.StatusOK, PlansResult{Plans: plans, Count: len(plans)})
}

func (s *Server) handleSavePlan(w http.ResponseWriter, r *http.Request) {
	var plan planner.Plan
	if err := decodeBody(r, &plan); err != nil {
		s.writeError(w, err)
		return
	}
	plan.Subject = r.PathValue("code")
	if err := s.queries.SavePlan(&plan); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	rec, err := s.queries.Plan(r.PathValue("code"), r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.queries.DeletePlan(r.PathValue("code"), r.PathValue("name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCoverage analyzes the posted plan. A body naming a plan without
// units analyzes the stored plan of that name.
func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("code")
	var plan planner.Plan
	if err := decodeBody(r, &plan); err != nil {
		s.writeError(w, err)
		return
	}
	if len(plan.Units) == 0 && plan.Name != "" {
		rec, err := s.queries.Plan(subject, plan.Name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		plan = rec.Plan
	}
	plan.Subject = subject
	cov, err := s.queries.Coverage(subject, &plan)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cov)
}

func (s *Server) countNormalizeFailure(subject string, err error) {
	if errors.Is(err, curriculum.ErrAmbiguousCode) || errors.Is(err, curriculum.ErrNotFound) {
		s.metrics.normalizeFails.WithLabelValues(subject).Inc()
	}
}
