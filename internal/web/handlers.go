package web

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/beadinspect/internal/config"
	"github.com/JonMunkholm/beadinspect/internal/core"
	"github.com/JonMunkholm/beadinspect/internal/logging"
	"github.com/JonMunkholm/beadinspect/internal/report"
	"github.com/JonMunkholm/beadinspect/internal/store"
)

// defaultStoredRuns is how many database runs list endpoints return.
const defaultStoredRuns = 50

// RunList is the GET /api/runs response and the data behind the index page.
type RunList struct {
	ResultsDir string            `json:"results_dir"`
	Logs       []store.LogEntry  `json:"logs"`
	Stored     []store.RunRecord `json:"stored,omitempty"`
}

// RunSummary is the POST /api/runs response.
type RunSummary struct {
	ID         string             `json:"id"`
	Stamp      string             `json:"stamp"`
	StartedAt  time.Time          `json:"started_at"`
	DataDir    string             `json:"data_dir"`
	ResultsDir string             `json:"results_dir"`
	Formats    []string           `json:"formats"`
	IssueCount int                `json:"issue_count"`
	Stats      []core.FormatStats `json:"stats"`
	Outputs    map[string]string  `json:"outputs"`
}

func newRunSummary(run *core.Run) RunSummary {
	return RunSummary{
		ID:         run.ID.String(),
		Stamp:      run.Stamp,
		StartedAt:  run.StartedAt,
		DataDir:    run.DataDir,
		ResultsDir: run.ResultsDir,
		Formats:    run.Formats,
		IssueCount: len(run.Issues),
		Stats:      run.Stats,
		Outputs:    run.Outputs,
	}
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// handleHealth reports liveness and what the server can serve.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"formats":    core.FormatCount(),
		"database":   s.runs != nil,
		"run_active": s.limiter.Busy(),
	})
}

// handleFormats documents the registered formats and their validators.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.DescribeCatalog())
}

func (s *Server) listRuns(r *http.Request) (*RunList, error) {
	dir := s.resultsDir()
	logs, err := store.ListIssueLogs(dir)
	if err != nil {
		return nil, err
	}
	list := &RunList{ResultsDir: dir, Logs: logs}

	if s.runs != nil {
		stored, err := s.runs.ListRuns(r.Context(), parseIntParam(r, "limit", defaultStoredRuns))
		if err != nil {
			return nil, err
		}
		list.Stored = stored
	}
	return list, nil
}

// handleIndex renders the list of past runs.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.listRuns(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderHTML(w, r, http.StatusOK, RunsPage(list))
}

// handleListRuns returns the runs found on disk and in the database.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	list, err := s.listRuns(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// loadIssues reads a run's issues from its log, falling back to the database.
func (s *Server) loadIssues(ctx context.Context, stamp string) ([]core.Issue, error) {
	path, err := store.FindIssueLog(s.resultsDir(), stamp)
	if err == nil {
		return store.ReadIssueLog(path)
	}
	if s.runs == nil || !store.ValidStamp(stamp) {
		return nil, err
	}
	logging.FromContext(ctx).Debug("issue log missing, reading stored run", "stamp", stamp)
	return s.runs.RunIssues(ctx, stamp)
}

// handleRunIssues returns the issue array of one run.
func (s *Server) handleRunIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.loadIssues(r.Context(), chi.URLParam(r, "stamp"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if issues == nil {
		issues = []core.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

// handleRunReport renders the HTML report for one run.
func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	stamp := chi.URLParam(r, "stamp")
	issues, err := s.loadIssues(r.Context(), stamp)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	doc, err := report.FromLog(stamp, issues)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderHTML(w, r, http.StatusOK, report.Page(doc))
}

// handleStartRun validates the configured data directory.
//
// Query parameters:
//   - formats: comma-separated subset of formats (default: configured formats)
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	defer s.limiter.Release()

	formats := s.cfg.Inspector.Formats
	if q := r.URL.Query().Get("formats"); q != "" {
		formats = config.SplitList(q)
	}

	run, err := s.inspector.Inspect(r.Context(), core.Options{
		DataDir:             s.cfg.Inspector.DataDir,
		Formats:             formats,
		ResultsDir:          s.cfg.Inspector.ResultsDir,
		SingleErrorLogLimit: s.cfg.Inspector.SingleErrorLogLimit,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("http run finished",
		"run_id", run.ID.String(),
		"issues", len(run.Issues),
	)
	writeJSON(w, http.StatusCreated, newRunSummary(run))
}

// renderHTML renders c fully before writing so a failed render still yields
// a clean error response.
func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
