package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/beadinspect/internal/config"
	"github.com/JonMunkholm/beadinspect/internal/core"
	_ "github.com/JonMunkholm/beadinspect/internal/core/formats"
	"github.com/JonMunkholm/beadinspect/internal/store"
	mw "github.com/JonMunkholm/beadinspect/internal/web/middleware"
)

const testStamp = "20240305_140709"

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		Inspector: config.InspectorConfig{
			DataDir:             dataDir,
			SingleErrorLogLimit: core.DefaultSingleErrorLogLimit,
		},
		Server: config.ServerConfig{RequestTimeout: time.Minute},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, runs RunStore) *Server {
	t.Helper()
	in := core.NewInspector(store.NewIssueLog())
	in.Now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local) }
	return NewServer(cfg, in, runs)
}

func do(s *Server, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestStartRunAndBrowse(t *testing.T) {
	dataDir := t.TempDir()
	s := newTestServer(t, testConfig(dataDir), nil)

	rec := do(s, http.MethodPost, "/api/runs", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/runs = %d: %s", rec.Code, rec.Body.String())
	}
	summary := decode[RunSummary](t, rec)
	if summary.Stamp != testStamp {
		t.Errorf("Stamp = %q, want %q", summary.Stamp, testStamp)
	}
	if summary.IssueCount != core.FormatCount() {
		t.Errorf("IssueCount = %d, want one missing-file issue per format (%d)", summary.IssueCount, core.FormatCount())
	}
	if want := store.IssueLogPath(dataDir, testStamp); summary.Outputs["issue_log"] != want {
		t.Errorf("issue_log output = %q, want %q", summary.Outputs["issue_log"], want)
	}

	rec = do(s, http.MethodGet, "/api/runs", nil)
	list := decode[RunList](t, rec)
	if len(list.Logs) != 1 || list.Logs[0].Stamp != testStamp {
		t.Errorf("GET /api/runs logs = %+v", list.Logs)
	}
	if list.Stored != nil {
		t.Error("stored runs listed without a database")
	}

	rec = do(s, http.MethodGet, "/api/runs/"+testStamp+"/issues", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET issues = %d: %s", rec.Code, rec.Body.String())
	}
	issues := decode[[]core.Issue](t, rec)
	if len(issues) != summary.IssueCount || issues[0].Type != core.IssueMissingDataFile {
		t.Errorf("issues = %+v", issues)
	}

	rec = do(s, http.MethodGet, "/runs/"+testStamp, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET report = %d", rec.Code)
	}
	page := rec.Body.String()
	for _, want := range []string{
		"BEAD Data Validation Results from the 2024-03-05 14:07:09 run:",
		"Data file not found",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("report missing %q", want)
		}
	}

	rec = do(s, http.MethodGet, "/", nil)
	if !strings.Contains(rec.Body.String(), `href="/runs/`+testStamp+`"`) {
		t.Errorf("index does not link the run:\n%s", rec.Body.String())
	}

	rec = do(s, http.MethodPost, "/api/runs", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second POST = %d, want 409", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "RUN001" {
		t.Errorf("second POST code = %q, want RUN001", got.Code)
	}
}

func TestStartRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		setup    func(*Server)
		wantCode int
		wantErr  string
	}{
		{
			name:     "unknown format",
			target:   "/api/runs?formats=challenges,widgets",
			wantCode: http.StatusBadRequest,
			wantErr:  "RUN002",
		},
		{
			name:     "run in progress",
			target:   "/api/runs",
			setup:    func(s *Server) { s.limiter.TryAcquire() },
			wantCode: http.StatusConflict,
			wantErr:  "RUN006",
		},
		{
			name:   "missing data dir",
			target: "/api/runs",
			setup: func(s *Server) {
				s.cfg.Inspector.DataDir = filepath.Join(s.cfg.Inspector.DataDir, "nope")
			},
			wantCode: http.StatusInternalServerError,
			wantErr:  "RUN003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testConfig(t.TempDir()), nil)
			if tt.setup != nil {
				tt.setup(s)
			}
			rec := do(s, http.MethodPost, tt.target, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", got.Code, tt.wantErr)
			}
		})
	}
}

func TestStartRun_FormatSubset(t *testing.T) {
	s := newTestServer(t, testConfig(t.TempDir()), nil)

	rec := do(s, http.MethodPost, "/api/runs?formats=challengers,+challenges", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	summary := decode[RunSummary](t, rec)
	if len(summary.Formats) != 2 || summary.IssueCount != 2 {
		t.Errorf("summary = %+v, want two formats and two issues", summary)
	}
}

func TestStartRun_APIKey(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Server.APIKeys = []string{"s3cret"}
	s := newTestServer(t, cfg, nil)

	if rec := do(s, http.MethodPost, "/api/runs", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("POST without key = %d, want 401", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/api/runs", nil); rec.Code != http.StatusOK {
		t.Errorf("GET without key = %d, want 200", rec.Code)
	}
	rec := do(s, http.MethodPost, "/api/runs", http.Header{mw.APIKeyHeader: {"s3cret"}})
	if rec.Code != http.StatusCreated {
		t.Errorf("POST with key = %d, want 201", rec.Code)
	}
}

func TestRunNotFound(t *testing.T) {
	s := newTestServer(t, testConfig(t.TempDir()), nil)

	rec := do(s, http.MethodGet, "/runs/20990101_000000", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET report = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want html", ct)
	}
	if !strings.Contains(rec.Body.String(), "RUN005") {
		t.Errorf("error page missing code:\n%s", rec.Body.String())
	}

	rec = do(s, http.MethodGet, "/runs/20990101_000000", http.Header{"Accept": {"application/json"}})
	if got := decode[ErrorResponse](t, rec); got.Code != "RUN005" {
		t.Errorf("json error code = %q", got.Code)
	}

	rec = do(s, http.MethodGet, "/api/runs/../../etc/issues", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET traversal = %d, want 404", rec.Code)
	}
}

type fakeRuns struct {
	records []store.RunRecord
	issues  map[string][]core.Issue
}

func (f *fakeRuns) ListRuns(_ context.Context, limit int) ([]store.RunRecord, error) {
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeRuns) RunIssues(_ context.Context, stamp string) ([]core.Issue, error) {
	issues, ok := f.issues[stamp]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, stamp)
	}
	return issues, nil
}

func TestRunStoreFallback(t *testing.T) {
	const stamp = "20240101_120000"
	runs := &fakeRuns{
		records: []store.RunRecord{
			{Stamp: stamp, DataDir: "/srv/bead", Formats: []string{"cai"}, IssueCount: 1},
			{Stamp: "20231231_120000", DataDir: "/srv/bead", Formats: []string{"cai"}},
		},
		issues: map[string][]core.Issue{
			stamp: {core.NewIssue("cai", core.LevelError, &core.MissingDataFileDetails{DataDir: "/srv/bead"})},
		},
	}
	s := newTestServer(t, testConfig(t.TempDir()), runs)

	rec := do(s, http.MethodGet, "/api/runs/"+stamp+"/issues", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET issues = %d: %s", rec.Code, rec.Body.String())
	}
	if issues := decode[[]core.Issue](t, rec); len(issues) != 1 || issues[0].DataFormat != "cai" {
		t.Errorf("issues = %+v", issues)
	}

	list := decode[RunList](t, do(s, http.MethodGet, "/api/runs?limit=1", nil))
	if len(list.Stored) != 1 || list.Stored[0].Stamp != stamp {
		t.Errorf("stored = %+v", list.Stored)
	}

	if rec := do(s, http.MethodGet, "/", nil); !strings.Contains(rec.Body.String(), "Stored runs") {
		t.Error("index does not show stored runs")
	}

	if rec := do(s, http.MethodGet, "/api/runs/20200101_000000/issues", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown stored stamp = %d, want 404", rec.Code)
	}
}

func TestHealthAndHeaders(t *testing.T) {
	s := newTestServer(t, testConfig(t.TempDir()), nil)

	rec := do(s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d", rec.Code)
	}
	health := decode[map[string]any](t, rec)
	if health["status"] != "ok" || health["database"] != false {
		t.Errorf("health = %v", health)
	}
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "script-src 'none'") {
		t.Errorf("Content-Security-Policy = %q", csp)
	}
}

func TestFormats(t *testing.T) {
	s := newTestServer(t, testConfig(t.TempDir()), nil)

	cat := decode[core.Catalog](t, do(s, http.MethodGet, "/api/formats", nil))
	if len(cat.Formats) != core.FormatCount() {
		t.Fatalf("formats = %d, want %d", len(cat.Formats), core.FormatCount())
	}
	if cat.Formats[0].Name != "challengers" {
		t.Errorf("first format = %q, want challengers", cat.Formats[0].Name)
	}
	var headerless int
	for _, f := range cat.Formats {
		if f.Headerless {
			headerless++
		}
	}
	if headerless == 0 {
		t.Error("no headerless format documented")
	}
	if len(cat.Validators) == 0 {
		t.Error("no validators documented")
	}
}
