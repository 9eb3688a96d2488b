package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/beadinspect/internal/core"
)

// isolateEnv keeps host settings out of the command under test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"BEAD_DATA_DIR", "BEAD_FORMATS", "BEAD_RESULTS_DIR", "BEAD_SINGLE_ERROR_LOG_LIMIT", "BEAD_WRITE_REPORT",
		"DATABASE_URL", "DB_URL", "LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut, false)
	return code, out.String(), errOut.String()
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestValidate(t *testing.T) {
	isolateEnv(t)
	dataDir, resultsDir := t.TempDir(), t.TempDir()

	code, stdout, stderr := execute(t, "validate", dataDir,
		"--files", "challengers,challenges",
		"--results-dir", resultsDir,
		"-s", "5",
	)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "Number of issues (or types of issues) found: 2\n") {
		t.Errorf("stdout = %q", stdout)
	}

	logs := dirEntries(t, filepath.Join(resultsDir, "logs"))
	if len(logs) != 1 || !strings.HasPrefix(logs[0], "validation_issue_logs_") {
		t.Errorf("logs = %v", logs)
	}
	reports := dirEntries(t, filepath.Join(resultsDir, "reports"))
	if len(reports) != 1 || !strings.HasPrefix(reports[0], "BEAD_Data_Validation_Report_") {
		t.Errorf("reports = %v", reports)
	}
	if !strings.Contains(stdout, "issue_log: "+filepath.Join(resultsDir, "logs", logs[0])) {
		t.Errorf("stdout does not name the issue log: %q", stdout)
	}
	if dirEntries(t, filepath.Join(dataDir, "logs")) != nil {
		t.Error("outputs written to the data directory despite --results-dir")
	}
}

func TestValidate_NoReport(t *testing.T) {
	isolateEnv(t)
	dataDir := t.TempDir()

	code, _, stderr := execute(t, "validate", dataDir, "--files", "cai", "--no-report")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	if got := dirEntries(t, filepath.Join(dataDir, "logs")); len(got) != 1 {
		t.Errorf("logs = %v, want one issue log", got)
	}
	if got := dirEntries(t, filepath.Join(dataDir, "reports")); got != nil {
		t.Errorf("reports = %v, want none", got)
	}
}

func TestValidate_DataDirFromEnv(t *testing.T) {
	isolateEnv(t)
	dataDir := t.TempDir()
	t.Setenv("BEAD_DATA_DIR", dataDir)
	t.Setenv("BEAD_FORMATS", "unserved")

	code, stdout, stderr := execute(t, "validate", "--no-report")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "found: 1\n") {
		t.Errorf("stdout = %q, want one missing-file issue", stdout)
	}
}

func TestValidate_FatalErrors(t *testing.T) {
	isolateEnv(t)
	dataDir := t.TempDir()
	notADir := filepath.Join(dataDir, "file.csv")
	if err := os.WriteFile(notADir, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"unknown format", []string{"validate", dataDir, "--files", "widgets"}, "RUN002"},
		{"missing directory", []string{"validate", filepath.Join(dataDir, "nope")}, "RUN003"},
		{"file as directory", []string{"validate", notADir}, "RUN003"},
		{"no directory", []string{"validate"}, "RUN003"},
		{"negative limit", []string{"validate", dataDir, "--single-error-log-limit=-1"}, "RUN004"},
		{"results dir is a file", []string{"validate", dataDir, "--results-dir", notADir}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := execute(t, tt.args...)
			if code != 1 {
				t.Fatalf("exit = %d, want 1 (stdout %q)", code, stdout)
			}
			if !strings.HasPrefix(stderr, "Error: ") {
				t.Errorf("stderr = %q", stderr)
			}
			if tt.wantCode != "" && !strings.Contains(stderr, "(Code: "+tt.wantCode+")") {
				t.Errorf("stderr = %q, want code %s", stderr, tt.wantCode)
			}
		})
	}
}

func TestConfigFileErrors(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "beadinspect.yaml")
	if err := os.WriteFile(path, []byte("inspector:\n  colour: blue\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := execute(t, "validate", t.TempDir(), "--config", path)
	if code != 1 || !strings.Contains(stderr, "colour") {
		t.Errorf("exit = %d, stderr = %q", code, stderr)
	}
}

func TestFormats(t *testing.T) {
	isolateEnv(t)

	code, stdout, _ := execute(t, "formats")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != core.FormatCount()+1 || !strings.HasPrefix(lines[0], "FORMAT") {
		t.Fatalf("formats output:\n%s", stdout)
	}
	if !strings.HasPrefix(lines[1], "challengers ") {
		t.Errorf("first format line = %q", lines[1])
	}

	code, stdout, _ = execute(t, "formats", "--yaml")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	var cat core.Catalog
	if err := yaml.Unmarshal([]byte(stdout), &cat); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if len(cat.Formats) != core.FormatCount() || len(cat.Validators) == 0 {
		t.Errorf("catalog has %d formats and %d validators", len(cat.Formats), len(cat.Validators))
	}
}
