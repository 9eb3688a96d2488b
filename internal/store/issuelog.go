package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/JonMunkholm/beadinspect/internal/core"
	"github.com/JonMunkholm/beadinspect/internal/logging"
)

const (
	// LogsDir is the results subdirectory holding issue logs.
	LogsDir = "logs"

	issueLogPrefix = "validation_issue_logs_"
)

var (
	issueLogName = regexp.MustCompile(`^validation_issue_logs_(\d{8}_\d{6})\.json$`)
	stampPattern = regexp.MustCompile(`^\d{8}_\d{6}$`)
)

// IssueLogPath returns where the issue log for stamp lives under resultsDir.
func IssueLogPath(resultsDir, stamp string) string {
	return filepath.Join(resultsDir, LogsDir, issueLogPrefix+stamp+".json")
}

// IssueLog writes each run's sorted issues as a JSON array to
// <results>/logs/validation_issue_logs_<stamp>.json.
type IssueLog struct{}

// NewIssueLog creates the issue log sink.
func NewIssueLog() *IssueLog {
	return &IssueLog{}
}

func (l *IssueLog) Name() string { return "issue_log" }

// Prepare creates the logs directory and claims the output name.
func (l *IssueLog) Prepare(run *core.Run) (string, error) {
	return PrepareOutput(filepath.Join(run.ResultsDir, LogsDir), issueLogPrefix+run.Stamp+".json")
}

// Write encodes the issues with four-space indentation.
func (l *IssueLog) Write(ctx context.Context, run *core.Run) error {
	issues := run.Issues
	if issues == nil {
		issues = []core.Issue{}
	}
	data, err := json.MarshalIndent(issues, "", "    ")
	if err != nil {
		return fmt.Errorf("encode issues: %w", err)
	}
	data = append(data, '\n')

	path := IssueLogPath(run.ResultsDir, run.Stamp)
	if err := WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write issue log: %w", err)
	}
	logging.FromContext(ctx).Debug("issue log written", "file", path, "issues", len(issues), "bytes", len(data))
	return nil
}

// ReadIssueLog decodes an issue log written by IssueLog.
func ReadIssueLog(path string) ([]core.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, path)
		}
		return nil, fmt.Errorf("read issue log: %w", err)
	}

	var issues []core.Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("decode issue log %s: %w", path, err)
	}
	return issues, nil
}

// LogEntry describes one issue log on disk.
type LogEntry struct {
	Stamp string    `json:"stamp"`
	Time  time.Time `json:"time"`
	Path  string    `json:"path"`
}

// ListIssueLogs returns the issue logs under resultsDir, newest first.
// A results directory without logs yields an empty list.
func ListIssueLogs(resultsDir string) ([]LogEntry, error) {
	entries, err := os.ReadDir(filepath.Join(resultsDir, LogsDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []LogEntry{}, nil
		}
		return nil, fmt.Errorf("list issue logs: %w", err)
	}

	logs := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		m := issueLogName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		t, err := time.ParseInLocation(core.StampLayout, m[1], time.Local)
		if err != nil {
			continue
		}
		logs = append(logs, LogEntry{
			Stamp: m[1],
			Time:  t,
			Path:  filepath.Join(resultsDir, LogsDir, e.Name()),
		})
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].Stamp > logs[j].Stamp })
	return logs, nil
}

// FindIssueLog returns the issue log path for stamp, or ErrRunNotFound.
func FindIssueLog(resultsDir, stamp string) (string, error) {
	if !ValidStamp(stamp) {
		return "", fmt.Errorf("%w: %q", core.ErrRunNotFound, stamp)
	}
	path := IssueLogPath(resultsDir, stamp)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", core.ErrRunNotFound, stamp)
	}
	return path, nil
}

// ValidStamp reports whether s has the run stamp shape.
func ValidStamp(s string) bool {
	return stampPattern.MatchString(s)
}
