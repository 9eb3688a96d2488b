package core

// inspector.go orchestrates a validation run over a data directory.
//
// A run:
//  1. resolves the requested formats (default: every registered format)
//  2. locates "<format>.csv" in the data directory, case-insensitively
//  3. prepares every sink so output collisions fail before any work
//  4. validates each located file and records missing ones
//  5. runs cross-file checks when every requested format was located
//  6. sorts the issues and hands the run to each sink
//
// Only configuration and output problems abort a run. Problems with a single
// file become issues for that file.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/beadinspect/internal/logging"
)

// StampLayout formats run timestamps in output file names.
const StampLayout = "20060102_150405"

// DefaultSingleErrorLogLimit caps the failing rows kept per issue.
const DefaultSingleErrorLogLimit = 20

// Run-level errors. Match with errors.Is.
var (
	ErrUnknownFormat  = errors.New("unknown format")
	ErrInvalidDataDir = errors.New("invalid data directory")
	ErrInvalidLimit   = errors.New("invalid single error log limit")
	ErrOutputExists   = errors.New("output already exists")
	ErrRunNotFound    = errors.New("run not found")
	ErrRunInProgress  = errors.New("run already in progress")
)

// Options configures a single run.
type Options struct {
	DataDir             string
	Formats             []string // Empty means every registered format
	ResultsDir          string   // Empty means DataDir
	SingleErrorLogLimit int
}

// FormatStats summarizes one requested format.
type FormatStats struct {
	DataFormat string `json:"data_format"`
	TotalRows  *int   `json:"total_rows_in_file"` // nil when the file is missing or failed to load
	Errors     int    `json:"errors"`
	Infos      int    `json:"infos"`
}

// Run is the record of one validation pass.
type Run struct {
	ID                  uuid.UUID         `json:"id"`
	Stamp               string            `json:"stamp"`
	StartedAt           time.Time         `json:"started_at"`
	DataDir             string            `json:"data_dir"`
	ResultsDir          string            `json:"results_dir"`
	Formats             []string          `json:"formats"`
	SingleErrorLogLimit int               `json:"single_error_log_limit"`
	Located             map[string]string `json:"located"`
	Issues              []Issue           `json:"issues"`
	Stats               []FormatStats     `json:"stats"`
	Outputs             map[string]string `json:"outputs"`
}

// Time returns the run time at second precision, as encoded in Stamp.
func (r *Run) Time() time.Time {
	if t, err := time.ParseInLocation(StampLayout, r.Stamp, time.Local); err == nil {
		return t
	}
	return r.StartedAt.Truncate(time.Second)
}

// Sink persists or renders a finished run.
type Sink interface {
	// Name identifies the sink in Run.Outputs and logs.
	Name() string
	// Prepare checks the sink can write this run and returns its location.
	Prepare(run *Run) (string, error)
	// Write persists the run.
	Write(ctx context.Context, run *Run) error
}

// Inspector runs validations and feeds the results to its sinks.
type Inspector struct {
	Sinks []Sink
	Now   func() time.Time
}

// NewInspector creates an inspector writing to the given sinks.
func NewInspector(sinks ...Sink) *Inspector {
	return &Inspector{Sinks: sinks, Now: time.Now}
}

// Inspect validates the data directory described by opts.
func (in *Inspector) Inspect(ctx context.Context, opts Options) (*Run, error) {
	formats, err := resolveFormats(opts.Formats)
	if err != nil {
		return nil, err
	}
	if opts.SingleErrorLogLimit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, opts.SingleErrorLogLimit)
	}

	dataDir, err := filepath.Abs(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataDir, err)
	}
	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidDataDir, dataDir)
	}

	resultsDir := opts.ResultsDir
	if resultsDir == "" {
		resultsDir = dataDir
	}
	if resultsDir, err = filepath.Abs(resultsDir); err != nil {
		return nil, fmt.Errorf("resolve results dir: %w", err)
	}

	now := time.Now
	if in.Now != nil {
		now = in.Now
	}
	started := now()
	run := &Run{
		ID:                  uuid.New(),
		Stamp:               started.Format(StampLayout),
		StartedAt:           started,
		DataDir:             dataDir,
		ResultsDir:          resultsDir,
		Formats:             formats,
		SingleErrorLogLimit: opts.SingleErrorLogLimit,
		Located:             make(map[string]string),
		Issues:              make([]Issue, 0),
		Outputs:             make(map[string]string),
	}

	ctx, logger := logging.WithRun(ctx, run.ID.String(), run.Stamp)
	logger.Info("validation run started", "data_dir", dataDir, "formats", strings.Join(formats, ","))

	for _, sink := range in.Sinks {
		location, err := sink.Prepare(run)
		if err != nil {
			return nil, fmt.Errorf("prepare %s output: %w", sink.Name(), err)
		}
		run.Outputs[sink.Name()] = location
	}

	located, err := locateFiles(dataDir, formats)
	if err != nil {
		return nil, err
	}
	run.Located = located

	results := make(map[string]*FileResult, len(formats))
	for _, name := range formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, ok := located[name]
		if !ok {
			logger.Warn("data file missing", "format", name)
			run.Issues = append(run.Issues, NewIssue(name, LevelError, &MissingDataFileDetails{DataDir: dataDir}))
			continue
		}

		def, _ := Get(name)
		res := ValidateFile(def, path, opts.SingleErrorLogLimit)
		results[name] = res
		run.Issues = append(run.Issues, res.Issues...)
		logFileResult(logger, res)
	}

	run.Issues = append(run.Issues, checkRelationships(logger, formats, located, results)...)

	SortIssues(run.Issues)
	run.Stats = buildStats(formats, results, run.Issues)
	logger.Info("validation run finished", "issues", len(run.Issues))

	for _, sink := range in.Sinks {
		if err := sink.Write(ctx, run); err != nil {
			return run, fmt.Errorf("write %s output: %w", sink.Name(), err)
		}
		logger.Info("output written", "sink", sink.Name(), "location", run.Outputs[sink.Name()])
	}

	return run, nil
}

func logFileResult(logger *slog.Logger, res *FileResult) {
	if !res.Loaded() {
		logger.Warn("data file failed to load", "format", res.Format, "issues", len(res.Issues))
		return
	}
	logger.Info("data file validated",
		"format", res.Format,
		"rows", res.Dataset.Len(),
		"encoding", res.Dataset.Encoding,
		"issues", len(res.Issues),
	)
}

// checkRelationships runs the cross-file checks whose formats were both
// requested and loaded, provided every requested format was located.
func checkRelationships(logger *slog.Logger, formats []string, located map[string]string, results map[string]*FileResult) []Issue {
	if len(located) != len(formats) {
		logger.Info("multi-file checks skipped", "reason", "not every requested data file was found")
		return nil
	}

	var issues []Issue
	for _, rel := range Relationships {
		source, target := results[rel.Source], results[rel.Target]
		if !source.Loaded() || !target.Loaded() {
			continue
		}
		logger.Debug("multi-file check", "source", rel.Source, "target", rel.Target)
		if issue := CheckRelationship(rel, source.Dataset, target.Dataset); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

func buildStats(formats []string, results map[string]*FileResult, issues []Issue) []FormatStats {
	stats := make([]FormatStats, len(formats))
	index := make(map[string]int, len(formats))
	for i, name := range formats {
		stats[i].DataFormat = name
		index[name] = i
		if res := results[name]; res.Loaded() {
			n := res.Dataset.Len()
			stats[i].TotalRows = &n
		}
	}
	for _, issue := range issues {
		i, ok := index[issue.DataFormat]
		if !ok {
			continue
		}
		switch issue.Level {
		case LevelError:
			stats[i].Errors++
		case LevelInfo:
			stats[i].Infos++
		}
	}
	return stats
}

// resolveFormats validates the requested formats and returns them in
// expected-format order without duplicates.
func resolveFormats(requested []string) ([]string, error) {
	all := Names()
	if len(requested) == 0 {
		return all, nil
	}

	want := make(map[string]bool, len(requested))
	var unknown []string
	for _, name := range requested {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := Get(name); !ok {
			unknown = append(unknown, name)
			continue
		}
		want[name] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s (expected one of %s)",
			ErrUnknownFormat, strings.Join(unknown, ", "), strings.Join(all, ", "))
	}
	if len(want) == 0 {
		return all, nil
	}

	formats := make([]string, 0, len(want))
	for _, name := range all {
		if want[name] {
			formats = append(formats, name)
		}
	}
	return formats, nil
}

// locateFiles maps each format to "<format>.csv" in dir, matching names
// case-insensitively. When several files match, the first in sorted order wins.
func locateFiles(dir string, formats []string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataDir, err)
	}

	// os.Stat follows symlinks, so a link to a regular file counts.
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err == nil && info.Mode().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	located := make(map[string]string, len(formats))
	for _, format := range formats {
		want := format + ".csv"
		for _, name := range names {
			if strings.EqualFold(name, want) {
				located[format] = filepath.Join(dir, name)
				break
			}
		}
	}
	return located, nil
}
