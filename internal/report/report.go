// Package report renders validation runs as a standalone HTML page.
//
// The page opens with per-level summary tables, then a table of contents
// grouped by level and format, then one section per issue. Sections for
// column checks show the failing rows, whether the list is complete, and the
// values the check accepts.
package report

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/beadinspect/internal/core"
	"github.com/JonMunkholm/beadinspect/internal/store"
)

const (
	// ReportsDir is the results subdirectory holding rendered reports.
	ReportsDir = "reports"

	// DefaultMaxIDChars caps id values shown in failing-row tables.
	DefaultMaxIDChars = 100

	fileNamePrefix = "BEAD_Data_Validation_Report_"
)

// FileName returns the report file name for a run stamp.
func FileName(stamp string) string {
	return fileNamePrefix + stamp + ".html"
}

// Path returns where the report for stamp lives under resultsDir.
func Path(resultsDir, stamp string) string {
	return filepath.Join(resultsDir, ReportsDir, FileName(stamp))
}

// Document is everything a report page shows.
type Document struct {
	RunTime    time.Time
	Formats    []string           // Rows of the summary tables
	Stats      []core.FormatStats // Nil when rendering a log without run stats
	Issues     []core.Issue       // Sorted
	MaxIDChars int
}

// FromRun builds a document for a finished run.
func FromRun(run *core.Run) *Document {
	return &Document{
		RunTime:    run.Time(),
		Formats:    run.Formats,
		Stats:      run.Stats,
		Issues:     run.Issues,
		MaxIDChars: DefaultMaxIDChars,
	}
}

// FromLog builds a document from an issue log read back from disk. Without
// run stats the summary covers every registered format and omits row counts.
func FromLog(stamp string, issues []core.Issue) (*Document, error) {
	t, err := time.ParseInLocation(core.StampLayout, stamp, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", core.ErrRunNotFound, stamp)
	}
	sorted := make([]core.Issue, len(issues))
	copy(sorted, issues)
	core.SortIssues(sorted)

	return &Document{
		RunTime:    t,
		Formats:    core.Names(),
		Issues:     sorted,
		MaxIDChars: DefaultMaxIDChars,
	}, nil
}

// Writer is the run sink that renders the HTML report.
type Writer struct {
	MaxIDChars int
}

// NewWriter creates a report sink with the default id truncation.
func NewWriter() *Writer {
	return &Writer{MaxIDChars: DefaultMaxIDChars}
}

func (w *Writer) Name() string { return "report" }

// Prepare creates the reports directory and claims the output name.
func (w *Writer) Prepare(run *core.Run) (string, error) {
	return store.PrepareOutput(filepath.Join(run.ResultsDir, ReportsDir), FileName(run.Stamp))
}

// Write renders the run and writes the page atomically.
func (w *Writer) Write(ctx context.Context, run *core.Run) error {
	doc := FromRun(run)
	if w.MaxIDChars > 0 {
		doc.MaxIDChars = w.MaxIDChars
	}

	var buf bytes.Buffer
	if err := Page(doc).Render(ctx, &buf); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := store.WriteFileAtomic(Path(run.ResultsDir, run.Stamp), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
