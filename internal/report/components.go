package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/beadinspect/internal/core"
)

const pageStyle = `
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin: 0.5em 0; }
th, td { border: 1px solid #888; padding: 2px 8px; text-align: left; }
th { background: #eee; }
h3 { margin-top: 2em; }
`

// htmlWriter writes markup and keeps the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// lines escapes s and keeps its line breaks.
func (h *htmlWriter) lines(s string) {
	h.raw(strings.ReplaceAll(templ.EscapeString(s), "\n", "<br>"))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

// Page renders the full report document.
func Page(doc *Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		when := doc.RunTime.Format("2006-01-02 15:04:05")

		h.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>")
		h.text("BEAD Data Validation Report " + when)
		h.raw("</title>\n<style>" + pageStyle + "</style>\n</head>\n<body>\n<h1>")
		h.text(fmt.Sprintf("BEAD Data Validation Results from the %s run:", when))
		h.raw("</h1>\n\n")

		h.render(ctx, Summary(doc))
		h.raw("\n\n")

		sections := buildSections(doc)
		h.render(ctx, TableOfContents(sections))
		for _, s := range sections {
			h.raw("\n\n")
			h.render(ctx, s.body)
		}

		h.raw("\n</body>\n</html>\n")
		return h.err
	})
}

// Summary renders one issue-count table per level.
func Summary(doc *Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		counts := make(map[string]int)
		for _, issue := range doc.Issues {
			counts[string(issue.Level)+"/"+issue.DataFormat]++
		}
		stats := make(map[string]core.FormatStats, len(doc.Stats))
		for _, s := range doc.Stats {
			stats[s.DataFormat] = s
		}

		for i, level := range core.Levels {
			if i > 0 {
				h.raw("\n")
			}
			t := table{headers: []string{"data_format", "issue_level", "issue_count"}}
			if doc.Stats != nil {
				t.headers = append(t.headers, "total_rows_in_file")
			}
			for _, format := range doc.Formats {
				row := []any{format, string(level), counts[string(level)+"/"+format]}
				if doc.Stats != nil {
					row = append(row, totalRows(stats, format))
				}
				t.rows = append(t.rows, row)
			}

			h.raw("<h2>")
			h.text(levelTitle(level) + "-level Issue Summary")
			h.raw("</h2>")
			h.render(ctx, t.component())
		}
		return h.err
	})
}

func totalRows(stats map[string]core.FormatStats, format string) any {
	s, ok := stats[format]
	if !ok || s.TotalRows == nil {
		return "N/A; file missing."
	}
	return *s.TotalRows
}

// section is one rendered issue and its table of contents entry.
type section struct {
	number int
	level  core.Level
	format string
	toc    string
	body   templ.Component
}

func buildSections(doc *Document) []section {
	sections := make([]section, len(doc.Issues))
	for i, issue := range doc.Issues {
		n := i + 1
		toc, body := formatIssue(doc, issue, n)
		sections[i] = section{
			number: n,
			level:  issue.Level,
			format: issue.DataFormat,
			toc:    toc,
			body:   body,
		}
	}
	return sections
}

// TableOfContents links every issue section, grouped by level then format.
func TableOfContents(sections []section) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<h2 id=\"toc\">Table of Contents</h2>\n<ul>")

		var level core.Level
		var format string
		levelOpen, formatOpen := false, false
		for _, s := range sections {
			if !levelOpen || s.level != level {
				if formatOpen {
					h.raw("</ul></li>")
					formatOpen = false
				}
				if levelOpen {
					h.raw("</ul></li>")
				}
				h.raw("<li><h3>")
				h.text(levelTitle(s.level) + "-level issues:")
				h.raw("</h3><ul>")
				level, levelOpen = s.level, true
			}
			if !formatOpen || s.format != format {
				if formatOpen {
					h.raw("</ul></li>")
				}
				h.raw("<li><h4>")
				h.text(s.format + ".csv issues:")
				h.raw("</h4><ul>")
				format, formatOpen = s.format, true
			}
			h.raw("<li><a href=\"#issue-" + strconv.Itoa(s.number) + "\">")
			h.text(fmt.Sprintf("Issue %d: %s", s.number, s.toc))
			h.raw("</a></li>\n")
		}

		if formatOpen {
			h.raw("</ul></li>")
		}
		if levelOpen {
			h.raw("</ul></li>")
		}
		h.raw("</ul>")
		return h.err
	})
}

func levelTitle(level core.Level) string {
	return cases.Title(language.English).String(string(level))
}

// table renders rows as an HTML table. String cells are shown quoted so
// blank and padded values stay visible.
type table struct {
	headers []string
	rows    [][]any
}

func (t table) component() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if len(t.rows) == 0 {
			h.raw("<p>No data to display</p>")
			return h.err
		}

		h.raw("<table border=\"1\">\n<tr>")
		for _, header := range t.headers {
			h.raw("<th>")
			h.text(header)
			h.raw("</th>")
		}
		h.raw("</tr>\n")
		for _, row := range t.rows {
			h.raw("<tr>")
			for i := range t.headers {
				h.raw("<td>")
				if i < len(row) {
					h.text(cellText(row[i]))
				}
				h.raw("</td>")
			}
			h.raw("</tr>\n")
		}
		h.raw("</table>\n")
		return h.err
	})
}

func cellText(v any) string {
	switch v := v.(type) {
	case string:
		return "'" + v + "'"
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
