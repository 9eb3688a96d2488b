package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/beadinspect/internal/core"
)

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin: 0.5em 0; }
th, td { border: 1px solid #888; padding: 2px 8px; text-align: left; }
th { background: #eee; }
.code { color: #666; }
</style>
</head>
<body>
`

const pageFoot = "</body>\n</html>\n"

var esc = templ.EscapeString[string]

// RunsPage lists the runs with issue logs on disk and, when a database is
// configured, the stored runs.
func RunsPage(list *RunList) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, pageHead, "BEAD validation runs")
		b.WriteString("<h1>BEAD validation runs</h1>\n")
		fmt.Fprintf(&b, "<p>Results directory: <code>%s</code></p>\n", esc(list.ResultsDir))

		if len(list.Logs) == 0 {
			b.WriteString("<p>No runs found.</p>\n")
		} else {
			b.WriteString("<table>\n<tr><th>run time</th><th>report</th><th>issues</th></tr>\n")
			for _, l := range list.Logs {
				fmt.Fprintf(&b, "<tr><td>%s</td><td><a href=\"/runs/%s\">%s</a></td><td><a href=\"/api/runs/%s/issues\">json</a></td></tr>\n",
					esc(l.Time.Format("2006-01-02 15:04:05")), esc(l.Stamp), esc(l.Stamp), esc(l.Stamp))
			}
			b.WriteString("</table>\n")
		}

		if len(list.Stored) > 0 {
			b.WriteString("<h2>Stored runs</h2>\n")
			b.WriteString("<table>\n<tr><th>started</th><th>report</th><th>data directory</th><th>formats</th><th>issue count</th></tr>\n")
			for _, run := range list.Stored {
				fmt.Fprintf(&b, "<tr><td>%s</td><td><a href=\"/runs/%s\">%s</a></td><td>%s</td><td>%s</td><td>%d</td></tr>\n",
					esc(run.StartedAt.Format("2006-01-02 15:04:05")), esc(run.Stamp), esc(run.Stamp),
					esc(run.DataDir), esc(strings.Join(run.Formats, ", ")), run.IssueCount)
			}
			b.WriteString("</table>\n")
		}

		b.WriteString(pageFoot)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ErrorPage shows a user message with its action and support code.
func ErrorPage(status int, msg core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, pageHead, esc(http.StatusText(status)))
		fmt.Fprintf(&b, "<h1>%s</h1>\n<p>%s</p>\n", esc(http.StatusText(status)), esc(msg.Message))
		if msg.Action != "" {
			fmt.Fprintf(&b, "<p>%s</p>\n", esc(msg.Action))
		}
		fmt.Fprintf(&b, "<p class=\"code\">Code: %s</p>\n<p><a href=\"/\">All runs</a></p>\n", esc(msg.Code))
		b.WriteString(pageFoot)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
