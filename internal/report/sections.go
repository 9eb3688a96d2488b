package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/beadinspect/internal/core"
)

const backToTOC = `<a href="#toc">(back to top)</a>`

// item is one bullet of an issue section.
type item func(ctx context.Context, h *htmlWriter)

func textItem(label, value string) item {
	return func(_ context.Context, h *htmlWriter) {
		h.raw("<li>")
		h.text(label + ": ")
		h.lines(value)
		h.raw("</li>")
	}
}

func tableItem(label string, t table) item {
	return func(ctx context.Context, h *htmlWriter) {
		h.raw("<li>")
		h.text(label + ":")
		h.render(ctx, t.component())
		h.raw("</li>")
	}
}

func plainItem(text string) item {
	return func(_ context.Context, h *htmlWriter) {
		h.raw("<li>")
		h.lines(text)
		h.raw("</li>")
	}
}

func truncationNote(maxChars int) item {
	return func(_ context.Context, h *htmlWriter) {
		h.raw("<ul><li>")
		h.text(fmt.Sprintf("Note: Only showing the first %d characters of id_column values.", maxChars))
		h.raw("</li></ul>")
	}
}

func validValuesItem(values []string) item {
	t := table{headers: []string{"Valid Values"}}
	for _, v := range values {
		t.rows = append(t.rows, []any{v})
	}
	return func(ctx context.Context, h *htmlWriter) {
		h.raw("<li><details><summary>Valid values (click to show/hide):</summary>")
		h.render(ctx, t.component())
		h.raw("</details></li>")
	}
}

// issueSection renders a numbered heading, a bullet list, and optional
// trailing content.
func issueSection(n int, toc string, items []item, after templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<h3 id=\"issue-" + strconv.Itoa(n) + "\">")
		h.text(fmt.Sprintf("%d. %s", n, toc))
		h.raw("</h3>" + backToTOC + "\n<ul>")
		for _, it := range items {
			it(ctx, h)
		}
		h.raw("</ul>\n")
		h.render(ctx, after)
		return h.err
	})
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// completenessMessage explains whether the failing-row list is complete.
func completenessMessage(all bool, shown int) string {
	if all {
		return "Showing all instances of the erroneous data raising this issue."
	}
	return fmt.Sprintf("Only showing values from the first %d records with invalid data.\n"+
		"To see more of the values that need to be fixed, you can either rerun beadinspect "+
		"with a larger --single-error-log-limit | -s argument, or fix these values "+
		"(or the issue causing these invalid values) and then rerun beadinspect.", shown)
}

// truncateIDs shortens id values to maxChars runes when any exceeds it.
func truncateIDs(rows []core.FailingRow, maxChars int) ([]string, bool) {
	ids := make([]string, len(rows))
	truncated := false
	for i, r := range rows {
		ids[i] = r.IDValue
		if maxChars > 0 && len([]rune(r.IDValue)) > maxChars {
			truncated = true
		}
	}
	if truncated {
		for i, id := range ids {
			if runes := []rune(id); len(runes) > maxChars {
				ids[i] = string(runes[:maxChars])
			}
		}
	}
	return ids, truncated
}

// failingRowsTable lays out failing rows as row, id, and value columns.
func failingRowsTable(idColumn string, rows []core.FailingRow, maxChars int) (table, bool) {
	ids, truncated := truncateIDs(rows, maxChars)
	t := table{headers: []string{"row", idColumn, "value"}}
	for i, r := range rows {
		t.rows = append(t.rows, []any{r.RowNumber, ids[i], r.Value})
	}
	return t, truncated
}

// ruleRowsTable spreads the rule's cells into one column each.
func ruleRowsTable(idColumn string, rows []core.FailingRow, maxChars int) (table, bool) {
	ids, truncated := truncateIDs(rows, maxChars)
	t := table{headers: []string{"row", idColumn}}

	seen := make(map[string]bool)
	for _, r := range rows {
		cells, ok := r.Value.([]core.RuleCell)
		if !ok {
			continue
		}
		for _, c := range cells {
			if !seen[c.Column] {
				seen[c.Column] = true
				t.headers = append(t.headers, c.Column)
			}
		}
	}
	if len(seen) == 0 {
		t.headers = append(t.headers, "value")
	}

	for i, r := range rows {
		row := []any{r.RowNumber, ids[i]}
		cells, ok := r.Value.([]core.RuleCell)
		if !ok {
			t.rows = append(t.rows, append(row, fmt.Sprint(r.Value)))
			continue
		}
		values := make(map[string]string, len(cells))
		for _, c := range cells {
			values[c.Column] = c.Value
		}
		for _, header := range t.headers[2:] {
			row = append(row, values[header])
		}
		t.rows = append(t.rows, row)
	}
	return t, truncated
}

func quotedList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	return "['" + strings.Join(values, "', '") + "']"
}

// formatIssue returns the table of contents line and the section body.
func formatIssue(doc *Document, issue core.Issue, n int) (string, templ.Component) {
	file := issue.DataFormat + ".csv"
	base := []item{
		textItem("Data File", file),
		textItem("Issue Level", string(issue.Level)),
	}

	var toc string
	var items []item
	var after templ.Component

	switch d := issue.Details.(type) {
	case *core.FileNotFoundDetails:
		toc = file + " :: Data file not found"
		items = []item{textItem("Description", d.Msg)}

	case *core.EmptyFileDetails:
		toc = file + " :: Data file is empty"
		items = []item{textItem("Description", "The file "+file+" is empty.")}

	case *core.LoadFailureDetails:
		toc = file + " :: Error loading data file"
		items = []item{
			textItem("Description", d.Msg+"."),
			textItem("Error message", d.ErrorMsg),
			textItem("Error type", d.ErrorType),
		}

	case *core.MissingDataFileDetails:
		toc = file + " :: Data file not found"
		items = []item{textItem("Description",
			fmt.Sprintf("Expected to find file %s in directory %s", file, d.DataDir))}

	case *core.ColumnNameDetails:
		toc = file + " :: Incorrect set of columns"
		items = []item{
			textItem("Description", columnNameSummary(len(d.ColumnsMissingFromFile), len(d.ExtraColumnsInFile))),
			textItem("Missing column names", quotedList(d.ColumnsMissingFromFile)),
			textItem("Unexpected column names", quotedList(d.ExtraColumnsInFile)),
		}

	case *core.ColumnOrderDetails:
		toc = file + " :: Incorrect column order"
		items = []item{textItem("Description", "Columns must be in the expected order.")}
		t := table{headers: []string{"column_number", "expected_column_name", "column_name_in_file"}}
		for _, p := range d.ColsOutOfOrder {
			t.rows = append(t.rows, []any{p.ColumnNumber, p.ExpectedColumnName, p.ColumnNameInFile})
		}
		after = t.component()

	case *core.DTypeUndefinedDetails:
		toc = fmt.Sprintf("%s :: Unexpected column ('%s') found", file, d.Column)
		items = []item{
			textItem("Column", d.Column),
			textItem("Description", "Columns must have the expected names and be in the expected order."),
		}

	case *core.DTypeDetails:
		toc = fmt.Sprintf("%s :: %s :: Incorrect datatype found", file, d.Column)
		t, truncated := failingRowsTable(d.IDColumn, d.FailingRowsAndValues, doc.MaxIDChars)
		items = []item{
			textItem("Intended datatype", d.IntendedType),
			tableItem("Failing rows and their uncastable values", t),
		}
		if truncated {
			items = append(items, truncationNote(doc.MaxIDChars))
		}
		items = append(items,
			textItem("Total number of rows with uncastable values", strconv.Itoa(d.NumberOfUncastableValues)),
			plainItem(completenessMessage(d.AllFailsRecorded, len(d.FailingRowsAndValues))),
		)

	case *core.DTypeMiscDetails:
		toc = fmt.Sprintf("%s :: Unexpected error while dtyping %s column", file, d.Column)
		items = []item{
			textItem("Row number", strconv.Itoa(d.RowNumber)),
			textItem("Column", d.Column),
			textItem("Error message", d.ErrorMsg),
			textItem("Error type", d.ErrorType),
		}

	case *core.EnoughColumnsDetails:
		toc = file + " :: Inconsistent number of columns"
		t, truncated := failingRowsTable(d.IDColumn, d.FailingRowsAndValues, doc.MaxIDChars)
		items = []item{
			textItem("Description", "Some rows in the CSV had too few columns."),
			textItem("Column missing from row", d.Column),
			tableItem("Rows with too few columns", t),
		}
		if truncated {
			items = append(items, truncationNote(doc.MaxIDChars))
		}
		items = append(items,
			textItem("Number of rows with too few columns", strconv.Itoa(d.TotalFails)),
			plainItem(completenessMessage(d.AllFailsRecorded, len(d.FailingRowsAndValues))),
		)

	case *core.NotNullDetails:
		toc = fmt.Sprintf("%s :: Unallowed nulls found in column '%s'", file, d.Column)
		ids, truncated := truncateIDs(d.RowsWhereColumnIsNull, doc.MaxIDChars)
		t := table{headers: []string{"row", d.IDColumn, "column"}}
		for i, r := range d.RowsWhereColumnIsNull {
			t.rows = append(t.rows, []any{r.RowNumber, ids[i], d.Column})
		}
		items = []item{
			textItem("Column", d.Column),
			textItem("Description", "No null values are allowed in this column."),
			tableItem("Rows with null column values", t),
		}
		if truncated {
			items = append(items, truncationNote(doc.MaxIDChars))
		}
		items = append(items,
			textItem("Total rows where null", strconv.Itoa(d.TotalFails)),
			textItem("All rows with invalid values shown", yesNo(d.AllFailsRecorded)),
			plainItem(completenessMessage(d.AllFailsRecorded, len(d.RowsWhereColumnIsNull))),
		)

	case *core.ContentsDetails:
		toc = fmt.Sprintf("%s :: Invalid values in column '%s'", file, d.Column)
		descr := fmt.Sprintf("Validator %q is not available in this build.", d.Validation)
		var valid []string
		if v, ok := core.LookupValidator(d.Validation); ok {
			descr = v.RuleDescr()
			valid = v.ValidValues
		}
		t, truncated := failingRowsTable(d.IDColumn, d.FailingRowsAndValues, doc.MaxIDChars)
		items = []item{
			textItem("Description", descr),
			textItem("Column", d.Column),
			tableItem("Failing rows, id_values, and invalid values", t),
		}
		if truncated {
			items = append(items, truncationNote(doc.MaxIDChars))
		}
		items = append(items,
			textItem("Total rows with invalid values", strconv.Itoa(d.TotalFails)),
			textItem("All rows with invalid values shown", yesNo(d.AllFailsRecorded)),
			plainItem(completenessMessage(d.AllFailsRecorded, len(d.FailingRowsAndValues))),
			validValuesItem(valid),
		)

	case *core.ColumnMissingDetails:
		toc = fmt.Sprintf("%s :: Missing column '%s'", file, d.Column)
		items = []item{
			textItem("Column", d.Column),
			textItem("Description", "Missing a required column."),
		}

	case *core.RowRuleDetails:
		short := d.Validation
		if rule, ok := core.LookupRowRule(d.Validation); ok && rule.ShortDescr != "" {
			short = rule.ShortDescr
		}
		toc = fmt.Sprintf("%s :: %s :: Row rule broken", file, short)
		t, truncated := ruleRowsTable(d.IDColumn, d.FailingRowsAndValues, doc.MaxIDChars)
		items = []item{
			textItem("Description", d.RuleDescr),
			tableItem("Failing rows and values", t),
		}
		if truncated {
			items = append(items, truncationNote(doc.MaxIDChars))
		}
		items = append(items,
			textItem("Total rows with invalid values", strconv.Itoa(d.TotalFails)),
			textItem("All rows with invalid values shown", yesNo(d.AllFailsRecorded)),
			plainItem(completenessMessage(d.AllFailsRecorded, len(d.FailingRowsAndValues))),
		)

	case *core.MultiFileDetails:
		toc = d.ShortMsg
		base = []item{
			textItem("Involved Data Files", fmt.Sprintf("%s and %s.csv", file, d.OtherDataFormat)),
			textItem("Issue Level", string(issue.Level)),
		}
		t := table{}
		for _, values := range d.InvalidValues {
			if t.headers == nil {
				t.headers = sortedKeys(values)
			}
			row := make([]any, len(t.headers))
			for i, k := range t.headers {
				row[i] = values[k]
			}
			t.rows = append(t.rows, row)
		}
		items = []item{
			textItem("Description", d.LongMsg+"."),
			tableItem("Invalid values", t),
		}

	default:
		toc = fmt.Sprintf("%s :: %s", file, issue.Type)
	}

	return toc, issueSection(n, toc, append(base, items...), after)
}

func columnNameSummary(missing, extra int) string {
	switch {
	case missing > 0 && extra > 0:
		return fmt.Sprintf("Missing %d required columns and found %d unexpected columns.", missing, extra)
	case missing > 0:
		return fmt.Sprintf("Missing %d required columns.", missing)
	case extra > 0:
		return fmt.Sprintf("Found %d unexpected columns.", extra)
	default:
		return "Column names differ from the expected set."
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
