package core

import (
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
)

var widgetBigNote = RowRule{
	Name:       "widget_big_note",
	RuleDescr:  "Widgets with a count over 100 need a note.",
	ShortDescr: "Required note values are missing",
	Columns:    []ColumnRef{col("count", 2), col("note", 4)},
	check:      requiredWhen(2, 4, map[string]bool{"101": true, "500": true}),
}

func widgetFormat() FormatDefinition {
	return FormatDefinition{
		Name:     "widgets",
		IDColumn: "id",
		Columns: []ColumnSpec{
			{Name: "id", Type: DTypeString},
			{Name: "count", Type: DTypeInt},
			{Name: "speed", Type: DTypeFloat},
			{Name: "note", Type: DTypeString},
		},
		Nullable: []string{"speed", "note"},
		ColumnChecks: []ColumnCheck{
			{Column: "count", Validator: NonNegativeValidator, Level: LevelError},
			{Column: "speed", Validator: NonNegativeNullable, Level: LevelInfo},
		},
		RowChecks: []RowCheck{{Rule: widgetBigNote, Level: LevelError}},
	}
}

func widgetDataset(header []string, rows ...[]string) *Dataset {
	if header == nil {
		header = []string{"index", "id", "count", "speed", "note"}
	}
	indexed := make([][]string, len(rows))
	for i, r := range rows {
		indexed[i] = append([]string{strconv.Itoa(i)}, r...)
	}
	return &Dataset{IndexColumn: "index", Header: header, Rows: indexed}
}

func issuesOf(issues []Issue, t IssueType) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Type == t {
			out = append(out, i)
		}
	}
	return out
}

func TestValidateDataset_Clean(t *testing.T) {
	ds := widgetDataset(nil,
		[]string{"w1", "10", "100", ""},
		[]string{"w2", " 007", "", "shiny"},
		[]string{"w3", "500", "0.5", "big order"},
	)

	res := ValidateDataset(widgetFormat(), ds, 20)
	if len(res.Issues) != 0 {
		t.Fatalf("Issues = %+v, want none", res.Issues)
	}

	want := [][]string{
		{"0", "w1", "10", "100.0", ""},
		{"1", "w2", "7", "", "shiny"},
		{"2", "w3", "500", "0.5", "big order"},
	}
	if !reflect.DeepEqual(res.Values, want) {
		t.Errorf("Values = %q, want %q", res.Values, want)
	}
	if ds.Rows[1][2] != " 007" {
		t.Errorf("loaded row mutated: %q", ds.Rows[1][2])
	}
}

func TestValidateDataset_CastFailuresAreCapped(t *testing.T) {
	ds := widgetDataset(nil,
		[]string{"w1", "x", "", ""},
		[]string{"w2", "1.5", "", ""},
		[]string{"w3", "3", "", ""},
		[]string{"w4", "many", "", ""},
	)

	res := ValidateDataset(widgetFormat(), ds, 2)

	dtype := issuesOf(res.Issues, IssueColumnDType)
	if len(dtype) != 1 {
		t.Fatalf("dtype issues = %d, want 1", len(dtype))
	}
	d := dtype[0].Details.(*DTypeDetails)
	if d.Column != "count" || d.IntendedType != "int" {
		t.Errorf("details = %+v", d)
	}
	if d.TotalFails != 3 || d.NumberOfUncastableValues != 3 {
		t.Errorf("TotalFails = %d, NumberOfUncastableValues = %d, want 3", d.TotalFails, d.NumberOfUncastableValues)
	}
	if d.AllFailsRecorded {
		t.Error("AllFailsRecorded = true, want false")
	}
	wantRows := []FailingRow{
		{RowNumber: 2, IDValue: "w1", Value: "x"},
		{RowNumber: 3, IDValue: "w2", Value: "1.5"},
	}
	if !reflect.DeepEqual(d.FailingRowsAndValues, wantRows) {
		t.Errorf("FailingRowsAndValues = %+v, want %+v", d.FailingRowsAndValues, wantRows)
	}

	// Uncast values still reach the column validators.
	contents := issuesOf(res.Issues, IssueColumnContents)
	if len(contents) != 1 {
		t.Fatalf("contents issues = %d, want 1", len(contents))
	}
	if got := contents[0].Details.(*ContentsDetails).TotalFails; got != 2 {
		t.Errorf("contents TotalFails = %d, want 2 (x and many)", got)
	}
}

func TestValidateDataset_LimitExactlyReached(t *testing.T) {
	ds := widgetDataset(nil,
		[]string{"w1", "-1", "", ""},
		[]string{"w2", "-2", "", ""},
	)

	res := ValidateDataset(widgetFormat(), ds, 2)
	contents := issuesOf(res.Issues, IssueColumnContents)
	if len(contents) != 1 {
		t.Fatalf("contents issues = %d, want 1", len(contents))
	}
	d := contents[0].Details.(*ContentsDetails)
	if !d.AllFailsRecorded || len(d.FailingRowsAndValues) != 2 {
		t.Errorf("AllFailsRecorded = %v with %d rows, want true with 2", d.AllFailsRecorded, len(d.FailingRowsAndValues))
	}
	if d.Validation != "non_negative_number" {
		t.Errorf("Validation = %q", d.Validation)
	}
}

func TestValidateDataset_ZeroLimitKeepsCounting(t *testing.T) {
	ds := widgetDataset(nil, []string{"w1", "-1", "", ""})

	res := ValidateDataset(widgetFormat(), ds, 0)
	d := issuesOf(res.Issues, IssueColumnContents)[0].Details.(*ContentsDetails)
	if d.TotalFails != 1 || len(d.FailingRowsAndValues) != 0 || d.AllFailsRecorded {
		t.Errorf("details = %+v", d)
	}
}

func TestValidateDataset_ShortRows(t *testing.T) {
	ds := widgetDataset(nil,
		[]string{"w1", "1"},
		[]string{"w2", "2", "3.0", "ok"},
	)

	res := ValidateDataset(widgetFormat(), ds, 20)

	short := issuesOf(res.Issues, IssueEnoughColumns)
	if len(short) != 2 {
		t.Fatalf("enough-columns issues = %d, want 2 (speed and note)", len(short))
	}
	d := short[0].Details.(*EnoughColumnsDetails)
	if d.Column != "speed" {
		t.Errorf("Column = %q, want speed", d.Column)
	}
	want := []FailingRow{{RowNumber: 2, IDValue: "w1", Value: 3}}
	if !reflect.DeepEqual(d.FailingRowsAndValues, want) {
		t.Errorf("FailingRowsAndValues = %+v, want %+v", d.FailingRowsAndValues, want)
	}
	if n := len(issuesOf(res.Issues, IssueRequiredNotNull)); n != 0 {
		t.Errorf("not-null issues = %d, want 0 for short rows", n)
	}

	rules := issuesOf(res.Issues, IssueRowRule)
	if len(rules) != 1 {
		t.Fatalf("row rule issues = %d, want 1", len(rules))
	}
	cells := rules[0].Details.(*RowRuleDetails).FailingRowsAndValues[0].Value.([]RuleCell)
	wantCells := []RuleCell{
		{Column: "count", ColumnNumber: 2, Value: "1"},
		{Column: "note", ColumnNumber: 4, Value: "MISSING COLUMN NUMBER 4"},
	}
	if !reflect.DeepEqual(cells, wantCells) {
		t.Errorf("rule cells = %+v, want %+v", cells, wantCells)
	}
}

func TestValidateDataset_NotNull(t *testing.T) {
	ds := widgetDataset(nil,
		[]string{"", "1", "", ""},
		[]string{"w2", "2", "", ""},
	)

	res := ValidateDataset(widgetFormat(), ds, 20)
	nulls := issuesOf(res.Issues, IssueRequiredNotNull)
	if len(nulls) != 1 {
		t.Fatalf("not-null issues = %d, want 1", len(nulls))
	}
	d := nulls[0].Details.(*NotNullDetails)
	if d.Column != "id" || d.TotalFails != 1 {
		t.Errorf("details = %+v", d)
	}
	if got := d.RowsWhereColumnIsNull[0]; got.RowNumber != 2 || got.IDValue != "" || got.Value != "" {
		t.Errorf("failing row = %+v", got)
	}
}

func TestValidateDataset_RowRule(t *testing.T) {
	ds := widgetDataset(nil,
		[]string{"w1", "101", "", ""},
		[]string{"w2", "500", "", "noted"},
	)

	res := ValidateDataset(widgetFormat(), ds, 20)
	rules := issuesOf(res.Issues, IssueRowRule)
	if len(rules) != 1 {
		t.Fatalf("row rule issues = %d, want 1", len(rules))
	}
	d := rules[0].Details.(*RowRuleDetails)
	if d.Validation != "widget_big_note" || d.RuleDescr != widgetBigNote.RuleDescr || d.IDColumn != "id" {
		t.Errorf("details = %+v", d)
	}
	if d.TotalFails != 1 || d.FailingRowsAndValues[0].IDValue != "w1" {
		t.Errorf("failing rows = %+v", d.FailingRowsAndValues)
	}
}

func TestValidateDataset_HeaderProblems(t *testing.T) {
	header := []string{"index", "id", "speed", "count", "colour"}
	ds := widgetDataset(header, []string{"w1", "1.5", "2", "red"})

	res := ValidateDataset(widgetFormat(), ds, 20)

	names := issuesOf(res.Issues, IssueColumnName)
	if len(names) != 1 {
		t.Fatalf("column name issues = %d, want 1", len(names))
	}
	nd := names[0].Details.(*ColumnNameDetails)
	if !reflect.DeepEqual(nd.ColumnsMissingFromFile, []string{"note"}) ||
		!reflect.DeepEqual(nd.ExtraColumnsInFile, []string{"colour"}) {
		t.Errorf("column names = %+v", nd)
	}

	order := issuesOf(res.Issues, IssueColumnOrder)
	if len(order) != 1 {
		t.Fatalf("column order issues = %d, want 1", len(order))
	}
	wantOrder := []ColumnPosition{
		{ColumnNumber: 2, ExpectedColumnName: "count", ColumnNameInFile: "speed"},
		{ColumnNumber: 3, ExpectedColumnName: "speed", ColumnNameInFile: "count"},
		{ColumnNumber: 4, ExpectedColumnName: "note", ColumnNameInFile: "colour"},
	}
	if got := order[0].Details.(*ColumnOrderDetails).ColsOutOfOrder; !reflect.DeepEqual(got, wantOrder) {
		t.Errorf("ColsOutOfOrder = %+v, want %+v", got, wantOrder)
	}

	undefined := issuesOf(res.Issues, IssueColumnDTypeUndefined)
	if len(undefined) != 1 || undefined[0].Details.(*DTypeUndefinedDetails).Column != "colour" {
		t.Errorf("dtype undefined issues = %+v", undefined)
	}

	// Casting follows header names, not positions.
	if n := len(issuesOf(res.Issues, IssueColumnDType)); n != 0 {
		t.Errorf("dtype issues = %d, want 0", n)
	}
	if got := res.Values[0][2]; got != "1.5" {
		t.Errorf("speed value = %q, want 1.5", got)
	}
}

func TestValidateDataset_ColumnOrderPadding(t *testing.T) {
	header := []string{"index", "id", "count", "speed", "note", "extra"}
	ds := widgetDataset(header)

	res := ValidateDataset(widgetFormat(), ds, 20)
	order := issuesOf(res.Issues, IssueColumnOrder)
	if len(order) != 1 {
		t.Fatalf("column order issues = %d, want 1", len(order))
	}
	want := []ColumnPosition{{ColumnNumber: 5, ExpectedColumnName: "<no_column_expected_here>", ColumnNameInFile: "extra"}}
	if got := order[0].Details.(*ColumnOrderDetails).ColsOutOfOrder; !reflect.DeepEqual(got, want) {
		t.Errorf("ColsOutOfOrder = %+v, want %+v", got, want)
	}

	header = []string{"index", "id", "count", "speed"}
	res = ValidateDataset(widgetFormat(), widgetDataset(header), 20)
	want = []ColumnPosition{{ColumnNumber: 4, ExpectedColumnName: "note", ColumnNameInFile: "<missing_column>"}}
	if got := issuesOf(res.Issues, IssueColumnOrder)[0].Details.(*ColumnOrderDetails).ColsOutOfOrder; !reflect.DeepEqual(got, want) {
		t.Errorf("ColsOutOfOrder = %+v, want %+v", got, want)
	}
	missing := issuesOf(res.Issues, IssueColumnMissing)
	if len(missing) != 0 {
		t.Errorf("column missing issues = %d, want 0 (note has no column check)", len(missing))
	}
}

func TestValidateDataset_MissingIDAndCheckedColumn(t *testing.T) {
	header := []string{"index", "speed", "note"}
	ds := widgetDataset(header, []string{"-1", ""})

	res := ValidateDataset(widgetFormat(), ds, 20)

	missing := issuesOf(res.Issues, IssueColumnMissing)
	if len(missing) != 1 || missing[0].Details.(*ColumnMissingDetails).Column != "count" {
		t.Fatalf("column missing issues = %+v", missing)
	}
	if missing[0].Level != LevelError {
		t.Errorf("Level = %q, want error", missing[0].Level)
	}

	contents := issuesOf(res.Issues, IssueColumnContents)
	if len(contents) != 1 {
		t.Fatalf("contents issues = %d, want 1", len(contents))
	}
	if contents[0].Level != LevelInfo {
		t.Errorf("Level = %q, want info", contents[0].Level)
	}
	row := contents[0].Details.(*ContentsDetails).FailingRowsAndValues[0]
	if row.IDValue != "Missing the id_column (column number N/A)" {
		t.Errorf("IDValue = %q", row.IDValue)
	}
	if row.Value != "-1.0" {
		t.Errorf("Value = %v, want canonical -1.0", row.Value)
	}
}

func TestValidateDataset_IntOverflowIsMisc(t *testing.T) {
	ds := widgetDataset(nil, []string{"w1", "99999999999999999999", "", ""})

	res := ValidateDataset(widgetFormat(), ds, 20)
	misc := issuesOf(res.Issues, IssueColumnDTypeMisc)
	if len(misc) != 1 {
		t.Fatalf("misc issues = %d, want 1", len(misc))
	}
	// The misc row number is the raw row index, without the line offset.
	d := misc[0].Details.(*DTypeMiscDetails)
	if d.RowNumber != 0 || d.Column != "count" || d.ErrorType != "CastError" {
		t.Errorf("details = %+v", d)
	}
	if n := len(issuesOf(res.Issues, IssueColumnDType)); n != 0 {
		t.Errorf("dtype issues = %d, want 0", n)
	}
}

func TestValidateFile_LoadFailures(t *testing.T) {
	dir := t.TempDir()

	res := ValidateFile(widgetFormat(), filepath.Join(dir, "widgets.csv"), 20)
	if res.Loaded() {
		t.Fatal("Loaded() = true for a missing file")
	}
	if len(res.Issues) != 1 || res.Issues[0].Type != IssueFileNotFound {
		t.Fatalf("Issues = %+v, want one file_not_found", res.Issues)
	}

	path := writeFile(t, dir, "empty.csv", nil)
	res = ValidateFile(widgetFormat(), path, 20)
	if len(res.Issues) != 1 || res.Issues[0].Type != IssueEmptyFile {
		t.Fatalf("Issues = %+v, want one empty_file_error", res.Issues)
	}

	path = writeFile(t, dir, "dup.csv", []byte("id,ID\n1,2\n"))
	res = ValidateFile(widgetFormat(), path, 20)
	if len(res.Issues) != 1 || res.Issues[0].Type != IssueDataLoadingFailure {
		t.Fatalf("Issues = %+v, want one data_loading_failure", res.Issues)
	}
	if got := res.Issues[0].Details.(*LoadFailureDetails).ErrorType; got != "HeaderError" {
		t.Errorf("ErrorType = %q, want HeaderError", got)
	}
}

func TestValidateFile_HeaderlessOffset(t *testing.T) {
	def := FormatDefinition{
		Name:      "unserved",
		IDColumn:  "location_id",
		Columns:   []ColumnSpec{{Name: "location_id", Type: DTypeInt}},
		Header:    []string{"location_id"},
		RowOffset: 1,
		ColumnChecks: []ColumnCheck{
			{Column: "location_id", Validator: BSLLocationIDValidator, Level: LevelError},
		},
	}
	path := writeFile(t, t.TempDir(), "unserved.csv", []byte("1000000001\n42\n"))

	res := ValidateFile(def, path, 20)
	if len(res.Issues) != 1 {
		t.Fatalf("Issues = %+v, want 1", res.Issues)
	}
	row := res.Issues[0].Details.(*ContentsDetails).FailingRowsAndValues[0]
	if row.RowNumber != 2 || row.IDValue != "42" {
		t.Errorf("failing row = %+v, want line 2 with id 42", row)
	}
}

func TestValidateFile_BlankLineKeepsRowNumbers(t *testing.T) {
	path := writeFile(t, t.TempDir(), "widgets.csv",
		[]byte("id,count,speed,note\nw1,1,,\n\nw3,-5,,\n"))

	res := ValidateFile(widgetFormat(), path, 20)
	if !res.Loaded() {
		t.Fatalf("Issues = %+v, want a loaded file", res.Issues)
	}

	var contents *ContentsDetails
	for _, issue := range issuesOf(res.Issues, IssueColumnContents) {
		if d := issue.Details.(*ContentsDetails); d.Column == "count" {
			contents = d
		}
	}
	if contents == nil {
		t.Fatal("no contents issue for count")
	}
	var got []FailingRow
	for _, row := range contents.FailingRowsAndValues {
		if row.IDValue == "w3" {
			got = append(got, row)
		}
	}
	if len(got) != 1 || got[0].RowNumber != 4 {
		t.Errorf("failing rows for w3 = %+v, want line 4", got)
	}

	short := issuesOf(res.Issues, IssueEnoughColumns)
	if len(short) == 0 {
		t.Fatal("blank line not reported as a short row")
	}
	d := short[0].Details.(*EnoughColumnsDetails)
	if len(d.FailingRowsAndValues) != 1 || d.FailingRowsAndValues[0].RowNumber != 3 {
		t.Errorf("short rows = %+v, want line 3", d.FailingRowsAndValues)
	}
}
