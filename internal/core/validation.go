package core

// validation.go runs the single-file validation pipeline.
//
// Stages run strictly in order over one loaded dataset:
//  1. Column names: the header must hold exactly the expected column set
//  2. Column order: positional comparison against the expected header
//  3. Column types: cast every typed cell, collecting cast failures and
//     rows too short to hold the column
//  4. Non-null: required columns must not be empty
//  5. Column contents: per-column validators
//  6. Row rules: multi-column validators
//
// Stage 3 builds a typed copy of the rows; later stages read canonical values
// from that copy and never touch the loaded rows. A file that fails to load
// yields a single load issue and no further stages.

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

const (
	missingColumnMarker    = "<missing_column>"
	noColumnExpectedMarker = "<no_column_expected_here>"
)

// FileResult is the outcome of validating one format's file.
type FileResult struct {
	Format  string
	Dataset *Dataset   // nil when the file failed to load
	Values  [][]string // canonical cell text after casting, aligned with Dataset.Rows
	Issues  []Issue
}

// Loaded reports whether the dataset was loaded.
func (r *FileResult) Loaded() bool {
	return r != nil && r.Dataset != nil
}

// ValidateFile loads path and validates it against def.
func ValidateFile(def FormatDefinition, path string, limit int) *FileResult {
	ds, err := Load(path, def.Header)
	if err != nil {
		return &FileResult{
			Format: def.Name,
			Issues: []Issue{LoadIssue(def.Name, path, err)},
		}
	}
	return ValidateDataset(def, ds, limit)
}

// LoadIssue translates a load error into the matching issue.
func LoadIssue(format, path string, err error) Issue {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return NewIssue(format, LevelError, &FileNotFoundDetails{
			Msg: fmt.Sprintf("Expected a CSV file in location %s", path),
		})
	case errors.Is(err, ErrEmptyFile):
		return NewIssue(format, LevelError, &EmptyFileDetails{})
	default:
		return NewIssue(format, LevelError, &LoadFailureDetails{
			Msg:       "Encountered an unexpected error",
			ErrorMsg:  err.Error(),
			ErrorType: ErrorTypeName(err),
		})
	}
}

// ValidateDataset runs every validation stage over a loaded dataset.
func ValidateDataset(def FormatDefinition, ds *Dataset, limit int) *FileResult {
	v := newFileValidator(def, ds, limit)
	v.checkColumnNames()
	v.checkColumnOrder()
	v.castColumns()
	v.checkNonNull()
	v.checkContents()
	v.checkRowRules()
	return &FileResult{
		Format:  def.Name,
		Dataset: ds,
		Values:  v.values,
		Issues:  v.issues,
	}
}

type fileValidator struct {
	def    FormatDefinition
	ds     *Dataset
	limit  int
	dtypes map[string]DType

	idIndex int // -1 when the id column is absent
	values  [][]string
	issues  []Issue
}

func newFileValidator(def FormatDefinition, ds *Dataset, limit int) *fileValidator {
	idIndex, ok := ds.ColumnIndex(def.IDColumn)
	if !ok {
		idIndex = -1
	}

	// Until casting runs, canonical values are the raw values.
	values := make([][]string, len(ds.Rows))
	for i, row := range ds.Rows {
		values[i] = slices.Clone(row)
	}

	return &fileValidator{
		def:     def,
		ds:      ds,
		limit:   limit,
		dtypes:  def.DTypes(),
		idIndex: idIndex,
		values:  values,
	}
}

func (v *fileValidator) add(level Level, details IssueDetails) {
	v.issues = append(v.issues, NewIssue(v.def.Name, level, details))
}

func (v *fileValidator) rowNumber(i int) int {
	return i + v.def.LineOffset()
}

func (v *fileValidator) idValue(i int) string {
	if v.idIndex < 0 {
		return "Missing the id_column (column number N/A)"
	}
	row := v.values[i]
	if v.idIndex >= len(row) {
		return fmt.Sprintf("Missing the id_column (column number %d)", v.idIndex)
	}
	return row[v.idIndex]
}

func (v *fileValidator) expectedHeader() []string {
	return append([]string{v.ds.IndexColumn}, v.def.ColumnNames()...)
}

// checkColumnNames compares header and expected columns as sets.
func (v *fileValidator) checkColumnNames() {
	expected := toSet(v.expectedHeader())
	actual := toSet(v.ds.Header)

	missing := make([]string, 0)
	for name := range expected {
		if !actual[name] {
			missing = append(missing, name)
		}
	}
	extra := make([]string, 0)
	for name := range actual {
		if !expected[name] {
			extra = append(extra, name)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return
	}
	sort.Strings(missing)
	sort.Strings(extra)
	v.add(LevelError, &ColumnNameDetails{
		ColumnsMissingFromFile: missing,
		ExtraColumnsInFile:     extra,
	})
}

// checkColumnOrder records every position where the header differs from the
// expected header, padding the shorter side.
func (v *fileValidator) checkColumnOrder() {
	expected := v.expectedHeader()
	actual := v.ds.Header

	var mismatches []ColumnPosition
	for i := 0; i < max(len(expected), len(actual)); i++ {
		exp, got := missingColumnMarker, missingColumnMarker
		if i < len(expected) {
			exp = expected[i]
		}
		if i < len(actual) {
			got = actual[i]
		}
		if exp == got {
			continue
		}
		if exp == missingColumnMarker {
			exp = noColumnExpectedMarker
		}
		mismatches = append(mismatches, ColumnPosition{
			ColumnNumber:       i,
			ExpectedColumnName: exp,
			ColumnNameInFile:   got,
		})
	}
	if len(mismatches) > 0 {
		v.add(LevelError, &ColumnOrderDetails{ColsOutOfOrder: mismatches})
	}
}

// castColumns casts every header column to its declared type.
func (v *fileValidator) castColumns() {
	for i, column := range v.ds.Header {
		var dtype DType
		switch {
		case i == 0 && column == v.ds.IndexColumn:
			// The loader writes the index, so it is always a valid int.
			dtype = DTypeInt
		default:
			t, ok := v.dtypes[column]
			if !ok {
				v.add(LevelError, &DTypeUndefinedDetails{Column: column})
				t = DTypeString
			}
			dtype = t
		}
		nullable := v.def.IsNullable(column)

		short := newFailureLog(v.limit)
		uncastable := newFailureLog(v.limit)
		for r, raw := range v.ds.Rows {
			if i >= len(raw) {
				short.add(FailingRow{RowNumber: v.rowNumber(r), IDValue: v.idValue(r), Value: i})
				continue
			}
			if dtype == DTypeString || i == 0 {
				continue
			}
			if nullable && raw[i] == "" {
				continue
			}

			cell, err := safeCast(raw[i], dtype)
			switch {
			case err == nil:
				v.values[r][i] = cell.String()
			case errors.Is(err, errUncastable):
				uncastable.add(FailingRow{RowNumber: v.rowNumber(r), IDValue: v.idValue(r), Value: raw[i]})
			default:
				v.add(LevelError, &DTypeMiscDetails{
					RowNumber: r,
					Column:    column,
					ErrorMsg:  err.Error(),
					ErrorType: ErrorTypeName(err),
				})
			}
		}

		if uncastable.total > 0 {
			v.add(LevelError, &DTypeDetails{
				Column:                   column,
				IDColumn:                 v.def.IDColumn,
				FailingRowsAndValues:     uncastable.rows,
				NumberOfUncastableValues: uncastable.total,
				TotalFails:               uncastable.total,
				AllFailsRecorded:         uncastable.complete(),
				IntendedType:             dtype.String(),
			})
		}
		if short.total > 0 {
			v.add(LevelError, &EnoughColumnsDetails{
				Column:               column,
				IDColumn:             v.def.IDColumn,
				FailingRowsAndValues: short.rows,
				TotalFails:           short.total,
				AllFailsRecorded:     short.complete(),
			})
		}
	}
}

// panicError carries a value recovered while casting.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic while casting: %v", e.value)
}

func safeCast(raw string, t DType) (cell Cell, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return CastCell(raw, t)
}

// checkNonNull flags empty values in columns that are not nullable.
func (v *fileValidator) checkNonNull() {
	for i, column := range v.ds.Header {
		if _, typed := v.dtypes[column]; !typed || v.def.IsNullable(column) {
			continue
		}
		nulls := newFailureLog(v.limit)
		for r, row := range v.values {
			if i >= len(row) {
				continue
			}
			if row[i] == "" {
				nulls.add(FailingRow{RowNumber: v.rowNumber(r), IDValue: v.idValue(r), Value: row[i]})
			}
		}
		if nulls.total > 0 {
			v.add(LevelError, &NotNullDetails{
				Column:                column,
				IDColumn:              v.def.IDColumn,
				RowsWhereColumnIsNull: nulls.rows,
				TotalFails:            nulls.total,
				AllFailsRecorded:      nulls.complete(),
			})
		}
	}
}

// checkContents applies each column validator.
func (v *fileValidator) checkContents() {
	for _, check := range v.def.ColumnChecks {
		idx, ok := v.ds.ColumnIndex(check.Column)
		if !ok {
			v.add(check.Level, &ColumnMissingDetails{Column: check.Column})
			continue
		}
		fails := newFailureLog(v.limit)
		for r, row := range v.values {
			if idx >= len(row) {
				continue
			}
			if !check.Validator.Validate(row[idx]) {
				fails.add(FailingRow{RowNumber: v.rowNumber(r), IDValue: v.idValue(r), Value: row[idx]})
			}
		}
		if fails.total > 0 {
			v.add(check.Level, &ContentsDetails{
				Column:               check.Column,
				IDColumn:             v.def.IDColumn,
				Validation:           check.Validator.Name,
				FailingRowsAndValues: fails.rows,
				TotalFails:           fails.total,
				AllFailsRecorded:     fails.complete(),
			})
		}
	}
}

// checkRowRules applies each row rule.
func (v *fileValidator) checkRowRules() {
	for _, check := range v.def.RowChecks {
		fails := newFailureLog(v.limit)
		for r, row := range v.values {
			if check.Rule.Check(row) {
				continue
			}
			fails.add(FailingRow{
				RowNumber: v.rowNumber(r),
				IDValue:   v.idValue(r),
				Value:     ruleCells(check.Rule, row),
			})
		}
		if fails.total > 0 {
			v.add(check.Level, &RowRuleDetails{
				RuleDescr:            check.Rule.RuleDescr,
				IDColumn:             v.def.IDColumn,
				Validation:           check.Rule.Name,
				FailingRowsAndValues: fails.rows,
				TotalFails:           fails.total,
				AllFailsRecorded:     fails.complete(),
			})
		}
	}
}

func ruleCells(rule RowRule, row []string) []RuleCell {
	cells := make([]RuleCell, len(rule.Columns))
	for i, c := range rule.Columns {
		value := fmt.Sprintf("MISSING COLUMN NUMBER %d", c.Index)
		if c.Index >= 0 && c.Index < len(row) {
			value = row[c.Index]
		}
		cells[i] = RuleCell{Column: c.Name, ColumnNumber: c.Index, Value: value}
	}
	return cells
}

func toSet(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
