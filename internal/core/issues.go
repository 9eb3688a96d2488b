package core

// issues.go defines the issue record shared by the engine, the JSON issue log,
// the report renderer, and the web API.
//
// Each issue type carries its own details struct. Issue.UnmarshalJSON picks the
// struct from issue_type so logs read back from disk keep their shape.

import (
	"encoding/json"
	"fmt"
	"sort"
)

// IssueType identifies the kind of validation finding.
type IssueType string

const (
	IssueFileNotFound         IssueType = "file_not_found"
	IssueEmptyFile            IssueType = "empty_file_error"
	IssueDataLoadingFailure   IssueType = "data_loading_failure"
	IssueColumnName           IssueType = "column_name_validation"
	IssueColumnOrder          IssueType = "column_order_validation"
	IssueColumnDTypeUndefined IssueType = "column_dtype_undefined"
	IssueColumnDType          IssueType = "column_dtype_validation"
	IssueColumnDTypeMisc      IssueType = "column_dtype_validation_misc"
	IssueEnoughColumns        IssueType = "enough_columns_validation"
	IssueRequiredNotNull      IssueType = "required_column_not_null_validation"
	IssueColumnContents       IssueType = "column_contents_validation"
	IssueColumnMissing        IssueType = "column_missing"
	IssueRowRule              IssueType = "row_rule_validation"
	IssueMissingDataFile      IssueType = "missing_data_file"
	IssueMultiFile            IssueType = "multi_file_validation"
)

// sortOrders ranks issue types within a format.
var sortOrders = map[IssueType]int{
	IssueFileNotFound:         0,
	IssueEmptyFile:            0,
	IssueDataLoadingFailure:   0,
	IssueMissingDataFile:      0,
	IssueEnoughColumns:        0,
	IssueColumnName:           0,
	IssueColumnOrder:          1,
	IssueColumnMissing:        1,
	IssueColumnDTypeUndefined: 2,
	IssueColumnDType:          3,
	IssueColumnDTypeMisc:      4,
	IssueRequiredNotNull:      5,
	IssueColumnContents:       10,
	IssueRowRule:              15,
	IssueMultiFile:            20,
}

// Issue is a single validation finding.
type Issue struct {
	DataFormat string       `json:"data_format"`
	Type       IssueType    `json:"issue_type"`
	Level      Level        `json:"issue_level"`
	SortOrder  int          `json:"issue_sort_order"`
	Details    IssueDetails `json:"issue_details"`
}

// IssueDetails is the type-specific payload of an issue.
type IssueDetails interface {
	issueType() IssueType
}

// NewIssue builds an issue with the sort order of its type.
func NewIssue(format string, level Level, details IssueDetails) Issue {
	t := details.issueType()
	return Issue{
		DataFormat: format,
		Type:       t,
		Level:      level,
		SortOrder:  sortOrders[t],
		Details:    details,
	}
}

// UnmarshalJSON decodes issue_details into the struct matching issue_type.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var raw struct {
		DataFormat string          `json:"data_format"`
		Type       IssueType       `json:"issue_type"`
		Level      Level           `json:"issue_level"`
		SortOrder  int             `json:"issue_sort_order"`
		Details    json.RawMessage `json:"issue_details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	details, err := newDetails(raw.Type)
	if err != nil {
		return err
	}
	if len(raw.Details) > 0 && string(raw.Details) != "null" {
		if err := json.Unmarshal(raw.Details, details); err != nil {
			return fmt.Errorf("decode %s details: %w", raw.Type, err)
		}
	}

	i.DataFormat = raw.DataFormat
	i.Type = raw.Type
	i.Level = raw.Level
	i.SortOrder = raw.SortOrder
	i.Details = details
	return nil
}

func newDetails(t IssueType) (IssueDetails, error) {
	switch t {
	case IssueFileNotFound:
		return &FileNotFoundDetails{}, nil
	case IssueEmptyFile:
		return &EmptyFileDetails{}, nil
	case IssueDataLoadingFailure:
		return &LoadFailureDetails{}, nil
	case IssueColumnName:
		return &ColumnNameDetails{}, nil
	case IssueColumnOrder:
		return &ColumnOrderDetails{}, nil
	case IssueColumnDTypeUndefined:
		return &DTypeUndefinedDetails{}, nil
	case IssueColumnDType:
		return &DTypeDetails{}, nil
	case IssueColumnDTypeMisc:
		return &DTypeMiscDetails{}, nil
	case IssueEnoughColumns:
		return &EnoughColumnsDetails{}, nil
	case IssueRequiredNotNull:
		return &NotNullDetails{}, nil
	case IssueColumnContents:
		return &ContentsDetails{}, nil
	case IssueColumnMissing:
		return &ColumnMissingDetails{}, nil
	case IssueRowRule:
		return &RowRuleDetails{}, nil
	case IssueMissingDataFile:
		return &MissingDataFileDetails{}, nil
	case IssueMultiFile:
		return &MultiFileDetails{}, nil
	default:
		return nil, fmt.Errorf("unknown issue type %q", t)
	}
}

// SortIssues orders issues by level, format, sort order, then type.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		x, y := issues[a], issues[b]
		if x.Level != y.Level {
			return x.Level < y.Level
		}
		if x.DataFormat != y.DataFormat {
			return x.DataFormat < y.DataFormat
		}
		if x.SortOrder != y.SortOrder {
			return x.SortOrder < y.SortOrder
		}
		return x.Type < y.Type
	})
}

// ----------------------------------------------------------------------------
// Failing rows
// ----------------------------------------------------------------------------

// FailingRow records one offending row: its user-facing line number, the
// value of the format's id column, and the offending value.
//
// Value is a string for cell failures, an int column number for rows that are
// too short, and a []RuleCell for row rule failures. It serializes as a
// three-element JSON array.
type FailingRow struct {
	RowNumber int
	IDValue   string
	Value     any
}

// RuleCell is one column value a row rule depends on.
type RuleCell struct {
	Column       string `json:"column"`
	ColumnNumber int    `json:"column_number"`
	Value        string `json:"value"`
}

func (f FailingRow) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{f.RowNumber, f.IDValue, f.Value})
}

func (f *FailingRow) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("failing row: expected 3 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &f.RowNumber); err != nil {
		return fmt.Errorf("failing row number: %w", err)
	}
	if err := json.Unmarshal(parts[1], &f.IDValue); err != nil {
		// Id values written by other tools may be numbers.
		var n json.Number
		if err2 := json.Unmarshal(parts[1], &n); err2 != nil {
			return fmt.Errorf("failing row id: %w", err)
		}
		f.IDValue = n.String()
	}

	var s string
	if err := json.Unmarshal(parts[2], &s); err == nil {
		f.Value = s
		return nil
	}
	var n int
	if err := json.Unmarshal(parts[2], &n); err == nil {
		f.Value = n
		return nil
	}
	var cells []RuleCell
	if err := json.Unmarshal(parts[2], &cells); err == nil {
		f.Value = cells
		return nil
	}
	var v any
	if err := json.Unmarshal(parts[2], &v); err != nil {
		return err
	}
	f.Value = v
	return nil
}

// failureLog accumulates failing rows up to a cap while counting every failure.
type failureLog struct {
	limit int
	rows  []FailingRow
	total int
}

func newFailureLog(limit int) *failureLog {
	return &failureLog{limit: limit, rows: make([]FailingRow, 0)}
}

func (l *failureLog) add(row FailingRow) {
	l.total++
	if l.total <= l.limit {
		l.rows = append(l.rows, row)
	}
}

func (l *failureLog) complete() bool {
	return l.total <= l.limit
}

// ----------------------------------------------------------------------------
// Details structs
// ----------------------------------------------------------------------------

type FileNotFoundDetails struct {
	Msg string `json:"msg"`
}

type EmptyFileDetails struct{}

type LoadFailureDetails struct {
	Msg       string `json:"msg"`
	ErrorMsg  string `json:"error_msg"`
	ErrorType string `json:"error_type"`
}

type MissingDataFileDetails struct {
	DataDir string `json:"data_dir"`
}

type ColumnNameDetails struct {
	ColumnsMissingFromFile []string `json:"columns_missing_from_file"`
	ExtraColumnsInFile     []string `json:"extra_columns_in_file"`
}

// ColumnPosition is one positional mismatch between expected and actual header.
type ColumnPosition struct {
	ColumnNumber       int    `json:"column_number"`
	ExpectedColumnName string `json:"expected_column_name"`
	ColumnNameInFile   string `json:"column_name_in_file"`
}

type ColumnOrderDetails struct {
	ColsOutOfOrder []ColumnPosition `json:"cols_out_of_order"`
}

type DTypeUndefinedDetails struct {
	Column string `json:"column"`
}

type DTypeDetails struct {
	Column                   string       `json:"column"`
	IDColumn                 string       `json:"id_column"`
	FailingRowsAndValues     []FailingRow `json:"failing_rows_and_values"`
	NumberOfUncastableValues int          `json:"number_of_uncastable_values"`
	TotalFails               int          `json:"total_fails"`
	AllFailsRecorded         bool         `json:"all_fails_recorded"`
	IntendedType             string       `json:"intended_type"`
}

type DTypeMiscDetails struct {
	RowNumber int    `json:"row_number"`
	Column    string `json:"column"`
	ErrorMsg  string `json:"error_msg"`
	ErrorType string `json:"error_type"`
}

type EnoughColumnsDetails struct {
	Column               string       `json:"column"`
	IDColumn             string       `json:"id_column"`
	FailingRowsAndValues []FailingRow `json:"failing_rows_and_values"`
	TotalFails           int          `json:"total_fails"`
	AllFailsRecorded     bool         `json:"all_fails_recorded"`
}

type NotNullDetails struct {
	Column                string       `json:"column"`
	IDColumn              string       `json:"id_column"`
	RowsWhereColumnIsNull []FailingRow `json:"rows_where_column_is_null"`
	TotalFails            int          `json:"total_fails"`
	AllFailsRecorded      bool         `json:"all_fails_recorded"`
}

type ContentsDetails struct {
	Column               string       `json:"column"`
	IDColumn             string       `json:"id_column"`
	Validation           string       `json:"validation"`
	FailingRowsAndValues []FailingRow `json:"failing_rows_and_values"`
	TotalFails           int          `json:"total_fails"`
	AllFailsRecorded     bool         `json:"all_fails_recorded"`
}

type ColumnMissingDetails struct {
	Column string `json:"column"`
}

type RowRuleDetails struct {
	RuleDescr            string       `json:"rule_descr"`
	IDColumn             string       `json:"id_column"`
	Validation           string       `json:"validation"`
	FailingRowsAndValues []FailingRow `json:"failing_rows_and_values"`
	TotalFails           int          `json:"total_fails"`
	AllFailsRecorded     bool         `json:"all_fails_recorded"`
}

type MultiFileDetails struct {
	OtherDataFormat string              `json:"other_data_format"`
	ShortMsg        string              `json:"short_msg"`
	LongMsg         string              `json:"long_msg"`
	InvalidValues   []map[string]string `json:"invalid_values"`
}

func (*FileNotFoundDetails) issueType() IssueType    { return IssueFileNotFound }
func (*EmptyFileDetails) issueType() IssueType       { return IssueEmptyFile }
func (*LoadFailureDetails) issueType() IssueType     { return IssueDataLoadingFailure }
func (*MissingDataFileDetails) issueType() IssueType { return IssueMissingDataFile }
func (*ColumnNameDetails) issueType() IssueType      { return IssueColumnName }
func (*ColumnOrderDetails) issueType() IssueType     { return IssueColumnOrder }
func (*DTypeUndefinedDetails) issueType() IssueType  { return IssueColumnDTypeUndefined }
func (*DTypeDetails) issueType() IssueType           { return IssueColumnDType }
func (*DTypeMiscDetails) issueType() IssueType       { return IssueColumnDTypeMisc }
func (*EnoughColumnsDetails) issueType() IssueType   { return IssueEnoughColumns }
func (*NotNullDetails) issueType() IssueType         { return IssueRequiredNotNull }
func (*ContentsDetails) issueType() IssueType        { return IssueColumnContents }
func (*ColumnMissingDetails) issueType() IssueType   { return IssueColumnMissing }
func (*RowRuleDetails) issueType() IssueType         { return IssueRowRule }
func (*MultiFileDetails) issueType() IssueType       { return IssueMultiFile }
