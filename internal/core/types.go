// Package core provides the validation engine for BEAD challenge datasets.
// This package has no UI dependencies and can be used by any frontend.
package core

// DType represents the semantic type a column is cast to before validation.
type DType int

const (
	DTypeString DType = iota
	DTypeInt
	DTypeFloat
)

// String returns the short type name used in issue details.
func (d DType) String() string {
	switch d {
	case DTypeInt:
		return "int"
	case DTypeFloat:
		return "float"
	default:
		return "str"
	}
}

// Level is the severity of an issue.
type Level string

const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

// Levels lists issue levels in report order.
var Levels = []Level{LevelError, LevelInfo}

// ColumnSpec declares one expected column and the type it is cast to.
type ColumnSpec struct {
	Name string
	Type DType
}

// ColumnCheck binds a column validator to a column at a given level.
type ColumnCheck struct {
	Column    string
	Validator Validator
	Level     Level
}

// RowCheck binds a row rule to a format at a given level.
type RowCheck struct {
	Rule  RowRule
	Level Level
}

// FormatDefinition contains everything needed to validate one dataset format.
type FormatDefinition struct {
	Name     string // File stem and data_format value: "challenges"
	Label    string // Display name: "Challenges"
	Order    int    // Position in the expected-format list
	IDColumn string // Column used to identify failing rows

	Columns      []ColumnSpec // Ordered expected columns (index column excluded)
	Nullable     []string     // Columns allowed to be empty
	ColumnChecks []ColumnCheck
	RowChecks    []RowCheck

	// Header is supplied for headerless files; nil means the first record is the header.
	Header []string

	// RowOffset converts a zero-based row index into the line number users
	// see. Zero means the headered default of 2.
	RowOffset int

	nullable map[string]bool
}

// ColumnNames returns the expected column names in order.
func (d FormatDefinition) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// IsNullable reports whether a column may hold empty values.
func (d FormatDefinition) IsNullable(column string) bool {
	if d.nullable != nil {
		return d.nullable[column]
	}
	for _, n := range d.Nullable {
		if n == column {
			return true
		}
	}
	return false
}

// DTypes returns the column to type map.
func (d FormatDefinition) DTypes() map[string]DType {
	m := make(map[string]DType, len(d.Columns))
	for _, c := range d.Columns {
		m[c.Name] = c.Type
	}
	return m
}

// FileName returns the expected CSV file name for the format.
func (d FormatDefinition) FileName() string {
	return d.Name + ".csv"
}

// LineOffset returns the row offset, applying the headered default.
func (d FormatDefinition) LineOffset() int {
	if d.RowOffset == 0 {
		return defaultRowOffset
	}
	return d.RowOffset
}

// defaultRowOffset accounts for the header line and 1-based numbering.
const defaultRowOffset = 2
