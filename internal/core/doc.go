// Package core provides the validation engine for BEAD challenge data files.
//
// This package holds all domain logic independent of any output or transport
// layer. It is used by the CLI, the web server and tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Format Definitions: Registered via the registry, each format has its
//     columns, types, nullable set, column validators and row rules.
//   - Validators: Named single-value predicates with a nullable twin.
//   - Row Rules: Named predicates over several cells of one row.
//   - Issues: Typed, sortable findings with per-type details.
//   - Inspector: The entry point for a run over a data directory.
//
// # Format Registry
//
// Formats are registered at init time using [Register]:
//
//	core.Register(core.FormatDefinition{
//	    Name:     "unserved",
//	    IDColumn: "location_id",
//	    Columns:  []core.ColumnSpec{{Name: "location_id", Type: core.DTypeInt}},
//	    ColumnChecks: []core.ColumnCheck{
//	        {Column: "location_id", Validator: core.BSLLocationIDValidator, Level: core.LevelError},
//	    },
//	})
//
// # Single-File Pipeline
//
// [ValidateFile] loads a CSV and runs, in order: column names, column order,
// column types, non-null, column contents and row rules. Every stage emits at
// most one issue per column or rule; failing rows are capped at the
// single-error-log limit while totals keep counting.
//
// # Runs
//
// [Inspector.Inspect] locates each requested format's file, validates it,
// runs the cross-file [Relationships] when every file is present, sorts the
// issues with [SortIssues] and hands the [Run] to each [Sink].
//
// # Error Handling
//
// Run-level errors are mapped to user-friendly messages with [MapError].
package core
