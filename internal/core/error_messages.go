package core

// # Error Codes Reference
//
// User-facing messages with codes for support reference. The CLI and the web
// API print the code next to the message so a failed run can be diagnosed
// from a screenshot or a log line.
//
// # Run Errors (RUN001-RUN099)
//
// Problems that abort a whole validation run:
//
//	RUN001 - Output exists: An output file for this run already exists
//	         Action: Wait a second and rerun, or move the old results
//	         Patterns: "output already exists"
//
//	RUN002 - Unknown format: A requested data format is not supported
//	         Action: Run "beadinspect formats" to list supported formats
//	         Patterns: "unknown format"
//
//	RUN003 - Bad data directory: The data directory cannot be read
//	         Action: Check the data directory path
//	         Patterns: "invalid data directory"
//
//	RUN004 - Bad limit: The single error log limit is negative
//	         Action: Pass zero or a positive number
//	         Patterns: "invalid single error log limit"
//
//	RUN005 - Run not found: No results exist for this run stamp
//	         Action: List runs to find a valid stamp
//	         Patterns: "run not found"
//
//	RUN006 - Run in progress: Another validation run is still going
//	         Action: Wait for it to finish and retry
//	         Patterns: "run already in progress"
//
// # File Errors (FILE001-FILE099)
//
// Errors raised while loading a single data file:
//
//	FILE001 - File not found: Expected CSV file is missing
//	          Patterns: "file not found"
//
//	FILE002 - Invalid CSV: File could not be parsed as CSV
//	          Patterns: "parse "
//
//	FILE003 - Encoding error: File could not be decoded
//	          Patterns: "decode "
//
//	FILE004 - Header error: File header cannot be standardized
//	          Patterns: "header column"
//
//	FILE005 - Empty file: File has no data and no header
//	          Patterns: "empty file"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL004 - Missing column: Expected column is missing from the file
//	         Patterns: "not found in header"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate run: This run was already stored
//	DB004 - Connection refused: Unable to connect to database
//	DB006 - Timeout: Operation timed out
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// Patterns are matched case-insensitively with strings.Contains against the
// error text. The first matching pattern wins.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: specific patterns before general ones.
var errorPatterns = []errorPattern{
	// Run errors
	{
		pattern: "output already exists",
		msg: UserMessage{
			Message: "An output file for this run already exists",
			Action:  "Wait a second and rerun, or move the old results",
			Code:    "RUN001",
		},
	},
	{
		pattern: "unknown format",
		msg: UserMessage{
			Message: "A requested data format is not supported",
			Action:  "Run \"beadinspect formats\" to list supported formats",
			Code:    "RUN002",
		},
	},
	{
		pattern: "invalid data directory",
		msg: UserMessage{
			Message: "The data directory cannot be read",
			Action:  "Check the data directory path",
			Code:    "RUN003",
		},
	},
	{
		pattern: "invalid single error log limit",
		msg: UserMessage{
			Message: "The single error log limit must not be negative",
			Action:  "Pass zero or a positive number",
			Code:    "RUN004",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "No results exist for this run",
			Action:  "List runs to find a valid stamp",
			Code:    "RUN005",
		},
	},
	{
		pattern: "run already in progress",
		msg: UserMessage{
			Message: "Another validation run is still going",
			Action:  "Wait for it to finish and retry",
			Code:    "RUN006",
		},
	},

	// File errors
	{
		pattern: "file not found",
		msg: UserMessage{
			Message: "Expected CSV file is missing",
			Action:  "Place the file in the data directory",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no data and no header",
			Action:  "Export the file again with its header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "header column",
		msg: UserMessage{
			Message: "The file header cannot be standardized",
			Action:  "Rename columns that collide after standardization",
			Code:    "FILE004",
		},
	},
	{
		pattern: "decode ",
		msg: UserMessage{
			Message: "The file could not be decoded",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "parse ",
		msg: UserMessage{
			Message: "The file is not a valid CSV",
			Action:  "Ensure the file is comma-separated with balanced quotes",
			Code:    "FILE002",
		},
	},

	// Validation errors
	{
		pattern: "not found in header",
		msg: UserMessage{
			Message: "Expected column is missing from the file",
			Action:  "Check that the header matches the expected columns",
			Code:    "VAL004",
		},
	},

	// Database errors
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "This run was already stored",
			Action:  "No action needed",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try again later",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the original error",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, a generic message with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats an error as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
