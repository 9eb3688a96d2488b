// Package formats registers all BEAD challenge data formats with the core
// registry. Import this package to ensure all formats are registered.
package formats

import "github.com/JonMunkholm/beadinspect/internal/core"

// Format names, in expected-format order.
const (
	Challengers            = "challengers"
	Challenges             = "challenges"
	CAIChallenges          = "cai_challenges"
	CAI                    = "cai"
	PostChallengeCAI       = "post_challenge_cai"
	PostChallengeLocations = "post_challenge_locations"
	Unserved               = "unserved"
	Underserved            = "underserved"
)

func errorCheck(column string, v core.Validator) core.ColumnCheck {
	return core.ColumnCheck{Column: column, Validator: v, Level: core.LevelError}
}

func infoCheck(column string, v core.Validator) core.ColumnCheck {
	return core.ColumnCheck{Column: column, Validator: v, Level: core.LevelInfo}
}

func errorRule(r core.RowRule) core.RowCheck {
	return core.RowCheck{Rule: r, Level: core.LevelError}
}

func infoRule(r core.RowRule) core.RowCheck {
	return core.RowCheck{Rule: r, Level: core.LevelInfo}
}

func str(name string) core.ColumnSpec {
	return core.ColumnSpec{Name: name, Type: core.DTypeString}
}

func integer(name string) core.ColumnSpec {
	return core.ColumnSpec{Name: name, Type: core.DTypeInt}
}

func float(name string) core.ColumnSpec {
	return core.ColumnSpec{Name: name, Type: core.DTypeFloat}
}
