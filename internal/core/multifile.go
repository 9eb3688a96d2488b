package core

// multifile.go checks consistency between related datasets.
//
// A Relationship names a source format whose link column must only hold ids
// registered in a target format. Ids compare case-insensitively, and an empty
// id is an id like any other. One issue is produced per relationship, never
// per row.

import (
	"fmt"
	"sort"
	"strings"
)

// Relationship ties a source format's link column to a target format.
type Relationship struct {
	Source      string // Format holding references: "challenges"
	SourceLabel string // Display name in messages: "Challenges"
	Target      string // Format holding registrations: "challengers"
	TargetLabel string
	Column      string // Link column present in both formats
}

// Relationships lists the cross-file checks run after single-file validation.
var Relationships = []Relationship{
	{
		Source:      "challenges",
		SourceLabel: "Challenges",
		Target:      "challengers",
		TargetLabel: "Challengers",
		Column:      "challenger",
	},
	{
		Source:      "cai_challenges",
		SourceLabel: "CAIChallenges",
		Target:      "challengers",
		TargetLabel: "Challengers",
		Column:      "challenger",
	},
}

// missingIDsKey is the key used in multi-file invalid_values entries.
const missingIDsKey = "missing_challenger_ids"

// CheckRelationship compares the link column of two loaded datasets.
// It returns nil when every referenced id is registered.
func CheckRelationship(rel Relationship, source, target *Dataset) *Issue {
	sourceIDs, errS := source.Column(rel.Column)
	targetIDs, errT := target.Column(rel.Column)
	if errS != nil || errT != nil {
		issue := NewIssue(rel.Source, LevelError, &MultiFileDetails{
			OtherDataFormat: rel.Target,
			ShortMsg:        fmt.Sprintf("Missing column linking %s.csv and %s.csv", rel.Target, rel.Source),
			LongMsg: fmt.Sprintf(
				"Couldn't compare the lists of %s in the %s.csv and %s.csv datasets as one or both files are missing the '%s' column.",
				rel.Target, rel.Source, rel.Target, rel.Column,
			),
			InvalidValues: []map[string]string{{missingIDsKey: "N/A"}},
		})
		return &issue
	}

	missing := MissingIDs(sourceIDs, targetIDs)
	if len(missing) == 0 {
		return nil
	}

	invalid := make([]map[string]string, len(missing))
	for i, id := range missing {
		invalid[i] = map[string]string{missingIDsKey: id}
	}
	issue := NewIssue(rel.Source, LevelError, &MultiFileDetails{
		OtherDataFormat: rel.Target,
		ShortMsg:        fmt.Sprintf("Inconsistent ids across %s.csv and %s.csv", rel.Target, rel.Source),
		LongMsg: fmt.Sprintf(
			"Found %s in the %s dataset that aren't in the %s dataset.",
			rel.Target, rel.SourceLabel, rel.TargetLabel,
		),
		InvalidValues: invalid,
	})
	return &issue
}

// MissingIDs returns the sorted, lowercased ids in refs that do not appear in
// registered. An empty reference is missing unless an empty id is registered.
func MissingIDs(refs, registered []string) []string {
	known := make(map[string]bool, len(registered))
	for _, id := range registered {
		known[strings.ToLower(id)] = true
	}

	seen := make(map[string]bool)
	var missing []string
	for _, id := range refs {
		id = strings.ToLower(id)
		if known[id] || seen[id] {
			continue
		}
		seen[id] = true
		missing = append(missing, id)
	}
	sort.Strings(missing)
	return missing
}
