package formats

import "github.com/JonMunkholm/beadinspect/internal/core"

func init() {
	registerPostChallengeLocations()
	registerLocationList(Unserved, "Unserved", 7)
	registerLocationList(Underserved, "Underserved", 8)
}

func registerPostChallengeLocations() {
	core.Register(core.FormatDefinition{
		Name:     PostChallengeLocations,
		Label:    "Post-Challenge Locations",
		Order:    6,
		IDColumn: "location_id",
		Columns: []core.ColumnSpec{
			integer("location_id"),
			integer("classification"),
		},
		ColumnChecks: []core.ColumnCheck{
			errorCheck("location_id", core.BSLLocationIDValidator),
			errorCheck("classification", core.LocationClassificationValidator),
		},
	})
}

// registerLocationList registers a headerless, single-column list of
// location ids. Without a header line, row numbers start at 1.
func registerLocationList(name, label string, order int) {
	core.Register(core.FormatDefinition{
		Name:      name,
		Label:     label,
		Order:     order,
		IDColumn:  "location_id",
		Columns:   []core.ColumnSpec{integer("location_id")},
		Header:    []string{"location_id"},
		RowOffset: 1,
		ColumnChecks: []core.ColumnCheck{
			errorCheck("location_id", core.BSLLocationIDValidator),
		},
	})
}
