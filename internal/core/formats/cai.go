package formats

import "github.com/JonMunkholm/beadinspect/internal/core"

func init() {
	registerCAI(CAI, "CAI", 4)
	registerCAI(PostChallengeCAI, "Post-Challenge CAI", 5)
}

// caiColumns is the CAI column block shared by the CAI formats and the tail
// of cai_challenges.
func caiColumns() []core.ColumnSpec {
	return []core.ColumnSpec{
		str("type"),
		str("entity_name"),
		integer("entity_number"),
		str("cms_number"),
		str("frn"),
		integer("location_id"),
		str("address_primary"),
		str("city"),
		str("state"),
		str("zip_code"),
		str("longitude"),
		str("latitude"),
		str("explanation"),
		integer("need"),
		integer("availability"),
	}
}

// registerCAI registers one of the two formats sharing the CAI layout.
func registerCAI(name, label string, order int) {
	core.Register(core.FormatDefinition{
		Name:     name,
		Label:    label,
		Order:    order,
		IDColumn: "entity_name",
		Columns:  caiColumns(),
		Nullable: []string{
			"entity_number",
			"cms_number",
			"frn",
			"location_id",
			"address_primary",
			"city",
			"zip_code",
			"longitude",
			"latitude",
			"explanation",
			"availability",
		},
		ColumnChecks: []core.ColumnCheck{
			errorCheck("type", core.CAITypeValidator),
			errorCheck("entity_name", core.NonNullableValidator),
			infoCheck("cms_number", core.CMSCertificateNullable),
			infoCheck("frn", core.FRNNullable),
			errorCheck("location_id", core.BSLLocationIDNullable),
			errorCheck("state", core.StateValidator),
			errorCheck("zip_code", core.ZipNullable),
			errorCheck("longitude", core.LongitudeNullable),
			errorCheck("latitude", core.LatitudeNullable),
			errorCheck("need", core.NonNegativeValidator),
			errorCheck("availability", core.NonNegativeNullable),
		},
		RowChecks: []core.RowCheck{
			infoRule(core.CAICMSGivenType),
			infoRule(core.CAIFRNGivenType),
			errorRule(core.CAILocation),
			errorRule(core.CAIExplanationGivenType),
		},
	})
}
