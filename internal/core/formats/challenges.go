package formats

import "github.com/JonMunkholm/beadinspect/internal/core"

func init() {
	registerChallengers()
	registerChallenges()
	registerCAIChallenges()
}

func registerChallengers() {
	core.Register(core.FormatDefinition{
		Name:     Challengers,
		Label:    "Challengers",
		Order:    1,
		IDColumn: "challenger",
		Columns: []core.ColumnSpec{
			str("challenger"),
			str("category"),
			str("organization"),
			str("webpage"),
			str("provider_id"),
			str("contact_name"),
			str("contact_email"),
			str("contact_phone"),
		},
		Nullable: []string{"webpage", "provider_id", "contact_phone"},
		ColumnChecks: []core.ColumnCheck{
			errorCheck("challenger", core.NonNullableValidator),
			errorCheck("category", core.ChallengerTypeValidator),
			errorCheck("organization", core.NonNullableValidator),
			errorCheck("webpage", core.WebPageNullable),
			errorCheck("provider_id", core.FCCProviderIDNullable),
			errorCheck("contact_name", core.NonNullableValidator),
			errorCheck("contact_email", core.EmailValidator),
			errorCheck("contact_phone", core.PhoneNullable),
		},
		RowChecks: []core.RowCheck{
			errorRule(core.ChallengersISPProviderID),
		},
	})
}

func registerChallenges() {
	core.Register(core.FormatDefinition{
		Name:     Challenges,
		Label:    "Challenges",
		Order:    2,
		IDColumn: "challenge",
		Columns: []core.ColumnSpec{
			str("challenge"),
			str("challenge_type"),
			str("challenger"),
			str("challenge_date"),
			str("rebuttal_date"),
			str("resolution_date"),
			str("disposition"),
			str("provider_id"),
			integer("technology"),
			integer("location_id"),
			str("unit"),
			str("reason_code"),
			str("evidence_file_id"),
			str("response_file_id"),
			str("resolution"),
			float("advertised_download_speed"),
			float("download_speed"),
			float("advertised_upload_speed"),
			float("upload_speed"),
			float("latency"),
		},
		Nullable: []string{
			"challenger",
			"rebuttal_date",
			"provider_id",
			"technology",
			"unit",
			"reason_code",
			"evidence_file_id",
			"response_file_id",
			"resolution",
			"advertised_download_speed",
			"download_speed",
			"advertised_upload_speed",
			"upload_speed",
			"latency",
		},
		ColumnChecks: []core.ColumnCheck{
			errorCheck("challenge", core.ChallengeIDValidator),
			errorCheck("challenge_type", core.ChallengeTypeValidator),
			errorCheck("challenge_date", core.DateValidator),
			errorCheck("rebuttal_date", core.DateNullable),
			errorCheck("resolution_date", core.DateNullable),
			errorCheck("disposition", core.ChallengeDispositionValidator),
			errorCheck("provider_id", core.FCCProviderIDNullable),
			errorCheck("technology", core.TechnologyNullable),
			errorCheck("location_id", core.BSLLocationIDValidator),
			errorCheck("reason_code", core.ReasonCodeNullable),
			errorCheck("evidence_file_id", core.FileNameNullable),
			errorCheck("response_file_id", core.FileNameNullable),
			errorCheck("advertised_download_speed", core.NonNegativeNullable),
			errorCheck("download_speed", core.NonNegativeNullable),
			errorCheck("advertised_upload_speed", core.NonNegativeNullable),
			errorCheck("upload_speed", core.NonNegativeNullable),
			errorCheck("latency", core.NonNegativeNullable),
		},
		RowChecks: []core.RowCheck{
			errorRule(core.ChallengerIDRequired),
			errorRule(core.AvailabilityReasonCode),
			errorRule(core.ResolutionRequired),
			errorRule(core.AdvertisedDownloadSpeedRequired),
			errorRule(core.DownloadSpeedRequired),
			errorRule(core.AdvertisedUploadSpeedRequired),
			errorRule(core.UploadSpeedRequired),
			errorRule(core.RebuttalDateAndResponseFile),
			errorRule(core.LatencyRequired),
			errorRule(core.ProviderIDRequired),
			errorRule(core.TechnologyRequired),
			errorRule(core.EvidenceFileRequired),
			errorRule(core.ChallengeBeforeRebuttal),
			errorRule(core.ChallengeBeforeResolution),
			errorRule(core.RebuttalBeforeResolution),
		},
	})
}

func registerCAIChallenges() {
	core.Register(core.FormatDefinition{
		Name:     CAIChallenges,
		Label:    "CAI Challenges",
		Order:    3,
		IDColumn: "challenge",
		Columns: append([]core.ColumnSpec{
			str("challenge"),
			str("challenge_type"),
			str("challenger"),
			str("category_code"),
			str("disposition"),
			str("challenge_explanation"),
		}, caiColumns()...),
		Nullable: []string{
			"category_code",
			"explanation",
			"entity_name",
			"entity_number",
			"cms_number",
			"frn",
			"location_id",
			"address_primary",
			"city",
			"zip_code",
			"longitude",
			"latitude",
			"availability",
			"challenge_explanation",
		},
		ColumnChecks: []core.ColumnCheck{
			errorCheck("challenge", core.ChallengeIDValidator),
			errorCheck("challenge_type", core.CAIChallengeTypeValidator),
			errorCheck("category_code", core.CAIRationaleNullable),
			errorCheck("disposition", core.CAIChallengeDispositionValidator),
			errorCheck("type", core.CAITypeValidator),
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
			errorRule(core.CAIChallengeLocation),
			errorRule(core.CAIChallengeCategoryCode),
			errorRule(core.CAIChallengeExplanation),
			errorRule(core.CAIChallengeEntityName),
			errorRule(core.CAIChallengeChallengeExplanation),
			infoRule(core.CAIChallengeCMSGivenType),
			infoRule(core.CAIChallengeFRNGivenType),
		},
	})
}
