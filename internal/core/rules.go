package core

// rules.go defines row rules: predicates over a whole row that tie several
// columns together.
//
// Rules address cells by position in the loaded row, where position 0 is the
// synthetic index column. Each rule declares the columns it reads so failures
// can show exactly the values that matter. A row too short to hold any
// declared column fails the rule.
//
// Rules are assembled from a handful of combinators (requiredWhen,
// requiredUnless, dateOrder, anyGroupPresent, ...) parameterized by column
// positions, so a rule written for one format is reused by another format
// with different positions.

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"
	"unicode/utf8"
)

// ColumnRef names a column a row rule reads and its position in the row.
type ColumnRef struct {
	Name  string
	Index int
}

// RowRule is a named, documented predicate over a whole row.
type RowRule struct {
	Name       string
	RuleDescr  string
	ShortDescr string
	Columns    []ColumnRef // Sorted by Index
	check      func(row []string) bool
}

// Check evaluates the rule against a row of canonical values.
// Rows too short for the rule fail, as does a predicate that panics.
func (r RowRule) Check(row []string) (ok bool) {
	for _, c := range r.Columns {
		if c.Index < 0 || c.Index >= len(row) {
			return false
		}
	}
	if r.check == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return r.check(row)
}

// MaxIndex returns the highest column position the rule reads.
func (r RowRule) MaxIndex() int {
	maxIdx := -1
	for _, c := range r.Columns {
		maxIdx = max(maxIdx, c.Index)
	}
	return maxIdx
}

func newRowRule(name, descr, short string, cols []ColumnRef, check func([]string) bool) RowRule {
	sorted := make([]ColumnRef, len(cols))
	copy(sorted, cols)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	rule := RowRule{
		Name:       name,
		RuleDescr:  descr,
		ShortDescr: short,
		Columns:    sorted,
		check:      check,
	}
	registerRowRule(rule)
	return rule
}

// col is shorthand for a ColumnRef literal.
func col(name string, index int) ColumnRef {
	return ColumnRef{Name: name, Index: index}
}

// ----------------------------------------------------------------------------
// Catalog
// ----------------------------------------------------------------------------

var (
	ruleCatalog   = make(map[string]RowRule)
	ruleCatalogMu sync.RWMutex
)

func registerRowRule(r RowRule) {
	ruleCatalogMu.Lock()
	defer ruleCatalogMu.Unlock()
	if _, exists := ruleCatalog[r.Name]; exists {
		panic(fmt.Sprintf("row rule already registered: %s", r.Name))
	}
	ruleCatalog[r.Name] = r
}

// LookupRowRule returns a catalog row rule by name.
func LookupRowRule(name string) (RowRule, bool) {
	ruleCatalogMu.RLock()
	defer ruleCatalogMu.RUnlock()
	r, ok := ruleCatalog[name]
	return r, ok
}

// AllRowRules returns every catalog row rule sorted by name.
func AllRowRules() []RowRule {
	ruleCatalogMu.RLock()
	defer ruleCatalogMu.RUnlock()
	out := make([]RowRule, 0, len(ruleCatalog))
	for _, r := range ruleCatalog {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ----------------------------------------------------------------------------
// Combinators
// ----------------------------------------------------------------------------

// requiredWhen: target must be non-null when trigger is in the set.
func requiredWhen(trigger, target int, in map[string]bool) func([]string) bool {
	return func(row []string) bool {
		if in[row[trigger]] {
			return row[target] != ""
		}
		return true
	}
}

// requiredUnless: target must be non-null when trigger is not in the set.
func requiredUnless(trigger, target int, nullableFor map[string]bool) func([]string) bool {
	return func(row []string) bool {
		if !nullableFor[row[trigger]] {
			return row[target] != ""
		}
		return true
	}
}

// datePolicy controls how dateOrder treats null dates.
type datePolicy int

const (
	// requireFirst: the earlier date must be set; the later may be null.
	requireFirst datePolicy = iota
	// bothPresentOnly: order is only checked when both dates are set.
	bothPresentOnly
)

// orderDateLayout accepts dates with or without zero padding ("2024-1-9").
const orderDateLayout = "2006-1-2"

// dateOrder: the date at later must be on or after the date at earlier.
func dateOrder(earlier, later int, policy datePolicy) func([]string) bool {
	return func(row []string) bool {
		first, second := row[earlier], row[later]
		switch {
		case first != "" && second != "":
			a, errA := time.Parse(orderDateLayout, first)
			b, errB := time.Parse(orderDateLayout, second)
			if errA != nil || errB != nil {
				return false
			}
			return !b.Before(a)
		case policy == bothPresentOnly:
			return true
		default:
			return first != ""
		}
	}
}

// nullTogether: the columns are either all null or all non-null.
func nullTogether(a, b int) func([]string) bool {
	return func(row []string) bool {
		return (row[a] == "") == (row[b] == "")
	}
}

// anyGroupPresent: at least one group has every column non-null.
func anyGroupPresent(groups ...[]int) func([]string) bool {
	return func(row []string) bool {
		for _, g := range groups {
			complete := true
			for _, idx := range g {
				if row[idx] == "" {
					complete = false
					break
				}
			}
			if complete {
				return true
			}
		}
		return false
	}
}

// allowedWhen: when trigger has an entry in allowed, target must be one of
// its values.
func allowedWhen(trigger, target int, allowed map[string][]string) func([]string) bool {
	return func(row []string) bool {
		values, ok := allowed[row[trigger]]
		if !ok {
			return true
		}
		for _, v := range values {
			if row[target] == v {
				return true
			}
		}
		return false
	}
}

// matchesWhen: target must match pattern when trigger is in the set.
func matchesWhen(trigger, target int, in map[string]bool, pattern *regexp.Regexp) func([]string) bool {
	return func(row []string) bool {
		if in[row[trigger]] {
			return pattern.MatchString(row[target])
		}
		return true
	}
}

// minLengthWhen: target must have at least minLen characters (more than
// minLen when strict) when trigger is in the set.
func minLengthWhen(trigger, target int, in map[string]bool, minLen int, strict bool) func([]string) bool {
	return func(row []string) bool {
		if !in[row[trigger]] {
			return true
		}
		n := utf8.RuneCountInString(row[target])
		if strict {
			return n > minLen
		}
		return n >= minLen
	}
}

// any2 passes when either predicate passes.
func any2(a, b func([]string) bool) func([]string) bool {
	return func(row []string) bool {
		return a(row) || b(row)
	}
}

func codes[T comparable](table CodeTable[T], values ...T) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		if table.Has(v) {
			m[fmt.Sprint(v)] = true
		}
	}
	return m
}

// ----------------------------------------------------------------------------
// Challengers
// ----------------------------------------------------------------------------

var ChallengersISPProviderID = newRowRule(
	"challengers_isp_provider_id",
	"Broadband Providers must have FCC Provider ID.",
	"Broadband provider challengers are missing a valid provider_id",
	[]ColumnRef{col("category", 2), col("provider_id", 5)},
	matchesWhen(2, 5, codes(ChallengerTypes, ChallengerProvider), providerIDPattern),
)

// ----------------------------------------------------------------------------
// Challenges
// ----------------------------------------------------------------------------

const challengeTypeIdx = 2

var speedChallengeTypes = codes(ChallengeTypes,
	ChallengeAvailability, ChallengeSpeed, ChallengeLatency, ChallengeDataCap,
	ChallengeTechnology, ChallengeBusinessOnly, ChallengeEnforceable,
	ChallengePlannedService, ChallengeDSLMod, ChallengeFixedWirelessMod,
	ChallengeSpeedTestMod, ChallengeEntityMod1, ChallengeEntityMod2, ChallengeEntityMod3,
)

var ChallengerIDRequired = newRowRule(
	"challenger_id_required",
	"Challenger cannot be blank for challenge-types in [A, S, L, D, T, B, P].",
	"Required challenger id values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("challenger", 3)},
	requiredWhen(challengeTypeIdx, 3, codes(ChallengeTypes,
		ChallengeAvailability, ChallengeSpeed, ChallengeLatency, ChallengeDataCap,
		ChallengeTechnology, ChallengeBusinessOnly, ChallengePlannedService,
	)),
)

var EvidenceFileRequired = newRowRule(
	"evidence_file_required",
	"The 'evidence_file_id' value can only be null for challenge-types 'E' or 'V'.",
	"Required evidence_file_id values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("evidence_file_id", 13)},
	requiredUnless(challengeTypeIdx, 13, codes(ChallengeTypes, ChallengeEnforceable, ChallengeDSLMod)),
)

var RebuttalDateAndResponseFile = newRowRule(
	"rebuttal_date_and_response_file",
	"The rebuttal_date and response_file_id must either both be null or both should be non-null.",
	"Inconsistent nullness of rebuttal_date and response_file_id",
	[]ColumnRef{col("rebuttal_date", 5), col("response_file_id", 14)},
	nullTogether(5, 14),
)

var ChallengeBeforeRebuttal = newRowRule(
	"challenge_before_rebuttal",
	"The rebuttal_date must either be on-or-after the challenge_date or it must be null (if the challenge was not rebutted).",
	"challenge_date and rebuttal_date in wrong order",
	[]ColumnRef{col("challenge_date", 4), col("rebuttal_date", 5)},
	dateOrder(4, 5, requireFirst),
)

var ChallengeBeforeResolution = newRowRule(
	"challenge_before_resolution",
	"The resolution_date must either be on-or-after the challenge_date or it must be null (if the challenge is not yet resolved).",
	"Challenge and resolution dates in wrong order",
	[]ColumnRef{col("challenge_date", 4), col("resolution_date", 6)},
	dateOrder(4, 6, requireFirst),
)

var RebuttalBeforeResolution = newRowRule(
	"rebuttal_before_resolution",
	"If the rebuttal_date and resolution_date are not null, the rebuttal_date must be before or equal to the resolution_date.",
	"Rebuttal and resolution dates in wrong order",
	[]ColumnRef{col("rebuttal_date", 5), col("resolution_date", 6)},
	dateOrder(5, 6, bothPresentOnly),
)

var ProviderIDRequired = newRowRule(
	"provider_id_required",
	"A 'provider_id' value is required for all challenge_types except 'P'.",
	"Required provider_id values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("provider_id", 8)},
	requiredUnless(challengeTypeIdx, 8, codes(ChallengeTypes, ChallengePlannedService)),
)

var TechnologyRequired = newRowRule(
	"technology_required",
	"A technology value is required for all challenge-types except for N.",
	"Required technology values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("technology", 9)},
	func(row []string) bool {
		if Technologies.Contains(row[9]) {
			return true
		}
		return row[challengeTypeIdx] == string(ChallengeNotEnforceable) && row[9] == ""
	},
)

var AvailabilityReasonCode = newRowRule(
	"availability_reason_code",
	"Availability-type challenges must have a non-blank 'reason_code' in [1, 2, 3, 4, 5, 6, 8, 9].",
	"Required reason_code values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("reason_code", 12)},
	allowedWhen(challengeTypeIdx, 12, map[string][]string{
		string(ChallengeAvailability): {"1", "2", "3", "4", "5", "6", "8", "9"},
	}),
)

var resolvedDispositions = codes(ChallengeDispositions,
	DispositionIncomplete, DispositionSustained, DispositionRejected,
)

var ResolutionRequired = newRowRule(
	"resolution_required",
	"A 'resolution' value is only required when the challenge_type is 'E' or the disposition is 'I', 'R', or 'S'.",
	"Required resolution values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("disposition", 7), col("resolution", 15)},
	any2(
		func(row []string) bool {
			return row[challengeTypeIdx] != string(ChallengeEnforceable) && !resolvedDispositions[row[7]]
		},
		func(row []string) bool {
			return utf8.RuneCountInString(row[15]) >= 3
		},
	),
)

var AdvertisedDownloadSpeedRequired = newRowRule(
	"advertised_download_speed_required",
	"An 'advertised_download_speed' value is needed for all non-CAI challenge-types except for 'N'.",
	"Required advertised_download_speed values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("advertised_download_speed", 16)},
	requiredWhen(challengeTypeIdx, 16, speedChallengeTypes),
)

var DownloadSpeedRequired = newRowRule(
	"download_speed_required",
	"A 'download_speed' value is only needed for challenge-types 'M' and 'S'.",
	"Required download_speed values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("download_speed", 17)},
	requiredWhen(challengeTypeIdx, 17, codes(ChallengeTypes, ChallengeSpeedTestMod, ChallengeSpeed)),
)

var AdvertisedUploadSpeedRequired = newRowRule(
	"advertised_upload_speed_required",
	"An 'advertised_upload_speed' value is needed for all non-CAI challenge-types except for 'N'.",
	"Required advertised_upload_speed values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("advertised_upload_speed", 18)},
	requiredWhen(challengeTypeIdx, 18, speedChallengeTypes),
)

var UploadSpeedRequired = newRowRule(
	"upload_speed_required",
	"An 'upload_speed' value is only needed for challenge-types 'M' and 'S'.",
	"Required upload_speed values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("upload_speed", 19)},
	requiredWhen(challengeTypeIdx, 19, codes(ChallengeTypes, ChallengeSpeedTestMod, ChallengeSpeed)),
)

var LatencyRequired = newRowRule(
	"latency_required",
	"A 'latency' value is only needed for challenge-types 'L' and 'M'.",
	"Required latency values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("latency", 20)},
	requiredWhen(challengeTypeIdx, 20, codes(ChallengeTypes, ChallengeLatency, ChallengeSpeedTestMod)),
)

// ----------------------------------------------------------------------------
// CAI
// ----------------------------------------------------------------------------

// CAILocationColumns holds the positions read by a CAI location rule.
type CAILocationColumns struct {
	LocationID     int
	Longitude      int
	Latitude       int
	AddressPrimary int
	City           int
	ZipCode        int
}

// NewCAILocationRule builds the "some way to locate the CAI" rule for a given
// column layout.
func NewCAILocationRule(name string, c CAILocationColumns) RowRule {
	return newRowRule(
		name,
		"Every CAI must have (at least) one of: "+
			"1. longitude and latitude, "+
			"2. address_primary, city, and zip_code, "+
			"3. location_id.",
		"Required location-identifying sets of values all missing",
		[]ColumnRef{
			col("location_id", c.LocationID),
			col("longitude", c.Longitude),
			col("latitude", c.Latitude),
			col("address_primary", c.AddressPrimary),
			col("city", c.City),
			col("zip_code", c.ZipCode),
		},
		anyGroupPresent(
			[]int{c.LocationID},
			[]int{c.Longitude, c.Latitude},
			[]int{c.AddressPrimary, c.City, c.ZipCode},
		),
	)
}

// NewCAIFRNRule builds the informational FRN rule for a given layout.
func NewCAIFRNRule(name string, typeIdx, frnIdx int) RowRule {
	return newRowRule(
		name,
		"A FRN Number must be provided when CAI type is of S/L/H. NOTE: Just for informational purposes (not an error).",
		"Nice-to-have frn values are missing",
		[]ColumnRef{col("type", typeIdx), col("frn", frnIdx)},
		matchesWhen(typeIdx, frnIdx, codes(CAITypes, CAISchool, CAILibrary, CAIHealth), frnPattern),
	)
}

// NewCAICMSRule builds the informational CMS number rule for a given layout.
func NewCAICMSRule(name string, typeIdx, cmsIdx int) RowRule {
	return newRowRule(
		name,
		"A CMS Number is only meaningful for CAI type H. NOTE: This is just for informational purposes (not an error).",
		"Required (nice-to-have) cms_number values are missing",
		[]ColumnRef{col("type", typeIdx), col("cms_number", cmsIdx)},
		requiredWhen(typeIdx, cmsIdx, codes(CAITypes, CAIHealth)),
	)
}

var (
	CAILocation = NewCAILocationRule("cai_location", CAILocationColumns{
		LocationID: 6, Longitude: 11, Latitude: 12, AddressPrimary: 7, City: 8, ZipCode: 10,
	})
	CAIFRNGivenType = NewCAIFRNRule("cai_frn_given_type", 1, 5)
	CAICMSGivenType = NewCAICMSRule("cai_cms_given_type", 1, 4)
)

var CAIExplanationGivenType = newRowRule(
	"cai_explanation_given_type",
	"There must exist an Explanation when cai type is C",
	"Required explanation values are missing",
	[]ColumnRef{col("type", 1), col("explanation", 13)},
	minLengthWhen(1, 13, codes(CAITypes, CAICommunitySupport), 10, true),
)

// ----------------------------------------------------------------------------
// CAI challenges
// ----------------------------------------------------------------------------

var (
	CAIChallengeLocation = NewCAILocationRule("cai_challenge_location", CAILocationColumns{
		LocationID: 12, Longitude: 17, Latitude: 18, AddressPrimary: 13, City: 14, ZipCode: 16,
	})
	CAIChallengeFRNGivenType = NewCAIFRNRule("cai_challenge_frn_given_type", 7, 11)
	CAIChallengeCMSGivenType = NewCAICMSRule("cai_challenge_cms_given_type", 7, 10)
)

var CAIChallengeCategoryCode = newRowRule(
	"cai_challenge_category_code",
	"Category Code must be filled if challenge type C/G/R",
	"Required category values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("category_code", 4)},
	allowedWhen(challengeTypeIdx, 4, map[string][]string{
		string(CAIChallengeIsCAI):       {"D", "N", "I", "T", "O"},
		string(CAIChallengeNotCAI):      {"X", "B", "R", "D", "O"},
		string(CAIChallengeNoBroadband): {"X", "B", "R", "D", "N", "I", "T", "O"},
	}),
)

var CAIChallengeExplanation = newRowRule(
	"cai_challenge_explanation",
	"Explanation must be present if challenge Type is C",
	"Required explanation values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("explanation", 19)},
	minLengthWhen(challengeTypeIdx, 19, codes(CAIChallengeTypes, CAIChallengeIsCAI), 5, false),
)

var CAIChallengeChallengeExplanation = newRowRule(
	"cai_challenge_challenge_explanation",
	"Challenge Explanation must exist if challenge type is C or R",
	"Required challenge_explanation values are missing",
	[]ColumnRef{col("challenge_type", challengeTypeIdx), col("challenge_explanation", 6)},
	minLengthWhen(challengeTypeIdx, 6, codes(CAIChallengeTypes, CAIChallengeNotCAI, CAIChallengeIsCAI), 5, false),
)

var CAIChallengeEntityName = newRowRule(
	"cai_challenge_entity_name",
	"Entity Name must exist if type is S,L,G,H,F,C",
	"Required entity_name values are missing",
	[]ColumnRef{col("type", 7), col("entity_name", 8)},
	requiredWhen(7, 8, codes(CAITypes,
		CAISchool, CAILibrary, CAIGovernment, CAIHealth, CAIPublicSafety, CAICommunitySupport,
	)),
)
