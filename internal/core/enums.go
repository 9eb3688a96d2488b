package core

// enums.go holds the closed code sets used by membership validators.
//
// Each set is a CodeTable: an ordered list of codes with descriptions. The
// table answers membership on canonical cell text and renders its valid values
// for reports as "CODE (description)".

import (
	"fmt"
	"strings"
)

// Code is one member of an enumerated domain.
type Code[T comparable] struct {
	Value       T
	Description string
}

// CodeTable is an ordered, closed set of codes.
type CodeTable[T comparable] struct {
	codes []Code[T]
	// justify pads values to equal width in ValidValues.
	justify bool
}

// NewCodeTable builds a table from codes in display order.
func NewCodeTable[T comparable](codes ...Code[T]) CodeTable[T] {
	return CodeTable[T]{codes: codes}
}

// Codes returns a copy of the table's codes.
func (t CodeTable[T]) Codes() []Code[T] {
	out := make([]Code[T], len(t.codes))
	copy(out, t.codes)
	return out
}

// Values returns the code values in order.
func (t CodeTable[T]) Values() []T {
	out := make([]T, len(t.codes))
	for i, c := range t.codes {
		out[i] = c.Value
	}
	return out
}

// Has reports whether v is a member.
func (t CodeTable[T]) Has(v T) bool {
	for _, c := range t.codes {
		if c.Value == v {
			return true
		}
	}
	return false
}

// Contains reports whether the canonical text s names a member.
func (t CodeTable[T]) Contains(s string) bool {
	for _, c := range t.codes {
		if fmt.Sprint(c.Value) == s {
			return true
		}
	}
	return false
}

// Describe returns the description of v, or "" if v is not a member.
func (t CodeTable[T]) Describe(v T) string {
	for _, c := range t.codes {
		if c.Value == v {
			return c.Description
		}
	}
	return ""
}

// ValidValues renders every code as "CODE (description)".
func (t CodeTable[T]) ValidValues() []string {
	width := 0
	if t.justify {
		for _, c := range t.codes {
			width = max(width, len(fmt.Sprint(c.Value)))
		}
	}
	out := make([]string, len(t.codes))
	for i, c := range t.codes {
		v := fmt.Sprint(c.Value)
		if pad := width - len(v); pad > 0 {
			v = strings.Repeat(" ", pad) + v
		}
		out[i] = fmt.Sprintf("%s (%s)", v, c.Description)
	}
	return out
}

// Subset returns a table restricted to the given values, kept in table order.
func (t CodeTable[T]) Subset(values ...T) CodeTable[T] {
	keep := make(map[T]bool, len(values))
	for _, v := range values {
		keep[v] = true
	}
	sub := CodeTable[T]{justify: t.justify}
	for _, c := range t.codes {
		if keep[c.Value] {
			sub.codes = append(sub.codes, c)
		}
	}
	return sub
}

// ----------------------------------------------------------------------------
// Code types
// ----------------------------------------------------------------------------

type (
	ChallengerType         string
	StateCode              string
	CAIType                string
	ChallengeType          string
	CAIChallengeType       string
	Disposition            string
	ReasonCode             string
	Technology             int
	CAIRationale           string
	LocationClassification int
)

const (
	ChallengerLocalGovernment ChallengerType = "L"
	ChallengerTribal          ChallengerType = "T"
	ChallengerNonprofit       ChallengerType = "N"
	ChallengerProvider        ChallengerType = "B"
)

const (
	CAISchool           CAIType = "S"
	CAILibrary          CAIType = "L"
	CAIGovernment       CAIType = "G"
	CAIHealth           CAIType = "H"
	CAIPublicSafety     CAIType = "F"
	CAIPublicHousing    CAIType = "P"
	CAICommunitySupport CAIType = "C"
	CAIPark             CAIType = "K"
)

const (
	ChallengeAvailability     ChallengeType = "A"
	ChallengeSpeed            ChallengeType = "S"
	ChallengeLatency          ChallengeType = "L"
	ChallengeDataCap          ChallengeType = "D"
	ChallengeTechnology       ChallengeType = "T"
	ChallengeBusinessOnly     ChallengeType = "B"
	ChallengePlannedService   ChallengeType = "P"
	ChallengeEnforceable      ChallengeType = "E"
	ChallengeNotEnforceable   ChallengeType = "N"
	ChallengeDSLMod           ChallengeType = "V"
	ChallengeFixedWirelessMod ChallengeType = "F"
	ChallengeSpeedTestMod     ChallengeType = "M"
	ChallengeEntityMod1       ChallengeType = "X"
	ChallengeEntityMod2       ChallengeType = "Y"
	ChallengeEntityMod3       ChallengeType = "Z"
)

const (
	CAIChallengeIsCAI        CAIChallengeType = "C"
	CAIChallengeNotCAI       CAIChallengeType = "R"
	CAIChallengeNoBroadband  CAIChallengeType = "G"
	CAIChallengeHasBroadband CAIChallengeType = "Q"
)

const (
	DispositionIncomplete Disposition = "I"
	DispositionNoRebuttal Disposition = "N"
	DispositionAgreed     Disposition = "A"
	DispositionSustained  Disposition = "S"
	DispositionRejected   Disposition = "R"
	DispositionMoot       Disposition = "M"
)

const (
	TechnologyCopper             Technology = 10
	TechnologyCoax               Technology = 40
	TechnologyFiber              Technology = 50
	TechnologyGeoSatellite       Technology = 60
	TechnologyNonGeoSatellite    Technology = 61
	TechnologyUnlicensedWireless Technology = 70
	TechnologyLicensedWireless   Technology = 71
	TechnologyLicensedByRule     Technology = 72
	TechnologyOther              Technology = 0
)

const (
	LocationUnserved    LocationClassification = 0
	LocationUnderserved LocationClassification = 1
	LocationServed      LocationClassification = 2
)

// ----------------------------------------------------------------------------
// Tables
// ----------------------------------------------------------------------------

var ChallengerTypes = NewCodeTable(
	Code[ChallengerType]{ChallengerLocalGovernment, "Unit of Local Government"},
	Code[ChallengerType]{ChallengerTribal, "A Tribal Government"},
	Code[ChallengerType]{ChallengerNonprofit, "Nonprofit Org"},
	Code[ChallengerType]{ChallengerProvider, "Broadband Provider"},
)

var States = NewCodeTable(
	Code[StateCode]{"AL", "Alabama"},
	Code[StateCode]{"AK", "Alaska"},
	Code[StateCode]{"AS", "American Samoa"},
	Code[StateCode]{"AZ", "Arizona"},
	Code[StateCode]{"AR", "Arkansas"},
	Code[StateCode]{"CA", "California"},
	Code[StateCode]{"CO", "Colorado"},
	Code[StateCode]{"CT", "Connecticut"},
	Code[StateCode]{"DE", "Delaware"},
	Code[StateCode]{"DC", "District of Columbia"},
	Code[StateCode]{"FL", "Florida"},
	Code[StateCode]{"GA", "Georgia"},
	Code[StateCode]{"GU", "Guam"},
	Code[StateCode]{"HI", "Hawaii"},
	Code[StateCode]{"ID", "Idaho"},
	Code[StateCode]{"IL", "Illinois"},
	Code[StateCode]{"IN", "Indiana"},
	Code[StateCode]{"IA", "Iowa"},
	Code[StateCode]{"KS", "Kansas"},
	Code[StateCode]{"KY", "Kentucky"},
	Code[StateCode]{"LA", "Louisiana"},
	Code[StateCode]{"ME", "Maine"},
	Code[StateCode]{"MD", "Maryland"},
	Code[StateCode]{"MA", "Massachusetts"},
	Code[StateCode]{"MI", "Michigan"},
	Code[StateCode]{"MN", "Minnesota"},
	Code[StateCode]{"MS", "Mississippi"},
	Code[StateCode]{"MO", "Missouri"},
	Code[StateCode]{"MT", "Montana"},
	Code[StateCode]{"NE", "Nebraska"},
	Code[StateCode]{"NV", "Nevada"},
	Code[StateCode]{"NH", "New Hampshire"},
	Code[StateCode]{"NJ", "New Jersey"},
	Code[StateCode]{"NM", "New Mexico"},
	Code[StateCode]{"NY", "New York"},
	Code[StateCode]{"NC", "North Carolina"},
	Code[StateCode]{"ND", "North Dakota"},
	Code[StateCode]{"MP", "Northern Mariana Islands"},
	Code[StateCode]{"OH", "Ohio"},
	Code[StateCode]{"OK", "Oklahoma"},
	Code[StateCode]{"OR", "Oregon"},
	Code[StateCode]{"PA", "Pennsylvania"},
	Code[StateCode]{"PR", "Puerto Rico"},
	Code[StateCode]{"RI", "Rhode Island"},
	Code[StateCode]{"SC", "South Carolina"},
	Code[StateCode]{"SD", "South Dakota"},
	Code[StateCode]{"TN", "Tennessee"},
	Code[StateCode]{"TX", "Texas"},
	Code[StateCode]{"VI", "U.S. Virgin Islands"},
	Code[StateCode]{"UT", "Utah"},
	Code[StateCode]{"VT", "Vermont"},
	Code[StateCode]{"VA", "Virginia"},
	Code[StateCode]{"WA", "Washington"},
	Code[StateCode]{"WV", "West Virginia"},
	Code[StateCode]{"WI", "Wisconsin"},
	Code[StateCode]{"WY", "Wyoming"},
)

var CAITypes = NewCodeTable(
	Code[CAIType]{CAISchool, "School or institute of higher education"},
	Code[CAIType]{CAILibrary, "Library"},
	Code[CAIType]{CAIGovernment, "Government building"},
	Code[CAIType]{CAIHealth, "Health clinic, health center, hospital, or another medical provider"},
	Code[CAIType]{CAIPublicSafety, "Public safety entity"},
	Code[CAIType]{CAIPublicHousing, "Public housing organization"},
	Code[CAIType]{CAICommunitySupport, "Community support organization"},
	Code[CAIType]{CAIPark, "Park"},
)

var ChallengeTypes = NewCodeTable(
	Code[ChallengeType]{ChallengeAvailability, "Availability (A)"},
	Code[ChallengeType]{ChallengeSpeed, "Speed (S)"},
	Code[ChallengeType]{ChallengeLatency, "Latency (L)"},
	Code[ChallengeType]{ChallengeDataCap, "Data Cap (D)"},
	Code[ChallengeType]{ChallengeTechnology, "Technology (T)"},
	Code[ChallengeType]{ChallengeBusinessOnly, "Business Service Only (B)"},
	Code[ChallengeType]{ChallengePlannedService, "Planned (or Existing) Service (P)"},
	Code[ChallengeType]{ChallengeEnforceable, "Enforceable Commitment (E)"},
	Code[ChallengeType]{ChallengeNotEnforceable, "Not Part of Enforceable Commitment (N)"},
	Code[ChallengeType]{ChallengeDSLMod, "Pre-challenge mod for DSL technology (V)"},
	Code[ChallengeType]{ChallengeFixedWirelessMod, "Pre-challenge mod for fixed wireless technology (F)"},
	Code[ChallengeType]{ChallengeSpeedTestMod, "Pre-challenge mod for measurement-based anonymous speed tests (M)"},
	Code[ChallengeType]{ChallengeEntityMod1, "NTIA-approved eligible entity pre-challenge mod 1 (X)"},
	Code[ChallengeType]{ChallengeEntityMod2, "NTIA-approved eligible entity pre-challenge mod 2 (Y)"},
	Code[ChallengeType]{ChallengeEntityMod3, "NTIA-approved eligible entity pre-challenge mod 3 (Z)"},
)

var CAIChallengeTypes = NewCodeTable(
	Code[CAIChallengeType]{CAIChallengeIsCAI, "Location is a CAI (C)"},
	Code[CAIChallengeType]{CAIChallengeNotCAI, "Location is NOT a CAI (R)"},
	Code[CAIChallengeType]{CAIChallengeNoBroadband, "CAI cannot obtain qualifying broadband (G)"},
	Code[CAIChallengeType]{CAIChallengeHasBroadband, "CAI can obtain qualifying broadband (Q)"},
)

var ChallengeDispositions = NewCodeTable(
	Code[Disposition]{DispositionIncomplete, "Incomplete"},
	Code[Disposition]{DispositionNoRebuttal, "No rebuttal"},
	Code[Disposition]{DispositionAgreed, "Provider agreed"},
	Code[Disposition]{DispositionSustained, "Sustained after rebuttal"},
	Code[Disposition]{DispositionRejected, "Rejected after rebuttal"},
	Code[Disposition]{DispositionMoot, "Moot due to another successful challenge"},
)

// CAIChallengeDispositions excludes Moot, which only applies to BSL challenges.
var CAIChallengeDispositions = ChallengeDispositions.Subset(
	DispositionIncomplete,
	DispositionNoRebuttal,
	DispositionAgreed,
	DispositionSustained,
	DispositionRejected,
)

var ReasonCodes = NewCodeTable(
	Code[ReasonCode]{"1", "Provider failed to schedule a service installation within 10 business days of a request (1)."},
	Code[ReasonCode]{"2", "Provider did not install the service at the agreed-upon time (2)."},
	Code[ReasonCode]{"3", "Provider requested more than the standard installation fee to connect the location (3)."},
	Code[ReasonCode]{"4", "Provider denied the request for service (4)."},
	Code[ReasonCode]{"5", "Provider does not offer the technology entered above at this location (5)."},
	Code[ReasonCode]{"6", "Provider does not offer the speed(s) shown on the Broadband Map for purchase at this location (6)."},
	Code[ReasonCode]{"8", "No wireless signal is available at this location (only for technology codes 70 and above) (8)."},
	Code[ReasonCode]{"9", "New, non-standard equipment had to be constructed at this location (9)."},
)

var Technologies = CodeTable[Technology]{
	justify: true,
	codes: []Code[Technology]{
		{TechnologyCopper, "Copper Wire"},
		{TechnologyCoax, "Coaxial Cable"},
		{TechnologyFiber, "Optical Carrier / Fiber to the Premises"},
		{TechnologyGeoSatellite, "Geostationary Satellite"},
		{TechnologyNonGeoSatellite, "Non-Geostationary Satellite"},
		{TechnologyUnlicensedWireless, "Unlicensed Terrestrial Fixed Wireless"},
		{TechnologyLicensedWireless, "Licensed Terrestrial Fixed Wireless"},
		{TechnologyLicensedByRule, "Licensed-by-Rule Terrestrial Fixed Wireless"},
		{TechnologyOther, "Other"},
	},
}

var CAIRationales = NewCodeTable(
	Code[CAIRationale]{"X", "CAI has ceased operation"},
	Code[CAIRationale]{"B", "Location does not require broadband service"},
	Code[CAIRationale]{"R", "CAI is a private residence or non-CAI business"},
	Code[CAIRationale]{"D", "Definition: The challenger believes that this either fails to meet or meets the definition"},
	Code[CAIRationale]{"N", "New CAI"},
	Code[CAIRationale]{"I", "Independent location"},
	Code[CAIRationale]{"T", "The CAI Type is incorrect"},
	Code[CAIRationale]{"O", "Other, as described in the explanation column"},
)

var LocationClassifications = NewCodeTable(
	Code[LocationClassification]{LocationUnserved, "Unserved"},
	Code[LocationClassification]{LocationUnderserved, "Underserved"},
	Code[LocationClassification]{LocationServed, "Served"},
)
