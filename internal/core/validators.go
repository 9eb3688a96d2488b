package core

// validators.go defines the column validator catalog.
//
// A Validator is a named predicate over a cell's canonical text plus the
// documentation the report shows next to failures. Every base validator
// rejects empty values; its "_nullable" twin accepts "" and otherwise defers
// to the base. Both are registered in the catalog under their names.
//
// Predicates fail closed: a value that cannot be parsed is invalid, never a
// panic.

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	rejectsNull = "This validator REJECTS null values."
	acceptsNull = "This validator ACCEPTS null values."
	emptyValue  = "An empty string ('')."
)

// Validator is a named, documented column predicate.
type Validator struct {
	Name        string
	Summary     string   // What the validator checks, without the null policy
	ValidValues []string // Human-readable accepted domain
	Nullable    bool
	check       func(string) bool
}

// Validate reports whether the canonical value passes.
func (v Validator) Validate(value string) bool {
	if value == "" {
		return v.Nullable
	}
	if v.check == nil {
		return false
	}
	return v.check(value)
}

// RuleDescr returns the full description including the null policy.
func (v Validator) RuleDescr() string {
	if v.Nullable {
		return v.Summary + "\n" + acceptsNull
	}
	return v.Summary + "\n" + rejectsNull
}

// Base returns the name of the validator this one was derived from.
func (v Validator) Base() string {
	return strings.TrimSuffix(v.Name, "_nullable")
}

// OrNull returns the nullable twin of v.
func (v Validator) OrNull() Validator {
	if v.Nullable {
		return v
	}
	values := make([]string, 0, len(v.ValidValues)+1)
	values = append(values, v.ValidValues...)
	values = append(values, emptyValue)
	return Validator{
		Name:        v.Name + "_nullable",
		Summary:     v.Summary,
		ValidValues: values,
		Nullable:    true,
		check:       v.check,
	}
}

// NewValidator builds a base (null-rejecting) validator.
func NewValidator(name, summary string, validValues []string, check func(string) bool) Validator {
	return Validator{
		Name:        name,
		Summary:     summary,
		ValidValues: validValues,
		check:       check,
	}
}

// ----------------------------------------------------------------------------
// Catalog
// ----------------------------------------------------------------------------

var (
	validatorCatalog   = make(map[string]Validator)
	validatorCatalogMu sync.RWMutex
)

// pair registers a base validator and its nullable twin and returns both.
func pair(v Validator) (Validator, Validator) {
	n := v.OrNull()
	registerValidator(v, n)
	return v, n
}

// registerValidator adds validators to the catalog.
// Panics if a name is already registered.
func registerValidator(vs ...Validator) {
	validatorCatalogMu.Lock()
	defer validatorCatalogMu.Unlock()
	for _, v := range vs {
		if _, exists := validatorCatalog[v.Name]; exists {
			panic(fmt.Sprintf("validator already registered: %s", v.Name))
		}
		validatorCatalog[v.Name] = v
	}
}

func single(v Validator) Validator {
	registerValidator(v)
	return v
}

// LookupValidator returns a catalog validator by name.
func LookupValidator(name string) (Validator, bool) {
	validatorCatalogMu.RLock()
	defer validatorCatalogMu.RUnlock()
	v, ok := validatorCatalog[name]
	return v, ok
}

// AllValidators returns every catalog validator sorted by name.
func AllValidators() []Validator {
	validatorCatalogMu.RLock()
	defer validatorCatalogMu.RUnlock()
	out := make([]Validator, 0, len(validatorCatalog))
	for _, v := range validatorCatalog {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ----------------------------------------------------------------------------
// Patterns
// ----------------------------------------------------------------------------

var (
	phonePattern       = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	zipPattern         = regexp.MustCompile(`^\d{5}$`)
	challengeIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	datePattern        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	emailPattern       = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	fileNamePattern    = regexp.MustCompile(`^[A-Za-z0-9_\-/\\]+$`)
	coordinatePattern  = regexp.MustCompile(`^-?\d+\.\d{6,}$`)
	webPagePattern     = regexp.MustCompile(`^(http://|https://)`)
	providerIDPattern  = regexp.MustCompile(`^[1-9]\d{5}$`)
	cmsPattern         = regexp.MustCompile(`^[a-zA-Z0-9]{6}$|^[a-zA-Z0-9]{10}$`)
	frnPattern         = regexp.MustCompile(`^\d{10}$`)
)

const maxChallengeIDChars = 50

// IsISODate reports whether s is a real calendar date written as YYYY-MM-DD.
func IsISODate(s string) bool {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return false
	}
	return datePattern.MatchString(s)
}

// IsFileNameList reports whether s is one .zip file name or one or more
// space-separated .pdf file names.
func IsFileNameList(s string) bool {
	names := strings.Fields(s)
	for _, name := range names {
		stem := name
		if len(stem) >= 4 {
			stem = stem[:len(stem)-4]
		} else {
			stem = ""
		}
		validStem := fileNamePattern.MatchString(stem)
		lower := strings.ToLower(name)
		switch {
		case strings.HasSuffix(lower, ".zip"):
			return len(names) == 1 && validStem
		case strings.HasSuffix(lower, ".pdf"):
			if !validStem {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func inRange(lo, hi float64) func(string) bool {
	return func(s string) bool {
		f, ok := ParseNumber(s)
		return ok && lo <= f && f <= hi
	}
}

// IsBSLLocationID reports whether s is an integer in [1e9, 1e10).
func IsBSLLocationID(s string) bool {
	n, err := parseInt(s)
	return err == nil && n >= 1_000_000_000 && n < 10_000_000_000
}

func parseInt(s string) (int64, error) {
	c, err := CastCell(s, DTypeInt)
	if err != nil {
		return 0, err
	}
	return c.Int, nil
}

func membership[T comparable](table CodeTable[T]) func(string) bool {
	return table.Contains
}

// ----------------------------------------------------------------------------
// Validators
// ----------------------------------------------------------------------------

var PhoneValidator, PhoneNullable = pair(NewValidator(
	"phone",
	"This validation checks that phone numbers match the pattern 123-456-7890.",
	[]string{"Strings matching the pattern 123-456-7890."},
	phonePattern.MatchString,
))

var ZipValidator, ZipNullable = pair(NewValidator(
	"zip",
	"This validation checks that Zip codes consist of exactly 5 digits.",
	[]string{"A string consisting of exactly 5 digits."},
	zipPattern.MatchString,
))

var ChallengeIDValidator, ChallengeIDNullable = pair(NewValidator(
	"challenge_id",
	"This validation checks that challenge ids are valid.",
	[]string{"A string consisting only of ASCII letters, digits, and/or hyphens and a length that is at most 50 characters."},
	func(s string) bool {
		return len(s) <= maxChallengeIDChars && challengeIDPattern.MatchString(s)
	},
))

var DateValidator, DateNullable = pair(NewValidator(
	"date",
	"All dates must be in ISO 8601 extended date format, i.e., with hyphens, such as 2023-07-01, not 20230701.",
	[]string{"A string representation of a date in ISO 8601 extended date format."},
	IsISODate,
))

var EmailValidator, EmailNullable = pair(NewValidator(
	"email",
	"This validation checks that entered emails are close to valid.",
	[]string{"A single string starting with one or more non-@-sign character(s), then an @ sign, then one or more non-@-sign character(s), then a dot (.), then it ends with one or more non-@-sign character(s)."},
	emailPattern.MatchString,
))

var FileNameValidator, FileNameNullable = pair(NewValidator(
	"file_name",
	"File names must only contain allowed characters and must have an allowed file type (.pdf and .zip). "+
		"If using the .zip format, only a single file_name string is allowed (i.e. no spaces). "+
		"If using the .pdf format, one or more files can be submitted. "+
		"If submitting multiple .pdf files, separate individual file names with a space.",
	[]string{
		"A single string of one .zip file_name consisting only of ASCII letters, digits, hyphens, or underscores.",
		"A single string consisting of one or more space-separated .pdf file_name(s), with each consisting only of ASCII letters, digits, hyphens, or underscores.",
	},
	IsFileNameList,
))

var LatitudeValidator, LatitudeNullable = pair(NewValidator(
	"latitude",
	"This validation checks that latitude values are between -90 and 90 degrees. "+
		"These values should reflect unprojected latitude coordinates (using the WGS-84 coordinate reference system) "+
		"and should have a minimum precision of 6 decimal digits.",
	[]string{"A decimal number between -90.000000 and 90.000000 with 6 decimal digits of precision"},
	func(s string) bool {
		return inRange(-90, 90)(s) && coordinatePattern.MatchString(s)
	},
))

var LongitudeValidator, LongitudeNullable = pair(NewValidator(
	"longitude",
	"This validation checks that longitude values are between -180 and 180 degrees.",
	[]string{"A decimal number between -180.000000 and 180.000000 with 6 decimal digits of precision"},
	func(s string) bool {
		return inRange(-180, 180)(s) && coordinatePattern.MatchString(s)
	},
))

var BSLLocationIDValidator, BSLLocationIDNullable = pair(NewValidator(
	"bsl_location_id",
	"This validation checks that location_ids are plausibly valid, although this does not check a location_id's existence in any Fabric dataset.",
	[]string{"A string consisting of 10 digits that does not start with a 0"},
	IsBSLLocationID,
))

var WebPageValidator, WebPageNullable = pair(NewValidator(
	"web_page",
	"This validation checks that webpage values could plausibly be a URL.",
	[]string{"A string starting with 'http://'", "A string starting with 'https://'"},
	webPagePattern.MatchString,
))

var NonNegativeValidator, NonNegativeNullable = pair(NewValidator(
	"non_negative_number",
	"This validation checks that numeric values are not negative.",
	[]string{"A number that is greater than or equal to zero"},
	func(s string) bool {
		f, ok := ParseNumber(s)
		return ok && f >= 0
	},
))

var NonNullableValidator = single(NewValidator(
	"non_nullable",
	"This validation checks that values are not null.",
	[]string{"Anything except for an empty string ('')."},
	func(s string) bool { return s != "" },
))

var FCCProviderIDValidator, FCCProviderIDNullable = pair(NewValidator(
	"fcc_provider_id",
	"This validation checks that provider_ids consist of 6 digits and start with a number from 1 to 9.",
	[]string{"A 6-digit number between 100000 and 999999"},
	providerIDPattern.MatchString,
))

var CMSCertificateValidator, CMSCertificateNullable = pair(NewValidator(
	"cms_certificate",
	"This validation checks that a healthcare-type CAI's CMS certification number (or CCN) matches an expected pattern.",
	[]string{"A string consisting of 6 ASCII letters or digits.", "A string consisting of 10 ASCII letters or digits."},
	cmsPattern.MatchString,
))

var FRNValidator, FRNNullable = pair(NewValidator(
	"frn",
	"This validation checks that FRN (FCC Registration Number) values match the expected pattern.",
	[]string{"A string consisting of 10 digits (zero-padded if needed)."},
	frnPattern.MatchString,
))

// ----------------------------------------------------------------------------
// Membership validators
// ----------------------------------------------------------------------------

var ChallengerTypeValidator, ChallengerTypeNullable = pair(NewValidator(
	"challenger_type",
	"This validation checks to see if a challenger's type (in the 'category' column) is valid.",
	ChallengerTypes.ValidValues(),
	membership(ChallengerTypes),
))

var StateValidator, StateNullable = pair(NewValidator(
	"state",
	"This validation checks to see if a 'state' value is one of the valid options.",
	States.ValidValues(),
	membership(States),
))

var CAITypeValidator, CAITypeNullable = pair(NewValidator(
	"cai_type",
	"This validation checks to see if a CAI's 'type' value is one of the valid options.",
	CAITypes.ValidValues(),
	membership(CAITypes),
))

var ChallengeTypeValidator, ChallengeTypeNullable = pair(NewValidator(
	"challenge_type",
	"This validation checks to see if the 'challenge_type' value (for a BSL challenge) is one of the valid options.",
	ChallengeTypes.ValidValues(),
	membership(ChallengeTypes),
))

var CAIChallengeTypeValidator, CAIChallengeTypeNullable = pair(NewValidator(
	"cai_challenge_type",
	"This validation checks to see if the 'challenge_type' value (for a CAI challenge) is one of the valid options.",
	CAIChallengeTypes.ValidValues(),
	membership(CAIChallengeTypes),
))

var ChallengeDispositionValidator, ChallengeDispositionNullable = pair(NewValidator(
	"challenge_disposition",
	"This validation checks to see if the 'disposition' value (for a BSL challenge) is one of the valid options.",
	ChallengeDispositions.ValidValues(),
	membership(ChallengeDispositions),
))

var CAIChallengeDispositionValidator, CAIChallengeDispositionNullable = pair(NewValidator(
	"cai_challenge_disposition",
	"This validation checks to see if the 'disposition' value (for a CAI challenge) is one of the valid options.",
	CAIChallengeDispositions.ValidValues(),
	membership(CAIChallengeDispositions),
))

var ReasonCodeValidator, ReasonCodeNullable = pair(NewValidator(
	"reason_code",
	"This validation checks to see if the 'reason_code' value (for a challenge with the [A]vailability challenge_type) is one of the valid options.",
	ReasonCodes.ValidValues(),
	membership(ReasonCodes),
))

var TechnologyValidator, TechnologyNullable = pair(NewValidator(
	"technology",
	"This validation checks to see if a 'technology' value is valid.",
	Technologies.ValidValues(),
	membership(Technologies),
))

var CAIRationaleValidator, CAIRationaleNullable = pair(NewValidator(
	"cai_rationale",
	"This validation checks that a CAI challenge has a valid category_code (or rationale for challenging the designation or non-designation of a location as a CAI).",
	CAIRationales.ValidValues(),
	membership(CAIRationales),
))

var LocationClassificationValidator, LocationClassificationNullable = pair(NewValidator(
	"location_classification",
	"This validation checks to see if the 'classification' value for a location_id post-challenge-process has one of the valid options.",
	LocationClassifications.ValidValues(),
	membership(LocationClassifications),
))
