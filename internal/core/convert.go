package core

// convert.go casts raw CSV text into typed cells.
//
// Casting never mutates the loaded dataset. It produces a parallel table of
// Cells whose String() form is what predicates and row rules see:
//   - int cells render as plain decimal digits (" 010" -> "10")
//   - float cells render as the shortest round-trip form, always carrying a
//     decimal point or an exponent ("100" -> "100.0", "0.00001" -> "1e-05")
//   - string cells and cells that failed to cast keep their raw text
//
// Empty values stay empty regardless of type so null checks are unaffected.

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cell is one value of the typed table.
type Cell struct {
	Raw   string
	Type  DType
	Typed bool // false when the cell was not cast (string, empty, or failed)
	Int   int64
	Float float64
}

// String returns the canonical text of the cell.
func (c Cell) String() string {
	if !c.Typed {
		return c.Raw
	}
	switch c.Type {
	case DTypeInt:
		return strconv.FormatInt(c.Int, 10)
	case DTypeFloat:
		return FormatFloat(c.Float)
	default:
		return c.Raw
	}
}

// RawCell wraps text that is not cast.
func RawCell(s string) Cell {
	return Cell{Raw: s, Type: DTypeString}
}

// errUncastable marks a value whose text is not a number of the wanted type.
var errUncastable = errors.New("uncastable value")

// CastCell parses raw into a typed cell.
//
// A nil error means the cell is usable. An error wrapping errUncastable is an
// ordinary type mismatch. Any other error (an int that overflows, say) is an
// unexpected casting failure.
func CastCell(raw string, t DType) (Cell, error) {
	cell := Cell{Raw: raw, Type: t}
	if t == DTypeString {
		return cell, nil
	}

	s := strings.TrimSpace(raw)
	digits, ok := stripDigitSeparators(s)
	if !ok {
		return cell, castError(s, t.String(), strconv.ErrSyntax)
	}
	switch t {
	case DTypeInt:
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return cell, castError(s, "int", err)
		}
		cell.Int = n
	case DTypeFloat:
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			// Overflow yields +/-Inf, which is a legitimate float value.
			var numErr *strconv.NumError
			if !(errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange)) {
				return cell, castError(s, "float", err)
			}
		}
		cell.Float = f
	default:
		return cell, fmt.Errorf("unsupported column type %d", t)
	}
	cell.Typed = true
	return cell, nil
}

func castError(s, typeName string, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		return &CastError{Value: s, Type: typeName, Err: numErr.Err}
	}
	return &CastError{Value: s, Type: typeName, Err: errUncastable}
}

// CastError describes a cell that could not be cast.
type CastError struct {
	Value string
	Type  string
	Err   error
}

func (e *CastError) Error() string {
	if errors.Is(e.Err, errUncastable) {
		return fmt.Sprintf("invalid literal for %s: %q", e.Type, e.Value)
	}
	return fmt.Sprintf("cannot cast %q to %s: %v", e.Value, e.Type, e.Err)
}

func (e *CastError) Unwrap() error {
	return e.Err
}

// FormatFloat renders f the way the issue log and predicates expect:
// shortest round-trip digits, fixed notation between 1e-4 and 1e16, and a
// trailing ".0" on integral values.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go writes e+16 / e-05; keep two exponent digits minimum.
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		digits := strings.TrimLeft(exp[1:], "0")
		if len(digits) < 2 {
			digits = strings.Repeat("0", 2-len(digits)) + digits
		}
		return mant + "e" + string(sign) + digits
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// ParseNumber parses a canonical or raw numeric string. It is the shared entry
// point for predicates that do range checks and never panics.
func ParseNumber(s string) (float64, bool) {
	digits, ok := stripDigitSeparators(strings.TrimSpace(s))
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// stripDigitSeparators drops underscores that sit between two digits
// ("1_000"). ok is false when an underscore is anywhere else.
func stripDigitSeparators(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return s, false
		}
	}
	return b.String(), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
