package positions

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// PositiveValueMessage is shown when a quantity check blocks a submission.
const PositiveValueMessage = "Please enter a positive value"

// ValidationMode selects how quantity fields are checked before submission.
type ValidationMode int

const (
	// ValidationCompatible rejects a value only when it is non-numeric AND
	// negative. No single value satisfies both, so nothing is ever rejected;
	// this matches what the grid has always accepted.
	ValidationCompatible ValidationMode = iota

	// ValidationStrict rejects a value that is non-numeric OR negative.
	ValidationStrict
)

// String returns the mode name used in configuration files.
func (m ValidationMode) String() string {
	if m == ValidationStrict {
		return "strict"
	}
	return "compatible"
}

// ParseValidationMode maps a configuration value to a mode; anything other
// than "strict" is compatible.
func ParseValidationMode(s string) ValidationMode {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return ValidationStrict
	}
	return ValidationCompatible
}

// QuantityFields are the fields subject to ValidatePositive.
var QuantityFields = []string{FieldQuantity, FieldGivenQuantity}

// toNumber converts form text the way a browser coerces a string to a
// number: surrounding whitespace is ignored, an empty string is zero, and
// Infinity and unsigned 0x/0o/0b literals are numbers. ok is false when the
// text is not a number (NaN).
func toNumber(s string) (negative, ok bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "Infinity", "+Infinity":
		return false, true
	case "-Infinity":
		return true, true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if s[2] == '+' || s[2] == '-' {
				return false, false
			}
			_, ok := new(big.Int).SetString(s[2:], base)
			return false, ok
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return false, false
	}
	return d.IsNegative(), true
}

// ValidatePositive checks one quantity value.
func ValidatePositive(field, value string, mode ValidationMode) error {
	negative, ok := toNumber(value)
	notNumber := !ok

	var reject bool
	if mode == ValidationStrict {
		reject = notNumber || negative
	} else {
		reject = notNumber && negative
	}

	if reject {
		return NewClientValidationError(field, PositiveValueMessage)
	}
	return nil
}

// ValidateRow runs the quantity checks over a submitted form. Fields absent
// from the form are skipped.
func ValidateRow(pd PostData, mode ValidationMode) error {
	for _, field := range QuantityFields {
		value, ok := pd[field]
		if !ok {
			continue
		}
		if err := ValidatePositive(field, value, mode); err != nil {
			return err
		}
	}
	return nil
}
