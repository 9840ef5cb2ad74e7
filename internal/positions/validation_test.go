package positions

import "testing"

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		value      string
		compatible bool // accepted in compatible mode
		strict     bool // accepted in strict mode
	}{
		{"5", true, true},
		{"0", true, true},
		{"", true, true},
		{" 2.5 ", true, true},
		{"-5", true, false},
		{"-0.01", true, false},
		{"abc", true, false},
		{"1,5", true, false},
		{"1e3", true, true},
		{"0x10", true, true},
		{"0B101", true, true},
		{"0o17", true, true},
		{"0x", true, false},
		{"0xg1", true, false},
		{"0x-1", true, false},
		{"Infinity", true, true},
		{"-Infinity", true, false},
		{"infinity", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidatePositive(FieldQuantity, tt.value, ValidationCompatible)
			if (err == nil) != tt.compatible {
				t.Errorf("compatible: ValidatePositive(%q) error = %v", tt.value, err)
			}
			err = ValidatePositive(FieldQuantity, tt.value, ValidationStrict)
			if (err == nil) != tt.strict {
				t.Errorf("strict: ValidatePositive(%q) error = %v", tt.value, err)
			}
		})
	}
}

func TestValidateRowNegativeQuantityNotBlocked(t *testing.T) {
	pd := PostData{FieldOper: OperEdit, FieldID: "7", FieldQuantity: "-5", FieldGivenQuantity: "3"}

	if err := ValidateRow(pd, ValidationCompatible); err != nil {
		t.Errorf("compatible mode should accept quantity -5, got %v", err)
	}

	err := ValidateRow(pd, ValidationStrict)
	if !IsClientValidationError(err) {
		t.Fatalf("strict mode error = %v, want client validation error", err)
	}
	if UserMessage(err) != PositiveValueMessage {
		t.Errorf("message = %q", UserMessage(err))
	}
}

func TestValidateRowSkipsAbsentFields(t *testing.T) {
	if err := ValidateRow(PostData{FieldID: "1"}, ValidationStrict); err != nil {
		t.Errorf("ValidateRow() error = %v", err)
	}
}

func TestParseValidationMode(t *testing.T) {
	tests := map[string]ValidationMode{
		"strict":     ValidationStrict,
		" STRICT ":   ValidationStrict,
		"compatible": ValidationCompatible,
		"":           ValidationCompatible,
		"other":      ValidationCompatible,
	}
	for in, want := range tests {
		if got := ParseValidationMode(in); got != want {
			t.Errorf("ParseValidationMode(%q) = %v, want %v", in, got, want)
		}
	}
	if ValidationStrict.String() != "strict" || ValidationCompatible.String() != "compatible" {
		t.Error("String() mismatch")
	}
}
