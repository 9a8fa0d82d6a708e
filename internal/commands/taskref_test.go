package commands

import (
	"testing"
)

func TestParseTaskRef_Numeric(t *testing.T) {
	ref, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Num != 5 {
		t.Errorf("expected Num 5, got %d", ref.Num)
	}
	if ref.IDPrefix != "" {
		t.Errorf("expected no IDPrefix, got %q", ref.IDPrefix)
	}
}

func TestParseTaskRef_NumericMultiDigit(t *testing.T) {
	ref, err := ParseTaskRef([]string{"123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Num != 123 {
		t.Errorf("expected Num 123, got %d", ref.Num)
	}
}

func TestParseTaskRef_Zero(t *testing.T) {
	_, err := ParseTaskRef([]string{"0"})
	if err == nil {
		t.Fatal("expected error for zero")
	}
	expectedMsg := "task number out of range: 0"
	if err.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseTaskRef_IDPrefix(t *testing.T) {
	ref, err := ParseTaskRef([]string{"3F2C9a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.IDPrefix != "3f2c9a" {
		t.Errorf("expected lowercase prefix, got %q", ref.IDPrefix)
	}
	if ref.Num != 0 {
		t.Errorf("expected Num 0, got %d", ref.Num)
	}
}

func TestParseTaskRef_FullUUID(t *testing.T) {
	ref, err := ParseTaskRef([]string{"3f2c9a1e-8b7d-4c2a-9f00-1234567890ab"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.String() != "3f2c9a1e-8b7d-4c2a-9f00-1234567890ab" {
		t.Errorf("unexpected ref %q", ref.String())
	}
}

func TestParseTaskRef_Empty(t *testing.T) {
	_, err := ParseTaskRef([]string{})
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}

	_, err = ParseTaskRef([]string{"  "})
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired for blank arg, got %v", err)
	}
}

func TestParseTaskRef_Invalid(t *testing.T) {
	tests := []string{
		"abc",   // too short for a prefix
		"zzzz",  // not hex
		"a1",    // mixed, too short
		"-5",    // negative
		"12.5",  // not an integer
		"milk!", // punctuation
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTaskRef([]string{input})
			if err == nil {
				t.Errorf("expected error for %q", input)
			}
			expectedMsg := "invalid task reference: " + input
			if err != nil && err.Error() != expectedMsg {
				t.Errorf("expected %q, got %q", expectedMsg, err.Error())
			}
		})
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"123", true},
		{"0", true},
		{"", false},
		{"12a", false},
		{"a12", false},
		{"1 2", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := isAllDigits(tt.input)
			if result != tt.expected {
				t.Errorf("isAllDigits(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseTaskRef_LongDigitsAreIDPrefixFirst(t *testing.T) {
	tests := []struct {
		input  string
		num    int
		prefix string
	}{
		{"00000001", 1, "00000001"},
		{"1234", 1234, "1234"},
		{"0000", 0, "0000"},
		{"99999999999999999999", 0, "99999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ref, err := ParseTaskRef([]string{tt.input})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref.Num != tt.num || ref.IDPrefix != tt.prefix {
				t.Errorf("got Num=%d IDPrefix=%q, want Num=%d IDPrefix=%q", ref.Num, ref.IDPrefix, tt.num, tt.prefix)
			}
		})
	}
}
