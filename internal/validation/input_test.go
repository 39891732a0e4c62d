package validation

import (
	"strings"
	"testing"
)

func TestValidateJSONPayload(t *testing.T) {
	if err := ValidateJSONPayload(`{"a":1}`); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
	if err := ValidateJSONPayload(""); err == nil {
		t.Error("empty payload should be rejected")
	}
	if err := ValidateJSONPayload(strings.Repeat("x", MaxJSONPayload+1)); err == nil {
		t.Error("oversized payload should be rejected")
	}
}

func TestParsePositiveID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{" 42 ", 42, false},
		{"#42", 42, false},
		{"9999999999", 9999999999, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePositiveID(tt.input, "document set ID")
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePositiveID(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePositiveID(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePositiveID(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
