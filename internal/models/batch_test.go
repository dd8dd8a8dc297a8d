package models

import "testing"

func TestParseMarginType(t *testing.T) {
	tests := []struct {
		input   string
		want    MarginType
		wantErr bool
	}{
		{"PERCENTAGE", MarginPercentage, false},
		{"FIXED", MarginFixed, false},
		{"fixed", MarginFixed, false},
		{" percentage ", MarginPercentage, false},
		{"RELATIVE", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMarginType(tt.input)
		if tt.wantErr != (err != nil) {
			t.Errorf("ParseMarginType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMarginType(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFailurePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    FailurePolicy
		wantErr bool
	}{
		{"ABORT_ALL", PolicyAbortAll, false},
		{"SKIP_AND_CONTINUE", PolicySkipAndContinue, false},
		{"skip_and_continue", PolicySkipAndContinue, false},
		{"RETRY", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFailurePolicy(tt.input)
		if tt.wantErr != (err != nil) {
			t.Errorf("ParseFailurePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFailurePolicy(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
