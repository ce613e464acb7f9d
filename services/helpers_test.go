package services

import (
	"errors"
	"testing"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		input  string
		goalsA int
		goalsB int
		ok     bool
	}{
		{"3-1", 3, 1, true},
		{"0-0", 0, 0, true},
		{"10-2", 10, 2, true},
		{"03-1", 3, 1, true},
		{"120-0", 120, 0, true},
		{"", 0, 0, false},
		{"3", 0, 0, false},
		{"3:1", 0, 0, false},
		{"-1-2", 0, 0, false},
		{"3-", 0, 0, false},
		{"-3", 0, 0, false},
		{"3 - 1", 0, 0, false},
		{"+3-1", 0, 0, false},
		{"3-1x", 0, 0, false},
		{"1234-1", 0, 0, false},
	}

	for _, tt := range tests {
		goalsA, goalsB, err := parseScore(tt.input)
		if tt.ok {
			if err != nil {
				t.Errorf("parseScore(%q): unexpected error %v", tt.input, err)
				continue
			}
			if goalsA != tt.goalsA || goalsB != tt.goalsB {
				t.Errorf("parseScore(%q) = %d, %d, want %d, %d", tt.input, goalsA, goalsB, tt.goalsA, tt.goalsB)
			}
		} else if !errors.Is(err, ErrInvalidScore) {
			t.Errorf("parseScore(%q): got err %v, want ErrInvalidScore", tt.input, err)
		}
	}
}

func TestFormatScoreCanonicalizes(t *testing.T) {
	goalsA, goalsB, err := parseScore("03-010")
	if err != nil {
		t.Fatalf("parseScore: %v", err)
	}
	if got := formatScore(goalsA, goalsB); got != "3-10" {
		t.Errorf("formatScore = %q, want %q", got, "3-10")
	}
}
