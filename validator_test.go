package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"single character", "a", false},
		{"two characters", "ab", true},
		{"fifty characters", strings.Repeat("a", 50), true},
		{"fifty-one characters", strings.Repeat("a", 51), false},
		{"letters and digits", "Team42", true},
		{"interior space", "Team Rocket", true},
		{"interior hyphen", "draw-masters", true},
		{"interior underscore", "draw_masters", true},
		{"surrounding whitespace trimmed", "  Team Rocket  ", true},
		{"reserved word", "admin", false},
		{"reserved word mixed case", "AdMiN", false},
		{"reserved word server", "Server", false},
		{"illegal punctuation", "bad!name", false},
		{"unicode letters", "équipe", false},
		{"consecutive spaces", "a  b", false},
		{"consecutive hyphens", "a--b", false},
		{"mixed special run", "a_-b", false},
		{"leading hyphen", "-ab", false},
		{"trailing underscore", "ab_", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := validateName(tc.input, "team")

			assert.Equal(t, tc.valid, v.Valid)
			if tc.valid {
				assert.Empty(t, v.Message)
				assert.Equal(t, normalizeName(tc.input), v.Normalized)
			} else {
				assert.NotEmpty(t, v.Message)
			}
		})
	}
}

func TestValidateNameKindInMessage(t *testing.T) {
	v := validateName("", "player")
	assert.Contains(t, v.Message, "player name")

	v = validateName("", "")
	assert.Contains(t, v.Message, "name")
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "pictionary night", normalizeName("  Pictionary Night "))
	assert.Equal(t, "", normalizeName("   "))
}
