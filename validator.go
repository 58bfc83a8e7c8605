package main

import "strings"

// NameValidator checks well-formedness of user-facing names. It is
// stateless and separate from NameRegistry, which handles uniqueness.

const (
	nameMinLength = 2
	nameMaxLength = 50
)

// reservedNames may not be claimed by any game, team, or player.
var reservedNames = map[string]struct{}{
	"admin":     {},
	"moderator": {},
	"server":    {},
	"system":    {},
	"null":      {},
	"undefined": {},
	"anonymous": {},
	"everyone":  {},
}

type NameValidation struct {
	Valid      bool   `json:"valid"`
	Message    string `json:"message,omitempty"`
	Normalized string `json:"normalized,omitempty"`
}

func invalidName(msg string) NameValidation {
	return NameValidation{Message: msg}
}

func isNameChar(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '_' || r == '-':
		return true
	}
	return false
}

func isSpecialChar(r rune) bool {
	return r == ' ' || r == '_' || r == '-'
}

// validateName checks a candidate display name for the given entity kind
// ("game", "team", or "player"). Kind only affects messages.
func validateName(name, kind string) NameValidation {
	if kind == "" {
		kind = "name"
	} else {
		kind += " name"
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalidName(kind + " must not be empty")
	}

	runes := []rune(trimmed)
	if len(runes) < nameMinLength {
		return invalidName(kind + " must be at least 2 characters")
	}
	if len(runes) > nameMaxLength {
		return invalidName(kind + " must be at most 50 characters")
	}

	normalized := normalizeName(trimmed)
	if _, reserved := reservedNames[normalized]; reserved {
		return invalidName("\"" + trimmed + "\" is a reserved " + kind)
	}

	for _, r := range runes {
		if !isNameChar(r) {
			return invalidName(kind + " may only contain letters, digits, spaces, hyphens, and underscores")
		}
	}

	if isSpecialChar(runes[0]) || isSpecialChar(runes[len(runes)-1]) {
		return invalidName(kind + " must start and end with a letter or digit")
	}

	for i := 1; i < len(runes); i++ {
		if isSpecialChar(runes[i]) && isSpecialChar(runes[i-1]) {
			return invalidName(kind + " must not contain consecutive spaces, hyphens, or underscores")
		}
	}

	return NameValidation{
		Valid:      true,
		Normalized: normalized,
	}
}
