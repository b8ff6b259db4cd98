package ledger

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxGuestNameLen = 80

// NormalizeGuestName trims and collapses whitespace and applies a
// canonical display casing. Hangul has no case so Korean names pass
// through untouched; Latin names become title-cased.
func NormalizeGuestName(name string) (string, error) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ErrValidation
	}
	normalized := cases.Title(language.Und).String(strings.Join(fields, " "))
	if len(normalized) > maxGuestNameLen {
		return "", ErrValidation
	}
	return normalized, nil
}
