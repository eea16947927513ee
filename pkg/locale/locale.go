package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Normalize parses a locale string and returns its canonical lowercase form
// (e.g. "DE-de" -> "de-de"). The lowercase form is what the store persists,
// so two spellings of the same tag address the same row.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("locale is empty")
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", trimmed, err)
	}
	return strings.ToLower(tag.String()), nil
}

// NormalizeAll normalizes every locale in the slice, preserving order.
func NormalizeAll(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		n, err := Normalize(l)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
