package i18n

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestTranslatorRendersTemplateData(t *testing.T) {
	t.Parallel()

	tr := NewTranslator("en", zerolog.Nop())
	got := tr.T("en", "report.missing_locale", map[string]any{"Locale": "fr"})
	if !strings.Contains(got, "fr") {
		t.Fatalf("message = %q, want locale interpolated", got)
	}
}

func TestTranslatorUsesRequestedLocale(t *testing.T) {
	t.Parallel()

	tr := NewTranslator("en", zerolog.Nop())
	got := tr.T("de", "report.missing_field", map[string]any{"Field": "name"})
	if !strings.Contains(got, "Feld") {
		t.Fatalf("message = %q, want German rendering", got)
	}
}

func TestTranslatorFallsBackToDefaultLocale(t *testing.T) {
	t.Parallel()

	tr := NewTranslator("en", zerolog.Nop())
	got := tr.T("fr", "report.missing_field", map[string]any{"Field": "name"})
	if !strings.Contains(got, "field name") {
		t.Fatalf("message = %q, want English fallback", got)
	}
}

func TestTranslatorReturnsKeyForUnknownMessage(t *testing.T) {
	t.Parallel()

	tr := NewTranslator("en", zerolog.Nop())
	if got := tr.T("en", "report.nope", nil); got != "report.nope" {
		t.Fatalf("message = %q, want key echoed", got)
	}
}

func TestTranslatorEmptyKey(t *testing.T) {
	t.Parallel()

	tr := NewTranslator("en", zerolog.Nop())
	if got := tr.T("en", "", nil); got != "" {
		t.Fatalf("message = %q, want empty", got)
	}
}
