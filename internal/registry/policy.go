package registry

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"transtore/pkg/locale"
)

// LocalePolicy is the locale configuration shared by every component: the
// default locale used as fallback tier two, and the closed set of locales
// accepted by writes.
type LocalePolicy struct {
	DefaultLocale    string   `toml:"default_locale"`
	SupportedLocales []string `toml:"supported_locales"`
}

// NewLocalePolicy validates and canonicalizes a policy. The default locale
// must be one of the supported locales.
func NewLocalePolicy(defaultLocale string, supported []string) (LocalePolicy, error) {
	def, err := locale.Normalize(defaultLocale)
	if err != nil {
		return LocalePolicy{}, fmt.Errorf("default locale: %w", err)
	}
	if len(supported) == 0 {
		return LocalePolicy{}, fmt.Errorf("supported locales are empty")
	}
	norm, err := locale.NormalizeAll(supported)
	if err != nil {
		return LocalePolicy{}, fmt.Errorf("supported locales: %w", err)
	}
	found := false
	for _, l := range norm {
		if l == def {
			found = true
			break
		}
	}
	if !found {
		return LocalePolicy{}, fmt.Errorf("default locale %q is not in the supported set %v", def, norm)
	}
	return LocalePolicy{DefaultLocale: def, SupportedLocales: norm}, nil
}

// LoadLocalePolicy reads a TOML policy file:
//
//	default_locale = "en"
//	supported_locales = ["en", "de", "fr"]
func LoadLocalePolicy(path string) (LocalePolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return LocalePolicy{}, fmt.Errorf("read locale policy: %w", err)
	}
	var p LocalePolicy
	if err := toml.Unmarshal(raw, &p); err != nil {
		return LocalePolicy{}, fmt.Errorf("parse locale policy: %w", err)
	}
	return NewLocalePolicy(p.DefaultLocale, p.SupportedLocales)
}
