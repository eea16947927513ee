package output

// Translator exposes a minimal i18n contract for the human-readable
// messages this subsystem itself emits (setup-report recommendations).
// Implementations provide message lookup + templating for a given locale.
type Translator interface {
	// T renders the message identified by key for the given locale.
	// data is an optional map used for template placeholders (may be nil).
	T(locale, key string, data map[string]any) string
}
