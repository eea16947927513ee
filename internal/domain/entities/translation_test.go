package entities

import "testing"

func TestTranslationKeyNormalize(t *testing.T) {
	t.Parallel()

	key := TranslationKey{
		EntityType: "  Product ",
		EntityID:   42,
		Locale:     "DE-de",
		FieldName:  " Name",
	}
	got := key.Normalize()
	want := TranslationKey{EntityType: "product", EntityID: 42, Locale: "de-de", FieldName: "name"}
	if got != want {
		t.Fatalf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestTranslationKeyRoundTrip(t *testing.T) {
	t.Parallel()

	tr := Translation{
		EntityType: "product",
		EntityID:   7,
		Locale:     "en",
		FieldName:  "name",
	}
	if got := tr.Key(); got != (TranslationKey{EntityType: "product", EntityID: 7, Locale: "en", FieldName: "name"}) {
		t.Fatalf("Key() = %+v", got)
	}
}
