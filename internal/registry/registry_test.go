package registry

import (
	"context"
	"errors"
	"testing"

	"transtore/internal/domain"
)

type staticSource struct{}

func (staticSource) GetByID(ctx context.Context, id int64) (any, error) {
	return nil, &domain.EntityNotFoundError{EntityType: "product", EntityID: id}
}

func (staticSource) GetAll(ctx context.Context) ([]any, error) { return nil, nil }

func testPolicy(t *testing.T) LocalePolicy {
	t.Helper()
	policy, err := NewLocalePolicy("en", []string{"en", "de", "fr"})
	if err != nil {
		t.Fatalf("new locale policy: %v", err)
	}
	return policy
}

func productDefinition() Definition {
	return Definition{
		Type:          "Product",
		Fields:        []string{"Name", "Description"},
		Source:        staticSource{},
		IDOf:          func(any) int64 { return 0 },
		FieldValue:    func(any, string) (string, bool) { return "", false },
		SetFieldValue: func(any, string, string) bool { return false },
	}
}

func TestRegisterNormalizesTypeAndFields(t *testing.T) {
	t.Parallel()

	reg := New(testPolicy(t))
	if err := reg.Register(productDefinition()); err != nil {
		t.Fatalf("register: %v", err)
	}

	def, err := reg.Lookup(" PRODUCT ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if def.Type != "product" {
		t.Fatalf("type = %q, want %q", def.Type, "product")
	}
	if !def.HasField("name") || !def.HasField("description") {
		t.Fatalf("fields = %v, want normalized name/description", def.Fields)
	}
}

func TestRegisterRejectsDuplicateType(t *testing.T) {
	t.Parallel()

	reg := New(testPolicy(t))
	if err := reg.Register(productDefinition()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := reg.Register(productDefinition()); err == nil {
		t.Fatal("expected duplicate type error")
	}
}

func TestRegisterRejectsIncompleteDefinition(t *testing.T) {
	t.Parallel()

	reg := New(testPolicy(t))

	def := productDefinition()
	def.Fields = nil
	if err := reg.Register(def); err == nil {
		t.Fatal("expected error for empty field set")
	}

	def = productDefinition()
	def.Source = nil
	if err := reg.Register(def); err == nil {
		t.Fatal("expected error for missing collaborator")
	}

	def = productDefinition()
	def.FieldValue = nil
	if err := reg.Register(def); err == nil {
		t.Fatal("expected error for missing accessor")
	}
}

func TestLookupUnknownType(t *testing.T) {
	t.Parallel()

	reg := New(testPolicy(t))
	if _, err := reg.Lookup("workflow"); !errors.Is(err, domain.ErrEntityTypeUnknown) {
		t.Fatalf("lookup error = %v, want %v", err, domain.ErrEntityTypeUnknown)
	}
}

func TestLocaleQueries(t *testing.T) {
	t.Parallel()

	reg := New(testPolicy(t))
	if got := reg.DefaultLocale(); got != "en" {
		t.Fatalf("default locale = %q, want %q", got, "en")
	}
	if !reg.IsSupported("DE") {
		t.Fatal("expected DE to be supported after normalization")
	}
	if reg.IsSupported("pt-br") {
		t.Fatal("expected pt-br to be unsupported")
	}
	if got := reg.SupportedLocales(); len(got) != 3 {
		t.Fatalf("supported locales = %v, want 3 entries", got)
	}
}

func TestIsTranslatable(t *testing.T) {
	t.Parallel()

	reg := New(testPolicy(t))
	if err := reg.Register(productDefinition()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.IsTranslatable("product", "NAME") {
		t.Fatal("expected name to be translatable")
	}
	if reg.IsTranslatable("product", "price") {
		t.Fatal("expected price to be non-translatable")
	}
	if reg.IsTranslatable("workflow", "name") {
		t.Fatal("expected unknown type to be non-translatable")
	}
}
