// Package registry describes which entity types participate in translation:
// their translatable fields, how to reach their source data, and the locale
// policy shared by the whole subsystem. The registry is built explicitly at
// startup and passed by reference; it holds no hidden process-wide state.
package registry

import (
	"context"
	"fmt"
	"sort"

	"transtore/internal/domain"
	"transtore/internal/domain/entities"
)

// Collaborator is implemented by each entity domain and consumed by the
// core. GetByID returns the live entity or a domain.EntityNotFoundError;
// GetAll returns the full entity list (used only to build valid-id sets).
type Collaborator interface {
	GetByID(ctx context.Context, id int64) (any, error)
	GetAll(ctx context.Context) ([]any, error)
}

// Definition wires one entity type into the subsystem. The accessor funcs
// replace dynamic attribute lookup with typed, per-type field access.
type Definition struct {
	// Type is the entity-type tag, stored lowercase.
	Type string
	// Fields lists the translatable field names, stored lowercase.
	Fields []string
	// Source resolves live entities of this type.
	Source Collaborator
	// IDOf extracts the entity's identifier.
	IDOf func(entity any) int64
	// FieldValue reads the live value of a field; ok is false when the
	// field is absent or unreadable on this entity.
	FieldValue func(entity any, field string) (value string, ok bool)
	// SetFieldValue overwrites a field in memory during hydration; returns
	// false when the field cannot be written.
	SetFieldValue func(entity any, field, value string) bool
}

// HasField reports whether field is in the translatable set.
func (d Definition) HasField(field string) bool {
	for _, f := range d.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Registry maps entity-type tags to their definitions and carries the
// locale policy.
type Registry struct {
	defs   map[string]Definition
	policy LocalePolicy
}

// New creates an empty registry with the given locale policy. The policy
// must already be normalized (see NewLocalePolicy / LoadLocalePolicy).
func New(policy LocalePolicy) *Registry {
	return &Registry{
		defs:   make(map[string]Definition),
		policy: policy,
	}
}

// Register adds an entity-type definition. Type tag and field names are
// normalized; registering the same tag twice is a configuration bug and
// fails.
func (r *Registry) Register(def Definition) error {
	tag := entities.NormalizeTag(def.Type)
	if tag == "" {
		return fmt.Errorf("registry: entity type is empty")
	}
	if _, dup := r.defs[tag]; dup {
		return fmt.Errorf("registry: entity type %q already registered", tag)
	}
	if len(def.Fields) == 0 {
		return fmt.Errorf("registry: entity type %q has no translatable fields", tag)
	}
	if def.Source == nil {
		return fmt.Errorf("registry: entity type %q has no collaborator", tag)
	}
	if def.IDOf == nil || def.FieldValue == nil {
		return fmt.Errorf("registry: entity type %q is missing accessors", tag)
	}
	def.Type = tag
	fields := make([]string, len(def.Fields))
	for i, f := range def.Fields {
		fields[i] = entities.NormalizeTag(f)
	}
	def.Fields = fields
	r.defs[tag] = def
	return nil
}

// Lookup returns the definition for an entity type, or
// domain.ErrEntityTypeUnknown.
func (r *Registry) Lookup(entityType string) (Definition, error) {
	def, ok := r.defs[entities.NormalizeTag(entityType)]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", domain.ErrEntityTypeUnknown, entityType)
	}
	return def, nil
}

// Types returns the registered entity-type tags, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.defs))
	for t := range r.defs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// IsTranslatable reports whether field is translatable on entityType.
func (r *Registry) IsTranslatable(entityType, field string) bool {
	def, err := r.Lookup(entityType)
	if err != nil {
		return false
	}
	return def.HasField(entities.NormalizeTag(field))
}

// DefaultLocale returns the configured default locale.
func (r *Registry) DefaultLocale() string { return r.policy.DefaultLocale }

// SupportedLocales returns the configured supported-locale set, in the
// order the policy declared them.
func (r *Registry) SupportedLocales() []string {
	out := make([]string, len(r.policy.SupportedLocales))
	copy(out, r.policy.SupportedLocales)
	return out
}

// IsSupported reports whether locale is in the supported set. The input is
// compared in normalized form.
func (r *Registry) IsSupported(locale string) bool {
	l := entities.NormalizeTag(locale)
	for _, s := range r.policy.SupportedLocales {
		if s == l {
			return true
		}
	}
	return false
}
