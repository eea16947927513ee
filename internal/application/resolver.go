package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"transtore/internal/domain"
	"transtore/internal/domain/entities"
	"transtore/internal/ports/input"
	"transtore/internal/ports/output"
	"transtore/internal/registry"
)

var _ input.TranslationResolver = (*ResolverService)(nil)

// ResolverService resolves the best available value for a translatable
// field: the requested locale's stored translation, then the default
// locale's, then the owning entity's own live value.
type ResolverService struct {
	store output.TranslationStore
	reg   *registry.Registry
	log   zerolog.Logger
}

// NewResolverService creates a ResolverService.
func NewResolverService(store output.TranslationStore, reg *registry.Registry, log zerolog.Logger) *ResolverService {
	return &ResolverService{store: store, reg: reg, log: log}
}

// checkField validates the entity type and field against the registry.
func (s *ResolverService) checkField(entityType, field string) (registry.Definition, string, error) {
	def, err := s.reg.Lookup(entityType)
	if err != nil {
		return registry.Definition{}, "", domain.Validation("entity_type", fmt.Sprintf("%q is not registered", entityType))
	}
	f := entities.NormalizeTag(field)
	if !def.HasField(f) {
		return registry.Definition{}, "", domain.Validation("field_name", fmt.Sprintf("%q is not translatable on %q", field, def.Type))
	}
	return def, f, nil
}

// GetTranslation resolves one field in one locale. The tier order is a
// contract: requested locale, then default locale, then the source
// entity's live value. Without useFallback only the first tier applies.
func (s *ResolverService) GetTranslation(ctx context.Context, entityType string, entityID int64, field, locale string, useFallback bool) (string, bool, error) {
	def, f, err := s.checkField(entityType, field)
	if err != nil {
		return "", false, err
	}

	key := entities.TranslationKey{
		EntityType: def.Type,
		EntityID:   entityID,
		Locale:     locale,
		FieldName:  f,
	}.Normalize()

	// Tier 1: the requested locale.
	if t, err := s.store.Find(ctx, key); err == nil {
		return t.TranslatedValue, true, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", false, err
	}

	if !useFallback {
		return "", false, nil
	}

	// Tier 2: the default locale, when it differs.
	if key.Locale != s.reg.DefaultLocale() {
		fallbackKey := key
		fallbackKey.Locale = s.reg.DefaultLocale()
		if t, err := s.store.Find(ctx, fallbackKey); err == nil {
			return t.TranslatedValue, true, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return "", false, err
		}
	}

	// Tier 3: the live value on the source entity.
	entity, err := def.Source.GetByID(ctx, entityID)
	if err != nil {
		if domain.IsEntityNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("resolve %s %d from source: %w", def.Type, entityID, err)
	}
	if value, ok := def.FieldValue(entity, f); ok && value != "" {
		return value, true, nil
	}
	return "", false, nil
}

// AllTranslationsForField maps locale -> stored value for one field. Only
// stored translations appear; no fallback is applied.
func (s *ResolverService) AllTranslationsForField(ctx context.Context, entityType string, entityID int64, field string) (map[string]string, error) {
	def, f, err := s.checkField(entityType, field)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.FindForField(ctx, def.Type, entityID, f, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, t := range rows {
		out[t.Locale] = t.TranslatedValue
	}
	return out, nil
}

// TranslationsForEntityByLocale maps field -> stored value in one locale.
func (s *ResolverService) TranslationsForEntityByLocale(ctx context.Context, entityType string, entityID int64, locale string) (map[string]string, error) {
	def, err := s.reg.Lookup(entityType)
	if err != nil {
		return nil, domain.Validation("entity_type", fmt.Sprintf("%q is not registered", entityType))
	}
	rows, err := s.store.FindForEntity(ctx, def.Type, entityID, entities.NormalizeTag(locale), nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, t := range rows {
		out[t.FieldName] = t.TranslatedValue
	}
	return out, nil
}

// Hydrate overwrites entity fields in memory with resolved values. Best
// effort: a field that cannot be resolved is logged and keeps its
// original value.
func (s *ResolverService) Hydrate(ctx context.Context, entity any, entityType, locale string, fields ...string) error {
	if entity == nil {
		return domain.Validation("entity", "is nil")
	}
	def, err := s.reg.Lookup(entityType)
	if err != nil {
		return domain.Validation("entity_type", fmt.Sprintf("%q is not registered", entityType))
	}
	if def.SetFieldValue == nil {
		return fmt.Errorf("entity type %q does not support hydration", def.Type)
	}
	if len(fields) == 0 {
		fields = def.Fields
	}
	id := def.IDOf(entity)
	for _, field := range fields {
		value, ok, err := s.GetTranslation(ctx, def.Type, id, field, locale, true)
		if err != nil {
			s.log.Warn().Err(err).
				Str("entity_type", def.Type).
				Int64("entity_id", id).
				Str("field", field).
				Str("locale", locale).
				Msg("hydrate: field skipped")
			continue
		}
		if !ok {
			continue
		}
		if !def.SetFieldValue(entity, entities.NormalizeTag(field), value) {
			s.log.Warn().
				Str("entity_type", def.Type).
				Int64("entity_id", id).
				Str("field", field).
				Msg("hydrate: field not writable")
		}
	}
	return nil
}

// BulkHydrate hydrates a batch of entities; one entity's failure never
// aborts the rest.
func (s *ResolverService) BulkHydrate(ctx context.Context, batch []any, entityType, locale string, fields ...string) error {
	for i, entity := range batch {
		if err := s.Hydrate(ctx, entity, entityType, locale, fields...); err != nil {
			s.log.Warn().Err(err).
				Str("entity_type", entityType).
				Int("index", i).
				Msg("bulk hydrate: entity skipped")
		}
	}
	return nil
}
