package entities

import (
	"strings"
	"time"
)

// TranslationKey is the natural key of one translation: which field of
// which entity, in which locale. All parts are stored normalized (trimmed,
// entity type / locale / field name lowercased).
type TranslationKey struct {
	EntityType string
	EntityID   int64
	Locale     string
	FieldName  string
}

// Normalize returns the key with every part trimmed and lowercased.
func (k TranslationKey) Normalize() TranslationKey {
	return TranslationKey{
		EntityType: NormalizeTag(k.EntityType),
		EntityID:   k.EntityID,
		Locale:     NormalizeTag(k.Locale),
		FieldName:  NormalizeTag(k.FieldName),
	}
}

// Translation is the sole persisted record of the subsystem: one localized
// value for one field of one entity.
type Translation struct {
	ID              int64
	EntityType      string
	EntityID        int64
	Locale          string
	FieldName       string
	TranslatedValue string
	UpdatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Key returns the translation's natural key.
func (t *Translation) Key() TranslationKey {
	return TranslationKey{
		EntityType: t.EntityType,
		EntityID:   t.EntityID,
		Locale:     t.Locale,
		FieldName:  t.FieldName,
	}
}

// NormalizeTag trims and lowercases a key component.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
