package input

import (
	"context"
	"time"

	"transtore/internal/domain/entities"
)

// TranslationResolver is the read side: best-available value resolution
// and in-memory entity hydration.
type TranslationResolver interface {
	// GetTranslation resolves one field in one locale. With useFallback,
	// the fallback chain is: requested locale, then the default locale,
	// then the entity's own live field value. ok is false when no tier
	// produced a value.
	GetTranslation(ctx context.Context, entityType string, entityID int64, field, locale string, useFallback bool) (value string, ok bool, err error)

	// AllTranslationsForField maps locale -> stored value for one field.
	AllTranslationsForField(ctx context.Context, entityType string, entityID int64, field string) (map[string]string, error)

	// TranslationsForEntityByLocale maps field -> stored value in one locale.
	TranslationsForEntityByLocale(ctx context.Context, entityType string, entityID int64, locale string) (map[string]string, error)

	// Hydrate overwrites entity fields in memory with resolved values,
	// best effort: a field that fails to resolve keeps its original value.
	// fields defaults to every translatable field of the type.
	Hydrate(ctx context.Context, entity any, entityType, locale string, fields ...string) error

	// BulkHydrate hydrates a batch; one entity's failure never aborts the
	// rest.
	BulkHydrate(ctx context.Context, batch []any, entityType, locale string, fields ...string) error
}

// UpsertRequest is one create-or-update instruction.
type UpsertRequest struct {
	EntityType string
	EntityID   int64
	Locale     string
	FieldName  string
	Value      string
}

// BatchResult reports a bulk upsert: what persisted and which requests
// failed validation or existence checks (indexed by request position).
type BatchResult struct {
	Saved  []entities.Translation
	Errors []error
}

// TranslationUpserter is the write side.
type TranslationUpserter interface {
	// Upsert validates, normalizes and writes one translation, creating
	// or updating by natural key. Safe under concurrent writers.
	Upsert(ctx context.Context, req UpsertRequest, updatedBy string) (*entities.Translation, error)

	// BulkUpsert processes requests independently and commits every
	// successful one in a single transaction. Per-item failures land in
	// BatchResult.Errors; a storage-level commit fault rolls back the
	// whole batch and is returned as the error.
	BulkUpsert(ctx context.Context, reqs []UpsertRequest, updatedBy string) (BatchResult, error)
}

// CleanupReport summarizes an orphan reconciliation pass.
type CleanupReport struct {
	EntityType string
	DryRun     bool
	// OrphanedIDs are the entity ids whose translations no longer have a
	// live owner.
	OrphanedIDs []int64
	// Removed is the number of translation rows deleted (0 on dry run).
	Removed int64
}

// OrphanCleaner reconciles stored translations against live entities.
type OrphanCleaner interface {
	// CleanupOrphans flags (and without dryRun, deletes) translations of
	// entityType whose entity id is absent from validIDs. An empty
	// validIDs set means no entity is valid: every translation of the
	// type is treated as orphaned.
	CleanupOrphans(ctx context.Context, entityType string, validIDs []int64, dryRun bool) (CleanupReport, error)

	// CleanupAgainstSource builds the valid-id set from the entity
	// type's collaborator, then behaves like CleanupOrphans.
	CleanupAgainstSource(ctx context.Context, entityType string, dryRun bool) (CleanupReport, error)
}

// Overview is the global translation census.
type Overview struct {
	Total            int64
	DistinctEntities int64
	ByEntityType     map[string]int64
	ByLocale         map[string]int64
	LastUpdatedAt    time.Time
}

// SetupReport describes how completely one entity is translated.
type SetupReport struct {
	EntityType   string
	EntityID     int64
	EntityExists bool
	// FieldLocales maps each translatable field to the locales that have
	// a stored value for it.
	FieldLocales map[string][]string
	// Completeness is translated cells over (supported locales x
	// translatable fields), in percent.
	Completeness float64
	// Recommendations are localized, human-readable follow-ups.
	Recommendations []string
}

// StatisticsReporter is the read-only reporting side.
type StatisticsReporter interface {
	Overview(ctx context.Context) (Overview, error)
	ValidateEntitySetup(ctx context.Context, entityType string, entityID int64, reportLocale string) (SetupReport, error)
}
