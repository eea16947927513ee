package output

import (
	"context"
	"time"

	"transtore/internal/domain/entities"
)

// TranslationStore is the persistence port for translation records. Reads
// are side-effect free; mutating calls fail without leaving partial state
// visible. Implementations map their engine's failures to the sentinels in
// internal/domain (ErrNotFound, ErrDuplicateKey) or wrap them as
// StoreError.
type TranslationStore interface {
	// Find returns the record for a natural key, or domain.ErrNotFound.
	Find(ctx context.Context, key entities.TranslationKey) (*entities.Translation, error)

	// FindForEntity returns an entity's translations ordered by locale,
	// then field name. Empty locale / nil fields mean unfiltered.
	FindForEntity(ctx context.Context, entityType string, entityID int64, locale string, fields []string) ([]entities.Translation, error)

	// FindForField returns one field's translations ordered by locale.
	// Nil locales means unfiltered.
	FindForField(ctx context.Context, entityType string, entityID int64, field string, locales []string) ([]entities.Translation, error)

	// ListByEntityType returns a page of an entity type's translations
	// plus the total count. Empty locale means unfiltered; limit <= 0
	// means no page bound.
	ListByEntityType(ctx context.Context, entityType, locale string, limit, offset int) ([]entities.Translation, int64, error)

	// Insert creates a record, filling ID, CreatedAt and UpdatedAt.
	// Returns domain.ErrDuplicateKey when the natural key already exists.
	Insert(ctx context.Context, t *entities.Translation) error

	// Update rewrites TranslatedValue and UpdatedBy for an existing
	// natural key and refreshes UpdatedAt. Returns domain.ErrNotFound if
	// the row no longer exists.
	Update(ctx context.Context, t *entities.Translation) error

	DeleteForEntity(ctx context.Context, entityType string, entityID int64) (int64, error)
	DeleteForEntityType(ctx context.Context, entityType string) (int64, error)
	// DeleteForEntityIDs removes every translation of entityType whose
	// entity id is in ids.
	DeleteForEntityIDs(ctx context.Context, entityType string, ids []int64) (int64, error)

	// EntityTypes lists the entity types that have translations, sorted.
	EntityTypes(ctx context.Context) ([]string, error)
	// Locales lists the locales present for an entity type, sorted.
	Locales(ctx context.Context, entityType string) ([]string, error)
	// EntityIDs lists the distinct entity ids present for an entity type.
	EntityIDs(ctx context.Context, entityType string) ([]int64, error)

	CountAll(ctx context.Context) (int64, error)
	CountDistinctEntities(ctx context.Context) (int64, error)
	CountByEntityType(ctx context.Context) (map[string]int64, error)
	CountByLocale(ctx context.Context) (map[string]int64, error)
	// LastUpdatedAt returns the most recent update time, or the zero time
	// when the store is empty.
	LastUpdatedAt(ctx context.Context) (time.Time, error)

	// WithinTx runs fn against a transaction-bound view of the store.
	// A nil return commits; any error rolls back and is returned.
	WithinTx(ctx context.Context, fn func(tx TranslationStore) error) error
}
