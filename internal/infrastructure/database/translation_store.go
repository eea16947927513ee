package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"transtore/internal/domain"
	"transtore/internal/domain/entities"
	"transtore/internal/ports/output"
)

var _ output.TranslationStore = (*TranslationStore)(nil)

// DBTX is the querying surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TranslationStore implements output.TranslationStore on PostgreSQL via
// pgx.
type TranslationStore struct {
	pool *pgxpool.Pool // nil when bound to a transaction
	q    DBTX
}

// NewTranslationStore creates a TranslationStore on pool.
func NewTranslationStore(pool *pgxpool.Pool) *TranslationStore {
	return &TranslationStore{pool: pool, q: pool}
}

const translationColumns = "id, entity_type, entity_id, locale, field_name, translated_value, updated_by, created_at, updated_at"

func scanTranslation(row pgx.Row) (entities.Translation, error) {
	var t entities.Translation
	err := row.Scan(&t.ID, &t.EntityType, &t.EntityID, &t.Locale, &t.FieldName,
		&t.TranslatedValue, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *TranslationStore) queryTranslations(ctx context.Context, query string, args ...any) ([]entities.Translation, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Storef("query translations", err)
	}
	defer rows.Close()
	var out []entities.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, domain.Storef("scan translation", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storef("iterate translations", err)
	}
	return out, nil
}

// Find returns the record for a natural key, or domain.ErrNotFound.
func (s *TranslationStore) Find(ctx context.Context, key entities.TranslationKey) (*entities.Translation, error) {
	key = key.Normalize()
	row := s.q.QueryRow(ctx,
		"SELECT "+translationColumns+" FROM translations WHERE entity_type = $1 AND entity_id = $2 AND locale = $3 AND field_name = $4",
		key.EntityType, key.EntityID, key.Locale, key.FieldName)
	t, err := scanTranslation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.Storef("find translation", err)
	}
	return &t, nil
}

// FindForEntity returns an entity's translations ordered by locale, then
// field name. Empty locale / nil fields mean unfiltered.
func (s *TranslationStore) FindForEntity(ctx context.Context, entityType string, entityID int64, locale string, fields []string) ([]entities.Translation, error) {
	query := "SELECT " + translationColumns + " FROM translations WHERE entity_type = $1 AND entity_id = $2"
	args := []any{entities.NormalizeTag(entityType), entityID}
	if locale != "" {
		args = append(args, entities.NormalizeTag(locale))
		query += fmt.Sprintf(" AND locale = $%d", len(args))
	}
	if len(fields) > 0 {
		normalized := make([]string, len(fields))
		for i, f := range fields {
			normalized[i] = entities.NormalizeTag(f)
		}
		args = append(args, normalized)
		query += fmt.Sprintf(" AND field_name = ANY($%d)", len(args))
	}
	query += " ORDER BY locale, field_name"
	return s.queryTranslations(ctx, query, args...)
}

// FindForField returns one field's translations ordered by locale. Nil
// locales means unfiltered.
func (s *TranslationStore) FindForField(ctx context.Context, entityType string, entityID int64, field string, locales []string) ([]entities.Translation, error) {
	query := "SELECT " + translationColumns + " FROM translations WHERE entity_type = $1 AND entity_id = $2 AND field_name = $3"
	args := []any{entities.NormalizeTag(entityType), entityID, entities.NormalizeTag(field)}
	if len(locales) > 0 {
		normalized := make([]string, len(locales))
		for i, l := range locales {
			normalized[i] = entities.NormalizeTag(l)
		}
		args = append(args, normalized)
		query += fmt.Sprintf(" AND locale = ANY($%d)", len(args))
	}
	query += " ORDER BY locale"
	return s.queryTranslations(ctx, query, args...)
}

// ListByEntityType returns a page of an entity type's translations plus
// the total count.
func (s *TranslationStore) ListByEntityType(ctx context.Context, entityType, locale string, limit, offset int) ([]entities.Translation, int64, error) {
	where := " FROM translations WHERE entity_type = $1"
	args := []any{entities.NormalizeTag(entityType)}
	if locale != "" {
		args = append(args, entities.NormalizeTag(locale))
		where += fmt.Sprintf(" AND locale = $%d", len(args))
	}

	var total int64
	if err := s.q.QueryRow(ctx, "SELECT COUNT(*)"+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.Storef("count by entity type", err)
	}

	query := "SELECT " + translationColumns + where + " ORDER BY entity_id, locale, field_name"
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := s.queryTranslations(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Insert creates a record. ON CONFLICT DO NOTHING keeps a lost create
// race from aborting an enclosing transaction; zero rows inserted is
// reported as domain.ErrDuplicateKey.
func (s *TranslationStore) Insert(ctx context.Context, t *entities.Translation) error {
	key := t.Key().Normalize()
	row := s.q.QueryRow(ctx,
		`INSERT INTO translations (entity_type, entity_id, locale, field_name, translated_value, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (entity_type, entity_id, locale, field_name) DO NOTHING
		 RETURNING id, created_at, updated_at`,
		key.EntityType, key.EntityID, key.Locale, key.FieldName, t.TranslatedValue, t.UpdatedBy)
	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrDuplicateKey
		}
		return domain.Storef("insert translation", err)
	}
	t.EntityType = key.EntityType
	t.Locale = key.Locale
	t.FieldName = key.FieldName
	return nil
}

// Update rewrites the value for an existing natural key.
func (s *TranslationStore) Update(ctx context.Context, t *entities.Translation) error {
	key := t.Key().Normalize()
	row := s.q.QueryRow(ctx,
		`UPDATE translations SET translated_value = $1, updated_by = $2, updated_at = now()
		 WHERE entity_type = $3 AND entity_id = $4 AND locale = $5 AND field_name = $6
		 RETURNING updated_at`,
		t.TranslatedValue, t.UpdatedBy, key.EntityType, key.EntityID, key.Locale, key.FieldName)
	var updatedAt time.Time
	if err := row.Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return domain.Storef("update translation", err)
	}
	t.UpdatedAt = updatedAt
	return nil
}

func (s *TranslationStore) deleteWhere(ctx context.Context, op, where string, args ...any) (int64, error) {
	tag, err := s.q.Exec(ctx, "DELETE FROM translations WHERE "+where, args...)
	if err != nil {
		return 0, domain.Storef(op, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteForEntity removes every translation of one entity.
func (s *TranslationStore) DeleteForEntity(ctx context.Context, entityType string, entityID int64) (int64, error) {
	return s.deleteWhere(ctx, "delete for entity",
		"entity_type = $1 AND entity_id = $2", entities.NormalizeTag(entityType), entityID)
}

// DeleteForEntityType removes every translation of an entity type.
func (s *TranslationStore) DeleteForEntityType(ctx context.Context, entityType string) (int64, error) {
	return s.deleteWhere(ctx, "delete for entity type",
		"entity_type = $1", entities.NormalizeTag(entityType))
}

// DeleteForEntityIDs removes translations of entityType owned by ids.
func (s *TranslationStore) DeleteForEntityIDs(ctx context.Context, entityType string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.deleteWhere(ctx, "delete for entity ids",
		"entity_type = $1 AND entity_id = ANY($2)", entities.NormalizeTag(entityType), ids)
}

// EntityTypes lists the entity types that have translations.
func (s *TranslationStore) EntityTypes(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "SELECT DISTINCT entity_type FROM translations ORDER BY entity_type")
}

// Locales lists the locales present for an entity type.
func (s *TranslationStore) Locales(ctx context.Context, entityType string) ([]string, error) {
	return s.queryStrings(ctx,
		"SELECT DISTINCT locale FROM translations WHERE entity_type = $1 ORDER BY locale",
		entities.NormalizeTag(entityType))
}

// EntityIDs lists the distinct entity ids present for an entity type.
func (s *TranslationStore) EntityIDs(ctx context.Context, entityType string) ([]int64, error) {
	rows, err := s.q.Query(ctx,
		"SELECT DISTINCT entity_id FROM translations WHERE entity_type = $1 ORDER BY entity_id",
		entities.NormalizeTag(entityType))
	if err != nil {
		return nil, domain.Storef("list entity ids", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, domain.Storef("scan entity id", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storef("iterate entity ids", err)
	}
	return out, nil
}

// CountAll returns the total number of translation rows.
func (s *TranslationStore) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.q.QueryRow(ctx, "SELECT COUNT(*) FROM translations").Scan(&n); err != nil {
		return 0, domain.Storef("count all", err)
	}
	return n, nil
}

// CountDistinctEntities returns how many distinct entities have at least
// one translation.
func (s *TranslationStore) CountDistinctEntities(ctx context.Context) (int64, error) {
	var n int64
	err := s.q.QueryRow(ctx,
		"SELECT COUNT(*) FROM (SELECT DISTINCT entity_type, entity_id FROM translations) e").Scan(&n)
	if err != nil {
		return 0, domain.Storef("count distinct entities", err)
	}
	return n, nil
}

// CountByEntityType groups row counts by entity type.
func (s *TranslationStore) CountByEntityType(ctx context.Context) (map[string]int64, error) {
	return s.queryCounts(ctx, "SELECT entity_type, COUNT(*) FROM translations GROUP BY entity_type")
}

// CountByLocale groups row counts by locale.
func (s *TranslationStore) CountByLocale(ctx context.Context) (map[string]int64, error) {
	return s.queryCounts(ctx, "SELECT locale, COUNT(*) FROM translations GROUP BY locale")
}

// LastUpdatedAt returns the most recent update time, or the zero time for
// an empty store.
func (s *TranslationStore) LastUpdatedAt(ctx context.Context) (time.Time, error) {
	var last *time.Time
	if err := s.q.QueryRow(ctx, "SELECT MAX(updated_at) FROM translations").Scan(&last); err != nil {
		return time.Time{}, domain.Storef("last updated at", err)
	}
	if last == nil {
		return time.Time{}, nil
	}
	return *last, nil
}

// WithinTx runs fn against a transaction-bound store.
func (s *TranslationStore) WithinTx(ctx context.Context, fn func(tx output.TranslationStore) error) error {
	if s.pool == nil {
		// Already transaction-bound; reuse the current transaction.
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Storef("begin tx", err)
	}
	if err := fn(&TranslationStore{q: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Storef("commit tx", err)
	}
	return nil
}

func (s *TranslationStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Storef("query strings", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, domain.Storef("scan string", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storef("iterate strings", err)
	}
	return out, nil
}

func (s *TranslationStore) queryCounts(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, domain.Storef("query counts", err)
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var k string
		var n int64
		if err := rows.Scan(&k, &n); err != nil {
			return nil, domain.Storef("scan count", err)
		}
		out[k] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storef("iterate counts", err)
	}
	return out, nil
}
