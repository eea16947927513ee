// Package sqlite provides an embedded, cgo-free TranslationStore backed by
// modernc.org/sqlite. It is the store used by tests and by single-node
// deployments that do not run PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"transtore/internal/domain"
	"transtore/internal/domain/entities"
	"transtore/internal/ports/output"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ output.TranslationStore = (*Store)(nil)

// dbtx is the subset of *sql.DB / *sql.Tx the queries need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists translations in SQLite.
type Store struct {
	db *sql.DB // nil when bound to a transaction
	q  dbtx
}

// Open opens (creating if needed) a SQLite translation store and applies
// the embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, q: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

const translationColumns = "id, entity_type, entity_id, locale, field_name, translated_value, updated_by, created_at, updated_at"

func scanTranslation(row interface{ Scan(dest ...any) error }) (entities.Translation, error) {
	var t entities.Translation
	var createdAt, updatedAt int64
	err := row.Scan(&t.ID, &t.EntityType, &t.EntityID, &t.Locale, &t.FieldName,
		&t.TranslatedValue, &t.UpdatedBy, &createdAt, &updatedAt)
	if err != nil {
		return entities.Translation{}, err
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func (s *Store) queryTranslations(ctx context.Context, query string, args ...any) ([]entities.Translation, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
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
func (s *Store) Find(ctx context.Context, key entities.TranslationKey) (*entities.Translation, error) {
	key = key.Normalize()
	row := s.q.QueryRowContext(ctx,
		"SELECT "+translationColumns+" FROM translations WHERE entity_type = ? AND entity_id = ? AND locale = ? AND field_name = ?",
		key.EntityType, key.EntityID, key.Locale, key.FieldName)
	t, err := scanTranslation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.Storef("find translation", err)
	}
	return &t, nil
}

// FindForEntity returns an entity's translations ordered by locale, then
// field name. Empty locale / nil fields mean unfiltered.
func (s *Store) FindForEntity(ctx context.Context, entityType string, entityID int64, locale string, fields []string) ([]entities.Translation, error) {
	query := "SELECT " + translationColumns + " FROM translations WHERE entity_type = ? AND entity_id = ?"
	args := []any{entities.NormalizeTag(entityType), entityID}
	if locale != "" {
		query += " AND locale = ?"
		args = append(args, entities.NormalizeTag(locale))
	}
	if len(fields) > 0 {
		query += " AND field_name IN (" + placeholders(len(fields)) + ")"
		for _, f := range fields {
			args = append(args, entities.NormalizeTag(f))
		}
	}
	query += " ORDER BY locale, field_name"
	return s.queryTranslations(ctx, query, args...)
}

// FindForField returns one field's translations ordered by locale. Nil
// locales means unfiltered.
func (s *Store) FindForField(ctx context.Context, entityType string, entityID int64, field string, locales []string) ([]entities.Translation, error) {
	query := "SELECT " + translationColumns + " FROM translations WHERE entity_type = ? AND entity_id = ? AND field_name = ?"
	args := []any{entities.NormalizeTag(entityType), entityID, entities.NormalizeTag(field)}
	if len(locales) > 0 {
		query += " AND locale IN (" + placeholders(len(locales)) + ")"
		for _, l := range locales {
			args = append(args, entities.NormalizeTag(l))
		}
	}
	query += " ORDER BY locale"
	return s.queryTranslations(ctx, query, args...)
}

// ListByEntityType returns a page of an entity type's translations plus
// the total count.
func (s *Store) ListByEntityType(ctx context.Context, entityType, locale string, limit, offset int) ([]entities.Translation, int64, error) {
	where := " FROM translations WHERE entity_type = ?"
	args := []any{entities.NormalizeTag(entityType)}
	if locale != "" {
		where += " AND locale = ?"
		args = append(args, entities.NormalizeTag(locale))
	}

	var total int64
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*)"+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.Storef("count by entity type", err)
	}

	query := "SELECT " + translationColumns + where + " ORDER BY entity_id, locale, field_name"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
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
func (s *Store) Insert(ctx context.Context, t *entities.Translation) error {
	key := t.Key().Normalize()
	now := time.Now().UTC()
	row := s.q.QueryRowContext(ctx,
		`INSERT INTO translations (entity_type, entity_id, locale, field_name, translated_value, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (entity_type, entity_id, locale, field_name) DO NOTHING
		 RETURNING id`,
		key.EntityType, key.EntityID, key.Locale, key.FieldName,
		t.TranslatedValue, t.UpdatedBy, toMillis(now), toMillis(now))
	var id int64
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrDuplicateKey
		}
		return domain.Storef("insert translation", err)
	}
	t.ID = id
	t.EntityType = key.EntityType
	t.Locale = key.Locale
	t.FieldName = key.FieldName
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// Update rewrites the value for an existing natural key.
func (s *Store) Update(ctx context.Context, t *entities.Translation) error {
	key := t.Key().Normalize()
	now := time.Now().UTC()
	res, err := s.q.ExecContext(ctx,
		`UPDATE translations SET translated_value = ?, updated_by = ?, updated_at = ?
		 WHERE entity_type = ? AND entity_id = ? AND locale = ? AND field_name = ?`,
		t.TranslatedValue, t.UpdatedBy, toMillis(now),
		key.EntityType, key.EntityID, key.Locale, key.FieldName)
	if err != nil {
		return domain.Storef("update translation", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Storef("update translation", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	t.UpdatedAt = now
	return nil
}

func (s *Store) deleteWhere(ctx context.Context, op, where string, args ...any) (int64, error) {
	res, err := s.q.ExecContext(ctx, "DELETE FROM translations WHERE "+where, args...)
	if err != nil {
		return 0, domain.Storef(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.Storef(op, err)
	}
	return affected, nil
}

// DeleteForEntity removes every translation of one entity.
func (s *Store) DeleteForEntity(ctx context.Context, entityType string, entityID int64) (int64, error) {
	return s.deleteWhere(ctx, "delete for entity",
		"entity_type = ? AND entity_id = ?", entities.NormalizeTag(entityType), entityID)
}

// DeleteForEntityType removes every translation of an entity type.
func (s *Store) DeleteForEntityType(ctx context.Context, entityType string) (int64, error) {
	return s.deleteWhere(ctx, "delete for entity type",
		"entity_type = ?", entities.NormalizeTag(entityType))
}

// DeleteForEntityIDs removes translations of entityType owned by ids.
func (s *Store) DeleteForEntityIDs(ctx context.Context, entityType string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := []any{entities.NormalizeTag(entityType)}
	for _, id := range ids {
		args = append(args, id)
	}
	return s.deleteWhere(ctx, "delete for entity ids",
		"entity_type = ? AND entity_id IN ("+placeholders(len(ids))+")", args...)
}

// EntityTypes lists the entity types that have translations.
func (s *Store) EntityTypes(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "SELECT DISTINCT entity_type FROM translations ORDER BY entity_type")
}

// Locales lists the locales present for an entity type.
func (s *Store) Locales(ctx context.Context, entityType string) ([]string, error) {
	return s.queryStrings(ctx,
		"SELECT DISTINCT locale FROM translations WHERE entity_type = ? ORDER BY locale",
		entities.NormalizeTag(entityType))
}

// EntityIDs lists the distinct entity ids present for an entity type.
func (s *Store) EntityIDs(ctx context.Context, entityType string) ([]int64, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT DISTINCT entity_id FROM translations WHERE entity_type = ? ORDER BY entity_id",
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
func (s *Store) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM translations").Scan(&n); err != nil {
		return 0, domain.Storef("count all", err)
	}
	return n, nil
}

// CountDistinctEntities returns how many distinct entities have at least
// one translation.
func (s *Store) CountDistinctEntities(ctx context.Context) (int64, error) {
	var n int64
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM (SELECT DISTINCT entity_type, entity_id FROM translations)").Scan(&n)
	if err != nil {
		return 0, domain.Storef("count distinct entities", err)
	}
	return n, nil
}

// CountByEntityType groups row counts by entity type.
func (s *Store) CountByEntityType(ctx context.Context) (map[string]int64, error) {
	return s.queryCounts(ctx, "SELECT entity_type, COUNT(*) FROM translations GROUP BY entity_type")
}

// CountByLocale groups row counts by locale.
func (s *Store) CountByLocale(ctx context.Context) (map[string]int64, error) {
	return s.queryCounts(ctx, "SELECT locale, COUNT(*) FROM translations GROUP BY locale")
}

// LastUpdatedAt returns the most recent update time, or the zero time for
// an empty store.
func (s *Store) LastUpdatedAt(ctx context.Context) (time.Time, error) {
	var millis sql.NullInt64
	if err := s.q.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM translations").Scan(&millis); err != nil {
		return time.Time{}, domain.Storef("last updated at", err)
	}
	if !millis.Valid {
		return time.Time{}, nil
	}
	return fromMillis(millis.Int64), nil
}

// WithinTx runs fn against a transaction-bound store.
func (s *Store) WithinTx(ctx context.Context, fn func(tx output.TranslationStore) error) error {
	if s.db == nil {
		// Already transaction-bound; reuse the current transaction.
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Storef("begin tx", err)
	}
	if err := fn(&Store{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.Storef("commit tx", err)
	}
	return nil
}

func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
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

func (s *Store) queryCounts(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := s.q.QueryContext(ctx, query)
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

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
