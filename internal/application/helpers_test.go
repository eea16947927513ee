package application

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"transtore/internal/domain"
	"transtore/internal/infrastructure/sqlite"
	"transtore/internal/ports/input"
	"transtore/internal/registry"
)

type product struct {
	ID          int64
	Name        string
	Description string
}

type material struct {
	ID   int64
	Name string
}

// fakeSource is an in-memory collaborator for one entity type.
type fakeSource[E any] struct {
	mu         sync.Mutex
	entityType string
	items      map[int64]*E
	getAllErr  error
}

func (s *fakeSource[E]) GetByID(ctx context.Context, id int64) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[id]; ok {
		return e, nil
	}
	return nil, &domain.EntityNotFoundError{EntityType: s.entityType, EntityID: id}
}

func (s *fakeSource[E]) GetAll(ctx context.Context) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getAllErr != nil {
		return nil, s.getAllErr
	}
	out := make([]any, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	return out, nil
}

type testEnv struct {
	store     *sqlite.Store
	reg       *registry.Registry
	products  *fakeSource[product]
	materials *fakeSource[material]

	resolver *ResolverService
	upserter *UpsertService
	cleaner  *CleanupService
}

// fixedTranslator renders report messages without a message catalog, so
// application tests do not depend on the i18n bundle.
type fixedTranslator struct{}

func (fixedTranslator) T(locale, key string, data map[string]any) string { return key }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "translations.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	policy, err := registry.NewLocalePolicy("en", []string{"en", "de", "fr"})
	if err != nil {
		t.Fatalf("locale policy: %v", err)
	}
	reg := registry.New(policy)

	products := &fakeSource[product]{entityType: "product", items: map[int64]*product{}}
	if err := reg.Register(registry.Definition{
		Type:   "product",
		Fields: []string{"name", "description"},
		Source: products,
		IDOf:   func(e any) int64 { return e.(*product).ID },
		FieldValue: func(e any, field string) (string, bool) {
			p := e.(*product)
			switch field {
			case "name":
				return p.Name, true
			case "description":
				return p.Description, true
			}
			return "", false
		},
		SetFieldValue: func(e any, field, value string) bool {
			p := e.(*product)
			switch field {
			case "name":
				p.Name = value
			case "description":
				p.Description = value
			default:
				return false
			}
			return true
		},
	}); err != nil {
		t.Fatalf("register product: %v", err)
	}

	materials := &fakeSource[material]{entityType: "material", items: map[int64]*material{}}
	if err := reg.Register(registry.Definition{
		Type:   "material",
		Fields: []string{"name"},
		Source: materials,
		IDOf:   func(e any) int64 { return e.(*material).ID },
		FieldValue: func(e any, field string) (string, bool) {
			if field == "name" {
				return e.(*material).Name, true
			}
			return "", false
		},
		SetFieldValue: func(e any, field, value string) bool {
			if field == "name" {
				e.(*material).Name = value
				return true
			}
			return false
		},
	}); err != nil {
		t.Fatalf("register material: %v", err)
	}

	log := zerolog.Nop()
	return &testEnv{
		store:     store,
		reg:       reg,
		products:  products,
		materials: materials,
		resolver:  NewResolverService(store, reg, log),
		upserter:  NewUpsertService(store, reg, log),
		cleaner:   NewCleanupService(store, reg, log),
	}
}

func (e *testEnv) stats() *StatisticsService {
	return NewStatisticsService(e.store, e.reg, fixedTranslator{})
}

func (e *testEnv) addProduct(id int64, name, description string) {
	e.products.mu.Lock()
	defer e.products.mu.Unlock()
	e.products.items[id] = &product{ID: id, Name: name, Description: description}
}

func (e *testEnv) removeProduct(id int64) {
	e.products.mu.Lock()
	defer e.products.mu.Unlock()
	delete(e.products.items, id)
}

func (e *testEnv) addMaterial(id int64, name string) {
	e.materials.mu.Lock()
	defer e.materials.mu.Unlock()
	e.materials.items[id] = &material{ID: id, Name: name}
}

func (e *testEnv) mustUpsert(t *testing.T, entityType string, entityID int64, locale, field, value string) {
	t.Helper()
	if _, err := e.upserter.Upsert(context.Background(), input.UpsertRequest{
		EntityType: entityType,
		EntityID:   entityID,
		Locale:     locale,
		FieldName:  field,
		Value:      value,
	}, "test"); err != nil {
		t.Fatalf("upsert %s/%d/%s/%s: %v", entityType, entityID, locale, field, err)
	}
}

func (e *testEnv) rowCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.store.CountAll(context.Background())
	if err != nil {
		t.Fatalf("count all: %v", err)
	}
	return n
}
