package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"transtore/internal/domain"
	"transtore/internal/domain/entities"
	"transtore/internal/ports/input"
	"transtore/internal/ports/output"
	"transtore/internal/registry"
)

var _ input.TranslationUpserter = (*UpsertService)(nil)

// maxUpsertAttempts bounds the insert/re-read retry used to resolve the
// create/create race on a new natural key.
const maxUpsertAttempts = 3

// UpsertService validates and writes translations. Concurrent writers on
// the same new key are reconciled through the store's uniqueness
// constraint plus a bounded re-read-then-update loop; callers never see
// the conflict.
type UpsertService struct {
	store output.TranslationStore
	reg   *registry.Registry
	log   zerolog.Logger
}

// NewUpsertService creates an UpsertService.
func NewUpsertService(store output.TranslationStore, reg *registry.Registry, log zerolog.Logger) *UpsertService {
	return &UpsertService{store: store, reg: reg, log: log}
}

// prepare validates and normalizes one request and confirms the owning
// entity exists. ValidationError and EntityNotFoundError are item-level;
// any other error (unreachable collaborator) is fatal for the caller.
func (s *UpsertService) prepare(ctx context.Context, req input.UpsertRequest, updatedBy string) (*entities.Translation, error) {
	entityType := entities.NormalizeTag(req.EntityType)
	if entityType == "" {
		return nil, domain.Validation("entity_type", "is empty")
	}
	def, err := s.reg.Lookup(entityType)
	if err != nil {
		return nil, domain.Validation("entity_type", fmt.Sprintf("%q is not registered", req.EntityType))
	}
	if req.EntityID <= 0 {
		return nil, domain.Validation("entity_id", "must be positive")
	}
	loc := entities.NormalizeTag(req.Locale)
	if loc == "" {
		return nil, domain.Validation("locale", "is empty")
	}
	if !s.reg.IsSupported(loc) {
		return nil, domain.Validation("locale", fmt.Sprintf("%q is not in the supported set", req.Locale))
	}
	field := entities.NormalizeTag(req.FieldName)
	if !def.HasField(field) {
		return nil, domain.Validation("field_name", fmt.Sprintf("%q is not translatable on %q", req.FieldName, def.Type))
	}
	value := strings.TrimSpace(req.Value)
	if value == "" {
		return nil, domain.Validation("value", "is empty")
	}

	if _, err := def.Source.GetByID(ctx, req.EntityID); err != nil {
		if domain.IsEntityNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("confirm %s %d exists: %w", def.Type, req.EntityID, err)
	}

	return &entities.Translation{
		EntityType:      def.Type,
		EntityID:        req.EntityID,
		Locale:          loc,
		FieldName:       field,
		TranslatedValue: value,
		UpdatedBy:       strings.TrimSpace(updatedBy),
	}, nil
}

// upsertOne writes t by natural key against st: update in place when the
// key exists, insert otherwise. A lost create race (ErrDuplicateKey) or a
// row deleted between read and update triggers a re-read, at most
// maxUpsertAttempts times.
func upsertOne(ctx context.Context, st output.TranslationStore, t *entities.Translation) (*entities.Translation, error) {
	key := t.Key()
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		existing, err := st.Find(ctx, key)
		switch {
		case err == nil:
			existing.TranslatedValue = t.TranslatedValue
			existing.UpdatedBy = t.UpdatedBy
			if err := st.Update(ctx, existing); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, err
			}
			return existing, nil
		case errors.Is(err, domain.ErrNotFound):
			fresh := *t
			if err := st.Insert(ctx, &fresh); err != nil {
				if errors.Is(err, domain.ErrDuplicateKey) {
					continue
				}
				return nil, err
			}
			return &fresh, nil
		default:
			return nil, err
		}
	}
	return nil, domain.Storef("upsert", fmt.Errorf("key %+v still contended after %d attempts", key, maxUpsertAttempts))
}

// Upsert validates, normalizes and writes one translation.
func (s *UpsertService) Upsert(ctx context.Context, req input.UpsertRequest, updatedBy string) (*entities.Translation, error) {
	t, err := s.prepare(ctx, req, updatedBy)
	if err != nil {
		return nil, err
	}
	saved, err := upsertOne(ctx, s.store, t)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("entity_type", saved.EntityType).
		Int64("entity_id", saved.EntityID).
		Str("locale", saved.Locale).
		Str("field", saved.FieldName).
		Msg("translation upserted")
	return saved, nil
}

// BulkUpsert processes each request independently: validation and
// existence failures are collected per index and never abort the batch.
// Every surviving request is committed in one transaction; a
// storage-level fault there rolls the whole batch back and is returned as
// a single fatal error.
func (s *UpsertService) BulkUpsert(ctx context.Context, reqs []input.UpsertRequest, updatedBy string) (input.BatchResult, error) {
	var res input.BatchResult
	pending := make([]*entities.Translation, 0, len(reqs))
	for i, req := range reqs {
		t, err := s.prepare(ctx, req, updatedBy)
		if err != nil {
			if domain.IsValidation(err) || domain.IsEntityNotFound(err) {
				res.Errors = append(res.Errors, &domain.BatchItemError{Index: i, Err: err})
				continue
			}
			return input.BatchResult{}, err
		}
		pending = append(pending, t)
	}
	if len(pending) == 0 {
		return res, nil
	}

	err := s.store.WithinTx(ctx, func(tx output.TranslationStore) error {
		for _, t := range pending {
			saved, err := upsertOne(ctx, tx, t)
			if err != nil {
				return err
			}
			res.Saved = append(res.Saved, *saved)
		}
		return nil
	})
	if err != nil {
		res.Saved = nil
		if domain.IsStore(err) {
			return res, err
		}
		return res, domain.Storef("bulk upsert", err)
	}
	s.log.Debug().
		Int("saved", len(res.Saved)).
		Int("failed", len(res.Errors)).
		Msg("bulk upsert committed")
	return res, nil
}
