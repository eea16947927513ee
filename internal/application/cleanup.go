package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"transtore/internal/domain"
	"transtore/internal/domain/entities"
	"transtore/internal/ports/input"
	"transtore/internal/ports/output"
	"transtore/internal/registry"
)

var _ input.OrphanCleaner = (*CleanupService)(nil)

// CleanupService reconciles stored translations against the entities that
// still exist in their source domain.
type CleanupService struct {
	store output.TranslationStore
	reg   *registry.Registry
	log   zerolog.Logger
}

// NewCleanupService creates a CleanupService.
func NewCleanupService(store output.TranslationStore, reg *registry.Registry, log zerolog.Logger) *CleanupService {
	return &CleanupService{store: store, reg: reg, log: log}
}

// CleanupOrphans flags translations of entityType whose entity id is not
// in validIDs. With dryRun the store is never touched; otherwise the
// orphaned rows are deleted in one transaction.
//
// The caller-supplied validIDs set is the ground truth here, so the
// entity type does not have to be registered (batch tooling runs without
// collaborators). An empty validIDs set means no entity of the type is
// valid, so every stored translation of that type counts as orphaned.
// Pass dryRun=true first when that is not what you intend.
func (s *CleanupService) CleanupOrphans(ctx context.Context, entityType string, validIDs []int64, dryRun bool) (input.CleanupReport, error) {
	tag := entities.NormalizeTag(entityType)
	if tag == "" {
		return input.CleanupReport{}, domain.Validation("entity_type", "is empty")
	}

	stored, err := s.store.EntityIDs(ctx, tag)
	if err != nil {
		return input.CleanupReport{}, err
	}

	valid := make(map[int64]struct{}, len(validIDs))
	for _, id := range validIDs {
		valid[id] = struct{}{}
	}
	var orphaned []int64
	for _, id := range stored {
		if _, ok := valid[id]; !ok {
			orphaned = append(orphaned, id)
		}
	}
	sort.Slice(orphaned, func(i, j int) bool { return orphaned[i] < orphaned[j] })

	report := input.CleanupReport{
		EntityType:  tag,
		DryRun:      dryRun,
		OrphanedIDs: orphaned,
	}
	if dryRun || len(orphaned) == 0 {
		return report, nil
	}

	err = s.store.WithinTx(ctx, func(tx output.TranslationStore) error {
		removed, err := tx.DeleteForEntityIDs(ctx, tag, orphaned)
		if err != nil {
			return err
		}
		report.Removed = removed
		return nil
	})
	if err != nil {
		return input.CleanupReport{}, err
	}
	s.log.Info().
		Str("entity_type", tag).
		Int("orphaned_entities", len(orphaned)).
		Int64("rows_removed", report.Removed).
		Msg("orphaned translations removed")
	return report, nil
}

// CleanupAgainstSource builds the valid-id set from the collaborator's
// full entity list, then reconciles like CleanupOrphans.
func (s *CleanupService) CleanupAgainstSource(ctx context.Context, entityType string, dryRun bool) (input.CleanupReport, error) {
	def, err := s.reg.Lookup(entityType)
	if err != nil {
		return input.CleanupReport{}, domain.Validation("entity_type", fmt.Sprintf("%q is not registered", entityType))
	}
	all, err := def.Source.GetAll(ctx)
	if err != nil {
		return input.CleanupReport{}, fmt.Errorf("list %s entities: %w", def.Type, err)
	}
	validIDs := make([]int64, 0, len(all))
	for _, e := range all {
		validIDs = append(validIDs, def.IDOf(e))
	}
	return s.CleanupOrphans(ctx, def.Type, validIDs, dryRun)
}
