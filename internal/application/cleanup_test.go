package application

import (
	"context"
	"errors"
	"testing"

	"transtore/internal/domain"
)

func seedProductTranslations(t *testing.T, env *testEnv) {
	t.Helper()
	for _, id := range []int64{1, 2, 3} {
		env.addProduct(id, "Item", "")
	}
	env.mustUpsert(t, "product", 1, "en", "name", "Belt")
	env.mustUpsert(t, "product", 2, "en", "name", "Bag")
	env.mustUpsert(t, "product", 2, "de", "name", "Tasche")
	env.mustUpsert(t, "product", 3, "en", "name", "Hat")
}

func TestCleanupDryRunNeverMutates(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedProductTranslations(t, env)
	before := env.rowCount(t)

	report, err := env.cleaner.CleanupOrphans(context.Background(), "product", []int64{1, 3}, true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !report.DryRun {
		t.Fatal("report not marked as dry run")
	}
	if len(report.OrphanedIDs) != 1 || report.OrphanedIDs[0] != 2 {
		t.Fatalf("orphaned = %v, want [2]", report.OrphanedIDs)
	}
	if report.Removed != 0 {
		t.Fatalf("removed = %d, want 0 on dry run", report.Removed)
	}
	if after := env.rowCount(t); after != before {
		t.Fatalf("row count changed on dry run: %d -> %d", before, after)
	}
}

func TestCleanupRemovesExactlyOrphanedRows(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedProductTranslations(t, env)

	report, err := env.cleaner.CleanupOrphans(context.Background(), "product", []int64{1, 3}, false)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	// Product 2 owned two rows (en + de).
	if report.Removed != 2 {
		t.Fatalf("removed = %d, want 2", report.Removed)
	}
	if n := env.rowCount(t); n != 2 {
		t.Fatalf("remaining rows = %d, want 2", n)
	}
	if _, ok, err := env.resolver.GetTranslation(context.Background(), "product", 2, "name", "de", false); err != nil || ok {
		t.Fatalf("orphaned translation still resolvable: (%v, %v)", ok, err)
	}
}

func TestCleanupEmptyValidSetOrphansEverything(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedProductTranslations(t, env)

	// Contract: an empty valid-id set means no entity is valid, so every
	// translation of the type is orphaned.
	report, err := env.cleaner.CleanupOrphans(context.Background(), "product", nil, false)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if len(report.OrphanedIDs) != 3 {
		t.Fatalf("orphaned = %v, want all three entities", report.OrphanedIDs)
	}
	if report.Removed != 4 {
		t.Fatalf("removed = %d, want all 4 rows", report.Removed)
	}
	if n := env.rowCount(t); n != 0 {
		t.Fatalf("remaining rows = %d, want 0", n)
	}
}

func TestCleanupLeavesOtherTypesAlone(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedProductTranslations(t, env)
	env.addMaterial(7, "Steel")
	env.mustUpsert(t, "material", 7, "en", "name", "Steel")

	if _, err := env.cleaner.CleanupOrphans(context.Background(), "product", nil, false); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, ok, err := env.resolver.GetTranslation(context.Background(), "material", 7, "name", "en", false); err != nil || !ok {
		t.Fatalf("material translation lost: (%v, %v)", ok, err)
	}
}

func TestCleanupRejectsEmptyEntityType(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if _, err := env.cleaner.CleanupOrphans(context.Background(), "  ", nil, true); !domain.IsValidation(err) {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestCleanupAgainstSource(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedProductTranslations(t, env)
	env.removeProduct(2)

	report, err := env.cleaner.CleanupAgainstSource(context.Background(), "product", false)
	if err != nil {
		t.Fatalf("cleanup against source: %v", err)
	}
	if len(report.OrphanedIDs) != 1 || report.OrphanedIDs[0] != 2 {
		t.Fatalf("orphaned = %v, want [2]", report.OrphanedIDs)
	}
	if report.Removed != 2 {
		t.Fatalf("removed = %d, want 2", report.Removed)
	}
}

func TestCleanupAgainstSourceFailsFastWhenCollaboratorDown(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedProductTranslations(t, env)
	env.products.getAllErr = errors.New("source unreachable")

	if _, err := env.cleaner.CleanupAgainstSource(context.Background(), "product", false); err == nil {
		t.Fatal("expected error when collaborator is unreachable")
	}
	if n := env.rowCount(t); n != 4 {
		t.Fatalf("row count = %d, want untouched 4", n)
	}
}

func TestCleanupAgainstSourceRequiresRegisteredType(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if _, err := env.cleaner.CleanupAgainstSource(context.Background(), "workflow", true); !domain.IsValidation(err) {
		t.Fatalf("error = %v, want validation", err)
	}
}
