package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"transtore/internal/application"
	"transtore/internal/config"
	"transtore/internal/infrastructure/database"
	"transtore/internal/infrastructure/i18n"
	"transtore/internal/infrastructure/sqlite"
	"transtore/internal/ports/output"
	"transtore/internal/registry"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "apply pending schema migrations")
	statsFlag := flag.Bool("stats", false, "print the translation overview")
	cleanupType := flag.String("cleanup", "", "entity type to reconcile for orphaned translations")
	validIDsPath := flag.String("valid-ids", "", "file with one valid entity id per line (with -cleanup)")
	apply := flag.Bool("apply", false, "actually delete orphans (default is a dry run)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(lvl)
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg, log, *migrateFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("open translation store")
	}
	defer closeStore()

	policy, err := loadPolicy(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("load locale policy")
	}
	reg := registry.New(policy)

	switch {
	case *statsFlag:
		if err := printOverview(ctx, store, reg, policy, log); err != nil {
			log.Fatal().Err(err).Msg("compute overview")
		}
	case *cleanupType != "":
		if err := runCleanup(ctx, store, reg, log, *cleanupType, *validIDsPath, !*apply); err != nil {
			log.Fatal().Err(err).Msg("cleanup orphans")
		}
	case *migrateFlag:
		// Migrations already ran while opening the store.
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, migrate bool) (output.TranslationStore, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		// Opening the SQLite store always applies pending migrations.
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	default:
		if migrate {
			if err := database.RunMigrations(cfg.DatabaseURL, log); err != nil {
				return nil, nil, err
			}
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return database.NewTranslationStore(pool), pool.Close, nil
	}
}

func loadPolicy(cfg *config.Config) (registry.LocalePolicy, error) {
	if cfg.LocalePolicyPath != "" {
		return registry.LoadLocalePolicy(cfg.LocalePolicyPath)
	}
	return registry.NewLocalePolicy(cfg.DefaultLocale, cfg.SupportedLocales)
}

func printOverview(ctx context.Context, store output.TranslationStore, reg *registry.Registry, policy registry.LocalePolicy, log zerolog.Logger) error {
	stats := application.NewStatisticsService(store, reg, i18n.NewTranslator(policy.DefaultLocale, log))
	ov, err := stats.Overview(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("translations: %d across %d entities\n", ov.Total, ov.DistinctEntities)
	for _, t := range sortedKeys(ov.ByEntityType) {
		fmt.Printf("  type %-20s %d\n", t, ov.ByEntityType[t])
	}
	for _, l := range sortedKeys(ov.ByLocale) {
		fmt.Printf("  locale %-18s %d\n", l, ov.ByLocale[l])
	}
	if !ov.LastUpdatedAt.IsZero() {
		fmt.Printf("last update: %s\n", ov.LastUpdatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

func runCleanup(ctx context.Context, store output.TranslationStore, reg *registry.Registry, log zerolog.Logger, entityType, idsPath string, dryRun bool) error {
	if idsPath == "" {
		return fmt.Errorf("-valid-ids is required with -cleanup")
	}
	ids, err := readIDs(idsPath)
	if err != nil {
		return err
	}
	cleaner := application.NewCleanupService(store, reg, log)
	report, err := cleaner.CleanupOrphans(ctx, entityType, ids, dryRun)
	if err != nil {
		return err
	}
	mode := "removed"
	if report.DryRun {
		mode = "would remove"
	}
	fmt.Printf("%s: %d orphaned entities, %s %d rows\n", report.EntityType, len(report.OrphanedIDs), mode, report.Removed)
	for _, id := range report.OrphanedIDs {
		fmt.Printf("  orphaned entity id %d\n", id)
	}
	return nil
}

func readIDs(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open valid-ids file: %w", err)
	}
	defer f.Close()
	var ids []int64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse entity id %q: %w", line, err)
		}
		ids = append(ids, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read valid-ids file: %w", err)
	}
	return ids, nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
