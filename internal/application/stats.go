package application

import (
	"context"
	"fmt"
	"sort"

	"transtore/internal/domain"
	"transtore/internal/ports/input"
	"transtore/internal/ports/output"
	"transtore/internal/registry"
)

var _ input.StatisticsReporter = (*StatisticsService)(nil)

// lowCompletenessThreshold is the percentage below which a setup report
// recommends filling in translations.
const lowCompletenessThreshold = 50.0

// StatisticsService computes read-only reports from the store and the
// registry; it keeps no state of its own.
type StatisticsService struct {
	store output.TranslationStore
	reg   *registry.Registry
	tr    output.Translator
}

// NewStatisticsService creates a StatisticsService. tr renders the
// report recommendation texts.
func NewStatisticsService(store output.TranslationStore, reg *registry.Registry, tr output.Translator) *StatisticsService {
	return &StatisticsService{store: store, reg: reg, tr: tr}
}

// Overview returns the global translation census.
func (s *StatisticsService) Overview(ctx context.Context) (input.Overview, error) {
	total, err := s.store.CountAll(ctx)
	if err != nil {
		return input.Overview{}, err
	}
	distinct, err := s.store.CountDistinctEntities(ctx)
	if err != nil {
		return input.Overview{}, err
	}
	byType, err := s.store.CountByEntityType(ctx)
	if err != nil {
		return input.Overview{}, err
	}
	byLocale, err := s.store.CountByLocale(ctx)
	if err != nil {
		return input.Overview{}, err
	}
	last, err := s.store.LastUpdatedAt(ctx)
	if err != nil {
		return input.Overview{}, err
	}
	return input.Overview{
		Total:            total,
		DistinctEntities: distinct,
		ByEntityType:     byType,
		ByLocale:         byLocale,
		LastUpdatedAt:    last,
	}, nil
}

// ValidateEntitySetup reports how completely one entity is translated:
// whether it still exists, which locales cover which fields, the
// completeness percentage over (supported locales x translatable fields),
// and localized recommendations.
func (s *StatisticsService) ValidateEntitySetup(ctx context.Context, entityType string, entityID int64, reportLocale string) (input.SetupReport, error) {
	def, err := s.reg.Lookup(entityType)
	if err != nil {
		return input.SetupReport{}, domain.Validation("entity_type", fmt.Sprintf("%q is not registered", entityType))
	}

	report := input.SetupReport{
		EntityType:   def.Type,
		EntityID:     entityID,
		FieldLocales: make(map[string][]string, len(def.Fields)),
	}

	if _, err := def.Source.GetByID(ctx, entityID); err != nil {
		if !domain.IsEntityNotFound(err) {
			return input.SetupReport{}, fmt.Errorf("resolve %s %d from source: %w", def.Type, entityID, err)
		}
	} else {
		report.EntityExists = true
	}

	rows, err := s.store.FindForEntity(ctx, def.Type, entityID, "", nil)
	if err != nil {
		return input.SetupReport{}, err
	}

	supported := s.reg.SupportedLocales()
	supportedSet := make(map[string]struct{}, len(supported))
	for _, l := range supported {
		supportedSet[l] = struct{}{}
	}

	cells := 0
	localeSeen := make(map[string]struct{})
	for _, t := range rows {
		if !def.HasField(t.FieldName) {
			continue
		}
		report.FieldLocales[t.FieldName] = append(report.FieldLocales[t.FieldName], t.Locale)
		localeSeen[t.Locale] = struct{}{}
		if _, ok := supportedSet[t.Locale]; ok {
			cells++
		}
	}
	for f := range report.FieldLocales {
		sort.Strings(report.FieldLocales[f])
	}
	if denom := len(supported) * len(def.Fields); denom > 0 {
		report.Completeness = float64(cells) / float64(denom) * 100
	}

	report.Recommendations = s.recommendations(def, report, localeSeen, supported, reportLocale)
	return report, nil
}

func (s *StatisticsService) recommendations(def registry.Definition, report input.SetupReport, localeSeen map[string]struct{}, supported []string, reportLocale string) []string {
	var recs []string
	if !report.EntityExists {
		recs = append(recs, s.tr.T(reportLocale, "report.entity_missing", map[string]any{
			"EntityType": def.Type,
			"EntityID":   report.EntityID,
		}))
	}
	for _, l := range supported {
		if _, ok := localeSeen[l]; !ok {
			recs = append(recs, s.tr.T(reportLocale, "report.missing_locale", map[string]any{
				"Locale": l,
			}))
		}
	}
	for _, f := range def.Fields {
		if len(report.FieldLocales[f]) == 0 {
			recs = append(recs, s.tr.T(reportLocale, "report.missing_field", map[string]any{
				"Field": f,
			}))
		}
	}
	if report.Completeness < lowCompletenessThreshold {
		recs = append(recs, s.tr.T(reportLocale, "report.low_completeness", map[string]any{
			"Percent": fmt.Sprintf("%.0f", report.Completeness),
		}))
	}
	return recs
}
