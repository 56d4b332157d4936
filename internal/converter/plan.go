package converter

import (
	"fmt"

	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/record"
	"golang.org/x/text/language"
)

// BuildDefinition reconstructs a plan definition from rec. A nil culture
// falls back to rec.Culture. On error no definition is returned.
func BuildDefinition(rec *record.PlanRecord, culture *language.Tag) (*domain.PlanDefinition, error) {
	if rec == nil {
		return nil, domain.NewNullInputError("record")
	}

	tag := rec.Culture
	if culture != nil {
		tag = *culture
	}

	def := domain.NewPlanDefinition(rec.ID, rec.Alias, tag, rec.Name, rec.CreatedDate, rec.CreatedBy)
	CopyCommonFromRecord(rec, def)

	def.StartDate = cloneTime(rec.StartDate)
	def.EndDate = cloneTime(rec.EndDate)
	def.ContextKeyFactoryType = rec.ContextKeyFactoryType
	def.EntryActivityID = rec.EntryActivityID
	def.ReentryMode = rec.ReentryMode

	for i, ar := range rec.GetActivities() {
		a, err := ActivityFromRecord(ar)
		if err != nil {
			return nil, fmt.Errorf("plan %s activity %d: %w", rec.ID, i, err)
		}
		if err := def.AddActivity(a); err != nil {
			return nil, fmt.Errorf("plan %s: %w", rec.ID, err)
		}
	}

	for i, ur := range rec.GetUniversalActivities() {
		u, err := UniversalActivityFromRecord(ur)
		if err != nil {
			return nil, fmt.Errorf("plan %s universal activity %d: %w", rec.ID, i, err)
		}
		if err := def.AddUniversalActivity(u); err != nil {
			return nil, fmt.Errorf("plan %s: %w", rec.ID, err)
		}
	}

	return def, nil
}

// ProjectToRecord writes the plan-specific fields and both activity
// collections of src onto dst. Activities are appended; entries already in
// dst are kept. src is not modified.
func ProjectToRecord(src *domain.PlanDefinition, dst *record.PlanRecord) error {
	if src == nil {
		return domain.NewNullInputError("source")
	}
	if dst == nil {
		return domain.NewNullInputError("target")
	}

	dst.ReentryMode = src.ReentryMode
	dst.ContextKeyFactoryType = src.ContextKeyFactoryType
	dst.EntryActivityID = src.EntryActivityID
	dst.StartDate = cloneTime(src.StartDate)
	dst.EndDate = cloneTime(src.EndDate)

	for _, a := range src.Activities() {
		ar, err := ActivityToRecord(a)
		if err != nil {
			return err
		}
		dst.AddActivity(ar)
	}

	for _, u := range src.UniversalActivities() {
		ur, err := UniversalActivityToRecord(u)
		if err != nil {
			return err
		}
		dst.AddUniversalActivity(ur)
	}

	return nil
}

// NewRecord returns a fresh record carrying def's identity, common fields
// and plan-specific fields.
func NewRecord(def *domain.PlanDefinition) (*record.PlanRecord, error) {
	if def == nil {
		return nil, domain.NewNullInputError("definition")
	}
	rec := &record.PlanRecord{
		ID:          def.ID(),
		Alias:       def.Alias(),
		Culture:     def.Culture(),
		Name:        def.Name(),
		CreatedDate: def.CreatedDate(),
		CreatedBy:   def.CreatedBy(),
	}
	CopyCommonToRecord(def, rec)
	if err := ProjectToRecord(def, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
