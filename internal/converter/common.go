package converter

import (
	"slices"
	"time"

	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/record"
)

// CopyCommonFromRecord copies the fields shared by every definition kind
// from rec onto def.
func CopyCommonFromRecord(rec *record.PlanRecord, def *domain.PlanDefinition) {
	def.DefinitionCommon = cloneCommon(rec.DefinitionCommon)
}

// CopyCommonToRecord copies the fields shared by every definition kind
// from def onto rec.
func CopyCommonToRecord(def *domain.PlanDefinition, rec *record.PlanRecord) {
	rec.DefinitionCommon = cloneCommon(def.DefinitionCommon)
}

func cloneCommon(c domain.DefinitionCommon) domain.DefinitionCommon {
	return domain.DefinitionCommon{
		Description:      c.Description,
		LastModifiedBy:   c.LastModifiedBy,
		LastModifiedDate: cloneTime(c.LastModifiedDate),
		Classifications:  slices.Clone(c.Classifications),
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
