package converter

import (
	"maps"
	"slices"

	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/record"
)

// ActivityFromRecord maps a stored activity to its definition.
func ActivityFromRecord(r *record.ActivityRecord) (*domain.ActivityDefinition, error) {
	if r == nil {
		return nil, domain.NewNullInputError("activity record")
	}
	return &domain.ActivityDefinition{
		ID:             r.ID,
		ActivityTypeID: r.ActivityTypeID,
		Parameters:     maps.Clone(r.Parameters),
		Paths:          slices.Clone(r.Paths),
	}, nil
}

// ActivityToRecord maps an activity definition to its stored form.
func ActivityToRecord(a *domain.ActivityDefinition) (*record.ActivityRecord, error) {
	if a == nil {
		return nil, domain.NewNullInputError("activity definition")
	}
	return &record.ActivityRecord{
		ID:             a.ID,
		ActivityTypeID: a.ActivityTypeID,
		Parameters:     maps.Clone(a.Parameters),
		Paths:          slices.Clone(a.Paths),
	}, nil
}

// UniversalActivityFromRecord maps a stored universal activity to its definition.
func UniversalActivityFromRecord(r *record.UniversalActivityRecord) (*domain.UniversalActivityDefinition, error) {
	if r == nil {
		return nil, domain.NewNullInputError("universal activity record")
	}
	return &domain.UniversalActivityDefinition{
		ID:                     r.ID,
		ActivityTypeID:         r.ActivityTypeID,
		Parameters:             maps.Clone(r.Parameters),
		PlanProcessingPosition: r.PlanProcessingPosition,
		Order:                  r.Order,
	}, nil
}

// UniversalActivityToRecord maps a universal activity definition to its stored form.
func UniversalActivityToRecord(u *domain.UniversalActivityDefinition) (*record.UniversalActivityRecord, error) {
	if u == nil {
		return nil, domain.NewNullInputError("universal activity definition")
	}
	return &record.UniversalActivityRecord{
		ID:                     u.ID,
		ActivityTypeID:         u.ActivityTypeID,
		Parameters:             maps.Clone(u.Parameters),
		PlanProcessingPosition: u.PlanProcessingPosition,
		Order:                  u.Order,
	}, nil
}
