package domain

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// PlanDefinition is the in-memory form of an automation plan.
type PlanDefinition struct {
	id          string
	alias       string
	culture     language.Tag
	name        string
	createdDate time.Time
	createdBy   string

	DefinitionCommon

	StartDate             *time.Time
	EndDate               *time.Time
	ContextKeyFactoryType string
	EntryActivityID       string
	ReentryMode           ReentryMode

	activities          activitySet[*ActivityDefinition]
	universalActivities activitySet[*UniversalActivityDefinition]
}

// NewPlanDefinition creates an empty plan with the given identity. The
// identity fields cannot be changed afterwards.
func NewPlanDefinition(id, alias string, culture language.Tag, name string, createdDate time.Time, createdBy string) *PlanDefinition {
	return &PlanDefinition{
		id:          id,
		alias:       alias,
		culture:     culture,
		name:        name,
		createdDate: createdDate,
		createdBy:   createdBy,
	}
}

func (p *PlanDefinition) ID() string             { return p.id }
func (p *PlanDefinition) Alias() string          { return p.alias }
func (p *PlanDefinition) Culture() language.Tag  { return p.culture }
func (p *PlanDefinition) Name() string           { return p.name }
func (p *PlanDefinition) CreatedDate() time.Time { return p.createdDate }
func (p *PlanDefinition) CreatedBy() string      { return p.createdBy }

// AddActivity appends a to the plan's activities.
func (p *PlanDefinition) AddActivity(a *ActivityDefinition) error {
	if a == nil {
		return NewNullInputError("activity")
	}
	if err := p.activities.add(a.ID, a); err != nil {
		return fmt.Errorf("activity %q: %w", a.ID, err)
	}
	return nil
}

// AddUniversalActivity appends u to the plan's universal activities.
func (p *PlanDefinition) AddUniversalActivity(u *UniversalActivityDefinition) error {
	if u == nil {
		return NewNullInputError("universal activity")
	}
	if err := p.universalActivities.add(u.ID, u); err != nil {
		return fmt.Errorf("universal activity %q: %w", u.ID, err)
	}
	return nil
}

// Activities returns the plan's activities in declaration order.
func (p *PlanDefinition) Activities() []*ActivityDefinition {
	return p.activities.list()
}

// UniversalActivities returns the plan's universal activities in insertion order.
func (p *PlanDefinition) UniversalActivities() []*UniversalActivityDefinition {
	return p.universalActivities.list()
}

// Activity looks up an activity by id.
func (p *PlanDefinition) Activity(id string) (*ActivityDefinition, bool) {
	return p.activities.get(id)
}

// UniversalActivity looks up a universal activity by id.
func (p *PlanDefinition) UniversalActivity(id string) (*UniversalActivityDefinition, bool) {
	return p.universalActivities.get(id)
}

// ActivityCount returns the number of regular activities.
func (p *PlanDefinition) ActivityCount() int {
	return p.activities.len()
}

// UniversalActivityCount returns the number of universal activities.
func (p *PlanDefinition) UniversalActivityCount() int {
	return p.universalActivities.len()
}

// DisplayID returns the best short identifier for display.
// It prefers Alias; if empty it truncates ID to 8 characters.
func (p *PlanDefinition) DisplayID() string {
	if p.alias != "" {
		return p.alias
	}
	if len(p.id) >= 8 {
		return p.id[:8]
	}
	return p.id
}
