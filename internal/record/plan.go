// Package record holds the storage-facing shape of automation plans.
//
// A PlanRecord is append-oriented: activity collections are read through
// accessor methods and filled through Add methods, never assigned.
package record

import (
	"time"

	"github.com/alexanderramin/planbook/internal/domain"
	"golang.org/x/text/language"
)

// PlanRecord is the persisted form of a plan.
type PlanRecord struct {
	ID          string
	Alias       string
	Culture     language.Tag
	Name        string
	CreatedDate time.Time
	CreatedBy   string

	domain.DefinitionCommon

	StartDate             *time.Time
	EndDate               *time.Time
	ContextKeyFactoryType string
	EntryActivityID       string
	ReentryMode           domain.ReentryMode

	// IsActive is storage state; it is not part of the definition.
	IsActive bool

	activities          []*ActivityRecord
	universalActivities []*UniversalActivityRecord
}

// ActivityRecord is the persisted form of a regular activity.
type ActivityRecord struct {
	ID             string
	ActivityTypeID string
	Parameters     domain.Parameters
	Paths          []string
}

// UniversalActivityRecord is the persisted form of a universal activity.
type UniversalActivityRecord struct {
	ID                     string
	ActivityTypeID         string
	Parameters             domain.Parameters
	PlanProcessingPosition domain.PlanProcessingPosition
	Order                  int
}

// AddActivity appends a. No uniqueness check is made.
func (r *PlanRecord) AddActivity(a *ActivityRecord) {
	r.activities = append(r.activities, a)
}

// AddUniversalActivity appends u. No uniqueness check is made.
func (r *PlanRecord) AddUniversalActivity(u *UniversalActivityRecord) {
	r.universalActivities = append(r.universalActivities, u)
}

// GetActivities returns the activity records in stored order.
func (r *PlanRecord) GetActivities() []*ActivityRecord {
	out := make([]*ActivityRecord, len(r.activities))
	copy(out, r.activities)
	return out
}

// GetUniversalActivities returns the universal activity records in stored order.
func (r *PlanRecord) GetUniversalActivities() []*UniversalActivityRecord {
	out := make([]*UniversalActivityRecord, len(r.universalActivities))
	copy(out, r.universalActivities)
	return out
}
