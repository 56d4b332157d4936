package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/record"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

var testAliasCounter atomic.Int64

// fixtureTime is a fixed, monotonic-free timestamp so stored values compare
// equal after a round trip.
var fixtureTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// Date returns a pointer to midnight UTC on the given day.
func Date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// Plan record options
type RecordOption func(*record.PlanRecord)

func WithCulture(tag language.Tag) RecordOption {
	return func(r *record.PlanRecord) {
		r.Culture = tag
	}
}

func WithWindow(start, end *time.Time) RecordOption {
	return func(r *record.PlanRecord) {
		r.StartDate = start
		r.EndDate = end
	}
}

func WithReentryMode(m domain.ReentryMode) RecordOption {
	return func(r *record.PlanRecord) {
		r.ReentryMode = m
	}
}

func WithDescription(d string) RecordOption {
	return func(r *record.PlanRecord) {
		r.Description = d
	}
}

func WithClassifications(ids ...string) RecordOption {
	return func(r *record.PlanRecord) {
		r.Classifications = ids
	}
}

func WithActive(active bool) RecordOption {
	return func(r *record.PlanRecord) {
		r.IsActive = active
	}
}

// WithActivity appends an activity record and makes the first one added the
// entry activity.
func WithActivity(id, activityType string, params domain.Parameters, paths ...string) RecordOption {
	return func(r *record.PlanRecord) {
		if r.EntryActivityID == "" {
			r.EntryActivityID = id
		}
		if paths == nil {
			paths = []string{}
		}
		r.AddActivity(&record.ActivityRecord{
			ID:             id,
			ActivityTypeID: activityType,
			Parameters:     params,
			Paths:          paths,
		})
	}
}

func WithUniversalActivity(id, activityType string, pos domain.PlanProcessingPosition, order int) RecordOption {
	return func(r *record.PlanRecord) {
		r.AddUniversalActivity(&record.UniversalActivityRecord{
			ID:                     id,
			ActivityTypeID:         activityType,
			PlanProcessingPosition: pos,
			Order:                  order,
		})
	}
}

// NewTestPlanRecord returns a plan record with a fresh id and a unique alias
// derived from name. It has no activities unless options add them.
func NewTestPlanRecord(name string, opts ...RecordOption) *record.PlanRecord {
	n := testAliasCounter.Add(1)
	r := &record.PlanRecord{
		ID:                    uuid.New().String(),
		Alias:                 fmt.Sprintf("plan-%03d", n),
		Culture:               language.English,
		Name:                  name,
		CreatedDate:           fixtureTime,
		CreatedBy:             "test\\user",
		ContextKeyFactoryType: "Contacts.ContactKeyFactory, Contacts",
		ReentryMode:           domain.ReentryAllow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewTestPlanDefinition returns a definition with the given identity and the
// welcome-series shape: two chained activities and one exit activity.
func NewTestPlanDefinition(alias, name string) *domain.PlanDefinition {
	def := domain.NewPlanDefinition(uuid.New().String(), alias, language.English, name, fixtureTime, "test\\user")
	def.StartDate = Date(2024, 1, 1)
	def.ContextKeyFactoryType = "Contacts.ContactKeyFactory, Contacts"
	def.EntryActivityID = "A1"
	def.ReentryMode = domain.ReentryIgnore
	mustAdd(def.AddActivity(&domain.ActivityDefinition{
		ID: "A1", ActivityTypeID: "email", Parameters: domain.Parameters{"template": "welcome"}, Paths: []string{"A2"},
	}))
	mustAdd(def.AddActivity(&domain.ActivityDefinition{
		ID: "A2", ActivityTypeID: "wait", Parameters: domain.Parameters{"days": "3"}, Paths: []string{},
	}))
	mustAdd(def.AddUniversalActivity(&domain.UniversalActivityDefinition{
		ID: "U1", ActivityTypeID: "goal-check", PlanProcessingPosition: domain.PositionOnExit,
	}))
	return def
}

func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}
