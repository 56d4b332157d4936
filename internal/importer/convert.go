package importer

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

type convertOptions struct {
	culture   language.Tag
	createdBy string
	now       func() time.Time
}

// ConvertOption tunes Convert.
type ConvertOption func(*convertOptions)

// WithDefaultCulture sets the culture used when the schema names none.
func WithDefaultCulture(tag language.Tag) ConvertOption {
	return func(o *convertOptions) { o.culture = tag }
}

// WithCreatedBy sets the creator recorded on the new plan.
func WithCreatedBy(user string) ConvertOption {
	return func(o *convertOptions) { o.createdBy = user }
}

// WithClock overrides the creation time source.
func WithClock(now func() time.Time) ConvertOption {
	return func(o *convertOptions) { o.now = now }
}

// Convert transforms a validated PlanSchema into a plan definition with fresh
// ids. Call ValidatePlanSchema first; Convert assumes the schema is valid.
func Convert(schema *PlanSchema, opts ...ConvertOption) (*domain.PlanDefinition, error) {
	if schema == nil {
		return nil, domain.NewNullInputError("schema")
	}
	o := convertOptions{
		culture:   language.English,
		createdBy: "planbook",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	p := schema.Plan
	culture := o.culture
	if p.Culture != "" {
		tag, err := language.Parse(p.Culture)
		if err != nil {
			return nil, fmt.Errorf("parsing culture: %w", err)
		}
		culture = tag
	}

	def := domain.NewPlanDefinition(uuid.New().String(), p.Alias, culture, p.Name, o.now().UTC(), o.createdBy)
	def.Description = p.Description
	def.Classifications = slices.Clone(p.Classifications)
	def.ContextKeyFactoryType = p.ContextKeyFactoryType
	def.ReentryMode = domain.ReentryMode(p.ReentryMode)
	if def.ReentryMode == "" {
		def.ReentryMode = domain.ReentryAllow
	}

	var err error
	if def.StartDate, err = parseOptionalDate(p.StartDate); err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}
	if def.EndDate, err = parseOptionalDate(p.EndDate); err != nil {
		return nil, fmt.Errorf("parsing end_date: %w", err)
	}

	refMap := make(map[string]string, len(schema.Activities)) // ref -> UUID
	for _, a := range schema.Activities {
		refMap[a.Ref] = uuid.New().String()
	}

	for _, a := range schema.Activities {
		paths := make([]string, 0, len(a.Paths))
		for _, ref := range a.Paths {
			id, ok := refMap[ref]
			if !ok {
				return nil, fmt.Errorf("path %q not found for activity %q", ref, a.Ref)
			}
			paths = append(paths, id)
		}
		err := def.AddActivity(&domain.ActivityDefinition{
			ID:             refMap[a.Ref],
			ActivityTypeID: a.Type,
			Parameters:     domain.Parameters(maps.Clone(a.Parameters)),
			Paths:          paths,
		})
		if err != nil {
			return nil, err
		}
	}

	if p.EntryActivity != "" {
		id, ok := refMap[p.EntryActivity]
		if !ok {
			return nil, fmt.Errorf("entry_activity %q not found", p.EntryActivity)
		}
		def.EntryActivityID = id
	}

	for _, u := range schema.UniversalActivities {
		err := def.AddUniversalActivity(&domain.UniversalActivityDefinition{
			ID:                     uuid.New().String(),
			ActivityTypeID:         u.Type,
			Parameters:             domain.Parameters(maps.Clone(u.Parameters)),
			PlanProcessingPosition: domain.PlanProcessingPosition(u.Position),
			Order:                  u.Order,
		})
		if err != nil {
			return nil, err
		}
	}

	return def, nil
}

// Export writes def back into schema form, using activity ids as refs.
func Export(def *domain.PlanDefinition) (*PlanSchema, error) {
	if def == nil {
		return nil, domain.NewNullInputError("definition")
	}

	schema := &PlanSchema{
		Plan: PlanImport{
			Alias:                 def.Alias(),
			Name:                  def.Name(),
			Culture:               def.Culture().String(),
			Description:           def.Description,
			StartDate:             formatOptionalDate(def.StartDate),
			EndDate:               formatOptionalDate(def.EndDate),
			ContextKeyFactoryType: def.ContextKeyFactoryType,
			ReentryMode:           string(def.ReentryMode),
			EntryActivity:         def.EntryActivityID,
			Classifications:       slices.Clone(def.Classifications),
		},
		Activities: make([]ActivityImport, 0, def.ActivityCount()),
	}

	for _, a := range def.Activities() {
		schema.Activities = append(schema.Activities, ActivityImport{
			Ref:        a.ID,
			Type:       a.ActivityTypeID,
			Parameters: exportParameters(a.Parameters),
			Paths:      exportPaths(a.Paths),
		})
	}
	for _, u := range def.UniversalActivities() {
		schema.UniversalActivities = append(schema.UniversalActivities, UniversalActivityImport{
			Ref:        u.ID,
			Type:       u.ActivityTypeID,
			Parameters: exportParameters(u.Parameters),
			Position:   string(u.PlanProcessingPosition),
			Order:      u.Order,
		})
	}

	return schema, nil
}

// Empty collections are exported as nil so they match what a parse of the
// written JSON yields.
func exportParameters(p domain.Parameters) map[string]string {
	if len(p) == 0 {
		return nil
	}
	return maps.Clone(p)
}

func exportPaths(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	return slices.Clone(paths)
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}
