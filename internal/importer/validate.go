package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/planbook/internal/domain"
	"golang.org/x/text/language"
)

const dateLayout = "2006-01-02"

// ValidatePlanSchema checks the schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidatePlanSchema(schema *PlanSchema) []error {
	if schema == nil {
		return []error{domain.NewNullInputError("schema")}
	}
	var errs []error

	errs = append(errs, validatePlan(&schema.Plan)...)

	refs := make(map[string]bool)
	errs = append(errs, validateActivities(schema.Activities, refs)...)
	errs = append(errs, validateUniversalActivities(schema.UniversalActivities)...)

	if entry := schema.Plan.EntryActivity; entry != "" && !refs[entry] {
		errs = append(errs, fmt.Errorf("plan.entry_activity %q does not match any activity ref", entry))
	}
	for i, a := range schema.Activities {
		for _, p := range a.Paths {
			if !refs[p] {
				errs = append(errs, fmt.Errorf("activities[%d].paths: %q does not match any activity ref", i, p))
			}
		}
	}

	return errs
}

func validatePlan(p *PlanImport) []error {
	var errs []error

	if p.Alias == "" {
		errs = append(errs, fmt.Errorf("plan.alias is required"))
	}
	if p.Name == "" {
		errs = append(errs, fmt.Errorf("plan.name is required"))
	}
	if p.Culture != "" {
		if _, err := language.Parse(p.Culture); err != nil {
			errs = append(errs, fmt.Errorf("plan.culture: invalid language tag %q", p.Culture))
		}
	}
	if p.ReentryMode != "" && !domain.ValidReentryModes[p.ReentryMode] {
		errs = append(errs, fmt.Errorf("plan.reentry_mode: invalid value %q", p.ReentryMode))
	}

	start, startErr := validateDate("plan.start_date", p.StartDate)
	end, endErr := validateDate("plan.end_date", p.EndDate)
	if startErr != nil {
		errs = append(errs, startErr)
	}
	if endErr != nil {
		errs = append(errs, endErr)
	}
	if start != nil && end != nil && end.Before(*start) {
		errs = append(errs, fmt.Errorf("plan.end_date %q must not be before start_date %q", *p.EndDate, *p.StartDate))
	}

	return errs
}

func validateDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, *s)
	}
	return &t, nil
}

func validateActivities(activities []ActivityImport, refs map[string]bool) []error {
	var errs []error

	for i, a := range activities {
		prefix := fmt.Sprintf("activities[%d]", i)
		if a.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[a.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, a.Ref))
		} else {
			refs[a.Ref] = true
		}
		if a.Type == "" {
			errs = append(errs, fmt.Errorf("%s.type is required", prefix))
		}
	}

	return errs
}

func validateUniversalActivities(activities []UniversalActivityImport) []error {
	var errs []error
	seen := make(map[string]bool)

	for i, u := range activities {
		prefix := fmt.Sprintf("universal_activities[%d]", i)
		if u.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if seen[u.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, u.Ref))
		} else {
			seen[u.Ref] = true
		}
		if u.Type == "" {
			errs = append(errs, fmt.Errorf("%s.type is required", prefix))
		}
		if !domain.ValidProcessingPositions[u.Position] {
			errs = append(errs, fmt.Errorf("%s.position: invalid value %q", prefix, u.Position))
		}
		if u.Order < 0 {
			errs = append(errs, fmt.Errorf("%s.order must not be negative", prefix))
		}
	}

	return errs
}
