package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// PlanSchema is the top-level JSON structure for plan import and export.
type PlanSchema struct {
	Plan                PlanImport                `json:"plan"`
	Activities          []ActivityImport          `json:"activities"`
	UniversalActivities []UniversalActivityImport `json:"universal_activities,omitempty"`
}

// PlanImport defines the plan-level fields in the import file.
type PlanImport struct {
	Alias                 string   `json:"alias"`
	Name                  string   `json:"name"`
	Culture               string   `json:"culture,omitempty"`
	Description           string   `json:"description,omitempty"`
	StartDate             *string  `json:"start_date,omitempty"`
	EndDate               *string  `json:"end_date,omitempty"`
	ContextKeyFactoryType string   `json:"context_key_factory_type,omitempty"`
	ReentryMode           string   `json:"reentry_mode,omitempty"`
	EntryActivity         string   `json:"entry_activity,omitempty"`
	Classifications       []string `json:"classifications,omitempty"`
}

// ActivityImport defines a plan activity. Paths hold the refs of the
// activities it leads to.
type ActivityImport struct {
	Ref        string            `json:"ref"`
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Paths      []string          `json:"paths,omitempty"`
}

// UniversalActivityImport defines an activity that runs at a fixed
// processing position rather than along a path.
type UniversalActivityImport struct {
	Ref        string            `json:"ref"`
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Position   string            `json:"position"`
	Order      int               `json:"order"`
}

// LoadPlanSchema reads and parses a plan import JSON file.
func LoadPlanSchema(path string) (*PlanSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePlanSchema(f)
}

// ParsePlanSchema decodes a plan schema from r. Unknown fields are rejected.
func ParsePlanSchema(r io.Reader) (*PlanSchema, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var schema PlanSchema
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}

// Write encodes schema to w as indented JSON.
func (s *PlanSchema) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
