package service

import (
	"context"

	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/importer"
	"golang.org/x/text/language"
)

// DefinitionResult pairs a loaded definition with its activation state.
type DefinitionResult struct {
	Definition *domain.PlanDefinition
	IsActive   bool
}

// Settings tunes a DefinitionManager.
type Settings struct {
	ReadOnly bool
}

// DefinitionManager loads, saves, activates, deletes and searches plans.
// A nil culture loads each plan in its stored culture.
type DefinitionManager interface {
	Get(ctx context.Context, id string, culture *language.Tag) (*DefinitionResult, error)
	GetByAlias(ctx context.Context, alias string, culture *language.Tag) (*DefinitionResult, error)
	List(ctx context.Context, culture *language.Tag) ([]*DefinitionResult, error)
	Save(ctx context.Context, def *domain.PlanDefinition, activate bool) error
	Activate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]*DefinitionResult, error)
}

// ImportResult holds the outcome of a plan import.
type ImportResult struct {
	Definition             *domain.PlanDefinition
	ActivityCount          int
	UniversalActivityCount int
	Activated              bool
}

// ImportService moves plans between JSON files and the definition manager.
type ImportService interface {
	ImportPlan(ctx context.Context, filePath string, activate bool) (*ImportResult, error)
	ImportPlanFromSchema(ctx context.Context, schema *importer.PlanSchema, activate bool) (*ImportResult, error)
	ExportPlan(ctx context.Context, id string) (*importer.PlanSchema, error)
}
