package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/planbook/internal/importer"
	"golang.org/x/text/language"
)

type importService struct {
	plans     DefinitionManager
	culture   language.Tag
	createdBy string
}

// NewImportService creates an ImportService that saves through plans.
// Imported plans without a culture get defaultCulture, and every imported
// plan records createdBy as its creator.
func NewImportService(plans DefinitionManager, defaultCulture language.Tag, createdBy string) ImportService {
	return &importService{
		plans:     plans,
		culture:   defaultCulture,
		createdBy: createdBy,
	}
}

func (s *importService) ImportPlan(ctx context.Context, filePath string, activate bool) (*ImportResult, error) {
	schema, err := importer.LoadPlanSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.ImportPlanFromSchema(ctx, schema, activate)
}

func (s *importService) ImportPlanFromSchema(ctx context.Context, schema *importer.PlanSchema, activate bool) (*ImportResult, error) {
	if errs := importer.ValidatePlanSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	def, err := importer.Convert(schema,
		importer.WithDefaultCulture(s.culture),
		importer.WithCreatedBy(s.createdBy),
	)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}

	if err := s.plans.Save(ctx, def, activate); err != nil {
		return nil, fmt.Errorf("saving plan %q: %w", def.Alias(), err)
	}

	return &ImportResult{
		Definition:             def,
		ActivityCount:          def.ActivityCount(),
		UniversalActivityCount: def.UniversalActivityCount(),
		Activated:              activate,
	}, nil
}

func (s *importService) ExportPlan(ctx context.Context, id string) (*importer.PlanSchema, error) {
	res, err := s.plans.Get(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return importer.Export(res.Definition)
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
