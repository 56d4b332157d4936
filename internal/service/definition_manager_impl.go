package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/planbook/internal/converter"
	"github.com/alexanderramin/planbook/internal/db"
	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/feed"
	"github.com/alexanderramin/planbook/internal/record"
	"github.com/alexanderramin/planbook/internal/repository"
	"github.com/alexanderramin/planbook/internal/search"
	"github.com/alexanderramin/planbook/internal/taxonomy"
	"golang.org/x/text/language"
)

// ActivationPublisher announces plans that became active.
type ActivationPublisher interface {
	Publish(ctx context.Context, event feed.ActivationEvent) error
}

// DeletePublisher announces deleted plans.
type DeletePublisher interface {
	Publish(ctx context.Context, event feed.DeleteEvent) error
}

type definitionManager struct {
	plans      repository.PlanRecordRepo
	uow        db.UnitOfWork
	resolver   taxonomy.Resolver
	search     search.Provider
	activation ActivationPublisher
	deletion   DeletePublisher
	readOnly   bool
	observer   UseCaseObserver
}

// NewDefinitionManager wires a DefinitionManager. Every collaborator except
// settings and observers is required; a nil one panics.
//
// Reads go through plans. Writes inside Save and Activate run on tx-scoped
// SQLite repositories built from the transaction uow opens, so plans must be
// backed by the same database as uow.
func NewDefinitionManager(
	plans repository.PlanRecordRepo,
	uow db.UnitOfWork,
	resolver taxonomy.Resolver,
	searcher search.Provider,
	activation ActivationPublisher,
	deletion DeletePublisher,
	settings *Settings,
	observers ...UseCaseObserver,
) DefinitionManager {
	for name, v := range map[string]any{
		"plans":      plans,
		"uow":        uow,
		"resolver":   resolver,
		"searcher":   searcher,
		"activation": activation,
		"deletion":   deletion,
	} {
		if v == nil {
			panic(fmt.Sprintf("service: NewDefinitionManager: %s is required", name))
		}
	}

	m := &definitionManager{
		plans:      plans,
		uow:        uow,
		resolver:   resolver,
		search:     searcher,
		activation: activation,
		deletion:   deletion,
		observer:   useCaseObserverOrNoop(observers),
	}
	if settings != nil {
		m.readOnly = settings.ReadOnly
	}
	return m
}

func (m *definitionManager) Get(ctx context.Context, id string, culture *language.Tag) (res *DefinitionResult, err error) {
	start := time.Now()
	defer func() { observe(ctx, m.observer, "plan.get", start, err, map[string]any{"plan_id": id}) }()

	rec, err := m.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResult(rec, culture)
}

func (m *definitionManager) GetByAlias(ctx context.Context, alias string, culture *language.Tag) (res *DefinitionResult, err error) {
	start := time.Now()
	defer func() { observe(ctx, m.observer, "plan.get_by_alias", start, err, map[string]any{"alias": alias}) }()

	rec, err := m.plans.GetByAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	return toResult(rec, culture)
}

func (m *definitionManager) List(ctx context.Context, culture *language.Tag) (out []*DefinitionResult, err error) {
	start := time.Now()
	defer func() { observe(ctx, m.observer, "plan.list", start, err, map[string]any{"count": len(out)}) }()

	recs, err := m.plans.List(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]*DefinitionResult, 0, len(recs))
	for _, rec := range recs {
		res, buildErr := toResult(rec, culture)
		if buildErr != nil {
			observe(ctx, m.observer, "plan.list.skip", time.Now(), buildErr, map[string]any{"plan_id": rec.ID})
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// Save persists def through a fresh record, so no activity from an earlier
// save can survive into the new one. def itself is never modified.
// Activation state already stored for the plan is kept unless activate
// is set.
func (m *definitionManager) Save(ctx context.Context, def *domain.PlanDefinition, activate bool) (err error) {
	start := time.Now()
	fields := map[string]any{"activate": activate}
	defer func() { observe(ctx, m.observer, "plan.save", start, err, fields) }()

	if m.readOnly {
		return domain.ErrReadOnly
	}
	if def == nil {
		return domain.NewNullInputError("definition")
	}
	fields["plan_id"] = def.ID()

	if _, err := m.resolver.Resolve(ctx, def.Classifications); err != nil {
		return fmt.Errorf("resolving classifications: %w", err)
	}

	rec, err := converter.NewRecord(def)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec.LastModifiedDate = &now

	// Activity ids can be changed through the pointers Activities returns,
	// so uniqueness is checked again on the record about to be stored.
	if _, err := converter.BuildDefinition(rec, nil); err != nil {
		return fmt.Errorf("plan %s cannot be stored: %w", def.ID(), err)
	}

	err = m.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLitePlanRecordRepo(tx)

		existing, err := txPlans.GetByID(ctx, rec.ID)
		switch {
		case err == nil:
			rec.IsActive = existing.IsActive
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		if activate {
			rec.IsActive = true
		}
		return txPlans.Save(ctx, rec)
	})
	if err != nil {
		return err
	}

	if err := m.search.Index(ctx, def); err != nil {
		return fmt.Errorf("indexing plan %s: %w", def.ID(), err)
	}
	if activate {
		if err := m.activation.Publish(ctx, feed.ActivationEvent{Definition: def}); err != nil {
			return fmt.Errorf("publishing activation of plan %s: %w", def.ID(), err)
		}
	}
	return nil
}

func (m *definitionManager) Activate(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe(ctx, m.observer, "plan.activate", start, err, map[string]any{"plan_id": id}) }()

	if m.readOnly {
		return domain.ErrReadOnly
	}

	var rec *record.PlanRecord
	err = m.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLitePlanRecordRepo(tx)
		if err := txPlans.SetActive(ctx, id, true); err != nil {
			return err
		}
		var err error
		rec, err = txPlans.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	def, err := converter.BuildDefinition(rec, nil)
	if err != nil {
		return err
	}
	if err := m.activation.Publish(ctx, feed.ActivationEvent{Definition: def}); err != nil {
		return fmt.Errorf("publishing activation of plan %s: %w", id, err)
	}
	return nil
}

func (m *definitionManager) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe(ctx, m.observer, "plan.delete", start, err, map[string]any{"plan_id": id}) }()

	if m.readOnly {
		return domain.ErrReadOnly
	}

	rec, err := m.plans.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := m.plans.Delete(ctx, id); err != nil {
		return err
	}
	if err := m.search.Remove(ctx, id); err != nil {
		return fmt.Errorf("removing plan %s from index: %w", id, err)
	}
	if err := m.deletion.Publish(ctx, feed.DeleteEvent{ID: rec.ID, Alias: rec.Alias}); err != nil {
		return fmt.Errorf("publishing deletion of plan %s: %w", id, err)
	}
	return nil
}

// Search resolves index hits to stored plans. Hits whose plan no longer
// exists or cannot be built are skipped and do not count toward limit.
func (m *definitionManager) Search(ctx context.Context, query string, limit int) (out []*DefinitionResult, err error) {
	start := time.Now()
	defer func() {
		observe(ctx, m.observer, "plan.search", start, err, map[string]any{"query": query, "count": len(out)})
	}()

	hits, err := m.search.Search(ctx, query, 0)
	if err != nil {
		return nil, fmt.Errorf("searching plans: %w", err)
	}
	for _, hit := range hits {
		if limit > 0 && len(out) == limit {
			break
		}
		rec, err := m.plans.GetByID(ctx, hit.ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res, buildErr := toResult(rec, nil)
		if buildErr != nil {
			observe(ctx, m.observer, "plan.search.skip", time.Now(), buildErr, map[string]any{"plan_id": rec.ID})
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// Reindex loads every stored plan into the search provider and returns how
// many were indexed. A stored plan that cannot be built is logged to logger
// and skipped. A nil logger uses slog.Default.
func Reindex(ctx context.Context, plans repository.PlanRecordRepo, searcher search.Provider, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	recs, err := plans.List(ctx)
	if err != nil {
		return 0, err
	}
	indexed := 0
	for _, rec := range recs {
		def, err := converter.BuildDefinition(rec, nil)
		if err != nil {
			logger.WarnContext(ctx, "skipping unloadable plan", "plan_id", rec.ID, "alias", rec.Alias, "error", err)
			continue
		}
		if err := searcher.Index(ctx, def); err != nil {
			return indexed, fmt.Errorf("indexing plan %s: %w", rec.ID, err)
		}
		indexed++
	}
	return indexed, nil
}

func toResult(rec *record.PlanRecord, culture *language.Tag) (*DefinitionResult, error) {
	def, err := converter.BuildDefinition(rec, culture)
	if err != nil {
		return nil, err
	}
	return &DefinitionResult{Definition: def, IsActive: rec.IsActive}, nil
}
