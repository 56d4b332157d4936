package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/alexanderramin/planbook/internal/db"
	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/feed"
	"github.com/alexanderramin/planbook/internal/repository"
	"github.com/alexanderramin/planbook/internal/search"
	"github.com/alexanderramin/planbook/internal/taxonomy"
	"github.com/alexanderramin/planbook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type managerHarness struct {
	db         *sql.DB
	repo       *repository.SQLitePlanRecordRepo
	index      *search.MemoryIndex
	activation *feed.Feed[feed.ActivationEvent]
	deletion   *feed.Feed[feed.DeleteEvent]
	activated  []string
	deleted    []string
	observer   *recordingObserver
	mgr        DefinitionManager
}

type managerOption func(*managerConfig)

type managerConfig struct {
	uow      func(*sql.DB) db.UnitOfWork
	resolver taxonomy.Resolver
	settings *Settings
}

func withUoW(f func(*sql.DB) db.UnitOfWork) managerOption {
	return func(c *managerConfig) { c.uow = f }
}

func withResolver(r taxonomy.Resolver) managerOption {
	return func(c *managerConfig) { c.resolver = r }
}

func withReadOnly() managerOption {
	return func(c *managerConfig) { c.settings = &Settings{ReadOnly: true} }
}

func newManagerHarness(t *testing.T, opts ...managerOption) *managerHarness {
	t.Helper()
	cfg := managerConfig{
		uow:      testutil.NewTestUoW,
		resolver: taxonomy.NewStaticResolver(nil),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	database := testutil.NewTestDB(t)
	h := &managerHarness{
		db:         database,
		repo:       repository.NewSQLitePlanRecordRepo(database),
		index:      search.NewMemoryIndex(),
		activation: feed.NewActivationFeed(),
		deletion:   feed.NewDeleteFeed(),
		observer:   &recordingObserver{},
	}
	h.activation.Subscribe(func(_ context.Context, e feed.ActivationEvent) error {
		h.activated = append(h.activated, e.Definition.ID())
		return nil
	})
	h.deletion.Subscribe(func(_ context.Context, e feed.DeleteEvent) error {
		h.deleted = append(h.deleted, e.Alias)
		return nil
	})
	h.mgr = NewDefinitionManager(h.repo, cfg.uow(database), cfg.resolver, h.index,
		h.activation, h.deletion, cfg.settings, h.observer)
	return h
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func TestDefinitionManager_SaveAndGet(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	require.NoError(t, h.mgr.Save(ctx, def, false))

	got, err := h.mgr.Get(ctx, def.ID(), nil)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "welcome", got.Definition.Alias())
	assert.Equal(t, "A1", got.Definition.EntryActivityID)
	assert.Equal(t, domain.ReentryIgnore, got.Definition.ReentryMode)
	require.Equal(t, 2, got.Definition.ActivityCount())
	assert.Equal(t, "A1", got.Definition.Activities()[0].ID)
	assert.Equal(t, "A2", got.Definition.Activities()[1].ID)
	require.Equal(t, 1, got.Definition.UniversalActivityCount())
	assert.Equal(t, domain.PositionOnExit, got.Definition.UniversalActivities()[0].PlanProcessingPosition)
	require.NotNil(t, got.Definition.LastModifiedDate, "save stamps last modified")

	byAlias, err := h.mgr.GetByAlias(ctx, "welcome", nil)
	require.NoError(t, err)
	assert.Equal(t, def.ID(), byAlias.Definition.ID())

	assert.Empty(t, h.activated)
	assert.Nil(t, def.LastModifiedDate, "caller's definition is not modified")
}

func TestDefinitionManager_Get_CultureOverride(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	require.NoError(t, h.mgr.Save(ctx, def, false))

	german := language.German
	got, err := h.mgr.Get(ctx, def.ID(), &german)
	require.NoError(t, err)
	assert.Equal(t, language.German, got.Definition.Culture())

	stored, err := h.mgr.Get(ctx, def.ID(), nil)
	require.NoError(t, err)
	assert.Equal(t, language.English, stored.Definition.Culture())
}

func TestDefinitionManager_Get_NotFound(t *testing.T) {
	h := newManagerHarness(t)

	_, err := h.mgr.Get(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.mgr.GetByAlias(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDefinitionManager_Save_ReplacesActivities(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	require.NoError(t, h.mgr.Save(ctx, def, false))

	trimmed := domain.NewPlanDefinition(def.ID(), def.Alias(), def.Culture(), def.Name(), def.CreatedDate(), def.CreatedBy())
	trimmed.EntryActivityID = "A2"
	require.NoError(t, trimmed.AddActivity(&domain.ActivityDefinition{ID: "A2", ActivityTypeID: "wait"}))
	require.NoError(t, h.mgr.Save(ctx, trimmed, false))

	got, err := h.mgr.Get(ctx, def.ID(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, got.Definition.ActivityCount(), "earlier activities do not accumulate")
	assert.Equal(t, "A2", got.Definition.Activities()[0].ID)
	assert.Equal(t, 0, got.Definition.UniversalActivityCount())
}

func TestDefinitionManager_Save_Activate(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	require.NoError(t, h.mgr.Save(ctx, def, true))

	got, err := h.mgr.Get(ctx, def.ID(), nil)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, []string{def.ID()}, h.activated)

	// Saving again without activate keeps the plan active.
	require.NoError(t, h.mgr.Save(ctx, def, false))
	got, err = h.mgr.Get(ctx, def.ID(), nil)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Len(t, h.activated, 1)
}

func TestDefinitionManager_Save_RejectsIDChangedAfterAdd(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	acts := def.Activities()
	acts[1].ID = acts[0].ID

	err := h.mgr.Save(ctx, def, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateActivity)

	_, err = h.mgr.Get(ctx, def.ID(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, h.index.Len())
	assert.Empty(t, h.activated)
}

func TestDefinitionManager_List_SkipsUnloadablePlan(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	good := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	require.NoError(t, h.mgr.Save(ctx, good, false))
	bad := testutil.NewTestPlanRecord("Broken",
		testutil.WithActivity("A1", "email", nil),
		testutil.WithActivity("A1", "wait", nil),
	)
	require.NoError(t, h.repo.Save(ctx, bad))

	plans, err := h.mgr.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, good.ID(), plans[0].Definition.ID())

	var skipped []UseCaseEvent
	for _, e := range h.observer.events {
		if e.Name == "plan.list.skip" {
			skipped = append(skipped, e)
		}
	}
	require.Len(t, skipped, 1)
	assert.False(t, skipped[0].Success)
	assert.ErrorIs(t, skipped[0].Err, domain.ErrDuplicateActivity)
	assert.Equal(t, bad.ID, skipped[0].Fields["plan_id"])

	// The broken plan can still be removed.
	require.NoError(t, h.mgr.Delete(ctx, bad.ID))
}

func TestDefinitionManager_Save_NilDefinition(t *testing.T) {
	h := newManagerHarness(t)

	err := h.mgr.Save(context.Background(), nil, false)

	var nullErr *domain.NullInputError
	require.ErrorAs(t, err, &nullErr)
	assert.Equal(t, "definition", nullErr.Arg)
}

func TestDefinitionManager_Save_UnknownClassification(t *testing.T) {
	h := newManagerHarness(t, withResolver(taxonomy.NewStaticResolver(map[string]string{"onboarding": "Onboarding"})))
	ctx := context.Background()

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	def.Classifications = []string{"onboarding", "retired"}

	err := h.mgr.Save(ctx, def, true)
	require.ErrorIs(t, err, domain.ErrUnknownClassification)

	_, err = h.mgr.Get(ctx, def.ID(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, h.activated)
	assert.Equal(t, 0, h.index.Len())
}

func TestDefinitionManager_Save_RollbackOnWriteFailure(t *testing.T) {
	h := newManagerHarness(t, withUoW(func(database *sql.DB) db.UnitOfWork {
		return &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: fmt.Errorf("disk full")}
	}))
	ctx := context.Background()

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	err := h.mgr.Save(ctx, def, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, err = h.repo.GetByID(ctx, def.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound, "plan row rolled back with its activities")
	assert.Empty(t, h.activated, "no activation published for a failed save")
	assert.Equal(t, 0, h.index.Len())

	ev := h.observer.last()
	assert.Equal(t, "plan.save", ev.Name)
	assert.False(t, ev.Success)
}

func TestDefinitionManager_ReadOnly(t *testing.T) {
	h := newManagerHarness(t, withReadOnly())
	ctx := context.Background()

	rec := testutil.NewTestPlanRecord("Seeded")
	require.NoError(t, h.repo.Save(ctx, rec))

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	assert.ErrorIs(t, h.mgr.Save(ctx, def, false), domain.ErrReadOnly)
	assert.ErrorIs(t, h.mgr.Activate(ctx, rec.ID), domain.ErrReadOnly)
	assert.ErrorIs(t, h.mgr.Delete(ctx, rec.ID), domain.ErrReadOnly)

	got, err := h.mgr.Get(ctx, rec.ID, nil)
	require.NoError(t, err, "reads still work")
	assert.Equal(t, "Seeded", got.Definition.Name())
}

func TestDefinitionManager_Activate(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	require.NoError(t, h.mgr.Save(ctx, def, false))

	require.NoError(t, h.mgr.Activate(ctx, def.ID()))

	got, err := h.mgr.Get(ctx, def.ID(), nil)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, []string{def.ID()}, h.activated)

	assert.ErrorIs(t, h.mgr.Activate(ctx, "missing"), domain.ErrNotFound)
}

func TestDefinitionManager_Delete(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	require.NoError(t, h.mgr.Save(ctx, def, false))
	require.Equal(t, 1, h.index.Len())

	require.NoError(t, h.mgr.Delete(ctx, def.ID()))

	_, err := h.mgr.Get(ctx, def.ID(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, h.index.Len())
	assert.Equal(t, []string{"welcome"}, h.deleted)

	assert.ErrorIs(t, h.mgr.Delete(ctx, def.ID()), domain.ErrNotFound)
	assert.Len(t, h.deleted, 1)
}

func TestDefinitionManager_List(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	require.NoError(t, h.mgr.Save(ctx, testutil.NewTestPlanDefinition("welcome", "Welcome series"), true))
	require.NoError(t, h.mgr.Save(ctx, testutil.NewTestPlanDefinition("winback", "Win-back"), false))

	french := language.French
	all, err := h.mgr.List(ctx, &french)
	require.NoError(t, err)
	require.Len(t, all, 2)

	active := 0
	for _, res := range all {
		assert.Equal(t, language.French, res.Definition.Culture())
		if res.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestDefinitionManager_Search(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	welcome := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	winback := testutil.NewTestPlanDefinition("winback", "Win-back series")
	require.NoError(t, h.mgr.Save(ctx, welcome, false))
	require.NoError(t, h.mgr.Save(ctx, winback, false))

	hits, err := h.mgr.Search(ctx, "welc", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, welcome.ID(), hits[0].Definition.ID())

	hits, err = h.mgr.Search(ctx, "series", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	// A stale index entry for a plan removed behind the manager's back is skipped.
	require.NoError(t, h.repo.Delete(ctx, winback.ID()))
	hits, err = h.mgr.Search(ctx, "series", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, welcome.ID(), hits[0].Definition.ID())
}

func TestDefinitionManager_Search_LimitCountsLivePlansOnly(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	alpha := testutil.NewTestPlanDefinition("alpha", "Alpha series")
	beta := testutil.NewTestPlanDefinition("beta", "Beta series")
	gamma := testutil.NewTestPlanDefinition("gamma", "Gamma series")
	for _, def := range []*domain.PlanDefinition{alpha, beta, gamma} {
		require.NoError(t, h.mgr.Save(ctx, def, false))
	}
	require.NoError(t, h.repo.Delete(ctx, alpha.ID()))

	hits, err := h.mgr.Search(ctx, "series", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, beta.ID(), hits[0].Definition.ID())
	assert.Equal(t, gamma.ID(), hits[1].Definition.ID())
}

func TestReindex(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLitePlanRecordRepo(database)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testutil.NewTestPlanRecord("Welcome series")))
	require.NoError(t, repo.Save(ctx, testutil.NewTestPlanRecord("Win-back series")))

	index := search.NewMemoryIndex()
	n, err := Reindex(ctx, repo, index, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, index.Len())
}

func TestReindex_SkipsUnloadablePlan(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLitePlanRecordRepo(database)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testutil.NewTestPlanRecord("Welcome series")))
	bad := testutil.NewTestPlanRecord("Broken",
		testutil.WithUniversalActivity("U1", "goal-check", domain.PositionOnExit, 0),
		testutil.WithUniversalActivity("U1", "goal-check", domain.PositionBeforeEntry, 1),
	)
	require.NoError(t, repo.Save(ctx, bad))

	var logs bytes.Buffer
	index := search.NewMemoryIndex()
	n, err := Reindex(ctx, repo, index, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, index.Len())
	assert.Contains(t, logs.String(), "skipping unloadable plan")
	assert.Contains(t, logs.String(), bad.ID)
}

func TestNewDefinitionManager_PanicsOnMissingCollaborator(t *testing.T) {
	database := testutil.NewTestDB(t)
	assert.Panics(t, func() {
		NewDefinitionManager(nil, testutil.NewTestUoW(database), taxonomy.NewStaticResolver(nil),
			search.NewMemoryIndex(), feed.NewActivationFeed(), feed.NewDeleteFeed(), nil)
	})
}

func TestDefinitionManager_ObservesUseCases(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	def := testutil.NewTestPlanDefinition("welcome", "Welcome series")
	require.NoError(t, h.mgr.Save(ctx, def, false))

	ev := h.observer.last()
	assert.Equal(t, "plan.save", ev.Name)
	assert.True(t, ev.Success)
	assert.Equal(t, def.ID(), ev.Fields["plan_id"])
}
