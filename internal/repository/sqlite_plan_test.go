package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/planbook/internal/db"
	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/record"
	"github.com/alexanderramin/planbook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func setupPlanRepo(t *testing.T) *SQLitePlanRecordRepo {
	t.Helper()
	return NewSQLitePlanRecordRepo(testutil.NewTestDB(t))
}

func welcomeRecord() *record.PlanRecord {
	return testutil.NewTestPlanRecord("Welcome series",
		testutil.WithWindow(testutil.Date(2024, 1, 1), testutil.Date(2024, 12, 31)),
		testutil.WithReentryMode(domain.ReentryIgnore),
		testutil.WithDescription("Onboarding"),
		testutil.WithClassifications("channel/email", "campaign/onboarding"),
		testutil.WithActivity("A1", "email", domain.Parameters{"template": "welcome"}, "A2"),
		testutil.WithActivity("A2", "wait", domain.Parameters{}),
		testutil.WithUniversalActivity("U1", "goal-check", domain.PositionOnExit, 0),
	)
}

func TestPlanRecordRepo_SaveAndGetByID_RoundTrip(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	rec := welcomeRecord()
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestPlanRecordRepo_KeepsZoneOffset(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	cest := time.FixedZone("CEST", 2*60*60)
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, cest)
	end := time.Date(2024, 9, 30, 18, 0, 0, 0, cest)
	rec := testutil.NewTestPlanRecord("Summer sale", testutil.WithWindow(&start, &end))
	rec.CreatedDate = time.Date(2024, 5, 20, 8, 15, 0, 0, cest)
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	for name, pair := range map[string][2]time.Time{
		"start":   {start, *got.StartDate},
		"end":     {end, *got.EndDate},
		"created": {rec.CreatedDate, got.CreatedDate},
	} {
		want, have := pair[0], pair[1]
		assert.True(t, want.Equal(have), name)
		_, wantOff := want.Zone()
		_, haveOff := have.Zone()
		assert.Equal(t, wantOff, haveOff, "%s offset", name)
		assert.Equal(t, want.Hour(), have.Hour(), "%s wall clock", name)
	}
}

func TestPlanRecordRepo_GetByID_Fields(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	rec := welcomeRecord()
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Alias, got.Alias)
	assert.Equal(t, language.English, got.Culture)
	assert.Equal(t, domain.ReentryIgnore, got.ReentryMode)
	assert.Equal(t, "A1", got.EntryActivityID)
	require.NotNil(t, got.StartDate)
	assert.True(t, rec.StartDate.Equal(*got.StartDate))
	require.NotNil(t, got.EndDate)
	assert.True(t, rec.EndDate.Equal(*got.EndDate))
	assert.Nil(t, got.LastModifiedDate)
	assert.Equal(t, []string{"channel/email", "campaign/onboarding"}, got.Classifications)

	acts := got.GetActivities()
	require.Len(t, acts, 2)
	assert.Equal(t, []string{"A2"}, acts[0].Paths)
	assert.NotNil(t, acts[1].Parameters, "empty parameters stay non-nil")
	assert.Empty(t, acts[1].Parameters)
	assert.Equal(t, []string{}, acts[1].Paths)

	univ := got.GetUniversalActivities()
	require.Len(t, univ, 1)
	assert.Equal(t, domain.PositionOnExit, univ[0].PlanProcessingPosition)
	assert.Nil(t, univ[0].Parameters, "nil parameters stay nil")
}

func TestPlanRecordRepo_PreservesActivityOrder(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	ids := []string{"z", "m", "a", "q", "b", "y"}
	var opts []testutil.RecordOption
	for _, id := range ids {
		opts = append(opts, testutil.WithActivity(id, "email", nil))
	}
	opts = append(opts,
		testutil.WithUniversalActivity("u9", "t", domain.PositionBeforeEntry, 2),
		testutil.WithUniversalActivity("u1", "t", domain.PositionBeforeEntry, 2),
		testutil.WithUniversalActivity("u5", "t", domain.PositionBeforeEntry, 1),
	)
	rec := testutil.NewTestPlanRecord("Order", opts...)
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)

	acts := got.GetActivities()
	require.Len(t, acts, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, acts[i].ID)
	}

	univ := got.GetUniversalActivities()
	require.Len(t, univ, 3)
	assert.Equal(t, "u9", univ[0].ID)
	assert.Equal(t, "u1", univ[1].ID)
	assert.Equal(t, "u5", univ[2].ID)
}

func TestPlanRecordRepo_SaveReplacesActivities(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	rec := welcomeRecord()
	require.NoError(t, repo.Save(ctx, rec))

	updated := &record.PlanRecord{
		ID:          rec.ID,
		Alias:       rec.Alias,
		Culture:     rec.Culture,
		Name:        "Renamed",
		CreatedDate: rec.CreatedDate,
		CreatedBy:   rec.CreatedBy,
	}
	updated.AddActivity(&record.ActivityRecord{ID: "only", ActivityTypeID: "sms"})
	require.NoError(t, repo.Save(ctx, updated))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	require.Len(t, got.GetActivities(), 1)
	assert.Equal(t, "only", got.GetActivities()[0].ID)
	assert.Empty(t, got.GetUniversalActivities())
	assert.Nil(t, got.StartDate)
}

func TestPlanRecordRepo_Save_NilRecord(t *testing.T) {
	repo := setupPlanRepo(t)
	err := repo.Save(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNullInput)
}

func TestPlanRecordRepo_Save_NilActivity(t *testing.T) {
	repo := setupPlanRepo(t)
	rec := welcomeRecord()
	rec.AddActivity(nil)

	err := repo.Save(context.Background(), rec)
	assert.ErrorIs(t, err, domain.ErrNullInput)
}

func TestPlanRecordRepo_GetByAlias(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	rec := welcomeRecord()
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByAlias(ctx, rec.Alias)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Len(t, got.GetActivities(), 2)
}

func TestPlanRecordRepo_NotFound(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByAlias(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, repo.SetActive(ctx, "missing", true), ErrNotFound)
}

func TestPlanRecordRepo_List(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := testutil.NewTestPlanRecord(fmt.Sprintf("Plan %d", i),
			testutil.WithActivity(fmt.Sprintf("A%d", i), "email", nil))
		require.NoError(t, repo.Save(ctx, rec))
	}

	plans, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	for _, p := range plans {
		assert.Len(t, p.GetActivities(), 1, "activities are loaded for listed plans")
	}
	assert.Less(t, plans[0].Alias, plans[1].Alias)
	assert.Less(t, plans[1].Alias, plans[2].Alias)
}

func TestPlanRecordRepo_SetActive(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	rec := welcomeRecord()
	require.NoError(t, repo.Save(ctx, rec))
	require.NoError(t, repo.SetActive(ctx, rec.ID, true))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	require.NoError(t, repo.SetActive(ctx, rec.ID, false))
	got, err = repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestPlanRecordRepo_Delete(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	rec := welcomeRecord()
	require.NoError(t, repo.Save(ctx, rec))
	require.NoError(t, repo.Delete(ctx, rec.ID))

	_, err := repo.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plan_activities WHERE plan_id = ?`, rec.ID).Scan(&n))
	assert.Zero(t, n, "activities cascade with the plan")
}

func TestPlanRecordRepo_CultureRoundTrip(t *testing.T) {
	repo := setupPlanRepo(t)
	ctx := context.Background()

	rec := testutil.NewTestPlanRecord("Danish", testutil.WithCulture(language.MustParse("da-DK")))
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "da-DK", got.Culture.String())
}

func TestPlanRecordRepo_SaveRollsBackInTx(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: fmt.Errorf("disk full")}
	rec := welcomeRecord()
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return NewSQLitePlanRecordRepo(tx).Save(ctx, rec)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, err = NewSQLitePlanRecordRepo(database).GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound, "partial write was rolled back")
}
