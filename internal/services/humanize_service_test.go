package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

type fakeGenerator struct {
	calls int
	out   string
	err   error
}

func (g *fakeGenerator) Humanize(_ context.Context, text string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.out != "" {
		return g.out, nil
	}
	return "rewritten: " + text, nil
}

type failingHistory struct{}

func (failingHistory) CreateHumanization(context.Context, *models.Humanization) error {
	return errors.New("insert failed")
}

func (failingHistory) ListHumanizations(context.Context, uuid.UUID, int, int) ([]models.Humanization, int64, error) {
	return nil, 0, nil
}

type failingIncrement struct {
	*repository.GormRepository
}

func (failingIncrement) IncrementUsage(context.Context, uuid.UUID, int) error {
	return errors.New("update failed")
}

type humanizeFixture struct {
	db   *gorm.DB
	repo *repository.GormRepository
	gen  *fakeGenerator
	svc  *HumanizeService
}

func newHumanizeFixture(t *testing.T) *humanizeFixture {
	t.Helper()
	db := testutil.NewDB(t)
	repo := repository.NewGormRepository(db)
	gen := &fakeGenerator{}
	usage := NewUsageService(repo)
	usage.now = func() time.Time { return fixedNow }
	return &humanizeFixture{
		db:   db,
		repo: repo,
		gen:  gen,
		svc:  NewHumanizeService(NewEntitlementService(repo), usage, repo, gen),
	}
}

func (f *humanizeFixture) subscribe(t *testing.T, userID uuid.UUID, tier plans.Tier) {
	t.Helper()
	require.NoError(t, f.repo.UpsertSubscription(context.Background(), &models.Subscription{
		UserID: userID, PlanType: tier, Status: plans.StatusActive,
	}))
}

func (f *humanizeFixture) period(t *testing.T, userID uuid.UUID) *models.UsagePeriod {
	t.Helper()
	start, end := models.MonthWindow(fixedNow)
	p, err := f.repo.GetOrCreateUsagePeriod(context.Background(), userID, start, end, -1)
	require.NoError(t, err)
	return p
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestHumanizeRejectsEmptyTextRegardlessOfAuth(t *testing.T) {
	f := newHumanizeFixture(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		for _, user := range []uuid.UUID{uuid.Nil, uuid.New()} {
			_, err := f.svc.Humanize(context.Background(), user, text)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "Text is required", ve.Message)
		}
	}
	assert.Zero(t, f.gen.calls)
}

func TestHumanizeRequiresSessionBeforeAnyUsageCheck(t *testing.T) {
	f := newHumanizeFixture(t)

	_, err := f.svc.Humanize(context.Background(), uuid.Nil, words(10000))
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, f.gen.calls)

	var count int64
	require.NoError(t, f.db.Model(&models.UsagePeriod{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHumanizeFreeTierBoundary(t *testing.T) {
	f := newHumanizeFixture(t)
	userID := uuid.New()

	res, err := f.svc.Humanize(context.Background(), userID, words(250))
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, 250, res.WordCount)
	assert.Equal(t, plans.Free, res.Tier)
	assert.Equal(t, 250, f.period(t, userID).WordCount)

	other := uuid.New()
	_, err = f.svc.Humanize(context.Background(), other, words(251))
	var ee *EntitlementError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, LimitPerRequest, ee.Kind)
	assert.Equal(t, 250, ee.Limit)
	assert.Equal(t, "Text exceeds the 250 word limit for your plan", ee.Error())
	assert.Equal(t, 1, f.gen.calls)
}

func TestHumanizeMonthlyLimitBelowPerRequestLimit(t *testing.T) {
	f := newHumanizeFixture(t)
	userID := uuid.New()
	f.subscribe(t, userID, plans.Beginner)

	p := f.period(t, userID)
	require.NoError(t, f.repo.IncrementUsage(context.Background(), p.ID, 4900))

	_, err := f.svc.Humanize(context.Background(), userID, words(150))
	var ee *EntitlementError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, LimitMonthly, ee.Kind)
	assert.Equal(t, 5000, ee.Limit)
	assert.Equal(t, 4900, ee.Used)
	assert.Zero(t, f.gen.calls)

	res, err := f.svc.Humanize(context.Background(), userID, words(100))
	require.NoError(t, err)
	assert.Equal(t, plans.Beginner, res.Tier)
	assert.Equal(t, 5000, f.period(t, userID).WordCount)
}

func TestHumanizePersistsHistoryAndUsage(t *testing.T) {
	f := newHumanizeFixture(t)
	userID := uuid.New()
	f.subscribe(t, userID, plans.Pro)
	f.gen.out = "abcdefgh"

	res, err := f.svc.Humanize(context.Background(), userID, "abcd efgh")
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", res.Text)
	assert.Equal(t, 3+2, res.TokensUsed)

	rows, total, err := f.repo.ListHumanizations(context.Background(), userID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "abcd efgh", rows[0].OriginalText)
	assert.Equal(t, "abcdefgh", rows[0].HumanizedText)
	assert.Equal(t, models.HumanizationCompleted, rows[0].Status)
	assert.Equal(t, 5, rows[0].TokensUsed)

	p := f.period(t, userID)
	assert.Equal(t, 2, p.WordCount)
	assert.Equal(t, 25000, p.MaxWordsAllowed)
}

func TestHumanizeUpstreamFailureLeavesUsageUntouched(t *testing.T) {
	f := newHumanizeFixture(t)
	userID := uuid.New()
	f.gen.err = errors.New("connection reset")

	_, err := f.svc.Humanize(context.Background(), userID, words(5))
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 0, f.period(t, userID).WordCount)
}

func TestHumanizeDegradesWhenHistoryWriteFails(t *testing.T) {
	f := newHumanizeFixture(t)
	userID := uuid.New()
	usage := NewUsageService(f.repo)
	usage.now = func() time.Time { return fixedNow }
	svc := NewHumanizeService(NewEntitlementService(f.repo), usage, failingHistory{}, f.gen)

	res, err := svc.Humanize(context.Background(), userID, words(12))
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, "rewritten: "+words(12), res.Text)
	assert.Equal(t, 12, f.period(t, userID).WordCount, "usage write is still attempted")
}

func TestHumanizeDowngradeRepairsStaleMonthlyMax(t *testing.T) {
	f := newHumanizeFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	start, end := models.MonthWindow(fixedNow)
	_, err := f.repo.GetOrCreateUsagePeriod(ctx, userID, start, end, 25000)
	require.NoError(t, err)
	f.subscribe(t, userID, plans.Free)

	_, err = f.svc.Humanize(ctx, userID, words(3))
	require.NoError(t, err)
	assert.Equal(t, 250, f.period(t, userID).MaxWordsAllowed)
}

func TestHumanizeDegradesWhenUsageWriteFails(t *testing.T) {
	f := newHumanizeFixture(t)
	userID := uuid.New()
	usage := NewUsageService(failingIncrement{f.repo})
	usage.now = func() time.Time { return fixedNow }
	svc := NewHumanizeService(NewEntitlementService(f.repo), usage, f.repo, f.gen)

	res, err := svc.Humanize(context.Background(), userID, words(7))
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, "rewritten: "+words(7), res.Text)

	rows, total, err := f.repo.ListHumanizations(context.Background(), userID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "history write is still attempted")
	assert.Equal(t, words(7), rows[0].OriginalText)
	assert.Equal(t, 0, f.period(t, userID).WordCount)
}
