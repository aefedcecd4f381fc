package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/profile/types"
)

type fakeRepo struct {
	orders       []*types.Order
	bdlOrders    []*types.BDLOrder
	favorites    []*types.Favorite
	searches     []*types.SearchEntry
	interactions []*types.Interaction
	prefs        []*types.UserPreferences

	ordersErr error

	createdInteractions []*types.Interaction
	createdSearches     []*types.SearchEntry
	upserts             int
}

func (r *fakeRepo) ListOrders(_ context.Context, _ string) ([]*types.Order, error) {
	if r.ordersErr != nil {
		return nil, r.ordersErr
	}
	return r.orders, nil
}
func (r *fakeRepo) ListBDLOrders(_ context.Context, _ string) ([]*types.BDLOrder, error) {
	return r.bdlOrders, nil
}
func (r *fakeRepo) ListFavorites(_ context.Context, _ string) ([]*types.Favorite, error) {
	return r.favorites, nil
}
func (r *fakeRepo) ListSearches(_ context.Context, _ string) ([]*types.SearchEntry, error) {
	return r.searches, nil
}
func (r *fakeRepo) ListInteractions(_ context.Context, _ string) ([]*types.Interaction, error) {
	return r.interactions, nil
}
func (r *fakeRepo) CreateInteraction(_ context.Context, i *types.Interaction) error {
	r.createdInteractions = append(r.createdInteractions, i)
	return nil
}
func (r *fakeRepo) CreateSearch(_ context.Context, e *types.SearchEntry) error {
	r.createdSearches = append(r.createdSearches, e)
	return nil
}
func (r *fakeRepo) UpsertPreferences(_ context.Context, _ string, _ *types.Preferences) error {
	r.upserts++
	return nil
}
func (r *fakeRepo) ScanPreferences(_ context.Context, _ string, limit int) ([]*types.UserPreferences, error) {
	if limit < len(r.prefs) {
		return r.prefs[:limit], nil
	}
	return r.prefs, nil
}
func (r *fakeRepo) ListOrderProductIDs(_ context.Context, _ string) ([]string, error) {
	ids := make([]string, 0, len(r.orders))
	for _, o := range r.orders {
		ids = append(ids, o.ProductID)
	}
	return ids, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "console"})
	require.NoError(t, err)
	return log
}

func TestCalculateEngagementScore(t *testing.T) {
	tests := []struct {
		name                                          string
		orders, bdl, favorites, interactions, recent7 int
		want                                          float64
	}{
		{"no activity", 0, 0, 0, 0, 0, 0},
		{"one order", 1, 0, 0, 0, 0, 5},
		{"order caps at 40", 100, 0, 0, 0, 0, 40},
		{"all caps reached", 100, 100, 100, 100, 100, 100},
		{"mixed", 2, 1, 3, 10, 1, 10 + 10 + 6 + 5 + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateEngagementScore(tt.orders, tt.bdl, tt.favorites, tt.interactions, tt.recent7)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestGetProfileGuest(t *testing.T) {
	uc := NewProfileUseCase(&fakeRepo{}, time.Minute, testLogger(t))
	assert.Nil(t, uc.GetProfile(context.Background(), ""))
}

func TestGetProfileEmptyHistory(t *testing.T) {
	uc := NewProfileUseCase(&fakeRepo{}, time.Minute, testLogger(t))

	profile := uc.GetProfile(context.Background(), "u1")
	require.NotNil(t, profile)
	assert.Equal(t, 0.0, profile.Engagement)
	assert.Equal(t, types.SpenderNew, profile.Spending.Category)
	assert.False(t, HasHistory(profile))
}

func TestGetProfileDegradesOnReadFailure(t *testing.T) {
	repo := &fakeRepo{
		ordersErr: errors.New("db down"),
		favorites: []*types.Favorite{{UserID: "u1", ProductID: "p1", Category: "mode"}},
	}
	uc := NewProfileUseCase(repo, time.Minute, testLogger(t))

	profile := uc.GetProfile(context.Background(), "u1")
	require.NotNil(t, profile, "a failed read must not abort the build")
	assert.Empty(t, profile.Orders)
	assert.Len(t, profile.Favorites, 1)
	assert.True(t, HasHistory(profile))
}

func TestGetProfileCachingAndInvalidation(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewProfileUseCase(repo, time.Minute, testLogger(t))
	ctx := context.Background()

	first := uc.GetProfile(ctx, "u1")
	second := uc.GetProfile(ctx, "u1")
	assert.Same(t, first, second, "second call must hit the cache")
	assert.Equal(t, 1, repo.upserts)

	require.NoError(t, uc.TrackSearch(ctx, "u1", "chaussures en cuir"))
	third := uc.GetProfile(ctx, "u1")
	assert.NotSame(t, first, third, "tracking must invalidate the cache")
}

func TestTrackInteractionStampsTime(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewProfileUseCase(repo, time.Minute, testLogger(t))

	err := uc.TrackInteraction(context.Background(), &types.Interaction{UserID: "u1", Type: types.InteractionView})
	require.NoError(t, err)
	require.Len(t, repo.createdInteractions, 1)
	assert.False(t, repo.createdInteractions[0].CreatedAt.IsZero())
}

func TestDeriveSpendingCategories(t *testing.T) {
	tests := []struct {
		name   string
		totals []float64
		want   string
	}{
		{"new", nil, types.SpenderNew},
		{"occasional", []float64{10_000}, types.SpenderOccasional},
		{"regular boundary", []float64{50_000}, types.SpenderRegular},
		{"loyal", []float64{150_000, 150_000}, types.SpenderLoyal},
		{"vip", []float64{300_000, 300_000}, types.SpenderVIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var orders []*types.Order
			for _, total := range tt.totals {
				orders = append(orders, &types.Order{Total: total})
			}
			spending := deriveSpending(orders, nil)
			assert.Equal(t, tt.want, spending.Category)
		})
	}
}

func TestDeriveSpendingTrend(t *testing.T) {
	mkOrders := func(totals ...float64) []*types.Order {
		orders := make([]*types.Order, 0, len(totals))
		for _, total := range totals {
			orders = append(orders, &types.Order{Total: total})
		}
		return orders
	}

	assert.Equal(t, types.TrendIncreasing, deriveSpending(mkOrders(1000, 1000, 2000, 2000), nil).Trend)
	assert.Equal(t, types.TrendDecreasing, deriveSpending(mkOrders(2000, 2000, 1000, 1000), nil).Trend)
	assert.Equal(t, types.TrendStable, deriveSpending(mkOrders(1000, 1000, 1100, 1100), nil).Trend)
	assert.Equal(t, types.TrendStable, deriveSpending(mkOrders(1000, 5000), nil).Trend, "under four orders the trend stays stable")
}

func TestDerivePreferences(t *testing.T) {
	orders := []*types.Order{
		{Category: "mode", StartupID: "s1", City: "douala", Total: 5000},
		{Category: "mode", StartupID: "s2", City: "douala", Total: 15000},
	}
	searches := []*types.SearchEntry{{Query: "chaussures en cuir noir"}}

	prefs := derivePreferences(orders, nil, searches, nil)

	assert.Equal(t, 2, prefs.Categories["mode"])
	assert.Equal(t, 2, prefs.Cities["douala"])
	assert.Equal(t, 1, prefs.Keywords["chaussures"])
	assert.NotContains(t, prefs.Keywords, "en", "short tokens are dropped")
	assert.Equal(t, 5000.0, prefs.PriceRange.Min)
	assert.Equal(t, 15000.0, prefs.PriceRange.Max)
	assert.Equal(t, 10000.0, prefs.PriceRange.Average)
}

func TestDeriveBehavior(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) // a Monday
	interactions := []*types.Interaction{
		{Type: types.InteractionView, ProductID: "p1", CreatedAt: base},
		{Type: types.InteractionView, ProductID: "p2", CreatedAt: base.Add(time.Hour)},
		{Type: types.InteractionClick, CreatedAt: base.Add(2 * time.Hour)},
	}
	orders := []*types.Order{
		{ProductID: "p1", Quantity: 2, CreatedAt: base.Add(24 * time.Hour)},
		{ProductID: "p1", Quantity: 1, CreatedAt: base.Add(72 * time.Hour)},
	}

	behavior := deriveBehavior(orders, interactions)

	assert.Equal(t, 2.0, behavior.AvgDaysBetweenOrders)
	assert.Equal(t, 48.0, behavior.AvgDecisionHours, "both p1 orders count from the first p1 view")
	assert.Equal(t, 100.0, behavior.RepeatPurchaseRate)
	assert.Equal(t, 1.5, behavior.AvgCartSize)
	assert.Equal(t, 100.0, behavior.ConversionRate)
	assert.False(t, behavior.WeekendShopper)
	assert.False(t, behavior.NightShopper)
	assert.Equal(t, types.PeriodMorning, behavior.PreferredPeriod)
}
