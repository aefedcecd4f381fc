package biz

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/profile/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProfileRepo defines the repository interface for profile data
type ProfileRepo interface {
	ListOrders(ctx context.Context, userID string) ([]*types.Order, error)
	ListBDLOrders(ctx context.Context, userID string) ([]*types.BDLOrder, error)
	ListFavorites(ctx context.Context, userID string) ([]*types.Favorite, error)
	ListSearches(ctx context.Context, userID string) ([]*types.SearchEntry, error)
	ListInteractions(ctx context.Context, userID string) ([]*types.Interaction, error)
	CreateInteraction(ctx context.Context, interaction *types.Interaction) error
	CreateSearch(ctx context.Context, entry *types.SearchEntry) error
	UpsertPreferences(ctx context.Context, userID string, prefs *types.Preferences) error
	ScanPreferences(ctx context.Context, excludeUserID string, limit int) ([]*types.UserPreferences, error)
	ListOrderProductIDs(ctx context.Context, userID string) ([]string, error)
}

type cacheEntry struct {
	profile *types.Profile
	builtAt time.Time
}

// ProfileUseCase aggregates user history into a derived profile.
// Profiles are rebuilt on demand and cached briefly; tracking calls
// invalidate the cache so fresh activity is reflected immediately.
type ProfileUseCase struct {
	repo     ProfileRepo
	cacheTTL time.Duration
	log      *logger.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewProfileUseCase creates a new profile use case
func NewProfileUseCase(repo ProfileRepo, cacheTTL time.Duration, log *logger.Logger) *ProfileUseCase {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ProfileUseCase{
		repo:     repo,
		cacheTTL: cacheTTL,
		log:      log,
		cache:    make(map[string]cacheEntry),
	}
}

// GetProfile builds (or returns the cached) derived profile for a user.
// A guest (empty user id) has no profile. Each of the five history reads
// degrades to an empty list on failure rather than aborting the build.
func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID string) *types.Profile {
	if userID == "" {
		return nil
	}

	uc.mu.RLock()
	if entry, ok := uc.cache[userID]; ok && time.Since(entry.builtAt) < uc.cacheTTL {
		uc.mu.RUnlock()
		return entry.profile
	}
	uc.mu.RUnlock()

	profile := uc.build(ctx, userID)

	uc.mu.Lock()
	uc.cache[userID] = cacheEntry{profile: profile, builtAt: time.Now()}
	uc.mu.Unlock()

	return profile
}

// Invalidate drops the cached profile for a user
func (uc *ProfileUseCase) Invalidate(userID string) {
	uc.mu.Lock()
	delete(uc.cache, userID)
	uc.mu.Unlock()
}

// TrackInteraction records a user event and invalidates the cached profile
func (uc *ProfileUseCase) TrackInteraction(ctx context.Context, interaction *types.Interaction) error {
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now()
	}
	if err := uc.repo.CreateInteraction(ctx, interaction); err != nil {
		return err
	}
	uc.Invalidate(interaction.UserID)
	return nil
}

// TrackSearch records a search query and invalidates the cached profile
func (uc *ProfileUseCase) TrackSearch(ctx context.Context, userID, query string) error {
	entry := &types.SearchEntry{
		UserID:    userID,
		Query:     query,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.CreateSearch(ctx, entry); err != nil {
		return err
	}
	uc.Invalidate(userID)
	return nil
}

// UpdatePreferences re-derives and persists preferences immediately
func (uc *ProfileUseCase) UpdatePreferences(ctx context.Context, userID string) error {
	uc.Invalidate(userID)
	profile := uc.build(ctx, userID)
	if profile == nil {
		return nil
	}
	return uc.repo.UpsertPreferences(ctx, userID, profile.Preferences)
}

// ScanSimilarCandidates exposes the bounded preference scan used by
// collaborative filtering.
func (uc *ProfileUseCase) ScanSimilarCandidates(ctx context.Context, userID string, limit int) []*types.UserPreferences {
	prefs, err := uc.repo.ScanPreferences(ctx, userID, limit)
	if err != nil {
		uc.log.Warn("preference scan failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return prefs
}

// PurchasedProductIDs returns the product ids a user has ordered
func (uc *ProfileUseCase) PurchasedProductIDs(ctx context.Context, userID string) []string {
	ids, err := uc.repo.ListOrderProductIDs(ctx, userID)
	if err != nil {
		uc.log.Warn("order product scan failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return ids
}

func (uc *ProfileUseCase) build(ctx context.Context, userID string) *types.Profile {
	var (
		orders       []*types.Order
		bdlOrders    []*types.BDLOrder
		favorites    []*types.Favorite
		searches     []*types.SearchEntry
		interactions []*types.Interaction
	)

	// The five reads run concurrently; a failed read logs and leaves its
	// slice empty so the profile is built from whatever is available.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if orders, err = uc.repo.ListOrders(gctx, userID); err != nil {
			uc.log.Warn("failed to load orders", zap.String("user_id", userID), zap.Error(err))
			orders = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if bdlOrders, err = uc.repo.ListBDLOrders(gctx, userID); err != nil {
			uc.log.Warn("failed to load bdl orders", zap.String("user_id", userID), zap.Error(err))
			bdlOrders = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if favorites, err = uc.repo.ListFavorites(gctx, userID); err != nil {
			uc.log.Warn("failed to load favorites", zap.String("user_id", userID), zap.Error(err))
			favorites = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if searches, err = uc.repo.ListSearches(gctx, userID); err != nil {
			uc.log.Warn("failed to load searches", zap.String("user_id", userID), zap.Error(err))
			searches = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if interactions, err = uc.repo.ListInteractions(gctx, userID); err != nil {
			uc.log.Warn("failed to load interactions", zap.String("user_id", userID), zap.Error(err))
			interactions = nil
		}
		return nil
	})
	g.Wait()

	profile := &types.Profile{
		UserID:       userID,
		Orders:       orders,
		BDLOrders:    bdlOrders,
		Favorites:    favorites,
		Searches:     searches,
		Interactions: interactions,
		Preferences:  derivePreferences(orders, favorites, searches, interactions),
		Behavior:     deriveBehavior(orders, interactions),
		Spending:     deriveSpending(orders, bdlOrders),
		BuiltAt:      time.Now(),
	}
	profile.Engagement = CalculateEngagementScore(
		len(orders), len(bdlOrders), len(favorites), len(interactions),
		countRecent(orders, interactions, 7*24*time.Hour),
	)

	// Persist derived preferences for the collaborative-filtering scan.
	// Best effort: a write failure is logged and otherwise ignored.
	if err := uc.repo.UpsertPreferences(ctx, userID, profile.Preferences); err != nil {
		uc.log.Warn("failed to persist preferences", zap.String("user_id", userID), zap.Error(err))
	}

	return profile
}

// HasHistory reports whether the profile carries any signal at all
func HasHistory(p *types.Profile) bool {
	if p == nil {
		return false
	}
	return len(p.Orders) > 0 || len(p.Favorites) > 0 || len(p.Interactions) > 0
}

// CalculateEngagementScore computes the capped weighted activity sum.
// Each term is clamped, so the result is always within [0, 100].
func CalculateEngagementScore(orders, bdlOrders, favorites, interactions, last7Days int) float64 {
	score := min64(float64(orders)*5, 40) +
		min64(float64(bdlOrders)*10, 20) +
		min64(float64(favorites)*2, 15) +
		min64(float64(interactions)*0.5, 15) +
		min64(float64(last7Days)*2, 10)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func derivePreferences(orders []*types.Order, favorites []*types.Favorite, searches []*types.SearchEntry, interactions []*types.Interaction) *types.Preferences {
	prefs := types.NewPreferences()

	for _, o := range orders {
		bumpKey(prefs.Categories, o.Category)
		bumpKey(prefs.Startups, o.StartupID)
		bumpKey(prefs.Cities, o.City)
	}
	for _, f := range favorites {
		bumpKey(prefs.Categories, f.Category)
		bumpKey(prefs.Startups, f.StartupID)
	}
	for _, i := range interactions {
		bumpKey(prefs.Categories, i.Category)
		bumpKey(prefs.Startups, i.StartupID)
	}

	for _, s := range searches {
		for _, token := range strings.Fields(strings.ToLower(s.Query)) {
			if len(token) > 3 {
				prefs.Keywords[token]++
			}
		}
	}

	if len(orders) > 0 {
		minTotal := orders[0].Total
		maxTotal := orders[0].Total
		sum := 0.0
		for _, o := range orders {
			if o.Total < minTotal {
				minTotal = o.Total
			}
			if o.Total > maxTotal {
				maxTotal = o.Total
			}
			sum += o.Total
		}
		prefs.PriceRange = types.PriceRange{
			Min:     minTotal,
			Max:     maxTotal,
			Average: sum / float64(len(orders)),
		}
	}

	return prefs
}

func deriveBehavior(orders []*types.Order, interactions []*types.Interaction) *types.BehaviorProfile {
	behavior := &types.BehaviorProfile{}

	if len(orders) > 1 {
		totalGap := 0.0
		for i := 1; i < len(orders); i++ {
			totalGap += orders[i].CreatedAt.Sub(orders[i-1].CreatedAt).Hours() / 24
		}
		behavior.AvgDaysBetweenOrders = totalGap / float64(len(orders)-1)
	}

	// Decision time: hours between the first view of a product and its
	// purchase, counted only for view-then-buy pairs.
	firstView := make(map[string]time.Time)
	for _, i := range interactions {
		if i.Type != types.InteractionView || i.ProductID == "" {
			continue
		}
		if existing, ok := firstView[i.ProductID]; !ok || i.CreatedAt.Before(existing) {
			firstView[i.ProductID] = i.CreatedAt
		}
	}
	decisionSum, decisionCount := 0.0, 0
	for _, o := range orders {
		if viewedAt, ok := firstView[o.ProductID]; ok && o.CreatedAt.After(viewedAt) {
			decisionSum += o.CreatedAt.Sub(viewedAt).Hours()
			decisionCount++
		}
	}
	if decisionCount > 0 {
		behavior.AvgDecisionHours = decisionSum / float64(decisionCount)
	}

	var hourCounts [24]int
	var dayCounts [7]int
	weekendCount, nightCount := 0, 0
	now := time.Now()
	for _, i := range interactions {
		hour := i.CreatedAt.Hour()
		day := int(i.CreatedAt.Weekday())
		hourCounts[hour]++
		dayCounts[day]++
		if day == 0 || day == 6 {
			weekendCount++
		}
		if hour >= 21 || hour < 6 {
			nightCount++
		}
		if now.Sub(i.CreatedAt) <= 30*24*time.Hour {
			behavior.RecentActivity30d++
		}
		if now.Sub(i.CreatedAt) <= 90*24*time.Hour {
			behavior.RecentActivity90d++
		}
	}

	peakHour, peakDay := 0, 0
	for h, c := range hourCounts {
		if c > hourCounts[peakHour] {
			peakHour = h
		}
	}
	for d, c := range dayCounts {
		if c > dayCounts[peakDay] {
			peakDay = d
		}
	}
	behavior.PeakHour = peakHour
	behavior.PeakDay = peakDay

	if len(interactions) > 0 {
		// Weekend spans two of seven days; a shopper leaning past the
		// uniform share counts as a weekend shopper.
		behavior.WeekendShopper = float64(weekendCount)/float64(len(interactions)) > 2.0/7.0
		behavior.NightShopper = float64(nightCount)/float64(len(interactions)) > 0.3
	}

	views := 0
	for _, i := range interactions {
		if i.Type == types.InteractionView {
			views++
		}
	}
	if views > 0 {
		behavior.ConversionRate = float64(len(orders)) / float64(views) * 100
	}

	if len(orders) > 0 {
		totalQty := 0
		for _, o := range orders {
			totalQty += o.Quantity
		}
		behavior.AvgCartSize = float64(totalQty) / float64(len(orders))
	}

	purchaseCounts := make(map[string]int)
	for _, o := range orders {
		if o.ProductID != "" {
			purchaseCounts[o.ProductID]++
		}
	}
	if len(purchaseCounts) > 0 {
		repeats := 0
		for _, c := range purchaseCounts {
			if c > 1 {
				repeats++
			}
		}
		behavior.RepeatPurchaseRate = float64(repeats) / float64(len(purchaseCounts)) * 100
	}

	switch {
	case peakHour >= 5 && peakHour < 12:
		behavior.PreferredPeriod = types.PeriodMorning
	case peakHour >= 12 && peakHour < 18:
		behavior.PreferredPeriod = types.PeriodAfternoon
	default:
		behavior.PreferredPeriod = types.PeriodEvening
	}

	return behavior
}

func deriveSpending(orders []*types.Order, bdlOrders []*types.BDLOrder) *types.SpendingProfile {
	spending := &types.SpendingProfile{Trend: types.TrendStable}

	for _, o := range orders {
		spending.LifetimeValue += o.Total
		if o.Total > spending.LargestPurchase {
			spending.LargestPurchase = o.Total
		}
	}
	for _, b := range bdlOrders {
		spending.LifetimeValue += b.Amount
		if b.Amount > spending.LargestPurchase {
			spending.LargestPurchase = b.Amount
		}
	}

	if len(orders) > 0 {
		sum := 0.0
		for _, o := range orders {
			sum += o.Total
		}
		spending.AvgOrderValue = sum / float64(len(orders))
	}

	// Trend: first-half vs second-half average order value, 20% threshold.
	if len(orders) >= 4 {
		half := len(orders) / 2
		firstAvg := avgTotals(orders[:half])
		secondAvg := avgTotals(orders[half:])
		switch {
		case firstAvg > 0 && secondAvg > firstAvg*1.2:
			spending.Trend = types.TrendIncreasing
		case firstAvg > 0 && secondAvg < firstAvg*0.8:
			spending.Trend = types.TrendDecreasing
		}
	}

	switch {
	case spending.LifetimeValue <= 0:
		spending.Category = types.SpenderNew
	case spending.LifetimeValue < 50_000:
		spending.Category = types.SpenderOccasional
	case spending.LifetimeValue < 200_000:
		spending.Category = types.SpenderRegular
	case spending.LifetimeValue < 500_000:
		spending.Category = types.SpenderLoyal
	default:
		spending.Category = types.SpenderVIP
	}

	return spending
}

func countRecent(orders []*types.Order, interactions []*types.Interaction, window time.Duration) int {
	cutoff := time.Now().Add(-window)
	count := 0
	for _, o := range orders {
		if o.CreatedAt.After(cutoff) {
			count++
		}
	}
	for _, i := range interactions {
		if i.CreatedAt.After(cutoff) {
			count++
		}
	}
	return count
}

func avgTotals(orders []*types.Order) float64 {
	if len(orders) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range orders {
		sum += o.Total
	}
	return sum / float64(len(orders))
}

func bumpKey(m map[string]int, key string) {
	if key != "" {
		m[key]++
	}
}

func min64(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	return v
}
