package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/nlp"
	catalogtypes "github.com/nfsdasilva237/pipomarket-assistant/internal/catalog/types"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
	profiletypes "github.com/nfsdasilva237/pipomarket-assistant/internal/profile/types"
)

// Strategy weight split for personalized recommendations. Each share is
// rounded up, so the slices can overshoot the limit before deduplication.
const (
	shareHistory       = 0.30
	shareCategory      = 0.25
	shareCollaborative = 0.20
	shareBudget        = 0.15
	shareTrending      = 0.10
)

// ProfileSource supplies derived profiles and the bounded preference scan
// used by collaborative filtering.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) *profiletypes.Profile
	ScanSimilarCandidates(ctx context.Context, userID string, limit int) []*profiletypes.UserPreferences
	PurchasedProductIDs(ctx context.Context, userID string) []string
}

// Candidate is a scored recommendation. Transient; never persisted.
type Candidate struct {
	Product *catalogtypes.Product `json:"product"`
	Score   float64               `json:"score"`
	Reasons []string              `json:"reasons"`
}

// Engine combines the five weighted recommendation strategies
type Engine struct {
	profiles  ProfileSource
	scanLimit int
	log       *logger.Logger
}

// NewEngine creates a recommendation engine
func NewEngine(profiles ProfileSource, scanLimit int, log *logger.Logger) *Engine {
	if scanLimit <= 0 {
		scanLimit = 200
	}
	return &Engine{
		profiles:  profiles,
		scanLimit: scanLimit,
		log:       log,
	}
}

// Personalized returns up to limit ranked recommendations for a user.
// Without any usable profile (guest or empty history) it falls back to
// the popularity ranking rather than failing.
func (e *Engine) Personalized(ctx context.Context, userID string, products []*catalogtypes.Product, limit int) []*Candidate {
	if limit <= 0 || len(products) == 0 {
		return nil
	}

	profile := e.profiles.GetProfile(ctx, userID)
	if profile == nil || !hasHistory(profile) {
		return e.Popular(products, limit)
	}

	// Already-purchased products are dropped once here so no strategy can
	// resurface them.
	purchased := make(map[string]bool, len(profile.Orders))
	for _, o := range profile.Orders {
		purchased[o.ProductID] = true
	}
	remaining := make([]*catalogtypes.Product, 0, len(products))
	for _, p := range products {
		if !purchased[p.ID] {
			remaining = append(remaining, p)
		}
	}

	var candidates []*Candidate
	candidates = append(candidates, e.historyStrategy(profile, remaining, share(limit, shareHistory))...)
	candidates = append(candidates, e.categoryStrategy(profile, remaining, share(limit, shareCategory))...)
	candidates = append(candidates, e.collaborativeStrategy(ctx, profile, remaining, share(limit, shareCollaborative))...)
	candidates = append(candidates, e.budgetStrategy(profile, remaining, share(limit, shareBudget))...)
	candidates = append(candidates, e.trendingStrategy(remaining, share(limit, shareTrending))...)

	merged := DeduplicateAndScore(candidates)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	if len(merged) == 0 {
		return e.Popular(products, limit)
	}
	return merged
}

// Popular ranks the catalog by sales*2 + rating*10, descending
func (e *Engine) Popular(products []*catalogtypes.Product, limit int) []*Candidate {
	candidates := make([]*Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, &Candidate{
			Product: p,
			Score:   float64(p.Sales)*2 + p.Rating*10,
			Reasons: []string{"populaire sur PipoMarket"},
		})
	}
	sortCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// Similar scores catalog products against a reference product
func (e *Engine) Similar(productID string, products []*catalogtypes.Product, limit int) []*Candidate {
	var ref *catalogtypes.Product
	for _, p := range products {
		if p.ID == productID {
			ref = p
			break
		}
	}
	if ref == nil {
		return nil
	}

	refTokens := nameTokens(ref.Name)
	var candidates []*Candidate
	for _, p := range products {
		if p.ID == ref.ID {
			continue
		}
		score := 0.0
		if p.Category != "" && p.Category == ref.Category {
			score += 3
		}
		if p.StartupID != "" && p.StartupID == ref.StartupID {
			score += 2
		}
		if withinPriceBand(p.Price, ref.Price, 0.3) {
			score += 2
		}
		for token := range nameTokens(p.Name) {
			if refTokens[token] {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, &Candidate{
				Product: p,
				Score:   score,
				Reasons: []string{fmt.Sprintf("similaire à %s", ref.Name)},
			})
		}
	}
	sortCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// Contextual hard-filters by the extracted entities, then orders by the
// requested sort or by rating/price ratio.
func (e *Engine) Contextual(entities nlp.Entities, products []*catalogtypes.Product, limit int) []*catalogtypes.Product {
	var filtered []*catalogtypes.Product
	for _, p := range products {
		if len(entities.Categories) > 0 && !matchesCategory(p, entities.Categories) {
			continue
		}
		if entities.MaxBudget > 0 && p.Price > entities.MaxBudget {
			continue
		}
		if entities.MinBudget > 0 && p.Price < entities.MinBudget {
			continue
		}
		if entities.Location != "" && nlp.Normalize(p.City) != entities.Location {
			continue
		}
		if len(entities.Colors) > 0 && !mentionsColor(p, entities.Colors) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch entities.SortBy {
	case nlp.SortPriceAsc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case nlp.SortPriceDesc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	case nlp.SortPopular:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Sales > filtered[j].Sales })
	case nlp.SortNewest:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	case nlp.SortRating:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Rating > filtered[j].Rating })
	default:
		sort.SliceStable(filtered, func(i, j int) bool { return valueRatio(filtered[i]) > valueRatio(filtered[j]) })
	}

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// DeduplicateAndScore merges candidates by product id: scores are summed,
// reasons concatenated, and the first assigned reason stays primary. The
// summed score per product does not depend on input order.
func DeduplicateAndScore(candidates []*Candidate) []*Candidate {
	merged := make(map[string]*Candidate)
	var order []string

	for _, c := range candidates {
		if c == nil || c.Product == nil {
			continue
		}
		if existing, ok := merged[c.Product.ID]; ok {
			existing.Score += c.Score
			existing.Reasons = append(existing.Reasons, c.Reasons...)
			continue
		}
		copied := &Candidate{
			Product: c.Product,
			Score:   c.Score,
			Reasons: append([]string(nil), c.Reasons...),
		}
		merged[c.Product.ID] = copied
		order = append(order, c.Product.ID)
	}

	result := make([]*Candidate, 0, len(merged))
	for _, id := range order {
		result = append(result, merged[id])
	}
	sortCandidates(result)
	return result
}

// historyStrategy scores unpurchased products by their closeness to the
// user's past purchases.
func (e *Engine) historyStrategy(profile *profiletypes.Profile, products []*catalogtypes.Product, limit int) []*Candidate {
	if len(profile.Orders) == 0 {
		return nil
	}

	purchased := make(map[string]bool)
	for _, o := range profile.Orders {
		purchased[o.ProductID] = true
	}

	var candidates []*Candidate
	for _, p := range products {
		if purchased[p.ID] {
			continue
		}
		score := 0.0
		matchName := ""
		for _, o := range profile.Orders {
			if o.Category != "" && o.Category == p.Category {
				score += 3
				if matchName == "" {
					matchName = o.ProductName
				}
			}
			if o.StartupID != "" && o.StartupID == p.StartupID {
				score += 2
				if matchName == "" {
					matchName = o.ProductName
				}
			}
			if withinPriceBand(p.Price, o.Total, 0.3) {
				score++
			}
		}
		if score <= 0 {
			continue
		}
		reason := "basé sur vos achats précédents"
		if matchName != "" {
			reason = fmt.Sprintf("similaire à %s", matchName)
		}
		candidates = append(candidates, &Candidate{Product: p, Score: score, Reasons: []string{reason}})
	}
	sortCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// categoryStrategy recommends inside the user's top three categories
func (e *Engine) categoryStrategy(profile *profiletypes.Profile, products []*catalogtypes.Product, limit int) []*Candidate {
	top := topCategories(profile.Preferences, 3)
	if len(top) == 0 {
		return nil
	}

	var candidates []*Candidate
	for _, p := range products {
		affinity, ok := top[p.Category]
		if !ok {
			continue
		}
		score := float64(affinity) + p.Rating/5*2 + math.Min(float64(p.Sales)/10, 2)
		candidates = append(candidates, &Candidate{
			Product: p,
			Score:   score,
			Reasons: []string{fmt.Sprintf("dans votre catégorie préférée %s", p.Category)},
		})
	}
	sortCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// collaborativeStrategy recommends what similar users bought. The
// preference scan is capped; behavior past the cap is an accepted gap
// inherited from the product definition.
func (e *Engine) collaborativeStrategy(ctx context.Context, profile *profiletypes.Profile, products []*catalogtypes.Product, limit int) []*Candidate {
	others := e.profiles.ScanSimilarCandidates(ctx, profile.UserID, e.scanLimit)
	if len(others) == 0 {
		return nil
	}

	type neighbor struct {
		userID     string
		similarity float64
	}
	var neighbors []neighbor
	for _, other := range others {
		sim := PreferenceSimilarity(profile.Preferences, other.Preferences)
		if sim > 0.3 {
			neighbors = append(neighbors, neighbor{userID: other.UserID, similarity: sim})
		}
	}
	sort.SliceStable(neighbors, func(i, j int) bool { return neighbors[i].similarity > neighbors[j].similarity })
	if len(neighbors) > 10 {
		neighbors = neighbors[:10]
	}
	if len(neighbors) == 0 {
		return nil
	}

	purchased := make(map[string]bool)
	for _, o := range profile.Orders {
		purchased[o.ProductID] = true
	}

	similaritySum := make(map[string]float64)
	occurrences := make(map[string]int)
	for _, n := range neighbors {
		for _, productID := range e.profiles.PurchasedProductIDs(ctx, n.userID) {
			if purchased[productID] {
				continue
			}
			similaritySum[productID] += n.similarity
			occurrences[productID]++
		}
	}

	byID := make(map[string]*catalogtypes.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var candidates []*Candidate
	for productID, sum := range similaritySum {
		p, ok := byID[productID]
		if !ok {
			continue
		}
		candidates = append(candidates, &Candidate{
			Product: p,
			Score:   sum,
			Reasons: []string{fmt.Sprintf("apprécié par %d acheteurs aux goûts proches", occurrences[productID])},
		})
	}
	sortCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// budgetStrategy recommends products near the user's average order value
func (e *Engine) budgetStrategy(profile *profiletypes.Profile, products []*catalogtypes.Product, limit int) []*Candidate {
	avg := profile.Preferences.PriceRange.Average
	if avg <= 0 {
		return nil
	}

	var candidates []*Candidate
	for _, p := range products {
		if !withinPriceBand(p.Price, avg, 0.3) {
			continue
		}
		relDiff := math.Abs(p.Price-avg) / avg
		candidates = append(candidates, &Candidate{
			Product: p,
			Score:   (1 - relDiff) * 5,
			Reasons: []string{"dans votre budget habituel"},
		})
	}
	sortCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// trendingStrategy surfaces the current best sellers
func (e *Engine) trendingStrategy(products []*catalogtypes.Product, limit int) []*Candidate {
	var trending []*catalogtypes.Product
	for _, p := range products {
		if p.Sales > 5 || p.Rating >= 4 {
			trending = append(trending, p)
		}
	}
	sort.SliceStable(trending, func(i, j int) bool {
		if trending[i].Sales != trending[j].Sales {
			return trending[i].Sales > trending[j].Sales
		}
		return trending[i].Rating > trending[j].Rating
	})
	if len(trending) > 10 {
		trending = trending[:10]
	}

	var candidates []*Candidate
	for _, p := range trending {
		candidates = append(candidates, &Candidate{
			Product: p,
			Score:   float64(p.Sales)/10 + p.Rating,
			Reasons: []string{"tendance en ce moment"},
		})
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// PreferenceSimilarity blends per-dimension overlaps: categories 40%,
// price range 30%, startups 20%, keywords 10%.
func PreferenceSimilarity(a, b *profiletypes.Preferences) float64 {
	if a == nil || b == nil {
		return 0
	}
	return jaccard(a.Categories, b.Categories)*0.4 +
		priceSimilarity(a.PriceRange.Average, b.PriceRange.Average)*0.3 +
		jaccard(a.Startups, b.Startups)*0.2 +
		jaccard(a.Keywords, b.Keywords)*0.1
}

func jaccard(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for key := range a {
		if _, ok := b[key]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func priceSimilarity(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	larger := math.Max(a, b)
	return 1 - math.Abs(a-b)/larger
}

func share(limit int, proportion float64) int {
	return int(math.Ceil(float64(limit) * proportion))
}

func withinPriceBand(price, reference, band float64) bool {
	if reference <= 0 {
		return false
	}
	return math.Abs(price-reference) <= reference*band
}

func topCategories(prefs *profiletypes.Preferences, n int) map[string]int {
	if prefs == nil || len(prefs.Categories) == 0 {
		return nil
	}
	type kv struct {
		key   string
		count int
	}
	sorted := make([]kv, 0, len(prefs.Categories))
	for k, v := range prefs.Categories {
		sorted = append(sorted, kv{k, v})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	top := make(map[string]int, len(sorted))
	for _, entry := range sorted {
		top[entry.key] = entry.count
	}
	return top
}

func matchesCategory(p *catalogtypes.Product, categories []string) bool {
	normalized := nlp.Normalize(p.Category)
	for _, c := range categories {
		if normalized == c {
			return true
		}
	}
	return false
}

func mentionsColor(p *catalogtypes.Product, colors []string) bool {
	text := nlp.Normalize(p.Name + " " + p.Description)
	for _, color := range colors {
		if strings.Contains(" "+text+" ", " "+color+" ") {
			return true
		}
	}
	return false
}

func valueRatio(p *catalogtypes.Product) float64 {
	if p.Price <= 0 {
		return p.Rating
	}
	return p.Rating / p.Price
}

func nameTokens(name string) map[string]bool {
	tokens := make(map[string]bool)
	for _, token := range nlp.Tokenize(name) {
		if len(token) > 3 {
			tokens[token] = true
		}
	}
	return tokens
}

func hasHistory(p *profiletypes.Profile) bool {
	return len(p.Orders) > 0 || len(p.Favorites) > 0 || len(p.Interactions) > 0
}

func sortCandidates(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Product.ID < candidates[j].Product.ID
	})
}
