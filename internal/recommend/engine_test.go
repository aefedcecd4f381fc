package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/nlp"
	catalogtypes "github.com/nfsdasilva237/pipomarket-assistant/internal/catalog/types"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
	profiletypes "github.com/nfsdasilva237/pipomarket-assistant/internal/profile/types"
)

type fakeProfiles struct {
	profiles  map[string]*profiletypes.Profile
	prefs     []*profiletypes.UserPreferences
	purchases map[string][]string
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID string) *profiletypes.Profile {
	return f.profiles[userID]
}

func (f *fakeProfiles) ScanSimilarCandidates(_ context.Context, _ string, limit int) []*profiletypes.UserPreferences {
	if limit < len(f.prefs) {
		return f.prefs[:limit]
	}
	return f.prefs
}

func (f *fakeProfiles) PurchasedProductIDs(_ context.Context, userID string) []string {
	return f.purchases[userID]
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "console"})
	require.NoError(t, err)
	return log
}

func testCatalog() []*catalogtypes.Product {
	return []*catalogtypes.Product{
		{ID: "p1", Name: "Gâteau au chocolat", Category: "patisserie", Price: 4500, Rating: 4.5, Sales: 30, City: "Yaoundé"},
		{ID: "p2", Name: "Tarte aux fruits", Category: "patisserie", Price: 5000, Rating: 4.0, Sales: 10, StartupID: "s1"},
		{ID: "p3", Name: "Écouteurs Bluetooth", Category: "electronique", Price: 12000, Rating: 3.5, Sales: 50},
		{ID: "p4", Name: "Robe en pagne", Category: "mode", Price: 15000, Rating: 5.0, Sales: 5, StartupID: "s1"},
		{ID: "p5", Name: "Savon artisanal", Category: "beaute", Price: 1500, Rating: 2.0, Sales: 2},
	}
}

func TestPopularRanking(t *testing.T) {
	e := NewEngine(&fakeProfiles{}, 200, testLogger(t))

	got := e.Popular(testCatalog(), 3)
	require.Len(t, got, 3)

	// sales*2 + rating*10: p3=135, p1=105, then p2 and p4 tie at 60 and
	// the id tiebreak keeps the order stable
	assert.Equal(t, "p3", got[0].Product.ID)
	assert.Equal(t, "p1", got[1].Product.ID)
	assert.Equal(t, "p2", got[2].Product.ID)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestPersonalizedFallsBackForGuests(t *testing.T) {
	e := NewEngine(&fakeProfiles{profiles: map[string]*profiletypes.Profile{}}, 200, testLogger(t))

	products := testCatalog()
	guest := e.Personalized(context.Background(), "", products, 3)
	popular := e.Popular(products, 3)

	require.Len(t, guest, 3)
	for i := range guest {
		assert.Equal(t, popular[i].Product.ID, guest[i].Product.ID)
	}
}

func TestPersonalizedFallsBackForEmptyHistory(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*profiletypes.Profile{
		"u1": {UserID: "u1", Preferences: profiletypes.NewPreferences()},
	}}
	e := NewEngine(profiles, 200, testLogger(t))

	got := e.Personalized(context.Background(), "u1", testCatalog(), 2)
	require.Len(t, got, 2)
	assert.Equal(t, "p3", got[0].Product.ID, "no history means popularity ranking")
}

func TestPersonalizedUsesHistory(t *testing.T) {
	prefs := profiletypes.NewPreferences()
	prefs.Categories["patisserie"] = 3
	prefs.PriceRange = profiletypes.PriceRange{Min: 4000, Max: 5000, Average: 4750}

	profiles := &fakeProfiles{profiles: map[string]*profiletypes.Profile{
		"u1": {
			UserID: "u1",
			Orders: []*profiletypes.Order{
				{ProductID: "p1", ProductName: "Gâteau au chocolat", Category: "patisserie", Total: 4500},
			},
			Preferences: prefs,
		},
	}}
	e := NewEngine(profiles, 200, testLogger(t))

	got := e.Personalized(context.Background(), "u1", testCatalog(), 3)
	require.NotEmpty(t, got)

	// The already-purchased product never comes back first; the other
	// patisserie item accumulates history, category and budget strategy
	// scores and wins.
	assert.Equal(t, "p2", got[0].Product.ID)
	assert.NotEmpty(t, got[0].Reasons)
}

func TestSimilar(t *testing.T) {
	e := NewEngine(&fakeProfiles{}, 200, testLogger(t))
	products := testCatalog()

	got := e.Similar("p1", products, 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "p2", got[0].Product.ID, "same category and close price")
	for _, c := range got {
		assert.NotEqual(t, "p1", c.Product.ID, "the reference product is excluded")
	}

	assert.Nil(t, e.Similar("missing", products, 5))
}

func TestContextualFiltersAndSorts(t *testing.T) {
	e := NewEngine(&fakeProfiles{}, 200, testLogger(t))
	products := testCatalog()

	cheap := e.Contextual(nlp.Entities{Categories: []string{"patisserie"}, SortBy: nlp.SortPriceAsc}, products, 10)
	require.Len(t, cheap, 2)
	assert.Equal(t, "p1", cheap[0].ID)
	assert.Equal(t, "p2", cheap[1].ID)

	budget := e.Contextual(nlp.Entities{MaxBudget: 5000}, products, 10)
	for _, p := range budget {
		assert.LessOrEqual(t, p.Price, 5000.0)
	}

	located := e.Contextual(nlp.Entities{Location: "yaounde"}, products, 10)
	require.Len(t, located, 1)
	assert.Equal(t, "p1", located[0].ID)

	none := e.Contextual(nlp.Entities{MinBudget: 100000}, products, 10)
	assert.Empty(t, none)
}

func TestDeduplicateAndScoreOrderInsensitive(t *testing.T) {
	products := testCatalog()
	a := &Candidate{Product: products[0], Score: 2, Reasons: []string{"raison A"}}
	b := &Candidate{Product: products[0], Score: 3, Reasons: []string{"raison B"}}
	c := &Candidate{Product: products[1], Score: 4, Reasons: []string{"raison C"}}

	forward := DeduplicateAndScore([]*Candidate{a, b, c})
	backward := DeduplicateAndScore([]*Candidate{c, b, a})

	require.Len(t, forward, 2)
	require.Len(t, backward, 2)
	for i := range forward {
		assert.Equal(t, forward[i].Product.ID, backward[i].Product.ID)
		assert.Equal(t, forward[i].Score, backward[i].Score)
	}

	// The first assigned reason stays primary
	assert.Equal(t, "raison A", forward[0].Reasons[0])
	assert.Equal(t, "raison B", backward[0].Reasons[0])
}

func TestDeduplicateAndScoreSkipsNil(t *testing.T) {
	got := DeduplicateAndScore([]*Candidate{nil, {Product: nil, Score: 1}})
	assert.Empty(t, got)
}

func TestCollaborativeStrategy(t *testing.T) {
	myPrefs := profiletypes.NewPreferences()
	myPrefs.Categories["patisserie"] = 5
	myPrefs.PriceRange.Average = 5000

	neighborPrefs := profiletypes.NewPreferences()
	neighborPrefs.Categories["patisserie"] = 3
	neighborPrefs.PriceRange.Average = 5200

	strangerPrefs := profiletypes.NewPreferences()
	strangerPrefs.Categories["electronique"] = 9
	strangerPrefs.PriceRange.Average = 90000

	profiles := &fakeProfiles{
		profiles: map[string]*profiletypes.Profile{
			"u1": {
				UserID:      "u1",
				Orders:      []*profiletypes.Order{{ProductID: "p1", Category: "patisserie", Total: 4500}},
				Preferences: myPrefs,
			},
		},
		prefs: []*profiletypes.UserPreferences{
			{UserID: "u2", Preferences: neighborPrefs},
			{UserID: "u3", Preferences: strangerPrefs},
		},
		purchases: map[string][]string{
			"u2": {"p2", "p1"},
			"u3": {"p3"},
		},
	}
	e := NewEngine(profiles, 200, testLogger(t))

	got := e.collaborativeStrategy(context.Background(), profiles.profiles["u1"], testCatalog(), 5)
	require.Len(t, got, 1, "only the similar neighbor contributes, and owned products are excluded")
	assert.Equal(t, "p2", got[0].Product.ID)
}

func TestPreferenceSimilarity(t *testing.T) {
	a := profiletypes.NewPreferences()
	a.Categories["mode"] = 2
	a.PriceRange.Average = 10000

	same := profiletypes.NewPreferences()
	same.Categories["mode"] = 7
	same.PriceRange.Average = 10000

	other := profiletypes.NewPreferences()
	other.Categories["electronique"] = 4
	other.PriceRange.Average = 80000

	assert.InDelta(t, 0.7, PreferenceSimilarity(a, same), 1e-9, "full category overlap plus equal price")
	assert.Less(t, PreferenceSimilarity(a, other), 0.3)
	assert.Equal(t, 0.0, PreferenceSimilarity(nil, same))
}

func TestShareRoundsUp(t *testing.T) {
	assert.Equal(t, 3, share(10, 0.25))
	assert.Equal(t, 1, share(1, 0.10))
}

func TestContextualNewestSort(t *testing.T) {
	now := time.Now()
	products := []*catalogtypes.Product{
		{ID: "old", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "new", CreatedAt: now},
	}
	e := NewEngine(&fakeProfiles{}, 200, testLogger(t))

	got := e.Contextual(nlp.Entities{SortBy: nlp.SortNewest}, products, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
}
