package nlp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogtypes "github.com/nfsdasilva237/pipomarket-assistant/internal/catalog/types"
)

func testExtractor() *Extractor {
	products := []*catalogtypes.Product{
		{ID: "p1", Name: "Gâteau au chocolat", Category: "patisserie", Price: 4500},
		{ID: "p2", Name: "Écouteurs Bluetooth", Category: "electronique", Price: 12000},
		{ID: "p3", Name: "Robe en pagne", Category: "mode", Price: 15000},
	}
	categories := []string{"patisserie", "electronique", "mode", "beaute"}
	startups := []*catalogtypes.Startup{
		{ID: "s1", Name: "Douceurs du Mboa", City: "Yaoundé"},
	}
	return NewExtractor(products, categories, startups)
}

func TestExtractBudgetSearch(t *testing.T) {
	x := testExtractor()

	entities := x.Extract("je cherche un gateau pas cher à Yaoundé")

	assert.Contains(t, entities.Categories, "patisserie")
	assert.Equal(t, SortPriceAsc, entities.SortBy)
	assert.Equal(t, "yaounde", entities.Location)
}

func TestExtractBudgets(t *testing.T) {
	x := testExtractor()

	tests := []struct {
		name    string
		message string
		wantMin float64
		wantMax float64
	}{
		{"max budget", "moins de 5 000 francs", 0, 5000},
		{"min budget", "plus de 10 000 FCFA", 10000, 0},
		{"bare amount as max", "un cadeau à 25 000 fcfa", 0, 25000},
		{"no budget", "montre-moi des chaussures", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := x.Extract(tt.message)
			assert.Equal(t, tt.wantMin, entities.MinBudget)
			assert.Equal(t, tt.wantMax, entities.MaxBudget)
		})
	}
}

func TestExtractVocabularies(t *testing.T) {
	x := testExtractor()

	entities := x.Extract("une robe bleue... je veux dire bleu, taille M, x2, c'est urgent")
	assert.Contains(t, entities.Colors, "bleu")
	assert.Contains(t, entities.Sizes, "m")
	assert.Equal(t, 2, entities.Quantity)
	assert.True(t, entities.Urgent)

	// bare "m" without "taille" must not register as a size
	loose := x.Extract("montre m oi des produits")
	assert.NotContains(t, loose.Sizes, "m")
}

func TestExtractCatalogMatches(t *testing.T) {
	x := testExtractor()

	entities := x.Extract("le gateau au chocolat de Douceurs du Mboa est-il disponible ?")
	assert.Equal(t, []string{"p1"}, entities.ProductIDs)
	assert.Equal(t, []string{"s1"}, entities.StartupIDs)

	entities = x.Extract("compare les écouteurs bluetooth et la robe en pagne")
	require.Len(t, entities.ProductIDs, 2)
	assert.True(t, entities.Comparison)
}

func TestFuzzyMatch(t *testing.T) {
	assert.Equal(t, 1.0, FuzzyMatch("gateau", "je veux un gateau au chocolat"))
	assert.Equal(t, 0.9, FuzzyMatch("gateau au chocolat noir", "chocolat"))
	assert.Equal(t, 0.0, FuzzyMatch("", "chocolat"))
	assert.Equal(t, 0.0, FuzzyMatch("gateau", ""))

	// Partial overlap stays below the extractor threshold
	score := FuzzyMatch("xyzw", "abc")
	assert.Less(t, score, 0.8)
}

func TestEntitiesMerge(t *testing.T) {
	base := Entities{MaxBudget: 5000, Colors: []string{"rouge"}, Location: "douala"}
	base.Merge(Entities{Colors: []string{"bleu"}, SortBy: SortPriceAsc})

	assert.Equal(t, 5000.0, base.MaxBudget, "unset fields must not clobber existing values")
	assert.Equal(t, []string{"bleu"}, base.Colors, "set fields replace wholesale")
	assert.Equal(t, "douala", base.Location)
	assert.Equal(t, SortPriceAsc, base.SortBy)
	assert.WithinDuration(t, time.Now(), base.LastUpdated, time.Second)
}
