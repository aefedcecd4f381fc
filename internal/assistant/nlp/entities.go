package nlp

import (
	"regexp"
	"strings"
	"time"

	catalogtypes "github.com/nfsdasilva237/pipomarket-assistant/internal/catalog/types"
)

// SortBy is the ranking preference extracted from a message
type SortBy string

const (
	SortNone      SortBy = ""
	SortPriceAsc  SortBy = "price_asc"
	SortPriceDesc SortBy = "price_desc"
	SortPopular   SortBy = "popular"
	SortNewest    SortBy = "newest"
	SortRating    SortBy = "rating"
)

// Entities is the structured value bag extracted from a free-text message.
// Fields are optional: a zero value means the entity was not mentioned.
type Entities struct {
	MinBudget   float64   `json:"min_budget,omitempty"`
	MaxBudget   float64   `json:"max_budget,omitempty"`
	Quantity    int       `json:"quantity,omitempty"`
	Colors      []string  `json:"colors,omitempty"`
	Sizes       []string  `json:"sizes,omitempty"`
	Location    string    `json:"location,omitempty"`
	ProductIDs  []string  `json:"product_ids,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	StartupIDs  []string  `json:"startup_ids,omitempty"`
	SortBy      SortBy    `json:"sort_by,omitempty"`
	Comparison  bool      `json:"comparison,omitempty"`
	Urgent      bool      `json:"urgent,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// Merge overlays the non-zero fields of other onto e. Later values win;
// nested values are replaced wholesale, not deep-merged.
func (e *Entities) Merge(other Entities) {
	if other.MinBudget > 0 {
		e.MinBudget = other.MinBudget
	}
	if other.MaxBudget > 0 {
		e.MaxBudget = other.MaxBudget
	}
	if other.Quantity > 0 {
		e.Quantity = other.Quantity
	}
	if len(other.Colors) > 0 {
		e.Colors = other.Colors
	}
	if len(other.Sizes) > 0 {
		e.Sizes = other.Sizes
	}
	if other.Location != "" {
		e.Location = other.Location
	}
	if len(other.ProductIDs) > 0 {
		e.ProductIDs = other.ProductIDs
	}
	if len(other.Categories) > 0 {
		e.Categories = other.Categories
	}
	if len(other.StartupIDs) > 0 {
		e.StartupIDs = other.StartupIDs
	}
	if other.SortBy != SortNone {
		e.SortBy = other.SortBy
	}
	if other.Comparison {
		e.Comparison = true
	}
	if other.Urgent {
		e.Urgent = true
	}
	e.LastUpdated = time.Now()
}

// Closed vocabularies. Entries are pre-normalized (no accents).
var (
	colorVocab = []string{
		"rouge", "bleu", "vert", "jaune", "noir", "blanc", "rose",
		"violet", "orange", "gris", "marron", "beige", "dore", "argente",
	}
	sizeVocab = []string{
		"xs", "xl", "xxl", "petit", "moyen", "grand",
	}
	// Single-letter sizes only count when introduced by "taille",
	// otherwise stray tokens ("l eau") would match.
	letterSizePattern = regexp.MustCompile(`\btaille\s+(xs|s|m|l|xl|xxl)\b`)
	cityVocab = []string{
		"yaounde", "douala", "bafoussam", "bamenda", "garoua", "maroua",
		"ngaoundere", "bertoua", "buea", "limbe", "kribi", "edea", "ebolowa",
	}

	// Keyword fallbacks used when the category name itself is not spoken
	// ("gateau" implies patisserie even if the word never appears).
	categoryKeywords = map[string][]string{
		"patisserie":   {"gateau", "gateaux", "tarte", "tartes", "croissant", "beignet", "beignets", "pain"},
		"mode":         {"chaussure", "chaussures", "vetement", "vetements", "robe", "robes", "sac", "sacs", "chemise", "pantalon"},
		"electronique": {"telephone", "telephones", "ordinateur", "ordinateurs", "ecouteur", "ecouteurs", "chargeur", "tablette"},
		"beaute":       {"creme", "cremes", "parfum", "parfums", "maquillage", "savon", "savons"},
		"alimentation": {"jus", "miel", "epice", "epices", "chocolat", "cafe", "the"},
		"artisanat":    {"bijou", "bijoux", "sculpture", "panier", "paniers", "tissu", "tissus"},
	}

	sortKeywords = []struct {
		words []string
		sort  SortBy
	}{
		{[]string{"pas cher", "moins cher", "economique", "bon marche", "abordable"}, SortPriceAsc},
		{[]string{"haut de gamme", "luxe", "premium", "plus cher"}, SortPriceDesc},
		{[]string{"populaire", "populaires", "tendance", "meilleures ventes", "plus vendus"}, SortPopular},
		{[]string{"nouveau", "nouveaux", "nouveaute", "nouveautes", "recent", "recents"}, SortNewest},
		{[]string{"mieux note", "mieux notes", "meilleure note", "top note"}, SortRating},
	}

	comparisonWords = []string{"compare", "comparer", "comparaison", "difference", "versus", "lequel", "laquelle", "ou bien"}
	urgencyWords    = []string{"urgent", "urgence", "vite", "rapidement", "maintenant", "tout de suite", "aujourd hui"}

	amountPattern      = `(\d+(?:[ ]\d{3})*)`
	maxBudgetPattern   = regexp.MustCompile(`(?:moins de|maximum|max|pas plus de|en dessous de|budget de)\s+` + amountPattern)
	minBudgetPattern   = regexp.MustCompile(`(?:plus de|minimum|a partir de|au moins)\s+` + amountPattern)
	bareAmountPattern  = regexp.MustCompile(amountPattern + `\s*(?:xaf|fcfa|francs?|f)(?:\s|$)`)
	quantityPattern    = regexp.MustCompile(`(\d+)\s+(?:pieces?|exemplaires?|unites?|articles?)`)
	quantityShorthand  = regexp.MustCompile(`\bx\s?(\d+)\b`)
	fuzzyMatchMinScore = 0.8
)

// Extractor scans normalized messages against the product catalog and the
// closed vocabularies.
type Extractor struct {
	products   []*catalogtypes.Product
	categories []string
	startups   []*catalogtypes.Startup
}

// NewExtractor creates an entity extractor over the given catalog snapshot
func NewExtractor(products []*catalogtypes.Product, categories []string, startups []*catalogtypes.Startup) *Extractor {
	return &Extractor{
		products:   products,
		categories: categories,
		startups:   startups,
	}
}

// Extract pulls structured entities out of a message. It never fails:
// anything unmatched simply leaves the corresponding field unset.
func (x *Extractor) Extract(message string) Entities {
	normalized := Normalize(message)
	padded := " " + normalized + " "
	entities := Entities{LastUpdated: time.Now()}

	if m := maxBudgetPattern.FindStringSubmatch(normalized); m != nil {
		entities.MaxBudget = parseAmount(m[1])
	}
	if m := minBudgetPattern.FindStringSubmatch(normalized); m != nil {
		entities.MinBudget = parseAmount(m[1])
	}
	if entities.MaxBudget == 0 && entities.MinBudget == 0 {
		if m := bareAmountPattern.FindStringSubmatch(normalized); m != nil {
			entities.MaxBudget = parseAmount(m[1])
		}
	}

	if m := quantityPattern.FindStringSubmatch(normalized); m != nil {
		entities.Quantity = parseInt(m[1])
	} else if m := quantityShorthand.FindStringSubmatch(normalized); m != nil {
		entities.Quantity = parseInt(m[1])
	}

	for _, color := range colorVocab {
		if strings.Contains(padded, " "+color+" ") {
			entities.Colors = append(entities.Colors, color)
		}
	}
	for _, size := range sizeVocab {
		if strings.Contains(padded, " "+size+" ") {
			entities.Sizes = append(entities.Sizes, size)
		}
	}
	if m := letterSizePattern.FindStringSubmatch(normalized); m != nil && !containsString(entities.Sizes, m[1]) {
		entities.Sizes = append(entities.Sizes, m[1])
	}
	for _, city := range cityVocab {
		if strings.Contains(padded, " "+city+" ") {
			entities.Location = city
			break
		}
	}

	entities.Categories = x.matchCategories(normalized)
	entities.ProductIDs = x.matchProducts(normalized)
	entities.StartupIDs = x.matchStartups(normalized)

	for _, group := range sortKeywords {
		if entities.SortBy != SortNone {
			break
		}
		for _, word := range group.words {
			if strings.Contains(normalized, word) {
				entities.SortBy = group.sort
				break
			}
		}
	}

	for _, word := range comparisonWords {
		if strings.Contains(normalized, word) {
			entities.Comparison = true
			break
		}
	}
	for _, word := range urgencyWords {
		if strings.Contains(normalized, word) {
			entities.Urgent = true
			break
		}
	}

	return entities
}

func (x *Extractor) matchCategories(normalized string) []string {
	var matched []string
	seen := make(map[string]bool)

	for _, category := range x.categories {
		name := Normalize(category)
		if name == "" || seen[name] {
			continue
		}
		if strings.Contains(normalized, name) || bestWindowScore(name, normalized) >= fuzzyMatchMinScore {
			matched = append(matched, name)
			seen[name] = true
			continue
		}
		for _, keyword := range categoryKeywords[name] {
			if strings.Contains(" "+normalized+" ", " "+keyword+" ") {
				matched = append(matched, name)
				seen[name] = true
				break
			}
		}
	}
	return matched
}

func (x *Extractor) matchProducts(normalized string) []string {
	var matched []string
	for _, p := range x.products {
		name := Normalize(p.Name)
		if name == "" {
			continue
		}
		if strings.Contains(normalized, name) || bestWindowScore(name, normalized) >= fuzzyMatchMinScore {
			matched = append(matched, p.ID)
		}
	}
	return matched
}

func (x *Extractor) matchStartups(normalized string) []string {
	var matched []string
	for _, s := range x.startups {
		name := Normalize(s.Name)
		if name == "" {
			continue
		}
		if strings.Contains(normalized, name) || bestWindowScore(name, normalized) >= fuzzyMatchMinScore {
			matched = append(matched, s.ID)
		}
	}
	return matched
}

// FuzzyMatch scores how well search matches target: 1.0 when target
// contains search, 0.9 for the reverse, otherwise the fraction of search's
// characters individually present in target. Cheap by intent; the only
// guaranteed ordering is that an exact substring match scores highest.
func FuzzyMatch(search, target string) float64 {
	if search == "" || target == "" {
		return 0
	}
	if strings.Contains(target, search) {
		return 1.0
	}
	if strings.Contains(search, target) {
		return 0.9
	}

	present := 0
	for _, r := range search {
		if strings.ContainsRune(target, r) {
			present++
		}
	}
	return float64(present) / float64(len([]rune(search)))
}

// bestWindowScore fuzzy-matches a catalog name against every window of
// the message with the same token count. Scoring the name against the
// whole message would let any long sentence match everything.
func bestWindowScore(name, normalized string) float64 {
	nameTokens := strings.Fields(name)
	msgTokens := strings.Fields(normalized)
	if len(nameTokens) == 0 || len(msgTokens) < len(nameTokens) {
		return 0
	}

	best := 0.0
	for i := 0; i+len(nameTokens) <= len(msgTokens); i++ {
		window := strings.Join(msgTokens[i:i+len(nameTokens)], " ")
		if len(window) <= len(name)/2 {
			continue
		}
		if score := FuzzyMatch(name, window); score > best {
			best = score
		}
	}
	return best
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func parseAmount(raw string) float64 {
	digits := strings.ReplaceAll(raw, " ", "")
	value := 0.0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0
		}
		value = value*10 + float64(r-'0')
	}
	return value
}

func parseInt(raw string) int {
	value := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0
		}
		value = value*10 + int(r-'0')
	}
	return value
}
