package types

import "time"

// Interaction types tracked by the mobile client
const (
	InteractionView      = "view"
	InteractionClick     = "click"
	InteractionSearch    = "search"
	InteractionAddToCart = "add_to_cart"
	InteractionFavorite  = "favorite"
)

// Spender categories by lifetime value
const (
	SpenderNew        = "new"
	SpenderOccasional = "occasional"
	SpenderRegular    = "regular"
	SpenderLoyal      = "loyal"
	SpenderVIP        = "vip"
)

// Spending trend classification
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Preferred shopping periods
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodEvening   = "evening"
)

// Order is a completed marketplace order
type Order struct {
	ID          string
	UserID      string
	ProductID   string
	ProductName string
	Category    string
	StartupID   string
	City        string
	Total       float64
	Quantity    int
	Status      string
	CreatedAt   time.Time
}

// BDLOrder is a BDL Studio creative-service order
type BDLOrder struct {
	ID          string
	UserID      string
	ServiceType string
	Amount      float64
	Status      string
	CreatedAt   time.Time
}

// Favorite is a product bookmarked by the user
type Favorite struct {
	UserID    string
	ProductID string
	Category  string
	StartupID string
	CreatedAt time.Time
}

// SearchEntry is one recorded search query
type SearchEntry struct {
	UserID    string
	Query     string
	CreatedAt time.Time
}

// Interaction is one tracked user event (view, click, add-to-cart, ...)
type Interaction struct {
	UserID    string
	Type      string
	ProductID string
	Category  string
	StartupID string
	CreatedAt time.Time
}

// PriceRange summarizes the amounts a user has historically paid
type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// Preferences holds frequency-based affinity weights derived from history.
// Persisted back to the store so the collaborative-filtering strategy can
// compare users without re-aggregating everyone.
type Preferences struct {
	Categories map[string]int `json:"categories"`
	Startups   map[string]int `json:"startups"`
	Cities     map[string]int `json:"cities"`
	Keywords   map[string]int `json:"keywords"`
	PriceRange PriceRange     `json:"price_range"`
}

// NewPreferences returns an empty preference set
func NewPreferences() *Preferences {
	return &Preferences{
		Categories: make(map[string]int),
		Startups:   make(map[string]int),
		Cities:     make(map[string]int),
		Keywords:   make(map[string]int),
	}
}

// BehaviorProfile holds behavioral metrics derived from order and
// interaction history
type BehaviorProfile struct {
	AvgDaysBetweenOrders float64 `json:"avg_days_between_orders"`
	AvgDecisionHours     float64 `json:"avg_decision_hours"`
	PeakHour             int     `json:"peak_hour"`
	PeakDay              int     `json:"peak_day"` // time.Weekday numbering
	WeekendShopper       bool    `json:"weekend_shopper"`
	NightShopper         bool    `json:"night_shopper"`
	RecentActivity30d    int     `json:"recent_activity_30d"`
	RecentActivity90d    int     `json:"recent_activity_90d"`
	ConversionRate       float64 `json:"conversion_rate"` // purchases / views, percent
	AvgCartSize          float64 `json:"avg_cart_size"`
	RepeatPurchaseRate   float64 `json:"repeat_purchase_rate"` // percent of distinct products bought more than once
	PreferredPeriod      string  `json:"preferred_period"`
}

// SpendingProfile classifies the user's spend
type SpendingProfile struct {
	LifetimeValue   float64 `json:"lifetime_value"`
	AvgOrderValue   float64 `json:"avg_order_value"`
	LargestPurchase float64 `json:"largest_purchase"`
	Trend           string  `json:"trend"`
	Category        string  `json:"category"`
}

// Profile is the derived user profile. Rebuilt on demand, cached with a
// short TTL, never stored long-term.
type Profile struct {
	UserID       string           `json:"user_id"`
	Orders       []*Order         `json:"-"`
	BDLOrders    []*BDLOrder      `json:"-"`
	Favorites    []*Favorite      `json:"-"`
	Searches     []*SearchEntry   `json:"-"`
	Interactions []*Interaction   `json:"-"`
	Preferences  *Preferences     `json:"preferences"`
	Behavior     *BehaviorProfile `json:"behavior"`
	Spending     *SpendingProfile `json:"spending"`
	Engagement   float64          `json:"engagement_score"`
	BuiltAt      time.Time        `json:"built_at"`
}

// UserPreferences pairs persisted preferences with their owner, as read
// back by the collaborative-filtering scan.
type UserPreferences struct {
	UserID      string
	Preferences *Preferences
	UpdatedAt   time.Time
}
