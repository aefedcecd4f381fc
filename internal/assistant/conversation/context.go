package conversation

import (
	"fmt"
	"time"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/intent"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/nlp"
)

// Message is one turn of the conversation
type Message struct {
	Text      string        `json:"text"`
	IsBot     bool          `json:"is_bot"`
	Timestamp time.Time     `json:"timestamp"`
	Intent    intent.Intent `json:"intent,omitempty"`
	Entities  nlp.Entities  `json:"entities,omitempty"`
}

// FollowUpContext remembers the last explicitly referenced entities so a
// later "celui-ci" can be resolved. Single slot, last write wins.
type FollowUpContext struct {
	ProductID string `json:"product_id,omitempty"`
	Category  string `json:"category,omitempty"`
	StartupID string `json:"startup_id,omitempty"`
}

// Context is the full per-session conversational state. It is serialized
// to the session store after every message and reloadable across app
// restarts. One active session writes it; there is no concurrent-access
// contract.
type Context struct {
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	StartedAt      time.Time `json:"started_at"`

	Messages     []Message    `json:"messages"`
	CurrentTopic string       `json:"current_topic,omitempty"`
	Entities     nlp.Entities `json:"entities"`

	UserIntent intent.Intent    `json:"user_intent,omitempty"`
	LastIntent intent.Intent    `json:"last_intent,omitempty"`
	UserMood   intent.Sentiment `json:"user_mood,omitempty"`

	FollowUp *FollowUpContext `json:"follow_up,omitempty"`

	QuestionsAsked    int      `json:"questions_asked"`
	ProductsDiscussed []string `json:"products_discussed,omitempty"`
	ServicesDiscussed []string `json:"services_discussed,omitempty"`

	PendingDisambiguation bool     `json:"pending_disambiguation,omitempty"`
	DisambiguationOptions []string `json:"disambiguation_options,omitempty"`
}

// NewContext creates a fresh context for a session starting now
func NewContext(userID string) *Context {
	now := time.Now()
	return &Context{
		ConversationID: fmt.Sprintf("%s_%d", sessionOwner(userID), now.UnixMilli()),
		UserID:         userID,
		StartedAt:      now,
		UserMood:       intent.SentimentNeutral,
	}
}

// topicBuckets groups intents into the five coarse conversation topics.
// Two intents in the same bucket are "the same topic".
var topicBuckets = map[intent.Intent]string{
	intent.IntentProductSearch:  "product",
	intent.IntentRecommendation: "product",
	intent.IntentComparison:     "product",
	intent.IntentPriceInquiry:   "product",
	intent.IntentPriceConcern:   "product",
	intent.IntentStockCheck:     "product",
	intent.IntentCategoryBrowse: "product",
	intent.IntentTrending:       "product",
	intent.IntentNewArrivals:    "product",
	intent.IntentLocationSearch: "product",
	intent.IntentPromotions:     "product",

	intent.IntentBDLService: "service",

	intent.IntentPurchase:     "order",
	intent.IntentCancelOrder:  "order",
	intent.IntentOrderLookup:  "order",
	intent.IntentDeliveryInfo: "order",
	intent.IntentWarranty:     "order",
	intent.IntentIssueReport:  "order",

	intent.IntentStartupLookup: "startup",

	intent.IntentHelp:     "help",
	intent.IntentStats:    "help",
	intent.IntentGreeting: "help",
	intent.IntentThanks:   "help",
	intent.IntentGoodbye:  "help",
}

// TopicOf returns the bucket for an intent, or "" when unmapped
func TopicOf(tag intent.Intent) string {
	return topicBuckets[tag]
}

func sessionOwner(userID string) string {
	if userID == "" {
		return "guest"
	}
	return userID
}

// SessionKey derives the session-store key for a user (guest sentinel
// when unauthenticated).
func SessionKey(userID string) string {
	return "conversation_context_" + sessionOwner(userID)
}
