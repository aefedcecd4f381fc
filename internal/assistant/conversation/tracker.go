package conversation

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/intent"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/nlp"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"

	"go.uber.org/zap"
)

// Store is the session key-value storage the tracker persists into
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// Discourse markers that flag a message as depending on the previous turn.
// Heuristic, not a semantic classifier. Matched against the normalized text.
var followUpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:et|ou|mais|aussi|donc|alors|sinon)\b`),
	regexp.MustCompile(`^(?:oui|non|ok|d accord|daccord|peut etre)\b`),
	regexp.MustCompile(`\b(?:celui|celle|ceux|celles)(?: ci| la)?\b`),
	regexp.MustCompile(`\b(?:il|elle|ca|cela|le meme|la meme|les memes)\b`),
	regexp.MustCompile(`^(?:pourquoi|combien|quand|comment)\b`),
	regexp.MustCompile(`^(?:montre|donne|ajoute|envoie|prends)\b`),
	regexp.MustCompile(`\b(?:plutot|moins|plus|pareil|autre)\b`),
}

// Anaphoric pronouns that justify restoring the last referenced entities
var anaphoraPattern = regexp.MustCompile(`\b(?:celui ci|celle ci|celui la|celle la|ce produit|cet article|cette startup|le meme|la meme|il|elle|ca)\b`)

// Fixed sentiment vocabularies (normalized forms)
var (
	positiveWords = []string{
		"merci", "super", "genial", "parfait", "excellent", "top",
		"bravo", "cool", "magnifique", "j aime", "jadore", "j adore", "bien",
	}
	negativeWords = []string{
		"probleme", "nul", "mauvais", "horrible", "arnaque", "lent",
		"decu", "decevant", "trop cher", "pas content", "insatisfait",
		"jamais", "cass", "defectueux",
	}
)

// Clarification is a structured follow-up question for the user
type Clarification struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// Tracker owns one session's conversational context. It is constructed
// per session and injected where needed; no process-wide state.
type Tracker struct {
	userID       string
	store        Store
	historyLimit int
	log          *logger.Logger
	ctx          *Context
}

// NewTracker creates a tracker for a user session
func NewTracker(userID string, store Store, historyLimit int, log *logger.Logger) *Tracker {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Tracker{
		userID:       userID,
		store:        store,
		historyLimit: historyLimit,
		log:          log,
	}
}

// Init resets all state and stamps the session start. Must be called (or
// Load must succeed) before any other operation.
func (t *Tracker) Init() {
	t.ctx = NewContext(t.userID)
}

// Context returns the current context, initializing lazily
func (t *Tracker) Context() *Context {
	if t.ctx == nil {
		t.Init()
	}
	return t.ctx
}

// Load restores a persisted context. Any failure (missing key, stale
// payload, store error) falls back to a fresh context: the session store
// is best-effort and never surfaces errors to the caller.
func (t *Tracker) Load(ctx context.Context) {
	raw, ok, err := t.store.Get(ctx, SessionKey(t.userID))
	if err != nil || !ok {
		if err != nil {
			t.log.Warn("failed to load conversation context", zap.String("user_id", t.userID), zap.Error(err))
		}
		t.Init()
		return
	}

	restored := &Context{}
	if err := json.Unmarshal([]byte(raw), restored); err != nil {
		t.log.Warn("failed to decode conversation context", zap.String("user_id", t.userID), zap.Error(err))
		t.Init()
		return
	}
	t.ctx = restored
}

// Save persists the full context. Write failures are logged and ignored.
func (t *Tracker) Save(ctx context.Context) {
	if t.ctx == nil {
		return
	}
	raw, err := json.Marshal(t.ctx)
	if err != nil {
		t.log.Warn("failed to encode conversation context", zap.String("user_id", t.userID), zap.Error(err))
		return
	}
	if err := t.store.Set(ctx, SessionKey(t.userID), string(raw)); err != nil {
		t.log.Warn("failed to save conversation context", zap.String("user_id", t.userID), zap.Error(err))
	}
}

// Reset discards the session state in memory and in the store
func (t *Tracker) Reset(ctx context.Context) {
	if err := t.store.Del(ctx, SessionKey(t.userID)); err != nil {
		t.log.Warn("failed to delete conversation context", zap.String("user_id", t.userID), zap.Error(err))
	}
	t.Init()
}

// AddMessage appends a turn to the history (ring buffer, oldest dropped)
// and persists the context.
func (t *Tracker) AddMessage(ctx context.Context, msg Message) {
	c := t.Context()
	c.Messages = append(c.Messages, msg)
	if len(c.Messages) > t.historyLimit {
		c.Messages = c.Messages[len(c.Messages)-t.historyLimit:]
	}
	t.Save(ctx)
}

// UpdateEntities shallow-merges the extracted entities into the session
func (t *Tracker) UpdateEntities(partial nlp.Entities) {
	c := t.Context()
	c.Entities.Merge(partial)

	// Remember the most recent explicit references for anaphora resolution
	if len(partial.ProductIDs) > 0 || len(partial.Categories) > 0 || len(partial.StartupIDs) > 0 {
		fu := &FollowUpContext{}
		if len(partial.ProductIDs) > 0 {
			fu.ProductID = partial.ProductIDs[len(partial.ProductIDs)-1]
		}
		if len(partial.Categories) > 0 {
			fu.Category = partial.Categories[len(partial.Categories)-1]
		}
		if len(partial.StartupIDs) > 0 {
			fu.StartupID = partial.StartupIDs[len(partial.StartupIDs)-1]
		}
		c.FollowUp = fu
	}

	for _, id := range partial.ProductIDs {
		if !containsString(c.ProductsDiscussed, id) {
			c.ProductsDiscussed = append(c.ProductsDiscussed, id)
		}
	}
}

// IsFollowUp reports whether a message depends on the previous turn.
// Always false with fewer than two messages of history.
func (t *Tracker) IsFollowUp(message string) bool {
	c := t.Context()
	if len(c.Messages) < 2 {
		return false
	}

	normalized := nlp.Normalize(message)
	for _, pattern := range followUpPatterns {
		if pattern.MatchString(normalized) {
			return true
		}
	}
	return false
}

// ResolveReferences copies the last-referenced entities into the result
// when the message contains an anaphoric pronoun. No multi-slot
// disambiguation: only the single most recent reference set is restored.
func (t *Tracker) ResolveReferences(message string) nlp.Entities {
	c := t.Context()
	resolved := nlp.Entities{}

	if c.FollowUp == nil {
		return resolved
	}
	if !anaphoraPattern.MatchString(nlp.Normalize(message)) {
		return resolved
	}

	if c.FollowUp.ProductID != "" {
		resolved.ProductIDs = []string{c.FollowUp.ProductID}
	}
	if c.FollowUp.Category != "" {
		resolved.Categories = []string{c.FollowUp.Category}
	}
	if c.FollowUp.StartupID != "" {
		resolved.StartupIDs = []string{c.FollowUp.StartupID}
	}
	return resolved
}

// DetectTopicChange reports whether the new intent leaves the current
// topic bucket. Unmapped buckets always count as a change.
func (t *Tracker) DetectTopicChange(newIntent intent.Intent) bool {
	c := t.Context()
	if c.UserIntent == "" {
		return false
	}
	oldTopic := TopicOf(c.UserIntent)
	newTopic := TopicOf(newIntent)
	if oldTopic == "" || newTopic == "" {
		return true
	}
	return oldTopic != newTopic
}

// UpdateIntent shifts the intent history and counts the question. The
// context is deliberately NOT cleared on topic change, so conversations
// can drift slowly; only the disambiguation flag is dropped.
func (t *Tracker) UpdateIntent(newIntent intent.Intent) {
	c := t.Context()
	changed := t.DetectTopicChange(newIntent)

	c.LastIntent = c.UserIntent
	c.UserIntent = newIntent
	c.QuestionsAsked++

	if changed {
		c.CurrentTopic = TopicOf(newIntent)
		c.PendingDisambiguation = false
		c.DisambiguationOptions = nil
	} else if c.CurrentTopic == "" {
		c.CurrentTopic = TopicOf(newIntent)
	}
}

// AnalyzeSentiment counts matches against the fixed word lists; a tie
// resolves to neutral.
func (t *Tracker) AnalyzeSentiment(message string) intent.Sentiment {
	normalized := " " + nlp.Normalize(message) + " "

	positives, negatives := 0, 0
	for _, w := range positiveWords {
		positives += countOccurrences(normalized, w)
	}
	for _, w := range negativeWords {
		negatives += countOccurrences(normalized, w)
	}

	switch {
	case positives > negatives:
		return intent.SentimentPositive
	case negatives > positives:
		return intent.SentimentNegative
	default:
		return intent.SentimentNeutral
	}
}

// Clarify returns a structured clarification question, but only under
// specific conditions; otherwise nil.
func (t *Tracker) Clarify(matchedProducts int) *Clarification {
	c := t.Context()

	if c.PendingDisambiguation && len(c.DisambiguationOptions) > 0 {
		return &Clarification{
			Question: "Lequel vous intéresse ?",
			Options:  c.DisambiguationOptions,
		}
	}

	if matchedProducts > 3 && c.Entities.SortBy == nlp.SortNone {
		return &Clarification{
			Question: "J'ai trouvé plusieurs produits. Vous préférez les moins chers, les mieux notés ou les plus populaires ?",
			Options:  []string{"moins chers", "mieux notés", "plus populaires"},
		}
	}

	if c.UserIntent == intent.IntentProductSearch && c.Entities.MaxBudget == 0 && c.Entities.MinBudget == 0 {
		return &Clarification{
			Question: "Quel est votre budget approximatif ?",
		}
	}

	return nil
}

// countOccurrences counts word-boundary matches of a (possibly multi-word)
// entry inside the space-padded normalized text. Stems listed as prefixes
// ("cass" for casse/cassee) only need a boundary on the left.
func countOccurrences(padded, word string) int {
	if word == "cass" || word == "decu" || word == "decevant" {
		return strings.Count(padded, " "+word)
	}
	return strings.Count(padded, " "+word+" ")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
