package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/intent"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/nlp"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
)

type memStore struct {
	values  map[string]string
	failing bool
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	if s.failing {
		return "", false, errors.New("store down")
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	if s.failing {
		return errors.New("store down")
	}
	s.values[key] = value
	return nil
}

func (s *memStore) Del(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "console"})
	require.NoError(t, err)
	return log
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "conversation_context_u42", SessionKey("u42"))
	assert.Equal(t, "conversation_context_guest", SessionKey(""))
}

func TestTrackerSaveLoadRoundTrip(t *testing.T) {
	store := newMemStore()
	log := testLogger(t)
	ctx := context.Background()

	tr := NewTracker("u1", store, 50, log)
	tr.Init()
	tr.UpdateEntities(nlp.Entities{Categories: []string{"mode"}, MaxBudget: 10000})
	tr.UpdateIntent(intent.IntentProductSearch)
	tr.AddMessage(ctx, Message{Text: "je cherche une robe", Timestamp: time.Now()})

	restored := NewTracker("u1", store, 50, log)
	restored.Load(ctx)

	assert.Equal(t, tr.Context().ConversationID, restored.Context().ConversationID)
	assert.Equal(t, []string{"mode"}, restored.Context().Entities.Categories)
	assert.Equal(t, 10000.0, restored.Context().Entities.MaxBudget)
	assert.Equal(t, intent.IntentProductSearch, restored.Context().UserIntent)
	require.Len(t, restored.Context().Messages, 1)
}

func TestTrackerLoadFallsBackOnFailure(t *testing.T) {
	store := newMemStore()
	store.failing = true
	tr := NewTracker("u1", store, 50, testLogger(t))

	tr.Load(context.Background())

	assert.NotNil(t, tr.Context())
	assert.Empty(t, tr.Context().Messages)
}

func TestTrackerLoadFallsBackOnCorruptPayload(t *testing.T) {
	store := newMemStore()
	store.values[SessionKey("u1")] = "{not json"
	tr := NewTracker("u1", store, 50, testLogger(t))

	tr.Load(context.Background())

	assert.Equal(t, "u1", tr.Context().UserID)
}

func TestTrackerHistoryRingBuffer(t *testing.T) {
	tr := NewTracker("u1", newMemStore(), 5, testLogger(t))
	tr.Init()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		tr.AddMessage(ctx, Message{Text: fmt.Sprintf("message %d", i)})
	}

	msgs := tr.Context().Messages
	require.Len(t, msgs, 5)
	assert.Equal(t, "message 3", msgs[0].Text)
	assert.Equal(t, "message 7", msgs[4].Text)
}

func TestIsFollowUp(t *testing.T) {
	tr := NewTracker("u1", newMemStore(), 50, testLogger(t))
	tr.Init()
	ctx := context.Background()

	// Under two messages of history nothing counts as a follow-up
	assert.False(t, tr.IsFollowUp("et en bleu ?"))

	tr.AddMessage(ctx, Message{Text: "je cherche une robe"})
	tr.AddMessage(ctx, Message{Text: "voici ce que j'ai trouvé", IsBot: true})

	assert.True(t, tr.IsFollowUp("et en bleu ?"))
	assert.True(t, tr.IsFollowUp("celui-ci me plaît"))
	assert.True(t, tr.IsFollowUp("oui"))
	assert.False(t, tr.IsFollowUp("je cherche un ordinateur"))
}

func TestResolveReferences(t *testing.T) {
	tr := NewTracker("u1", newMemStore(), 50, testLogger(t))
	tr.Init()

	tr.UpdateEntities(nlp.Entities{
		ProductIDs: []string{"p1", "p2"},
		Categories: []string{"mode"},
	})

	resolved := tr.ResolveReferences("celui-ci est parfait")
	assert.Equal(t, []string{"p2"}, resolved.ProductIDs, "the most recent reference wins")
	assert.Equal(t, []string{"mode"}, resolved.Categories)

	// No anaphoric pronoun, nothing restored
	assert.Empty(t, tr.ResolveReferences("je cherche des chaussures").ProductIDs)
}

func TestUpdateEntitiesTracksDiscussedProducts(t *testing.T) {
	tr := NewTracker("u1", newMemStore(), 50, testLogger(t))
	tr.Init()

	tr.UpdateEntities(nlp.Entities{ProductIDs: []string{"p1"}})
	tr.UpdateEntities(nlp.Entities{ProductIDs: []string{"p2", "p1"}})

	assert.Equal(t, []string{"p1", "p2"}, tr.Context().ProductsDiscussed)
}

func TestTopicChangeAndIntentHistory(t *testing.T) {
	tr := NewTracker("u1", newMemStore(), 50, testLogger(t))
	tr.Init()

	assert.False(t, tr.DetectTopicChange(intent.IntentProductSearch), "first intent is never a change")
	tr.UpdateIntent(intent.IntentProductSearch)

	assert.False(t, tr.DetectTopicChange(intent.IntentPriceInquiry), "same product bucket")
	tr.UpdateIntent(intent.IntentPriceInquiry)

	assert.True(t, tr.DetectTopicChange(intent.IntentOrderLookup), "product to order")
	tr.UpdateIntent(intent.IntentOrderLookup)

	assert.Equal(t, intent.IntentPriceInquiry, tr.Context().LastIntent)
	assert.Equal(t, intent.IntentOrderLookup, tr.Context().UserIntent)
	assert.Equal(t, 3, tr.Context().QuestionsAsked)
}

func TestAnalyzeSentiment(t *testing.T) {
	tr := NewTracker("u1", newMemStore(), 50, testLogger(t))
	tr.Init()

	tests := []struct {
		message string
		want    intent.Sentiment
	}{
		{"merci c'est génial !", intent.SentimentPositive},
		{"c'est nul, je suis déçu", intent.SentimentNegative},
		{"je cherche une robe", intent.SentimentNeutral},
		{"super mais le produit est cassé", intent.SentimentNeutral},
		{"le produit est arrivé cassé, quelle arnaque", intent.SentimentNegative},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.AnalyzeSentiment(tt.message), "message: %s", tt.message)
	}
}

func TestClarify(t *testing.T) {
	tr := NewTracker("u1", newMemStore(), 50, testLogger(t))
	tr.Init()

	// Pending disambiguation takes precedence
	tr.Context().PendingDisambiguation = true
	tr.Context().DisambiguationOptions = []string{"Robe A", "Robe B"}
	c := tr.Clarify(0)
	require.NotNil(t, c)
	assert.Equal(t, []string{"Robe A", "Robe B"}, c.Options)

	// Too many matches without a sort preference
	tr.Init()
	c = tr.Clarify(5)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Options)

	// Product search without a budget
	tr.Init()
	tr.UpdateIntent(intent.IntentProductSearch)
	c = tr.Clarify(2)
	require.NotNil(t, c)
	assert.Empty(t, c.Options)

	// Budget known, few matches, no disambiguation: nothing to ask
	tr.Init()
	tr.UpdateIntent(intent.IntentProductSearch)
	tr.UpdateEntities(nlp.Entities{MaxBudget: 5000})
	assert.Nil(t, tr.Clarify(2))
}
