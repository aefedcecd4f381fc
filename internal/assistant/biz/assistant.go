package biz

import (
	"context"
	"strings"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/conversation"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/intent"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/nlp"
	catalogtypes "github.com/nfsdasilva237/pipomarket-assistant/internal/catalog/types"
	apperrors "github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/errors"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
	profilebiz "github.com/nfsdasilva237/pipomarket-assistant/internal/profile/biz"
	profiletypes "github.com/nfsdasilva237/pipomarket-assistant/internal/profile/types"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/recommend"

	"go.uber.org/zap"
)

// CatalogRepo is the read-only product catalog the assistant consumes
type CatalogRepo interface {
	List(ctx context.Context) ([]*catalogtypes.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListStartups(ctx context.Context) ([]*catalogtypes.Startup, error)
	GetByID(ctx context.Context, id string) (*catalogtypes.Product, error)
}

// Reply is the assistant's answer to one user message
type Reply struct {
	Text            string                      `json:"text"`
	Intent          intent.Intent               `json:"intent"`
	Sentiment       intent.Sentiment            `json:"sentiment"`
	Entities        nlp.Entities                `json:"entities"`
	Recommendations []*recommend.Candidate      `json:"recommendations,omitempty"`
	Actions         []string                    `json:"actions,omitempty"`
	Suggestions     []string                    `json:"suggestions,omitempty"`
	Clarification   *conversation.Clarification `json:"clarification,omitempty"`
}

// AssistantUseCase runs the message pipeline: normalize, extract, merge
// with session state, classify, recommend, respond, persist.
type AssistantUseCase struct {
	catalog      CatalogRepo
	profiles     *profilebiz.ProfileUseCase
	engine       *recommend.Engine
	classifier   *intent.Classifier
	store        conversation.Store
	historyLimit int
	log          *logger.Logger
}

// NewAssistantUseCase creates the assistant use case
func NewAssistantUseCase(
	catalog CatalogRepo,
	profiles *profilebiz.ProfileUseCase,
	engine *recommend.Engine,
	store conversation.Store,
	historyLimit int,
	log *logger.Logger,
) *AssistantUseCase {
	return &AssistantUseCase{
		catalog:      catalog,
		profiles:     profiles,
		engine:       engine,
		classifier:   intent.NewClassifier(),
		store:        store,
		historyLimit: historyLimit,
		log:          log,
	}
}

// ProcessMessage handles one user turn. userID may be empty (guest).
// Catalog and profile failures degrade to best-effort answers; the reply
// text is never empty.
func (uc *AssistantUseCase) ProcessMessage(ctx context.Context, userID, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.New(apperrors.ErrAssistantEmptyMessage)
	}

	products, categories, startups := uc.loadCatalog(ctx)

	tracker := conversation.NewTracker(userID, uc.store, uc.historyLimit, uc.log)
	tracker.Load(ctx)

	extractor := nlp.NewExtractor(products, categories, startups)
	extracted := extractor.Extract(text)
	sentiment := tracker.AnalyzeSentiment(text)

	if tracker.IsFollowUp(text) {
		inherited := tracker.ResolveReferences(text)
		tracker.UpdateEntities(inherited)
	}
	tracker.UpdateEntities(extracted)
	effective := tracker.Context().Entities

	tag := uc.classifier.Detect(text, effective, sentiment)
	tracker.UpdateIntent(tag)
	tracker.Context().UserMood = sentiment

	tracker.AddMessage(ctx, conversation.Message{
		Text:      text,
		IsBot:     false,
		Timestamp: timeNow(),
		Intent:    tag,
		Entities:  extracted,
	})

	// A plain product search doubles as a tracked search for the profile
	if tag == intent.IntentProductSearch && userID != "" {
		if err := uc.profiles.TrackSearch(ctx, userID, text); err != nil {
			uc.log.Warn("failed to track search", zap.String("user_id", userID), zap.Error(err))
		}
	}

	reply := uc.respond(ctx, userID, tag, effective, sentiment, products, tracker)

	tracker.AddMessage(ctx, conversation.Message{
		Text:      reply.Text,
		IsBot:     true,
		Timestamp: timeNow(),
		Intent:    tag,
	})

	return reply, nil
}

// ResetConversation discards the user's session context
func (uc *AssistantUseCase) ResetConversation(ctx context.Context, userID string) {
	tracker := conversation.NewTracker(userID, uc.store, uc.historyLimit, uc.log)
	tracker.Reset(ctx)
}

// Recommendations returns personalized (or fallback) recommendations
func (uc *AssistantUseCase) Recommendations(ctx context.Context, userID string, limit int) []*recommend.Candidate {
	products, _, _ := uc.loadCatalog(ctx)
	return uc.engine.Personalized(ctx, userID, products, limit)
}

// SimilarProducts returns products close to the given one
func (uc *AssistantUseCase) SimilarProducts(ctx context.Context, productID string, limit int) ([]*recommend.Candidate, error) {
	if _, err := uc.catalog.GetByID(ctx, productID); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrProductNotFound, productID)
	}
	products, _, _ := uc.loadCatalog(ctx)
	return uc.engine.Similar(productID, products, limit), nil
}

// Profile exposes the derived profile for the stats endpoint
func (uc *AssistantUseCase) Profile(ctx context.Context, userID string) *profiletypes.Profile {
	return uc.profiles.GetProfile(ctx, userID)
}

// loadCatalog reads the catalog snapshot, degrading each part to empty
func (uc *AssistantUseCase) loadCatalog(ctx context.Context) ([]*catalogtypes.Product, []string, []*catalogtypes.Startup) {
	products, err := uc.catalog.List(ctx)
	if err != nil {
		uc.log.Warn("failed to load products", zap.Error(err))
	}
	categories, err := uc.catalog.ListCategories(ctx)
	if err != nil {
		uc.log.Warn("failed to load categories", zap.Error(err))
	}
	startups, err := uc.catalog.ListStartups(ctx)
	if err != nil {
		uc.log.Warn("failed to load startups", zap.Error(err))
	}
	return products, categories, startups
}
