package service

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/errors"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/response"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/profile/biz"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/profile/types"
)

// ProfileService handles HTTP requests for user profiles and tracking
type ProfileService struct {
	useCase *biz.ProfileUseCase
}

// NewProfileService creates a new profile service
func NewProfileService(useCase *biz.ProfileUseCase) *ProfileService {
	return &ProfileService{useCase: useCase}
}

// RegisterRoutes registers profile routes
func (s *ProfileService) RegisterRoutes(r *gin.RouterGroup) {
	profile := r.Group("/profile")
	{
		profile.GET("", s.GetProfile)
		profile.POST("/interactions", s.TrackInteraction)
		profile.POST("/searches", s.TrackSearch)
	}
}

// InteractionRequest is the body of POST /profile/interactions. The
// timestamp accepts the formats mobile clients actually send.
type InteractionRequest struct {
	Type      string         `json:"type" binding:"required"`
	ProductID string         `json:"product_id"`
	Category  string         `json:"category"`
	StartupID string         `json:"startup_id"`
	Timestamp types.FlexTime `json:"timestamp"`
}

// SearchRequest is the body of POST /profile/searches
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// GetProfile returns the caller's derived profile
func (s *ProfileService) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	profile := s.useCase.GetProfile(c.Request.Context(), userID)
	if profile == nil {
		response.ErrorWithCode(c, apperrors.ErrProfileNotFound, userID)
		return
	}
	response.Success(c, profile)
}

// TrackInteraction records a user event
func (s *ProfileService) TrackInteraction(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	var req InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrProfileInvalidInput, err.Error())
		return
	}

	interaction := &types.Interaction{
		UserID:    userID,
		Type:      req.Type,
		ProductID: req.ProductID,
		Category:  req.Category,
		StartupID: req.StartupID,
		CreatedAt: req.Timestamp.Time,
	}
	if err := s.useCase.TrackInteraction(c.Request.Context(), interaction); err != nil {
		response.ErrorWithCode(c, apperrors.ErrProfileTrackingFailed, err.Error())
		return
	}
	response.Success(c, nil)
}

// TrackSearch records a search query
func (s *ProfileService) TrackSearch(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrProfileInvalidInput, err.Error())
		return
	}

	if err := s.useCase.TrackSearch(c.Request.Context(), userID, req.Query); err != nil {
		response.ErrorWithCode(c, apperrors.ErrProfileTrackingFailed, err.Error())
		return
	}
	response.Success(c, nil)
}
