package service

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/biz"
	apperrors "github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/errors"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/response"
)

const defaultRecommendationLimit = 10

// AssistantService handles HTTP requests for the conversational assistant
type AssistantService struct {
	useCase *biz.AssistantUseCase
}

// NewAssistantService creates a new assistant service
func NewAssistantService(useCase *biz.AssistantUseCase) *AssistantService {
	return &AssistantService{useCase: useCase}
}

// RegisterRoutes registers assistant routes
func (s *AssistantService) RegisterRoutes(r *gin.RouterGroup) {
	assistant := r.Group("/assistant")
	{
		assistant.POST("/message", s.SendMessage)
		assistant.POST("/reset", s.ResetConversation)
	}
	r.GET("/recommendations", s.Recommendations)
	r.GET("/products/:id/similar", s.SimilarProducts)
}

// MessageRequest is the body of POST /assistant/message
type MessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendMessage runs one conversation turn. Guests (no user_id in the
// context) get a session keyed under the shared guest id.
func (s *AssistantService) SendMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrAssistantEmptyMessage)
		return
	}

	userID := c.GetString("user_id")
	reply, err := s.useCase.ProcessMessage(c.Request.Context(), userID, req.Message)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, reply)
}

// ResetConversation discards the caller's conversation context
func (s *AssistantService) ResetConversation(c *gin.Context) {
	userID := c.GetString("user_id")
	s.useCase.ResetConversation(c.Request.Context(), userID)
	response.Success(c, nil)
}

// Recommendations returns ranked recommendations for the caller
func (s *AssistantService) Recommendations(c *gin.Context) {
	userID := c.GetString("user_id")
	limit := parseLimit(c.Query("limit"))

	candidates := s.useCase.Recommendations(c.Request.Context(), userID, limit)
	response.Success(c, gin.H{"recommendations": candidates})
}

// SimilarProducts returns products close to the given one
func (s *AssistantService) SimilarProducts(c *gin.Context) {
	productID := c.Param("id")
	limit := parseLimit(c.Query("limit"))

	candidates, err := s.useCase.SimilarProducts(c.Request.Context(), productID, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"similar": candidates})
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 50 {
		return defaultRecommendationLimit
	}
	return limit
}
