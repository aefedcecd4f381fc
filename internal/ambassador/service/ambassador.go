package service

import (
	"github.com/gin-gonic/gin"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/ambassador/biz"
	apperrors "github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/errors"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/response"
)

// AmbassadorService handles HTTP requests for the ambassador program
type AmbassadorService struct {
	useCase *biz.AmbassadorUseCase
}

// NewAmbassadorService creates a new ambassador service
func NewAmbassadorService(useCase *biz.AmbassadorUseCase) *AmbassadorService {
	return &AmbassadorService{useCase: useCase}
}

// RegisterRoutes registers ambassador routes
func (s *AmbassadorService) RegisterRoutes(r *gin.RouterGroup) {
	ambassador := r.Group("/ambassador")
	{
		ambassador.POST("/verify", s.VerifyCode)
		ambassador.GET("/earnings", s.Earnings)
	}
}

// VerifyCodeRequest is the body of POST /ambassador/verify
type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyCode validates an invite code
func (s *AmbassadorService) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInviteCodeInvalid)
		return
	}

	invite, err := s.useCase.VerifyCode(c.Request.Context(), req.Code)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, invite)
}

// Earnings returns the caller's commission summary
func (s *AmbassadorService) Earnings(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	summary, err := s.useCase.Earnings(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, summary)
}
