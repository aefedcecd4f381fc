package biz

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/ambassador/types"
	apperrors "github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/errors"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
)

// Invite codes are AMB- followed by exactly five uppercase alphanumerics.
// The format gate runs before any store access, so malformed input never
// reaches the database.
var inviteCodePattern = regexp.MustCompile(`^AMB-[A-Z0-9]{5}$`)

// AmbassadorRepo defines the repository interface for ambassador data
type AmbassadorRepo interface {
	GetInviteCode(ctx context.Context, code string) (*types.InviteCode, error)
	IncrementUses(ctx context.Context, code string) error
	ListEarnings(ctx context.Context, ambassadorID string) ([]*types.Earning, error)
	CreateEarning(ctx context.Context, earning *types.Earning) error
}

// AmbassadorUseCase validates invite codes and aggregates earnings
type AmbassadorUseCase struct {
	repo AmbassadorRepo
	log  *logger.Logger
}

// NewAmbassadorUseCase creates a new ambassador use case
func NewAmbassadorUseCase(repo AmbassadorRepo, log *logger.Logger) *AmbassadorUseCase {
	return &AmbassadorUseCase{repo: repo, log: log}
}

// ValidateCodeFormat reports whether a code matches the invite format
func ValidateCodeFormat(code string) bool {
	return inviteCodePattern.MatchString(code)
}

// VerifyCode checks an invite code and returns its record. Format errors,
// unknown codes and deactivated codes map to distinct business errors.
// A successful verification bumps the use counter.
func (uc *AmbassadorUseCase) VerifyCode(ctx context.Context, code string) (*types.InviteCode, error) {
	if !ValidateCodeFormat(code) {
		return nil, apperrors.New(apperrors.ErrInviteCodeInvalid, code)
	}

	invite, err := uc.repo.GetInviteCode(ctx, code)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if invite == nil {
		return nil, apperrors.New(apperrors.ErrInviteCodeNotFound, code)
	}
	if !invite.Active {
		return nil, apperrors.New(apperrors.ErrInviteCodeInactive, code)
	}

	if err := uc.repo.IncrementUses(ctx, code); err != nil {
		uc.log.Warn("failed to count invite code use", zap.String("code", code), zap.Error(err))
	}
	invite.Uses++
	return invite, nil
}

// Earnings aggregates an ambassador's commissions into a summary
func (uc *AmbassadorUseCase) Earnings(ctx context.Context, ambassadorID string) (*types.EarningsSummary, error) {
	earnings, err := uc.repo.ListEarnings(ctx, ambassadorID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	summary := &types.EarningsSummary{AmbassadorID: ambassadorID}
	for _, e := range earnings {
		summary.Total += e.Amount
		summary.Count++
		switch e.Status {
		case types.EarningPaid:
			summary.Paid += e.Amount
		default:
			summary.Pending += e.Amount
		}
	}
	return summary, nil
}

// RecordReferral credits a referral commission to the code's owner
func (uc *AmbassadorUseCase) RecordReferral(ctx context.Context, code string, amount float64) error {
	invite, err := uc.VerifyCode(ctx, code)
	if err != nil {
		return err
	}

	earning := &types.Earning{
		ID:           uuid.NewString(),
		AmbassadorID: invite.AmbassadorID,
		Amount:       amount,
		Source:       types.SourceReferral,
		Status:       types.EarningPending,
		CreatedAt:    time.Now(),
	}
	return uc.repo.CreateEarning(ctx, earning)
}
