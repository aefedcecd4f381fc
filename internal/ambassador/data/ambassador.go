package data

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/ambassador/models"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/ambassador/types"
)

// AmbassadorRepo implements invite-code and earnings access using GORM
type AmbassadorRepo struct {
	db *gorm.DB
}

// NewAmbassadorRepo creates a new ambassador repository
func NewAmbassadorRepo(db *gorm.DB) *AmbassadorRepo {
	return &AmbassadorRepo{db: db}
}

// GetInviteCode retrieves an invite code. Returns (nil, nil) when the
// code does not exist.
func (r *AmbassadorRepo) GetInviteCode(ctx context.Context, code string) (*types.InviteCode, error) {
	var model models.InviteCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invite code: %w", err)
	}
	return &types.InviteCode{
		Code:         model.Code,
		AmbassadorID: model.AmbassadorID,
		Active:       model.Active,
		Uses:         model.Uses,
		CreatedAt:    model.CreatedAt,
	}, nil
}

// IncrementUses bumps the use counter for a verified code
func (r *AmbassadorRepo) IncrementUses(ctx context.Context, code string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.InviteCode{}).
		Where("code = ?", code).
		UpdateColumn("uses", gorm.Expr("uses + 1")).Error; err != nil {
		return fmt.Errorf("failed to increment code uses: %w", err)
	}
	return nil
}

// ListEarnings returns all earnings for an ambassador, newest first
func (r *AmbassadorRepo) ListEarnings(ctx context.Context, ambassadorID string) ([]*types.Earning, error) {
	var modelList []models.Earning
	if err := r.db.WithContext(ctx).
		Where("ambassador_id = ?", ambassadorID).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list earnings: %w", err)
	}

	earnings := make([]*types.Earning, 0, len(modelList))
	for _, m := range modelList {
		earnings = append(earnings, &types.Earning{
			ID:           m.ID,
			AmbassadorID: m.AmbassadorID,
			Amount:       m.Amount,
			Source:       m.Source,
			Status:       m.Status,
			CreatedAt:    m.CreatedAt,
		})
	}
	return earnings, nil
}

// CreateEarning records a commission
func (r *AmbassadorRepo) CreateEarning(ctx context.Context, earning *types.Earning) error {
	model := models.Earning{
		ID:           earning.ID,
		AmbassadorID: earning.AmbassadorID,
		Amount:       earning.Amount,
		Source:       earning.Source,
		Status:       earning.Status,
		CreatedAt:    earning.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to create earning: %w", err)
	}
	return nil
}
