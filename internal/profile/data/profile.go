package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/profile/models"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/profile/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepo implements profile data access using GORM
type ProfileRepo struct {
	db *gorm.DB
}

// NewProfileRepo creates a new profile repository
func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// ListOrders returns all orders for a user, oldest first
func (r *ProfileRepo) ListOrders(ctx context.Context, userID string) ([]*types.Order, error) {
	var modelList []models.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*types.Order, 0, len(modelList))
	for _, m := range modelList {
		orders = append(orders, &types.Order{
			ID:          m.ID,
			UserID:      m.UserID,
			ProductID:   m.ProductID,
			ProductName: m.ProductName,
			Category:    m.Category,
			StartupID:   m.StartupID,
			City:        m.City,
			Total:       m.Total,
			Quantity:    m.Quantity,
			Status:      m.Status,
			CreatedAt:   m.CreatedAt,
		})
	}
	return orders, nil
}

// ListBDLOrders returns all BDL service orders for a user
func (r *ProfileRepo) ListBDLOrders(ctx context.Context, userID string) ([]*types.BDLOrder, error) {
	var modelList []models.BDLServiceOrder
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list bdl orders: %w", err)
	}

	orders := make([]*types.BDLOrder, 0, len(modelList))
	for _, m := range modelList {
		orders = append(orders, &types.BDLOrder{
			ID:          m.ID,
			UserID:      m.UserID,
			ServiceType: m.ServiceType,
			Amount:      m.Amount,
			Status:      m.Status,
			CreatedAt:   m.CreatedAt,
		})
	}
	return orders, nil
}

// ListFavorites returns all favorites for a user
func (r *ProfileRepo) ListFavorites(ctx context.Context, userID string) ([]*types.Favorite, error) {
	var modelList []models.Favorite
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	favorites := make([]*types.Favorite, 0, len(modelList))
	for _, m := range modelList {
		favorites = append(favorites, &types.Favorite{
			UserID:    m.UserID,
			ProductID: m.ProductID,
			Category:  m.Category,
			StartupID: m.StartupID,
			CreatedAt: m.CreatedAt,
		})
	}
	return favorites, nil
}

// ListSearches returns the search history for a user, newest first
func (r *ProfileRepo) ListSearches(ctx context.Context, userID string) ([]*types.SearchEntry, error) {
	var modelList []models.SearchEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}

	searches := make([]*types.SearchEntry, 0, len(modelList))
	for _, m := range modelList {
		searches = append(searches, &types.SearchEntry{
			UserID:    m.UserID,
			Query:     m.Query,
			CreatedAt: m.CreatedAt,
		})
	}
	return searches, nil
}

// ListInteractions returns all tracked interactions for a user
func (r *ProfileRepo) ListInteractions(ctx context.Context, userID string) ([]*types.Interaction, error) {
	var modelList []models.Interaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	interactions := make([]*types.Interaction, 0, len(modelList))
	for _, m := range modelList {
		interactions = append(interactions, &types.Interaction{
			UserID:    m.UserID,
			Type:      m.Type,
			ProductID: m.ProductID,
			Category:  m.Category,
			StartupID: m.StartupID,
			CreatedAt: m.CreatedAt,
		})
	}
	return interactions, nil
}

// CreateInteraction records a tracked user event
func (r *ProfileRepo) CreateInteraction(ctx context.Context, interaction *types.Interaction) error {
	model := &models.Interaction{
		UserID:    interaction.UserID,
		Type:      interaction.Type,
		ProductID: interaction.ProductID,
		Category:  interaction.Category,
		StartupID: interaction.StartupID,
		CreatedAt: interaction.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}
	return nil
}

// CreateSearch records a search query
func (r *ProfileRepo) CreateSearch(ctx context.Context, entry *types.SearchEntry) error {
	model := &models.SearchEntry{
		UserID:    entry.UserID,
		Query:     entry.Query,
		CreatedAt: entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create search entry: %w", err)
	}
	return nil
}

// UpsertPreferences persists derived preferences with merge semantics
func (r *ProfileRepo) UpsertPreferences(ctx context.Context, userID string, prefs *types.Preferences) error {
	doc, err := toDoc(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	model := &models.UserPreferences{
		UserID:    userID,
		Doc:       doc,
		UpdatedAt: time.Now(),
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"doc", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}

// ScanPreferences returns up to limit persisted preference documents for
// other users, most recently updated first. The cap keeps the
// collaborative-filtering scan bounded.
func (r *ProfileRepo) ScanPreferences(ctx context.Context, excludeUserID string, limit int) ([]*types.UserPreferences, error) {
	var modelList []models.UserPreferences
	if err := r.db.WithContext(ctx).
		Where("user_id <> ?", excludeUserID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to scan preferences: %w", err)
	}

	results := make([]*types.UserPreferences, 0, len(modelList))
	for _, m := range modelList {
		prefs, err := fromDoc(m.Doc)
		if err != nil {
			continue
		}
		results = append(results, &types.UserPreferences{
			UserID:      m.UserID,
			Preferences: prefs,
			UpdatedAt:   m.UpdatedAt,
		})
	}
	return results, nil
}

// ListOrderProductIDs returns the product ids another user has purchased
func (r *ProfileRepo) ListOrderProductIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID).
		Pluck("product_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list order product ids: %w", err)
	}
	return ids, nil
}

func toDoc(prefs *types.Preferences) (models.PreferenceDoc, error) {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}
	var doc models.PreferenceDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc(doc models.PreferenceDoc) (*types.Preferences, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	prefs := types.NewPreferences()
	if err := json.Unmarshal(raw, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}
