package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/catalog/models"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/catalog/types"

	"gorm.io/gorm"
)

// ProductRepo implements read access to the product catalog using GORM
type ProductRepo struct {
	db *gorm.DB
}

// NewProductRepo creates a new product repository
func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// GetByID retrieves a product by ID
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*types.Product, error) {
	var model models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return toDomain(&model), nil
}

// List returns the full product catalog
func (r *ProductRepo) List(ctx context.Context) ([]*types.Product, error) {
	var modelList []models.Product
	if err := r.db.WithContext(ctx).Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*types.Product, 0, len(modelList))
	for i := range modelList {
		products = append(products, toDomain(&modelList[i]))
	}
	return products, nil
}

// ListCategories returns the distinct categories in the catalog
func (r *ProductRepo) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct("category").
		Where("category <> ''").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListStartups returns all startups
func (r *ProductRepo) ListStartups(ctx context.Context) ([]*types.Startup, error) {
	var modelList []models.Startup
	if err := r.db.WithContext(ctx).Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list startups: %w", err)
	}

	startups := make([]*types.Startup, 0, len(modelList))
	for _, m := range modelList {
		startups = append(startups, &types.Startup{ID: m.ID, Name: m.Name, City: m.City})
	}
	return startups, nil
}

// toDomain converts a GORM model to the domain product
func toDomain(m *models.Product) *types.Product {
	return &types.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Price:       m.Price,
		StartupID:   m.StartupID,
		StartupName: m.StartupName,
		Stock:       m.Stock,
		Rating:      m.Rating,
		Sales:       m.Sales,
		City:        m.City,
		CreatedAt:   m.CreatedAt,
	}
}
