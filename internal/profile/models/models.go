package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Order is the GORM model for the orders table
type Order struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID   string    `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255)" json:"product_name"`
	Category    string    `gorm:"type:varchar(100)" json:"category"`
	StartupID   string    `gorm:"type:uuid" json:"startup_id"`
	City        string    `gorm:"type:varchar(100)" json:"city"`
	Total       float64   `gorm:"not null" json:"total"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	Status      string    `gorm:"type:varchar(30);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// BDLServiceOrder is the GORM model for BDL Studio service orders
type BDLServiceOrder struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ServiceType string    `gorm:"type:varchar(100)" json:"service_type"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Status      string    `gorm:"type:varchar(30);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name
func (BDLServiceOrder) TableName() string {
	return "bdl_service_orders"
}

// Favorite is the GORM model for bookmarked products
type Favorite struct {
	UserID    string    `gorm:"primaryKey;type:uuid" json:"user_id"`
	ProductID string    `gorm:"primaryKey;type:uuid" json:"product_id"`
	Category  string    `gorm:"type:varchar(100)" json:"category"`
	StartupID string    `gorm:"type:uuid" json:"startup_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name
func (Favorite) TableName() string {
	return "favorites"
}

// SearchEntry is the GORM model for the search history table
type SearchEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Query     string    `gorm:"type:varchar(500);not null" json:"query"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name
func (SearchEntry) TableName() string {
	return "search_entries"
}

// Interaction is the GORM model for tracked user events
type Interaction struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string    `gorm:"type:varchar(30);not null" json:"type"`
	ProductID string    `gorm:"type:uuid" json:"product_id"`
	Category  string    `gorm:"type:varchar(100)" json:"category"`
	StartupID string    `gorm:"type:uuid" json:"startup_id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name
func (Interaction) TableName() string {
	return "user_interactions"
}

// PreferenceDoc is a JSONB document holding derived preference weights
type PreferenceDoc map[string]interface{}

// Scan implements sql.Scanner interface
func (d *PreferenceDoc) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, d)
}

// Value implements driver.Valuer interface
func (d PreferenceDoc) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// UserPreferences is the GORM model for persisted derived preferences
type UserPreferences struct {
	UserID    string        `gorm:"primaryKey;type:uuid" json:"user_id"`
	Doc       PreferenceDoc `gorm:"type:jsonb;not null" json:"doc"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name
func (UserPreferences) TableName() string {
	return "user_preferences"
}

// AutoMigrate runs database migrations for the profile domain
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Order{},
		&BDLServiceOrder{},
		&Favorite{},
		&SearchEntry{},
		&Interaction{},
		&UserPreferences{},
	)
}
