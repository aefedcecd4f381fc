package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is the GORM model for the products table
type Product struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(100);index" json:"category"`
	Price       float64   `gorm:"not null" json:"price"`
	StartupID   string    `gorm:"type:uuid;index" json:"startup_id"`
	StartupName string    `gorm:"type:varchar(255)" json:"startup_name"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	Rating      float64   `gorm:"not null;default:0" json:"rating"`
	Sales       int       `gorm:"not null;default:0" json:"sales"`
	City        string    `gorm:"type:varchar(100)" json:"city"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// Startup is the GORM model for the startups table
type Startup struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	City      string    `gorm:"type:varchar(100)" json:"city"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name
func (Startup) TableName() string {
	return "startups"
}

// AutoMigrate runs database migrations for the catalog domain
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Product{},
		&Startup{},
	)
}
