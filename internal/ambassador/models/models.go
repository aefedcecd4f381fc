package models

import (
	"time"

	"gorm.io/gorm"
)

// InviteCode is the GORM model for the invite_codes table
type InviteCode struct {
	Code         string    `gorm:"primaryKey;type:varchar(20)" json:"code"`
	AmbassadorID string    `gorm:"type:uuid;not null;index" json:"ambassador_id"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	Uses         int       `gorm:"not null;default:0" json:"uses"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name
func (InviteCode) TableName() string {
	return "invite_codes"
}

// Earning is the GORM model for the ambassador_earnings table
type Earning struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	AmbassadorID string    `gorm:"type:uuid;not null;index" json:"ambassador_id"`
	Amount       float64   `gorm:"not null" json:"amount"`
	Source       string    `gorm:"type:varchar(50);not null" json:"source"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name
func (Earning) TableName() string {
	return "ambassador_earnings"
}

// AutoMigrate runs database migrations for the ambassador domain
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&InviteCode{},
		&Earning{},
	)
}
