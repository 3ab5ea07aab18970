package models

import (
	"time"
)

// Package is a donation package an NGO publishes, e.g. "School kit for one child".
type Package struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	NGOID       string    `gorm:"type:uuid;not null;index" json:"ngo_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Amount      float64   `gorm:"not null" json:"amount"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
