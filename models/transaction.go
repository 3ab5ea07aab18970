package models

import (
	"time"
)

// TransactionStatus is the escrow state of the funds behind a donation.
type TransactionStatus string

const (
	TransactionStatusEscrowPending   TransactionStatus = "escrow_pending"
	TransactionStatusEscrowCompleted TransactionStatus = "escrow_completed"
	TransactionStatusDelivered       TransactionStatus = "delivered"
	TransactionStatusCompleted       TransactionStatus = "completed"
	TransactionStatusFailed          TransactionStatus = "failed"
)

// Transaction correlates a donation with its NGO, package and vendor.
// At most one non-failed transaction exists per donation.
type Transaction struct {
	ID         string            `gorm:"primaryKey;type:uuid" json:"id"`
	DonationID string            `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_active_donation,where:status <> 'failed'" json:"donation_id"`
	NGOID      string            `gorm:"type:uuid;not null" json:"ngo_id"`
	PackageID  string            `gorm:"type:uuid;not null" json:"package_id"`
	VendorID   *string           `gorm:"type:uuid;index" json:"vendor_id,omitempty"`
	Amount     float64           `gorm:"not null" json:"amount"`
	Status     TransactionStatus `gorm:"type:varchar(32);not null;default:'escrow_pending'" json:"status"`
	AdminNotes string            `gorm:"type:text" json:"admin_notes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
