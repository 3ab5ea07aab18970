package models

import (
	"time"
)

// PaymentStatus is the donor-facing payment state of a donation.
type PaymentStatus string

const (
	PaymentStatusEscrowPending   PaymentStatus = "escrow_pending"
	PaymentStatusEscrowCompleted PaymentStatus = "escrow_completed"
)

// ServiceStatus tracks fulfilment of the donated package.
type ServiceStatus string

const (
	ServiceStatusPending     ServiceStatus = "pending"
	ServiceStatusAdminReview ServiceStatus = "admin_review"
	ServiceStatusDelivered   ServiceStatus = "delivered"
)

// Donation is a donor's commitment to a package. Rows are never deleted.
type Donation struct {
	ID            string        `gorm:"primaryKey;type:uuid" json:"id"`
	DonorID       string        `gorm:"type:uuid;not null;index" json:"donor_id"`
	DonorEmail    string        `json:"donor_email"`
	NGOID         string        `gorm:"type:uuid;not null;index" json:"ngo_id"`
	PackageID     string        `gorm:"type:uuid;not null;index" json:"package_id"`
	PackageTitle  string        `json:"package_title"`
	PackageAmount float64       `gorm:"not null" json:"package_amount"`
	Quantity      int           `gorm:"not null" json:"quantity"`
	TotalAmount   float64       `gorm:"not null" json:"total_amount"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(32);not null;default:'escrow_pending'" json:"payment_status"`
	ServiceStatus ServiceStatus `gorm:"type:varchar(32);not null;default:'pending'" json:"service_status"`
	TransactionID string        `json:"transaction_id,omitempty"` // gateway payment id once captured
	InvoiceNumber string        `gorm:"uniqueIndex" json:"invoice_number"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
