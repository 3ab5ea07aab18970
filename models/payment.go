package models

import (
	"time"
)

// GatewayPaymentStatus is the state of one gateway order attempt.
type GatewayPaymentStatus string

const (
	GatewayPaymentPending   GatewayPaymentStatus = "pending"
	GatewayPaymentCompleted GatewayPaymentStatus = "completed"
	GatewayPaymentFailed    GatewayPaymentStatus = "failed"
)

// Payment is the gateway order attempt for a transaction. TransactionID is
// unique: order creation upserts on it so retries never add a second row.
type Payment struct {
	ID               string               `gorm:"primaryKey;type:uuid" json:"id"`
	TransactionID    string               `gorm:"type:uuid;not null;uniqueIndex" json:"transaction_id"`
	GatewayOrderID   string               `gorm:"index" json:"razorpay_order_id"`
	GatewayPaymentID *string              `gorm:"uniqueIndex" json:"razorpay_payment_id,omitempty"`
	GatewaySignature *string              `json:"-"`
	Amount           int64                `gorm:"not null" json:"amount"` // minor units
	Currency         string               `gorm:"type:varchar(3);not null" json:"currency"`
	Status           GatewayPaymentStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}
