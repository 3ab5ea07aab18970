// Package repository persists the escrow ledger: packages, donations,
// transactions and payments.
package repository

import (
	"context"
	"errors"

	"github.com/Govind-619/CareFund/models"
)

var (
	// ErrNotFound is returned by point lookups that match no row.
	ErrNotFound = errors.New("record not found")
	// ErrStaleState is returned by a conditional update whose expected prior
	// status no longer matches the stored row.
	ErrStaleState = errors.New("record is not in the expected state")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record conflicts with an existing row")
)

// Store is the relational store behind the escrow workflow. Status updates
// are conditional on the prior status; WithinTx applies every write made
// through the store passed to fn, or none of them.
type Store interface {
	CreatePackage(ctx context.Context, pkg *models.Package) error
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	ListPackages(ctx context.Context, ngoID string, offset, limit int) ([]models.Package, int64, error)

	CreateDonation(ctx context.Context, donation *models.Donation) error
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
	UpdateDonationPayment(ctx context.Context, id string, from, to models.PaymentStatus, gatewayPaymentID string) error
	UpdateDonationService(ctx context.Context, id string, from, to models.ServiceStatus) error

	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	// GetActiveTransaction returns the donation's non-failed transaction.
	GetActiveTransaction(ctx context.Context, donationID string) (*models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, from, to models.TransactionStatus, notes string) error
	AssignVendor(ctx context.Context, id string, status models.TransactionStatus, vendorID string) error
	// FindReleaseViolations lists completed transactions whose donation is
	// not delivered. It is expected to return nothing.
	FindReleaseViolations(ctx context.Context) ([]models.Transaction, error)

	// UpsertPayment inserts the payment or, when a payment already exists for
	// the same transaction and is not completed, overwrites its order fields.
	// p is refreshed with the stored row.
	UpsertPayment(ctx context.Context, p *models.Payment) error
	GetPaymentByTransaction(ctx context.Context, transactionID string) (*models.Payment, error)
	GetPaymentByOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	CapturePayment(ctx context.Context, id, gatewayPaymentID, signature string) error
	FailPayment(ctx context.Context, id string) error

	WithinTx(ctx context.Context, fn func(Store) error) error
}
