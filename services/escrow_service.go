// Package services implements the escrow workflow: donation creation, gateway
// order creation, payment settlement and the delivery-gated release of funds.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Govind-619/CareFund/events"
	"github.com/Govind-619/CareFund/gateway"
	"github.com/Govind-619/CareFund/metrics"
	"github.com/Govind-619/CareFund/models"
	"github.com/Govind-619/CareFund/notify"
	"github.com/Govind-619/CareFund/repository"
	"github.com/Govind-619/CareFund/utils"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultCurrency = "INR"

// Options carries the optional collaborators of EscrowService. Zero values
// are replaced with no-op implementations.
type Options struct {
	Publisher events.Publisher
	Notifier  notify.Notifier
	Metrics   *metrics.EscrowMetrics
	Currency  string
}

// EscrowService sequences the escrow workflow. It holds no per-request state;
// every durable fact lives in the store.
type EscrowService struct {
	store     repository.Store
	gateway   gateway.Gateway
	verifier  *SignatureVerifier
	publisher events.Publisher
	notifier  notify.Notifier
	metrics   *metrics.EscrowMetrics
	currency  string

	newID      func() string
	invoiceTag func() string
	now        func() time.Time
}

func NewEscrowService(store repository.Store, gw gateway.Gateway, verifier *SignatureVerifier, opts Options) (*EscrowService, error) {
	tag, err := nanoid.Standard(12)
	if err != nil {
		return nil, fmt.Errorf("init invoice id generator: %w", err)
	}

	s := &EscrowService{
		store:      store,
		gateway:    gw,
		verifier:   verifier,
		publisher:  opts.Publisher,
		notifier:   opts.Notifier,
		metrics:    opts.Metrics,
		currency:   opts.Currency,
		newID:      func() string { return uuid.New().String() },
		invoiceTag: tag,
		now:        time.Now,
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.notifier == nil {
		s.notifier = notify.NopNotifier{}
	}
	if s.metrics == nil {
		s.metrics = metrics.NewEscrowMetrics(prometheus.NewRegistry())
	}
	if s.currency == "" {
		s.currency = defaultCurrency
	}
	return s, nil
}

// Ledger is the stored state of one donation. Transaction and Payment are nil
// until they exist.
type Ledger struct {
	Donation    *models.Donation    `json:"donation"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Payment     *models.Payment     `json:"payment,omitempty"`
}

// SettlementResult is the caller-facing outcome of a ledger transition.
type SettlementResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DonationID string `json:"donation_id"`
	Status     string `json:"status"`
}

// CreatePackageInput describes a new NGO package.
type CreatePackageInput struct {
	NGOID       string
	Title       string
	Description string
	Amount      float64
}

func (s *EscrowService) CreatePackage(ctx context.Context, in CreatePackageInput) (*models.Package, error) {
	if in.NGOID == "" {
		return nil, &ValidationError{Field: "ngo_id", Message: "is required"}
	}
	if in.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}
	if in.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "must be greater than 0"}
	}

	pkg := &models.Package{
		ID:          s.newID(),
		NGOID:       in.NGOID,
		Title:       utils.SanitizeString(in.Title),
		Description: utils.SanitizeString(in.Description),
		Amount:      in.Amount,
		IsActive:    true,
	}
	if err := s.store.CreatePackage(ctx, pkg); err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}
	utils.LogInfo("Created package %s for NGO %s", pkg.ID, pkg.NGOID)
	return pkg, nil
}

func (s *EscrowService) ListPackages(ctx context.Context, ngoID string, offset, limit int) ([]models.Package, int64, error) {
	return s.store.ListPackages(ctx, ngoID, offset, limit)
}

// CreateDonationInput is a donor's request to fund quantity units of a package.
type CreateDonationInput struct {
	DonorID    string
	DonorEmail string
	PackageID  string
	Quantity   int
}

// CreateDonation snapshots the package and opens the donation together with
// its escrow transaction.
func (s *EscrowService) CreateDonation(ctx context.Context, in CreateDonationInput) (*Ledger, error) {
	if in.DonorID == "" {
		return nil, &ValidationError{Field: "donor_id", Message: "is required"}
	}
	if in.PackageID == "" {
		return nil, &ValidationError{Field: "package_id", Message: "is required"}
	}
	if in.Quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}

	pkg, err := s.store.GetPackage(ctx, in.PackageID)
	if err != nil {
		return nil, s.lookupError(err, "package", in.PackageID)
	}
	if !pkg.IsActive {
		return nil, &ValidationError{Field: "package_id", Message: "is not accepting donations"}
	}

	donation := &models.Donation{
		ID:            s.newID(),
		DonorID:       in.DonorID,
		DonorEmail:    in.DonorEmail,
		NGOID:         pkg.NGOID,
		PackageID:     pkg.ID,
		PackageTitle:  pkg.Title,
		PackageAmount: pkg.Amount,
		Quantity:      in.Quantity,
		TotalAmount:   pkg.Total(in.Quantity),
		PaymentStatus: models.PaymentStatusEscrowPending,
		ServiceStatus: models.ServiceStatusPending,
		InvoiceNumber: fmt.Sprintf("INV-%s-%s", s.now().Format("20060102"), s.invoiceTag()),
	}
	txn := s.newTransaction(donation)

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.CreateDonation(ctx, donation); err != nil {
			return err
		}
		return tx.CreateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	utils.LogInfo("Created donation %s for package %s: %d x %.2f = %.2f", donation.ID, pkg.ID, donation.Quantity, donation.PackageAmount, donation.TotalAmount)
	s.metrics.DonationsCreatedTotal.Inc()
	s.publish(ctx, events.DonationCreated, donation, txn)
	return &Ledger{Donation: donation, Transaction: txn}, nil
}

// GetLedger returns the donation with its active transaction and payment.
func (s *EscrowService) GetLedger(ctx context.Context, donationID string) (*Ledger, error) {
	donation, err := s.store.GetDonation(ctx, donationID)
	if err != nil {
		return nil, s.lookupError(err, "donation", donationID)
	}
	ledger := &Ledger{Donation: donation}

	txn, err := s.store.GetActiveTransaction(ctx, donationID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ledger, nil
	case err != nil:
		return nil, err
	}
	ledger.Transaction = txn

	payment, err := s.store.GetPaymentByTransaction(ctx, txn.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		ledger.Payment = payment
	}
	return ledger, nil
}

// ReleaseViolations lists completed transactions whose donation has not been
// delivered. A healthy ledger returns none.
func (s *EscrowService) ReleaseViolations(ctx context.Context) ([]models.Transaction, error) {
	return s.store.FindReleaseViolations(ctx)
}

func (s *EscrowService) newTransaction(d *models.Donation) *models.Transaction {
	return &models.Transaction{
		ID:         s.newID(),
		DonationID: d.ID,
		NGOID:      d.NGOID,
		PackageID:  d.PackageID,
		Amount:     d.TotalAmount,
		Status:     models.TransactionStatusEscrowPending,
	}
}

func (s *EscrowService) settledResult(d *models.Donation) *SettlementResult {
	return &SettlementResult{
		Success:    true,
		Message:    "Payment verified and held in escrow",
		DonationID: d.ID,
		Status:     string(models.PaymentStatusEscrowCompleted),
	}
}

func (s *EscrowService) lookupError(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return fmt.Errorf("load %s %s: %w", resource, id, err)
}

// publish emits a committed transition. Failures are logged only.
func (s *EscrowService) publish(ctx context.Context, kind string, d *models.Donation, txn *models.Transaction) {
	event := events.EscrowEvent{
		Type:          kind,
		DonationID:    d.ID,
		PaymentStatus: string(d.PaymentStatus),
		ServiceStatus: string(d.ServiceStatus),
		OccurredAt:    s.now(),
	}
	if txn != nil {
		event.TransactionID = txn.ID
		event.TransactionStatus = string(txn.Status)
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		utils.LogError("Failed to publish %s for donation %s: %v", kind, d.ID, err)
	}
}

func (s *EscrowService) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	donation, err := s.store.GetDonation(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "donation", id)
	}
	return donation, nil
}
