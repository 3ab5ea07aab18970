package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Govind-619/CareFund/events"
	"github.com/Govind-619/CareFund/gateway"
	"github.com/Govind-619/CareFund/models"
	"github.com/Govind-619/CareFund/repository"
	"github.com/Govind-619/CareFund/utils"
)

// CreateOrderInput asks for a gateway order for a donation. DonorID, when
// set, must own the donation.
type CreateOrderInput struct {
	DonationID string
	DonorID    string
	Amount     float64
	Currency   string
}

// OrderResult is the gateway order, verbatim, plus the local pending payment.
type OrderResult struct {
	Order      gateway.Order   `json:"order"`
	Payment    *models.Payment `json:"payment"`
	DonationID string          `json:"donation_id"`
}

// CreateOrder creates a gateway order for a donation still awaiting payment.
// Retries are safe: the payment row is upserted on its transaction, and once
// it carries a gateway order that order is returned instead of a new one.
func (s *EscrowService) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderResult, error) {
	if in.DonationID == "" {
		return nil, &ValidationError{Field: "donation_id", Message: "is required"}
	}
	if in.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "must be greater than 0"}
	}
	currency := in.Currency
	if currency == "" {
		currency = s.currency
	}

	donation, err := s.store.GetDonation(ctx, in.DonationID)
	if err != nil {
		return nil, s.lookupError(err, "donation", in.DonationID)
	}
	if in.DonorID != "" && donation.DonorID != in.DonorID {
		return nil, &ForbiddenError{Message: "donation belongs to another donor"}
	}
	if donation.PaymentStatus != models.PaymentStatusEscrowPending {
		utils.LogInfo("Order requested for already paid donation %s", donation.ID)
		return nil, &DuplicatePaymentError{Prior: s.settledResult(donation)}
	}

	minor := ToMinorUnits(in.Amount)
	if minor != ToMinorUnits(donation.TotalAmount) {
		return nil, &ValidationError{Field: "amount", Message: fmt.Sprintf("must equal the donation total %.2f", donation.TotalAmount)}
	}

	txn, err := s.activeTransaction(ctx, donation)
	if err != nil {
		return nil, err
	}
	if txn.Status != models.TransactionStatusEscrowPending {
		return nil, &StateInvariantError{Message: "transaction is not awaiting payment", Current: string(txn.Status)}
	}

	payment, err := s.pendingPayment(ctx, txn, minor, currency)
	if err != nil {
		return nil, err
	}
	if payment.GatewayOrderID != "" {
		return s.reopenOrder(ctx, donation, payment, minor, currency)
	}

	start := s.now()
	order, err := s.gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  donation.InvoiceNumber,
		Notes: map[string]string{
			"donation_id":    donation.ID,
			"transaction_id": txn.ID,
			"package":        donation.PackageTitle,
		},
	})
	s.metrics.GatewayDuration.Observe(s.now().Sub(start).Seconds())
	if err != nil {
		s.metrics.OrdersCreatedTotal.WithLabelValues("failed").Inc()
		utils.LogError("Gateway order creation failed for donation %s: %v", donation.ID, err)
		return nil, err
	}

	payment.GatewayOrderID = order.ID()
	payment.Amount = minor
	payment.Currency = currency
	payment.Status = models.GatewayPaymentPending
	if err := s.store.UpsertPayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("record gateway order: %w", err)
	}

	s.metrics.OrdersCreatedTotal.WithLabelValues("created").Inc()
	utils.LogInfo("Created gateway order %s for donation %s (%d %s)", payment.GatewayOrderID, donation.ID, minor, currency)
	s.publish(ctx, events.OrderCreated, donation, txn)
	return &OrderResult{Order: order, Payment: payment, DonationID: donation.ID}, nil
}

// reopenOrder returns the order already recorded on payment. A transaction
// has at most one gateway order, and its callback must resolve to payment.
func (s *EscrowService) reopenOrder(ctx context.Context, d *models.Donation, payment *models.Payment, minor int64, currency string) (*OrderResult, error) {
	if payment.Currency != currency {
		return nil, &ValidationError{Field: "currency", Message: fmt.Sprintf("must match the open order currency %s", payment.Currency)}
	}
	if payment.Amount != minor {
		return nil, &StateInvariantError{Message: fmt.Sprintf("open order %s is for a different amount", payment.GatewayOrderID)}
	}

	start := s.now()
	order, err := s.gateway.FetchOrder(ctx, payment.GatewayOrderID)
	s.metrics.GatewayDuration.Observe(s.now().Sub(start).Seconds())
	if err != nil {
		s.metrics.OrdersCreatedTotal.WithLabelValues("failed").Inc()
		utils.LogError("Gateway order fetch failed for donation %s order %s: %v", d.ID, payment.GatewayOrderID, err)
		return nil, err
	}

	s.metrics.OrdersCreatedTotal.WithLabelValues("reused").Inc()
	utils.LogInfo("Reusing gateway order %s for donation %s", payment.GatewayOrderID, d.ID)
	return &OrderResult{Order: order, Payment: payment, DonationID: d.ID}, nil
}

// activeTransaction returns the donation's live transaction, opening a new
// one when every earlier attempt has failed.
func (s *EscrowService) activeTransaction(ctx context.Context, d *models.Donation) (*models.Transaction, error) {
	txn, err := s.store.GetActiveTransaction(ctx, d.ID)
	if err == nil {
		return txn, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load transaction for donation %s: %w", d.ID, err)
	}

	txn = s.newTransaction(d)
	err = s.store.CreateTransaction(ctx, txn)
	if errors.Is(err, repository.ErrConflict) {
		// Another request opened it first.
		return s.store.GetActiveTransaction(ctx, d.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("open transaction for donation %s: %w", d.ID, err)
	}
	utils.LogInfo("Opened transaction %s for donation %s", txn.ID, d.ID)
	return txn, nil
}

// pendingPayment makes sure a payment row exists for txn before the gateway
// is called, so a timed out call leaves a pending row behind.
func (s *EscrowService) pendingPayment(ctx context.Context, txn *models.Transaction, minor int64, currency string) (*models.Payment, error) {
	existing, err := s.store.GetPaymentByTransaction(ctx, txn.ID)
	switch {
	case err == nil:
		if existing.Status == models.GatewayPaymentCompleted {
			return nil, &StateInvariantError{Message: "payment already captured", Current: string(existing.Status)}
		}
		return existing, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("load payment for transaction %s: %w", txn.ID, err)
	}

	payment := &models.Payment{
		ID:            s.newID(),
		TransactionID: txn.ID,
		Amount:        minor,
		Currency:      currency,
		Status:        models.GatewayPaymentPending,
	}
	if err := s.store.UpsertPayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("record pending payment: %w", err)
	}
	return payment, nil
}
