package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Govind-619/CareFund/events"
	"github.com/Govind-619/CareFund/models"
	"github.com/Govind-619/CareFund/repository"
	"github.com/Govind-619/CareFund/utils"
)

// AssignVendor attaches the fulfilling vendor once funds are held.
func (s *EscrowService) AssignVendor(ctx context.Context, transactionID, vendorID string) (*models.Transaction, error) {
	if vendorID == "" {
		return nil, &ValidationError{Field: "vendor_id", Message: "is required"}
	}
	txn, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, s.lookupError(err, "transaction", transactionID)
	}
	if txn.Status != models.TransactionStatusEscrowCompleted {
		return nil, &StateInvariantError{Message: "vendor can only be assigned while funds are held in escrow", Current: string(txn.Status)}
	}

	err = s.store.AssignVendor(ctx, txn.ID, models.TransactionStatusEscrowCompleted, vendorID)
	if errors.Is(err, repository.ErrStaleState) {
		return nil, &StateInvariantError{Message: "transaction changed while assigning vendor"}
	}
	if err != nil {
		return nil, fmt.Errorf("assign vendor: %w", err)
	}
	txn.VendorID = &vendorID

	utils.LogInfo("Assigned vendor %s to transaction %s", vendorID, txn.ID)
	if donation, err := s.store.GetDonation(ctx, txn.DonationID); err == nil {
		s.publish(ctx, events.VendorAssigned, donation, txn)
	}
	return txn, nil
}

// SubmitDelivery records the assigned vendor's delivery claim and queues it
// for admin review.
func (s *EscrowService) SubmitDelivery(ctx context.Context, donationID, vendorID string) (*SettlementResult, error) {
	donation, txn, err := s.loadActive(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if txn.Status != models.TransactionStatusEscrowCompleted {
		return nil, &StateInvariantError{Message: "delivery can only be submitted while funds are held in escrow", Current: string(txn.Status)}
	}
	if txn.VendorID == nil {
		return nil, &StateInvariantError{Message: "no vendor is assigned to this donation"}
	}
	if *txn.VendorID != vendorID {
		return nil, &ForbiddenError{Message: "donation is assigned to another vendor"}
	}
	if donation.ServiceStatus != models.ServiceStatusPending {
		return nil, &StateInvariantError{Message: "delivery already submitted", Current: string(donation.ServiceStatus)}
	}

	err = s.store.UpdateDonationService(ctx, donation.ID, models.ServiceStatusPending, models.ServiceStatusAdminReview)
	if err != nil {
		return nil, s.transitionError(err, "submit delivery")
	}
	donation.ServiceStatus = models.ServiceStatusAdminReview

	utils.LogInfo("Vendor %s submitted delivery for donation %s", vendorID, donation.ID)
	s.publish(ctx, events.DeliverySubmitted, donation, txn)
	return &SettlementResult{
		Success:    true,
		Message:    "Delivery submitted for admin review",
		DonationID: donation.ID,
		Status:     string(donation.ServiceStatus),
	}, nil
}

// ConfirmDelivery is the admin's acceptance of a submitted delivery. The
// donation and its transaction move to delivered together.
func (s *EscrowService) ConfirmDelivery(ctx context.Context, donationID, notes string) (*SettlementResult, error) {
	donation, txn, err := s.loadActive(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if donation.ServiceStatus != models.ServiceStatusAdminReview {
		return nil, &StateInvariantError{Message: "delivery has not been submitted for review", Current: string(donation.ServiceStatus)}
	}
	if txn.Status != models.TransactionStatusEscrowCompleted {
		return nil, &StateInvariantError{Message: "funds are not held in escrow", Current: string(txn.Status)}
	}

	notes = utils.SanitizeString(notes)
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.UpdateDonationService(ctx, donation.ID, models.ServiceStatusAdminReview, models.ServiceStatusDelivered); err != nil {
			return err
		}
		return tx.UpdateTransactionStatus(ctx, txn.ID, models.TransactionStatusEscrowCompleted, models.TransactionStatusDelivered, notes)
	})
	if err != nil {
		return nil, s.transitionError(err, "confirm delivery")
	}
	donation.ServiceStatus = models.ServiceStatusDelivered
	txn.Status = models.TransactionStatusDelivered

	utils.LogInfo("Delivery confirmed for donation %s", donation.ID)
	s.publish(ctx, events.DeliveryConfirmed, donation, txn)
	return &SettlementResult{
		Success:    true,
		Message:    "Delivery confirmed",
		DonationID: donation.ID,
		Status:     string(donation.ServiceStatus),
	}, nil
}

// ReleasePayment completes the transaction. It is rejected unless the
// donation has been delivered; the check and the write share a store
// transaction.
func (s *EscrowService) ReleasePayment(ctx context.Context, donationID, notes string) (*SettlementResult, error) {
	var (
		donation *models.Donation
		txn      *models.Transaction
	)
	notes = utils.SanitizeString(notes)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		donation, err = tx.GetDonation(ctx, donationID)
		if err != nil {
			return s.lookupError(err, "donation", donationID)
		}
		txn, err = tx.GetActiveTransaction(ctx, donationID)
		if errors.Is(err, repository.ErrNotFound) {
			return &StateInvariantError{Message: "donation has no active transaction"}
		}
		if err != nil {
			return err
		}
		if !donation.Releasable() {
			return &StateInvariantError{Message: "funds cannot be released before delivery is confirmed", Current: string(donation.ServiceStatus)}
		}
		if txn.Status != models.TransactionStatusDelivered {
			return &StateInvariantError{Message: "transaction is not ready for release", Current: string(txn.Status)}
		}
		return tx.UpdateTransactionStatus(ctx, txn.ID, models.TransactionStatusDelivered, models.TransactionStatusCompleted, notes)
	})
	if err != nil {
		s.metrics.ReleasesTotal.WithLabelValues("rejected").Inc()
		utils.LogError("Release rejected for donation %s: %v", donationID, err)
		return nil, s.transitionError(err, "release payment")
	}
	txn.Status = models.TransactionStatusCompleted

	s.metrics.ReleasesTotal.WithLabelValues("released").Inc()
	utils.LogInfo("Released escrow for donation %s (transaction %s, %.2f)", donation.ID, txn.ID, txn.Amount)
	s.publish(ctx, events.PaymentReleased, donation, txn)
	if err := s.notifier.PaymentReleased(ctx, donation); err != nil {
		utils.LogError("Failed to send release notice for donation %s: %v", donation.ID, err)
	}
	return &SettlementResult{
		Success:    true,
		Message:    "Payment released",
		DonationID: donation.ID,
		Status:     string(txn.Status),
	}, nil
}

// FailTransaction aborts a transaction from any non-terminal state. A
// pending payment is failed with it.
func (s *EscrowService) FailTransaction(ctx context.Context, transactionID, notes string) (*SettlementResult, error) {
	txn, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, s.lookupError(err, "transaction", transactionID)
	}
	if txn.Status.IsTerminal() {
		return nil, &StateInvariantError{Message: "transaction is already closed", Current: string(txn.Status)}
	}

	from := txn.Status
	notes = utils.SanitizeString(notes)
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.UpdateTransactionStatus(ctx, txn.ID, from, models.TransactionStatusFailed, notes); err != nil {
			return err
		}
		payment, err := tx.GetPaymentByTransaction(ctx, txn.ID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil
		case err != nil:
			return err
		case payment.Status == models.GatewayPaymentPending:
			return tx.FailPayment(ctx, payment.ID)
		}
		return nil
	})
	if err != nil {
		return nil, s.transitionError(err, "fail transaction")
	}
	txn.Status = models.TransactionStatusFailed

	utils.LogInfo("Transaction %s failed from %s: %s", txn.ID, from, notes)
	if donation, err := s.store.GetDonation(ctx, txn.DonationID); err == nil {
		s.publish(ctx, events.TransactionAborted, donation, txn)
	}
	return &SettlementResult{
		Success:    true,
		Message:    "Transaction marked as failed",
		DonationID: txn.DonationID,
		Status:     string(txn.Status),
	}, nil
}

func (s *EscrowService) loadActive(ctx context.Context, donationID string) (*models.Donation, *models.Transaction, error) {
	donation, err := s.store.GetDonation(ctx, donationID)
	if err != nil {
		return nil, nil, s.lookupError(err, "donation", donationID)
	}
	txn, err := s.store.GetActiveTransaction(ctx, donationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, &StateInvariantError{Message: "donation has no active transaction"}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load transaction for donation %s: %w", donationID, err)
	}
	return donation, txn, nil
}

// transitionError keeps typed errors and turns a stale conditional update
// into a StateInvariantError.
func (s *EscrowService) transitionError(err error, op string) error {
	var (
		invariant *StateInvariantError
		notFound  *NotFoundError
	)
	switch {
	case errors.As(err, &invariant), errors.As(err, &notFound):
		return err
	case errors.Is(err, repository.ErrStaleState):
		return &StateInvariantError{Message: op + " conflicted with a concurrent change"}
	}
	return fmt.Errorf("%s: %w", op, err)
}
