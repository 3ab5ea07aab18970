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

// PaymentEvent is the gateway's client-side payment callback.
type PaymentEvent struct {
	OrderID   string
	PaymentID string
	Signature string
	// DonorID, when set, must own the donation being settled.
	DonorID string
}

// VerifyAndSettle checks the callback signature and moves the donation and
// its transaction into escrow_completed together. A callback for a payment
// that is already settled returns a DuplicatePaymentError holding the
// original result and changes nothing.
func (s *EscrowService) VerifyAndSettle(ctx context.Context, ev PaymentEvent) (*SettlementResult, error) {
	switch {
	case ev.OrderID == "":
		return nil, &ValidationError{Field: "razorpay_order_id", Message: "is required"}
	case ev.PaymentID == "":
		return nil, &ValidationError{Field: "razorpay_payment_id", Message: "is required"}
	case ev.Signature == "":
		return nil, &ValidationError{Field: "razorpay_signature", Message: "is required"}
	}

	payment, err := s.store.GetPaymentByOrderID(ctx, ev.OrderID)
	if err != nil {
		return nil, s.lookupError(err, "payment", ev.OrderID)
	}
	txn, err := s.store.GetTransaction(ctx, payment.TransactionID)
	if err != nil {
		return nil, s.lookupError(err, "transaction", payment.TransactionID)
	}
	donation, err := s.store.GetDonation(ctx, txn.DonationID)
	if err != nil {
		return nil, s.lookupError(err, "donation", txn.DonationID)
	}
	if ev.DonorID != "" && donation.DonorID != ev.DonorID {
		return nil, &ForbiddenError{Message: "donation belongs to another donor"}
	}

	if payment.Status == models.GatewayPaymentCompleted || donation.PaymentStatus == models.PaymentStatusEscrowCompleted {
		return nil, s.duplicate(donation, payment, ev.PaymentID)
	}
	if payment.Status == models.GatewayPaymentFailed || txn.Status == models.TransactionStatusFailed {
		return nil, &StateInvariantError{Message: "payment attempt has failed, create a new order", Current: string(txn.Status)}
	}
	if txn.Status != models.TransactionStatusEscrowPending {
		return nil, &StateInvariantError{Message: "transaction is not awaiting payment", Current: string(txn.Status)}
	}

	if !s.verifier.Verify(ev.OrderID, ev.PaymentID, ev.Signature) {
		return nil, s.rejectSignature(ctx, ev, payment, txn, donation)
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.CapturePayment(ctx, payment.ID, ev.PaymentID, ev.Signature); err != nil {
			return err
		}
		if err := tx.UpdateDonationPayment(ctx, donation.ID, models.PaymentStatusEscrowPending, models.PaymentStatusEscrowCompleted, ev.PaymentID); err != nil {
			return err
		}
		return tx.UpdateTransactionStatus(ctx, txn.ID, models.TransactionStatusEscrowPending, models.TransactionStatusEscrowCompleted, "")
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) || errors.Is(err, repository.ErrConflict) {
			// A concurrent callback won the race.
			return nil, s.lostRace(ctx, donation.ID, ev.PaymentID, err)
		}
		s.metrics.SettlementsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("settle payment %s: %w", ev.PaymentID, err)
	}

	donation.PaymentStatus = models.PaymentStatusEscrowCompleted
	donation.TransactionID = ev.PaymentID
	txn.Status = models.TransactionStatusEscrowCompleted

	s.metrics.SettlementsTotal.WithLabelValues("settled").Inc()
	utils.LogInfo("Settled payment %s for donation %s, funds held in escrow", ev.PaymentID, donation.ID)
	s.publish(ctx, events.PaymentSettled, donation, txn)
	if err := s.notifier.PaymentHeld(ctx, donation); err != nil {
		utils.LogError("Failed to send escrow receipt for donation %s: %v", donation.ID, err)
	}
	return s.settledResult(donation), nil
}

func (s *EscrowService) duplicate(d *models.Donation, p *models.Payment, paymentID string) error {
	if p.GatewayPaymentID != nil && *p.GatewayPaymentID != paymentID {
		utils.LogInfo("Settlement for donation %s retried with payment %s, already settled by %s", d.ID, paymentID, *p.GatewayPaymentID)
	} else {
		utils.LogInfo("Duplicate settlement callback for donation %s (payment %s)", d.ID, paymentID)
	}
	s.metrics.SettlementsTotal.WithLabelValues("duplicate").Inc()
	return &DuplicatePaymentError{Prior: s.settledResult(d)}
}

// lostRace resolves a settlement rejected by the store. If the donation is
// now settled the callback is a duplicate.
func (s *EscrowService) lostRace(ctx context.Context, donationID, paymentID string, cause error) error {
	current, err := s.store.GetDonation(ctx, donationID)
	if err != nil {
		return fmt.Errorf("reload donation %s after %v: %w", donationID, cause, err)
	}
	if current.PaymentStatus == models.PaymentStatusEscrowCompleted {
		s.metrics.SettlementsTotal.WithLabelValues("duplicate").Inc()
		utils.LogInfo("Concurrent settlement of donation %s already applied (payment %s)", donationID, paymentID)
		return &DuplicatePaymentError{Prior: s.settledResult(current)}
	}
	s.metrics.SettlementsTotal.WithLabelValues("error").Inc()
	return &StateInvariantError{Message: "payment could not be settled", Current: string(current.PaymentStatus)}
}

// rejectSignature fails the payment attempt and returns the signature error.
func (s *EscrowService) rejectSignature(ctx context.Context, ev PaymentEvent, p *models.Payment, txn *models.Transaction, d *models.Donation) error {
	s.metrics.SettlementsTotal.WithLabelValues("invalid_signature").Inc()
	utils.LogError("Invalid payment signature for order %s (payment %s, donation %s)", ev.OrderID, ev.PaymentID, d.ID)

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.FailPayment(ctx, p.ID); err != nil {
			return err
		}
		return tx.UpdateTransactionStatus(ctx, txn.ID, models.TransactionStatusEscrowPending, models.TransactionStatusFailed, "payment signature verification failed")
	})
	if err != nil {
		utils.LogError("Failed to mark transaction %s failed: %v", txn.ID, err)
		return &InvalidSignatureError{OrderID: ev.OrderID}
	}

	txn.Status = models.TransactionStatusFailed
	s.publish(ctx, events.PaymentFailed, d, txn)
	return &InvalidSignatureError{OrderID: ev.OrderID}
}
