package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Govind-619/CareFund/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDonation(t *testing.T, s *MemoryStore) (*models.Donation, *models.Transaction) {
	t.Helper()
	ctx := context.Background()
	d := &models.Donation{
		ID:            "don-1",
		DonorID:       "donor-1",
		NGOID:         "ngo-1",
		PackageID:     "pkg-1",
		PackageAmount: 1000,
		Quantity:      2,
		TotalAmount:   2000,
		PaymentStatus: models.PaymentStatusEscrowPending,
		ServiceStatus: models.ServiceStatusPending,
		InvoiceNumber: "INV-1",
	}
	require.NoError(t, s.CreateDonation(ctx, d))
	txn := &models.Transaction{
		ID:         "txn-1",
		DonationID: d.ID,
		NGOID:      d.NGOID,
		PackageID:  d.PackageID,
		Amount:     d.TotalAmount,
		Status:     models.TransactionStatusEscrowPending,
	}
	require.NoError(t, s.CreateTransaction(ctx, txn))
	return d, txn
}

func TestMemoryStoreConditionalUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, txn := seedDonation(t, s)

	err := s.UpdateTransactionStatus(ctx, txn.ID, models.TransactionStatusDelivered, models.TransactionStatusCompleted, "")
	assert.ErrorIs(t, err, ErrStaleState)

	require.NoError(t, s.UpdateTransactionStatus(ctx, txn.ID, models.TransactionStatusEscrowPending, models.TransactionStatusEscrowCompleted, "paid"))
	got, err := s.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusEscrowCompleted, got.Status)
	assert.Equal(t, "paid", got.AdminNotes)

	assert.ErrorIs(t, s.UpdateTransactionStatus(ctx, "missing", models.TransactionStatusEscrowPending, models.TransactionStatusFailed, ""), ErrNotFound)
}

func TestMemoryStoreOneActiveTransactionPerDonation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	d, txn := seedDonation(t, s)

	dup := &models.Transaction{ID: "txn-2", DonationID: d.ID, Status: models.TransactionStatusEscrowPending}
	assert.ErrorIs(t, s.CreateTransaction(ctx, dup), ErrConflict)

	require.NoError(t, s.UpdateTransactionStatus(ctx, txn.ID, models.TransactionStatusEscrowPending, models.TransactionStatusFailed, ""))
	require.NoError(t, s.CreateTransaction(ctx, dup))

	active, err := s.GetActiveTransaction(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "txn-2", active.ID)
}

func TestMemoryStoreUpsertPaymentKeepsOneRow(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, txn := seedDonation(t, s)

	first := &models.Payment{ID: "pay-1", TransactionID: txn.ID, Amount: 200000, Currency: "INR", Status: models.GatewayPaymentPending}
	require.NoError(t, s.UpsertPayment(ctx, first))

	retry := &models.Payment{ID: "pay-2", TransactionID: txn.ID, GatewayOrderID: "order_A", Amount: 200000, Currency: "INR", Status: models.GatewayPaymentPending}
	require.NoError(t, s.UpsertPayment(ctx, retry))

	assert.Equal(t, "pay-1", retry.ID)
	assert.Equal(t, "order_A", retry.GatewayOrderID)
	assert.Equal(t, 1, s.PaymentCount())
}

func TestMemoryStoreUpsertDoesNotOverwriteCompletedPayment(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, txn := seedDonation(t, s)

	p := &models.Payment{ID: "pay-1", TransactionID: txn.ID, GatewayOrderID: "order_A", Amount: 200000, Currency: "INR", Status: models.GatewayPaymentPending}
	require.NoError(t, s.UpsertPayment(ctx, p))
	require.NoError(t, s.CapturePayment(ctx, p.ID, "pay_X", "sig"))

	again := &models.Payment{ID: "pay-2", TransactionID: txn.ID, GatewayOrderID: "order_B", Amount: 1, Currency: "INR", Status: models.GatewayPaymentPending}
	require.NoError(t, s.UpsertPayment(ctx, again))
	assert.Equal(t, models.GatewayPaymentCompleted, again.Status)
	assert.Equal(t, "order_A", again.GatewayOrderID)
}

func TestMemoryStoreCaptureRejectsDuplicatePaymentID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, txn := seedDonation(t, s)

	p := &models.Payment{ID: "pay-1", TransactionID: txn.ID, Status: models.GatewayPaymentPending}
	require.NoError(t, s.UpsertPayment(ctx, p))
	require.NoError(t, s.CapturePayment(ctx, p.ID, "pay_X", "sig"))

	assert.ErrorIs(t, s.CapturePayment(ctx, p.ID, "pay_Y", "sig"), ErrStaleState)

	other := &models.Payment{ID: "pay-2", TransactionID: "txn-other", Status: models.GatewayPaymentPending}
	require.NoError(t, s.UpsertPayment(ctx, other))
	assert.ErrorIs(t, s.CapturePayment(ctx, other.ID, "pay_X", "sig"), ErrConflict)
}

func TestMemoryStoreWithinTxRollsBack(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	d, txn := seedDonation(t, s)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx Store) error {
		if err := tx.UpdateDonationPayment(ctx, d.ID, models.PaymentStatusEscrowPending, models.PaymentStatusEscrowCompleted, "pay_X"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusEscrowPending, got.PaymentStatus)

	err = s.WithinTx(ctx, func(tx Store) error {
		if err := tx.UpdateDonationPayment(ctx, d.ID, models.PaymentStatusEscrowPending, models.PaymentStatusEscrowCompleted, "pay_X"); err != nil {
			return err
		}
		return tx.UpdateTransactionStatus(ctx, txn.ID, models.TransactionStatusEscrowPending, models.TransactionStatusEscrowCompleted, "")
	})
	require.NoError(t, err)

	got, err = s.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusEscrowCompleted, got.PaymentStatus)
	assert.Equal(t, "pay_X", got.TransactionID)
}

func TestMemoryStoreFindReleaseViolations(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, txn := seedDonation(t, s)

	violations, err := s.FindReleaseViolations(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)

	// Bypass the workflow to plant a bad row.
	for _, step := range []models.TransactionStatus{models.TransactionStatusEscrowCompleted, models.TransactionStatusDelivered, models.TransactionStatusCompleted} {
		cur, _ := s.GetTransaction(ctx, txn.ID)
		require.NoError(t, s.UpdateTransactionStatus(ctx, txn.ID, cur.Status, step, ""))
	}

	violations, err = s.FindReleaseViolations(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, txn.ID, violations[0].ID)
}

func TestMemoryStoreListPackages(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.CreatePackage(ctx, &models.Package{ID: id, NGOID: "ngo-1", Title: id, Amount: 10, IsActive: true}))
	}
	require.NoError(t, s.CreatePackage(ctx, &models.Package{ID: "d", NGOID: "ngo-2", Title: "d", Amount: 10, IsActive: true}))

	pkgs, total, err := s.ListPackages(ctx, "ngo-1", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, pkgs, 2)

	pkgs, _, err = s.ListPackages(ctx, "ngo-1", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}
