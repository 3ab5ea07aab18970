package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/Govind-619/CareFund/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPaidDonation(t *testing.T) {
	d := &models.Donation{
		ID:            "don-1",
		PackageTitle:  "School kit",
		PackageAmount: 1000,
		Quantity:      2,
		TotalAmount:   2000,
		PaymentStatus: models.PaymentStatusEscrowCompleted,
		ServiceStatus: models.ServiceStatusPending,
		TransactionID: "pay_123",
		InvoiceNumber: "INV-20261014-abc",
		CreatedAt:     time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC),
	}

	out, err := Render(d, &models.Transaction{Status: models.TransactionStatusEscrowCompleted})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderUnpaidDonation(t *testing.T) {
	_, err := Render(&models.Donation{PaymentStatus: models.PaymentStatusEscrowPending}, nil)
	assert.ErrorIs(t, err, ErrNotPaid)
}
