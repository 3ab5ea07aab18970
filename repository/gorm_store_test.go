package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Govind-619/CareFund/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const rowID = "3b241101-e2bb-4255-8caf-4136c566a962"

// dryRunDB renders postgres SQL without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=carefund dbname=carefund sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return db
}

func TestUpsertPaymentSQL(t *testing.T) {
	db := dryRunDB(t)
	p := &models.Payment{
		ID:             rowID,
		TransactionID:  "0f8fad5b-d9cb-469f-a165-70867728950e",
		GatewayOrderID: "order_1",
		Amount:         200000,
		Currency:       "INR",
		Status:         models.GatewayPaymentPending,
	}

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB { return upsertPayment(tx, p) })

	assert.Contains(t, sql, `INSERT INTO "payments"`)
	assert.Contains(t, sql, `ON CONFLICT ("transaction_id") DO UPDATE SET`)
	assert.Contains(t, sql, `"gateway_order_id"="excluded"."gateway_order_id"`)
	assert.Contains(t, sql, `"amount"="excluded"."amount"`)
	assert.Contains(t, sql, `"status"="excluded"."status"`)
	assert.Contains(t, sql, `WHERE "payments"."status" <> 'completed'`)
	assert.NotContains(t, sql, `"gateway_payment_id"="excluded"`)
	assert.NotContains(t, sql, `"gateway_signature"="excluded"`)
}

func TestConditionalUpdateSQL(t *testing.T) {
	db := dryRunDB(t)

	tests := []struct {
		name  string
		build func(tx *gorm.DB) *gorm.DB
		want  []string
	}{
		{
			name: "capture payment",
			build: func(tx *gorm.DB) *gorm.DB {
				return updateIf(tx, &models.Payment{}, rowID, "status", models.GatewayPaymentPending, map[string]interface{}{
					"gateway_payment_id": "pay_1",
					"status":             models.GatewayPaymentCompleted,
				})
			},
			want: []string{
				`UPDATE "payments" SET`,
				`"gateway_payment_id"='pay_1'`,
				`"status"='completed'`,
				`"updated_at"=`,
				fmt.Sprintf(`WHERE id = '%s' AND "status" = 'pending'`, rowID),
			},
		},
		{
			name: "settle donation",
			build: func(tx *gorm.DB) *gorm.DB {
				return updateIf(tx, &models.Donation{}, rowID, "payment_status", models.PaymentStatusEscrowPending, map[string]interface{}{
					"payment_status": models.PaymentStatusEscrowCompleted,
				})
			},
			want: []string{
				`UPDATE "donations" SET`,
				`"payment_status"='escrow_completed'`,
				fmt.Sprintf(`WHERE id = '%s' AND "payment_status" = 'escrow_pending'`, rowID),
			},
		},
		{
			name: "release transaction",
			build: func(tx *gorm.DB) *gorm.DB {
				return updateIf(tx, &models.Transaction{}, rowID, "status", models.TransactionStatusDelivered, map[string]interface{}{
					"status": models.TransactionStatusCompleted,
				})
			},
			want: []string{
				`UPDATE "transactions" SET`,
				`"status"='completed'`,
				fmt.Sprintf(`WHERE id = '%s' AND "status" = 'delivered'`, rowID),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(tt.build)
			for _, want := range tt.want {
				assert.Contains(t, sql, want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("insert payment: %w", gorm.ErrDuplicatedKey)), ErrConflict)

	other := fmt.Errorf("connection reset")
	assert.Equal(t, other, translate(other))
}

func TestConditionalResults(t *testing.T) {
	s := NewGormStore(dryRunDB(t))
	ctx := context.Background()

	err := s.conditional(ctx, &gorm.DB{Error: gorm.ErrDuplicatedKey}, &models.Payment{}, rowID)
	assert.ErrorIs(t, err, ErrConflict)

	err = s.conditional(ctx, &gorm.DB{RowsAffected: 1}, &models.Payment{}, rowID)
	assert.NoError(t, err)

	assert.ErrorIs(t, missedUpdate(0), ErrNotFound)
	assert.ErrorIs(t, missedUpdate(1), ErrStaleState)
}

func TestGormStoreMissedUpdateOnUnknownRow(t *testing.T) {
	s := NewGormStore(dryRunDB(t))

	// Dry runs affect and count no rows, so the update reads as a missing row.
	err := s.UpdateTransactionStatus(context.Background(), rowID, models.TransactionStatusDelivered, models.TransactionStatusCompleted, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreRejectsMalformedIDs(t *testing.T) {
	s := NewGormStore(dryRunDB(t))
	ctx := context.Background()

	_, err := s.GetDonation(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetTransaction(ctx, "42")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetActiveTransaction(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPaymentByTransaction(ctx, "txn-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActiveTransactionIndexExcludesFailed(t *testing.T) {
	sch, err := schema.Parse(&models.Transaction{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	idx, ok := sch.ParseIndexes()["idx_transactions_active_donation"]
	require.True(t, ok)
	assert.Equal(t, "UNIQUE", idx.Class)
	assert.Equal(t, "status <> 'failed'", idx.Where)
	require.Len(t, idx.Fields, 1)
	assert.Equal(t, "donation_id", idx.Fields[0].DBName)
}
