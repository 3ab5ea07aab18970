package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Govind-619/CareFund/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store. The *gorm.DB must be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}

// isUUID guards lookups on uuid columns. Postgres rejects malformed input
// with an error rather than matching nothing.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// conditional turns a zero-row conditional update into ErrNotFound or
// ErrStaleState depending on whether the row exists.
func (s *GormStore) conditional(ctx context.Context, res *gorm.DB, model interface{}, id string) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := s.conn(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	return missedUpdate(count)
}

// missedUpdate classifies a conditional update that matched no row, given how
// many rows carry the id.
func missedUpdate(count int64) error {
	if count == 0 {
		return ErrNotFound
	}
	return ErrStaleState
}

// updateIf updates the row with id only while column still holds from.
func updateIf(tx *gorm.DB, model interface{}, id, column string, from interface{}, updates map[string]interface{}) *gorm.DB {
	updates["updated_at"] = time.Now()
	return tx.Model(model).
		Where("id = ?", id).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: from}).
		Updates(updates)
}

// upsertPayment inserts p, or refreshes the order fields of the payment
// already stored for the transaction unless it is completed.
func upsertPayment(tx *gorm.DB, p *models.Payment) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "transaction_id"}},
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Neq{Column: clause.Column{Table: "payments", Name: "status"}, Value: models.GatewayPaymentCompleted},
		}},
		DoUpdates: clause.AssignmentColumns([]string{"gateway_order_id", "amount", "currency", "status", "updated_at"}),
	}).Create(p)
}

func (s *GormStore) CreatePackage(ctx context.Context, pkg *models.Package) error {
	return translate(s.conn(ctx).Create(pkg).Error)
}

func (s *GormStore) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var pkg models.Package
	if err := s.conn(ctx).First(&pkg, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &pkg, nil
}

func (s *GormStore) ListPackages(ctx context.Context, ngoID string, offset, limit int) ([]models.Package, int64, error) {
	query := s.conn(ctx).Model(&models.Package{}).Where("is_active = ?", true)
	if ngoID != "" {
		query = query.Where("ngo_id = ?", ngoID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pkgs []models.Package
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&pkgs).Error; err != nil {
		return nil, 0, err
	}
	return pkgs, total, nil
}

func (s *GormStore) CreateDonation(ctx context.Context, donation *models.Donation) error {
	return translate(s.conn(ctx).Create(donation).Error)
}

func (s *GormStore) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var donation models.Donation
	if err := s.conn(ctx).First(&donation, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &donation, nil
}

func (s *GormStore) UpdateDonationPayment(ctx context.Context, id string, from, to models.PaymentStatus, gatewayPaymentID string) error {
	res := updateIf(s.conn(ctx), &models.Donation{}, id, "payment_status", from, map[string]interface{}{
		"payment_status": to,
		"transaction_id": gatewayPaymentID,
	})
	return s.conditional(ctx, res, &models.Donation{}, id)
}

func (s *GormStore) UpdateDonationService(ctx context.Context, id string, from, to models.ServiceStatus) error {
	res := updateIf(s.conn(ctx), &models.Donation{}, id, "service_status", from, map[string]interface{}{
		"service_status": to,
	})
	return s.conditional(ctx, res, &models.Donation{}, id)
}

func (s *GormStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return translate(s.conn(ctx).Create(txn).Error)
}

func (s *GormStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var txn models.Transaction
	if err := s.conn(ctx).First(&txn, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &txn, nil
}

func (s *GormStore) GetActiveTransaction(ctx context.Context, donationID string) (*models.Transaction, error) {
	if !isUUID(donationID) {
		return nil, ErrNotFound
	}
	var txn models.Transaction
	err := s.conn(ctx).
		Where("donation_id = ? AND status <> ?", donationID, models.TransactionStatusFailed).
		Order("created_at DESC").
		First(&txn).Error
	if err != nil {
		return nil, translate(err)
	}
	return &txn, nil
}

func (s *GormStore) UpdateTransactionStatus(ctx context.Context, id string, from, to models.TransactionStatus, notes string) error {
	updates := map[string]interface{}{"status": to}
	if notes != "" {
		updates["admin_notes"] = notes
	}
	res := updateIf(s.conn(ctx), &models.Transaction{}, id, "status", from, updates)
	return s.conditional(ctx, res, &models.Transaction{}, id)
}

func (s *GormStore) AssignVendor(ctx context.Context, id string, status models.TransactionStatus, vendorID string) error {
	res := updateIf(s.conn(ctx), &models.Transaction{}, id, "status", status, map[string]interface{}{
		"vendor_id": vendorID,
	})
	return s.conditional(ctx, res, &models.Transaction{}, id)
}

func (s *GormStore) FindReleaseViolations(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.conn(ctx).
		Joins("JOIN donations ON donations.id = transactions.donation_id").
		Where("transactions.status = ? AND donations.service_status <> ?",
			models.TransactionStatusCompleted, models.ServiceStatusDelivered).
		Find(&txns).Error
	return txns, err
}

func (s *GormStore) UpsertPayment(ctx context.Context, p *models.Payment) error {
	if err := upsertPayment(s.conn(ctx), p).Error; err != nil {
		return translate(err)
	}

	stored, err := s.GetPaymentByTransaction(ctx, p.TransactionID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

func (s *GormStore) GetPaymentByTransaction(ctx context.Context, transactionID string) (*models.Payment, error) {
	if !isUUID(transactionID) {
		return nil, ErrNotFound
	}
	var p models.Payment
	if err := s.conn(ctx).First(&p, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) GetPaymentByOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	var p models.Payment
	if err := s.conn(ctx).First(&p, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) CapturePayment(ctx context.Context, id, gatewayPaymentID, signature string) error {
	res := updateIf(s.conn(ctx), &models.Payment{}, id, "status", models.GatewayPaymentPending, map[string]interface{}{
		"gateway_payment_id": gatewayPaymentID,
		"gateway_signature":  signature,
		"status":             models.GatewayPaymentCompleted,
	})
	return s.conditional(ctx, res, &models.Payment{}, id)
}

func (s *GormStore) FailPayment(ctx context.Context, id string) error {
	res := updateIf(s.conn(ctx), &models.Payment{}, id, "status", models.GatewayPaymentPending, map[string]interface{}{
		"status": models.GatewayPaymentFailed,
	})
	return s.conditional(ctx, res, &models.Payment{}, id)
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}
