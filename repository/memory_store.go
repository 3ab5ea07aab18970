package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Govind-619/CareFund/models"
)

type memData struct {
	packages     map[string]models.Package
	donations    map[string]models.Donation
	transactions map[string]models.Transaction
	payments     map[string]models.Payment
}

func newMemData() *memData {
	return &memData{
		packages:     map[string]models.Package{},
		donations:    map[string]models.Donation{},
		transactions: map[string]models.Transaction{},
		payments:     map[string]models.Payment{},
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.packages {
		c.packages[k] = v
	}
	for k, v := range d.donations {
		c.donations[k] = v
	}
	for k, v := range d.transactions {
		c.transactions[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	return c
}

// MemoryStore is an in-process Store with the same uniqueness and
// conditional-update rules as the Postgres schema. Transactions are
// serialized: WithinTx holds the store lock for the duration of fn.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, data: newMemData(), now: time.Now}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) CreatePackage(ctx context.Context, pkg *models.Package) error {
	defer s.lock()()
	if _, ok := s.data.packages[pkg.ID]; ok {
		return ErrConflict
	}
	pkg.CreatedAt, pkg.UpdatedAt = s.now(), s.now()
	s.data.packages[pkg.ID] = *pkg
	return nil
}

func (s *MemoryStore) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	defer s.lock()()
	pkg, ok := s.data.packages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &pkg, nil
}

func (s *MemoryStore) ListPackages(ctx context.Context, ngoID string, offset, limit int) ([]models.Package, int64, error) {
	defer s.lock()()
	var pkgs []models.Package
	for _, pkg := range s.data.packages {
		if !pkg.IsActive || (ngoID != "" && pkg.NGOID != ngoID) {
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool {
		if pkgs[i].CreatedAt.Equal(pkgs[j].CreatedAt) {
			return pkgs[i].ID < pkgs[j].ID
		}
		return pkgs[i].CreatedAt.After(pkgs[j].CreatedAt)
	})

	total := int64(len(pkgs))
	if offset >= len(pkgs) {
		return []models.Package{}, total, nil
	}
	end := offset + limit
	if end > len(pkgs) {
		end = len(pkgs)
	}
	return pkgs[offset:end], total, nil
}

func (s *MemoryStore) CreateDonation(ctx context.Context, donation *models.Donation) error {
	defer s.lock()()
	if _, ok := s.data.donations[donation.ID]; ok {
		return ErrConflict
	}
	for _, d := range s.data.donations {
		if d.InvoiceNumber == donation.InvoiceNumber {
			return ErrConflict
		}
	}
	donation.CreatedAt, donation.UpdatedAt = s.now(), s.now()
	s.data.donations[donation.ID] = *donation
	return nil
}

func (s *MemoryStore) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	defer s.lock()()
	d, ok := s.data.donations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) UpdateDonationPayment(ctx context.Context, id string, from, to models.PaymentStatus, gatewayPaymentID string) error {
	defer s.lock()()
	d, ok := s.data.donations[id]
	if !ok {
		return ErrNotFound
	}
	if d.PaymentStatus != from {
		return ErrStaleState
	}
	d.PaymentStatus = to
	d.TransactionID = gatewayPaymentID
	d.UpdatedAt = s.now()
	s.data.donations[id] = d
	return nil
}

func (s *MemoryStore) UpdateDonationService(ctx context.Context, id string, from, to models.ServiceStatus) error {
	defer s.lock()()
	d, ok := s.data.donations[id]
	if !ok {
		return ErrNotFound
	}
	if d.ServiceStatus != from {
		return ErrStaleState
	}
	d.ServiceStatus = to
	d.UpdatedAt = s.now()
	s.data.donations[id] = d
	return nil
}

func (s *MemoryStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	defer s.lock()()
	if _, ok := s.data.transactions[txn.ID]; ok {
		return ErrConflict
	}
	if txn.Status != models.TransactionStatusFailed {
		for _, t := range s.data.transactions {
			if t.DonationID == txn.DonationID && t.Status != models.TransactionStatusFailed {
				return ErrConflict
			}
		}
	}
	txn.CreatedAt, txn.UpdatedAt = s.now(), s.now()
	s.data.transactions[txn.ID] = *txn
	return nil
}

func (s *MemoryStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	defer s.lock()()
	t, ok := s.data.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) GetActiveTransaction(ctx context.Context, donationID string) (*models.Transaction, error) {
	defer s.lock()()
	for _, t := range s.data.transactions {
		if t.DonationID == donationID && t.Status != models.TransactionStatusFailed {
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateTransactionStatus(ctx context.Context, id string, from, to models.TransactionStatus, notes string) error {
	defer s.lock()()
	t, ok := s.data.transactions[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status != from {
		return ErrStaleState
	}
	t.Status = to
	if notes != "" {
		t.AdminNotes = notes
	}
	t.UpdatedAt = s.now()
	s.data.transactions[id] = t
	return nil
}

func (s *MemoryStore) AssignVendor(ctx context.Context, id string, status models.TransactionStatus, vendorID string) error {
	defer s.lock()()
	t, ok := s.data.transactions[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status != status {
		return ErrStaleState
	}
	t.VendorID = &vendorID
	t.UpdatedAt = s.now()
	s.data.transactions[id] = t
	return nil
}

func (s *MemoryStore) FindReleaseViolations(ctx context.Context) ([]models.Transaction, error) {
	defer s.lock()()
	var out []models.Transaction
	for _, t := range s.data.transactions {
		if t.Status != models.TransactionStatusCompleted {
			continue
		}
		if d, ok := s.data.donations[t.DonationID]; !ok || d.ServiceStatus != models.ServiceStatusDelivered {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpsertPayment(ctx context.Context, p *models.Payment) error {
	defer s.lock()()
	for id, existing := range s.data.payments {
		if existing.TransactionID != p.TransactionID {
			continue
		}
		if existing.Status != models.GatewayPaymentCompleted {
			existing.GatewayOrderID = p.GatewayOrderID
			existing.Amount = p.Amount
			existing.Currency = p.Currency
			existing.Status = p.Status
			existing.UpdatedAt = s.now()
			s.data.payments[id] = existing
		}
		*p = existing
		return nil
	}
	if _, ok := s.data.payments[p.ID]; ok {
		return ErrConflict
	}
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	s.data.payments[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetPaymentByTransaction(ctx context.Context, transactionID string) (*models.Payment, error) {
	defer s.lock()()
	for _, p := range s.data.payments {
		if p.TransactionID == transactionID {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetPaymentByOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	defer s.lock()()
	if gatewayOrderID == "" {
		return nil, ErrNotFound
	}
	for _, p := range s.data.payments {
		if p.GatewayOrderID == gatewayOrderID {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CapturePayment(ctx context.Context, id, gatewayPaymentID, signature string) error {
	defer s.lock()()
	p, ok := s.data.payments[id]
	if !ok {
		return ErrNotFound
	}
	for otherID, other := range s.data.payments {
		if otherID != id && other.GatewayPaymentID != nil && *other.GatewayPaymentID == gatewayPaymentID {
			return ErrConflict
		}
	}
	if p.Status != models.GatewayPaymentPending {
		return ErrStaleState
	}
	p.GatewayPaymentID = &gatewayPaymentID
	p.GatewaySignature = &signature
	p.Status = models.GatewayPaymentCompleted
	p.UpdatedAt = s.now()
	s.data.payments[id] = p
	return nil
}

func (s *MemoryStore) FailPayment(ctx context.Context, id string) error {
	defer s.lock()()
	p, ok := s.data.payments[id]
	if !ok {
		return ErrNotFound
	}
	if p.Status != models.GatewayPaymentPending {
		return ErrStaleState
	}
	p.Status = models.GatewayPaymentFailed
	p.UpdatedAt = s.now()
	s.data.payments[id] = p
	return nil
}

// WithinTx runs fn against a copy of the data and publishes the copy only if
// fn returns nil.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	defer s.lock()()
	tx := &MemoryStore{mu: s.mu, data: s.data.clone(), inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

// PaymentCount returns the number of stored payment rows.
func (s *MemoryStore) PaymentCount() int {
	defer s.lock()()
	return len(s.data.payments)
}
