package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Govind-619/CareFund/events"
	"github.com/Govind-619/CareFund/gateway"
	"github.com/Govind-619/CareFund/metrics"
	"github.com/Govind-619/CareFund/models"
	"github.com/Govind-619/CareFund/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret"

type fakeGateway struct {
	mu       sync.Mutex
	err      error
	fetchErr error
	calls    []gateway.OrderRequest
	fetches  []string
	orders   map[string]gateway.Order
}

func (f *fakeGateway) CreateOrder(_ context.Context, req gateway.OrderRequest) (gateway.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	order := gateway.Order{
		"id":       fmt.Sprintf("order_%d", len(f.calls)),
		"entity":   "order",
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"status":   "created",
	}
	if f.orders == nil {
		f.orders = make(map[string]gateway.Order)
	}
	f.orders[order.ID()] = order
	return order, nil
}

func (f *fakeGateway) FetchOrder(_ context.Context, orderID string) (gateway.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, orderID)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, &gateway.UpstreamError{Body: "The id provided does not exist"}
	}
	return order, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	held     []string
	released []string
}

func (f *fakeNotifier) PaymentHeld(_ context.Context, d *models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = append(f.held, d.ID)
	return nil
}

func (f *fakeNotifier) PaymentReleased(_ context.Context, d *models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, d.ID)
	return nil
}

type fixture struct {
	svc      *EscrowService
	store    *repository.MemoryStore
	gateway  *fakeGateway
	events   *events.MemoryPublisher
	notifier *fakeNotifier
	metrics  *metrics.EscrowMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    repository.NewMemoryStore(),
		gateway:  &fakeGateway{},
		events:   &events.MemoryPublisher{},
		notifier: &fakeNotifier{},
		metrics:  metrics.NewEscrowMetrics(prometheus.NewRegistry()),
	}
	svc, err := NewEscrowService(f.store, f.gateway, NewSignatureVerifier(testSecret), Options{
		Publisher: f.events,
		Notifier:  f.notifier,
		Metrics:   f.metrics,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

// donate creates a package priced at amount and a donation of qty units.
func (f *fixture) donate(t *testing.T, amount float64, qty int) *Ledger {
	t.Helper()
	ctx := context.Background()
	pkg, err := f.svc.CreatePackage(ctx, CreatePackageInput{NGOID: "ngo-1", Title: "School kit", Amount: amount})
	require.NoError(t, err)
	ledger, err := f.svc.CreateDonation(ctx, CreateDonationInput{
		DonorID:    "donor-1",
		DonorEmail: "donor@example.com",
		PackageID:  pkg.ID,
		Quantity:   qty,
	})
	require.NoError(t, err)
	return ledger
}

func (f *fixture) order(t *testing.T, l *Ledger) *OrderResult {
	t.Helper()
	res, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		DonationID: l.Donation.ID,
		DonorID:    l.Donation.DonorID,
		Amount:     l.Donation.TotalAmount,
	})
	require.NoError(t, err)
	return res
}

func callback(res *OrderResult, paymentID string) PaymentEvent {
	orderID := res.Order.ID()
	return PaymentEvent{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: Sign(orderID, paymentID, testSecret),
	}
}

func (f *fixture) ledger(t *testing.T, donationID string) *Ledger {
	t.Helper()
	l, err := f.svc.GetLedger(context.Background(), donationID)
	require.NoError(t, err)
	return l
}

func (f *fixture) assertNoReleaseViolations(t *testing.T) {
	t.Helper()
	violations, err := f.svc.ReleaseViolations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestNewEscrowServiceDefaults(t *testing.T) {
	svc, err := NewEscrowService(repository.NewMemoryStore(), &fakeGateway{}, NewSignatureVerifier(testSecret), Options{})
	require.NoError(t, err)
	assert.Equal(t, "INR", svc.currency)
	assert.NotNil(t, svc.publisher)
	assert.NotNil(t, svc.notifier)
	assert.NotNil(t, svc.metrics)
}

func TestCreatePackageValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    CreatePackageInput
		field string
	}{
		{"missing ngo", CreatePackageInput{Title: "Kit", Amount: 10}, "ngo_id"},
		{"missing title", CreatePackageInput{NGOID: "ngo-1", Amount: 10}, "title"},
		{"zero amount", CreatePackageInput{NGOID: "ngo-1", Title: "Kit"}, "amount"},
		{"negative amount", CreatePackageInput{NGOID: "ngo-1", Title: "Kit", Amount: -5}, "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreatePackage(ctx, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCreatePackageSanitizesText(t *testing.T) {
	f := newFixture(t)
	pkg, err := f.svc.CreatePackage(context.Background(), CreatePackageInput{
		NGOID:  "ngo-1",
		Title:  "<b>Meals</b>",
		Amount: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, "Meals", pkg.Title)
	assert.True(t, pkg.IsActive)

	pkgs, total, err := f.svc.ListPackages(context.Background(), "ngo-1", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, pkg.ID, pkgs[0].ID)
}

func TestCreateDonationComputesTotal(t *testing.T) {
	f := newFixture(t)
	ledger := f.donate(t, 1000, 2)

	d := ledger.Donation
	assert.Equal(t, 2000.0, d.TotalAmount)
	assert.Equal(t, models.PaymentStatusEscrowPending, d.PaymentStatus)
	assert.Equal(t, models.ServiceStatusPending, d.ServiceStatus)
	assert.Regexp(t, `^INV-\d{8}-[A-Za-z0-9_-]{12}$`, d.InvoiceNumber)
	assert.Equal(t, "School kit", d.PackageTitle)

	require.NotNil(t, ledger.Transaction)
	assert.Equal(t, models.TransactionStatusEscrowPending, ledger.Transaction.Status)
	assert.Equal(t, 2000.0, ledger.Transaction.Amount)

	stored := f.ledger(t, d.ID)
	assert.Equal(t, ledger.Transaction.ID, stored.Transaction.ID)
	assert.Nil(t, stored.Payment)
	assert.Equal(t, []string{events.DonationCreated}, f.events.Types())
}

func TestCreateDonationRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pkg, err := f.svc.CreatePackage(ctx, CreatePackageInput{NGOID: "ngo-1", Title: "Kit", Amount: 10})
	require.NoError(t, err)

	_, err = f.svc.CreateDonation(ctx, CreateDonationInput{DonorID: "donor-1", PackageID: pkg.ID})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)

	_, err = f.svc.CreateDonation(ctx, CreateDonationInput{DonorID: "donor-1", PackageID: "missing", Quantity: 1})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "package", nf.Resource)
}

func TestGetDonationNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetDonation(context.Background(), "missing")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = f.svc.GetLedger(context.Background(), "missing")
	assert.ErrorAs(t, err, &nf)
}
