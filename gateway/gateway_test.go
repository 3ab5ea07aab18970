package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	delay   time.Duration
	body    map[string]interface{}
	err     error
	got     map[string]interface{}
	fetched string
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.got = data
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.body, f.err
}

func (f *fakeOrders) Fetch(orderID string, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.fetched = orderID
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.body, f.err
}

func TestNewRazorpayGatewayRequiresCredentials(t *testing.T) {
	_, err := NewRazorpayGateway("", "secret", time.Second)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewRazorpayGateway("rzp_test_key", "", time.Second)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestCreateOrderSendsMinorUnits(t *testing.T) {
	fake := &fakeOrders{body: map[string]interface{}{"id": "order_123", "amount": float64(200000)}}
	g := &RazorpayGateway{orders: fake, timeout: time.Second}

	order, err := g.CreateOrder(context.Background(), OrderRequest{
		Amount:   200000,
		Currency: "INR",
		Receipt:  "rcpt_1",
		Notes:    map[string]string{"donation_id": "don-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_123", order.ID())
	assert.Equal(t, int64(200000), fake.got["amount"])
	assert.Equal(t, "INR", fake.got["currency"])
	assert.Equal(t, "rcpt_1", fake.got["receipt"])
	assert.Equal(t, map[string]interface{}{"donation_id": "don-1"}, fake.got["notes"])
}

func TestCreateOrderWrapsGatewayError(t *testing.T) {
	fake := &fakeOrders{err: errors.New("The amount must be atleast INR 1.00")}
	g := &RazorpayGateway{orders: fake}

	_, err := g.CreateOrder(context.Background(), OrderRequest{Amount: 1, Currency: "INR"})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.False(t, upstream.Timeout)
	assert.Equal(t, "The amount must be atleast INR 1.00", upstream.Body)
}

func TestCreateOrderTimesOut(t *testing.T) {
	fake := &fakeOrders{delay: 200 * time.Millisecond, body: map[string]interface{}{"id": "order_late"}}
	g := &RazorpayGateway{orders: fake, timeout: 20 * time.Millisecond}

	_, err := g.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.True(t, upstream.Timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreateOrderRejectsResponseWithoutID(t *testing.T) {
	g := &RazorpayGateway{orders: &fakeOrders{body: map[string]interface{}{"status": "created"}}}

	_, err := g.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
	var upstream *UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestFetchOrderReturnsStoredOrder(t *testing.T) {
	fake := &fakeOrders{body: map[string]interface{}{"id": "order_123", "status": "attempted"}}
	g := &RazorpayGateway{orders: fake, timeout: time.Second}

	order, err := g.FetchOrder(context.Background(), "order_123")
	require.NoError(t, err)
	assert.Equal(t, "order_123", fake.fetched)
	assert.Equal(t, "order_123", order.ID())
	assert.Equal(t, "attempted", order["status"])
}

func TestFetchOrderErrors(t *testing.T) {
	g := &RazorpayGateway{orders: &fakeOrders{err: errors.New("The id provided does not exist")}}

	_, err := g.FetchOrder(context.Background(), "order_missing")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "The id provided does not exist", upstream.Body)

	_, err = g.FetchOrder(context.Background(), "")
	assert.ErrorAs(t, err, &upstream)

	slow := &RazorpayGateway{orders: &fakeOrders{delay: 200 * time.Millisecond}, timeout: 20 * time.Millisecond}
	_, err = slow.FetchOrder(context.Background(), "order_123")
	require.ErrorAs(t, err, &upstream)
	assert.True(t, upstream.Timeout)
}
