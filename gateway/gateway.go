// Package gateway talks to the payment gateway's order API.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// ErrMissingCredentials is returned when the key id or secret is empty.
var ErrMissingCredentials = errors.New("gateway key id and secret are required")

// OrderRequest is the body of POST /v1/orders. Amount is in minor units.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the gateway's order object, returned verbatim to the caller.
type Order map[string]interface{}

// ID returns the gateway order id, or "" when the response carries none.
func (o Order) ID() string {
	id, _ := o["id"].(string)
	return id
}

// Gateway creates and looks up orders on the payment gateway.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	FetchOrder(ctx context.Context, orderID string) (Order, error)
}

// UpstreamError reports a failed call to the gateway. Body holds the
// gateway's error description.
type UpstreamError struct {
	Body    string
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return "payment gateway timed out"
	}
	return fmt.Sprintf("payment gateway error: %s", e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// orderAPI is the subset of razorpay-go's order resource we call.
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway creates orders with razorpay-go using basic auth.
type RazorpayGateway struct {
	orders  orderAPI
	timeout time.Duration
}

// NewRazorpayGateway returns a gateway bounded by timeout per call.
func NewRazorpayGateway(keyID, keySecret string, timeout time.Duration) (*RazorpayGateway, error) {
	if keyID == "" || keySecret == "" {
		return nil, ErrMissingCredentials
	}
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{orders: client.Order, timeout: timeout}, nil
}

// CreateOrder issues the order request.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	data := map[string]interface{}{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"notes":           notes,
		"payment_capture": 1,
	}
	return g.call(ctx, func() (map[string]interface{}, error) {
		return g.orders.Create(data, nil)
	})
}

// FetchOrder returns the current state of an order created earlier.
func (g *RazorpayGateway) FetchOrder(ctx context.Context, orderID string) (Order, error) {
	if orderID == "" {
		return nil, &UpstreamError{Body: "order id is required"}
	}
	return g.call(ctx, func() (map[string]interface{}, error) {
		return g.orders.Fetch(orderID, nil, nil)
	})
}

// call runs fn bounded by the gateway timeout. razorpay-go is not context
// aware, so fn runs in its own goroutine and is abandoned once ctx is done.
func (g *RazorpayGateway) call(ctx context.Context, fn func() (map[string]interface{}, error)) (Order, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := fn()
		done <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, &UpstreamError{Timeout: true, Err: ctx.Err()}
	case r := <-done:
		if r.err != nil {
			return nil, &UpstreamError{Body: r.err.Error(), Err: r.err}
		}
		order := Order(r.body)
		if order.ID() == "" {
			return nil, &UpstreamError{Body: "order response has no id"}
		}
		return order, nil
	}
}
