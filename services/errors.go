package services

import (
	"fmt"

	"github.com/Govind-619/CareFund/config"
	"github.com/Govind-619/CareFund/gateway"
)

// ValidationError rejects a request before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// NotFoundError reports a missing donation, transaction, payment or package.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ForbiddenError reports an actor acting on a record that is not theirs.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// InvalidSignatureError means the gateway callback failed verification. The
// transaction has been moved to failed by the time this is returned.
type InvalidSignatureError struct {
	OrderID string
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("payment signature verification failed for order %s", e.OrderID)
}

// DuplicatePaymentError is returned when a settlement has already been
// applied. Prior is the original result and is what the caller receives.
type DuplicatePaymentError struct {
	Prior *SettlementResult
}

func (e *DuplicatePaymentError) Error() string {
	return fmt.Sprintf("payment already settled for donation %s", e.Prior.DonationID)
}

// StateInvariantError rejects a transition the ledger does not allow, such
// as releasing funds before delivery. Nothing is changed.
type StateInvariantError struct {
	Message string
	Current string
}

func (e *StateInvariantError) Error() string {
	if e.Current == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (current status: %s)", e.Message, e.Current)
}

// UpstreamGatewayError is a failed payment gateway call.
type UpstreamGatewayError = gateway.UpstreamError

// ConfigurationError is a fatal startup error.
type ConfigurationError = config.ConfigurationError
