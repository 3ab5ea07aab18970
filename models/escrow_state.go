package models

import "math"

var paymentFlow = map[PaymentStatus]PaymentStatus{
	PaymentStatusEscrowPending: PaymentStatusEscrowCompleted,
}

var serviceFlow = map[ServiceStatus]ServiceStatus{
	ServiceStatusPending:     ServiceStatusAdminReview,
	ServiceStatusAdminReview: ServiceStatusDelivered,
}

var transactionFlow = map[TransactionStatus]TransactionStatus{
	TransactionStatusEscrowPending:   TransactionStatusEscrowCompleted,
	TransactionStatusEscrowCompleted: TransactionStatusDelivered,
	TransactionStatusDelivered:       TransactionStatusCompleted,
}

// CanAdvance reports whether the payment status may move to next.
func (s PaymentStatus) CanAdvance(next PaymentStatus) bool {
	to, ok := paymentFlow[s]
	return ok && to == next
}

// CanAdvance reports whether the service status may move to next.
func (s ServiceStatus) CanAdvance(next ServiceStatus) bool {
	to, ok := serviceFlow[s]
	return ok && to == next
}

// IsTerminal reports whether no further transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// CanAdvance reports whether the transaction may move to next. failed is
// reachable from every non-terminal state; nothing moves backwards.
func (s TransactionStatus) CanAdvance(next TransactionStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == TransactionStatusFailed {
		return true
	}
	to, ok := transactionFlow[s]
	return ok && to == next
}

// Total is the donation amount for quantity units of the package, rounded to
// the paisa.
func (p *Package) Total(quantity int) float64 {
	return math.Round(p.Amount*float64(quantity)*100) / 100
}

// Releasable reports whether escrowed funds for the donation may be paid out.
func (d *Donation) Releasable() bool {
	return d.PaymentStatus == PaymentStatusEscrowCompleted && d.ServiceStatus == ServiceStatusDelivered
}
