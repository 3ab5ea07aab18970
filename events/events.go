// Package events publishes escrow ledger transitions to the event stream.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	DonationCreated    = "donation.created"
	OrderCreated       = "payment.order_created"
	PaymentSettled     = "payment.settled"
	PaymentFailed      = "payment.failed"
	VendorAssigned     = "vendor.assigned"
	DeliverySubmitted  = "delivery.submitted"
	DeliveryConfirmed  = "delivery.confirmed"
	PaymentReleased    = "payment.released"
	TransactionAborted = "transaction.failed"
)

// EscrowEvent is one committed ledger transition.
type EscrowEvent struct {
	Type              string    `json:"type"`
	DonationID        string    `json:"donation_id"`
	TransactionID     string    `json:"transaction_id,omitempty"`
	PaymentStatus     string    `json:"payment_status,omitempty"`
	ServiceStatus     string    `json:"service_status,omitempty"`
	TransactionStatus string    `json:"transaction_status,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Publisher delivers escrow events. Events are published after the ledger
// write commits, so a failed publish never rolls anything back.
type Publisher interface {
	Publish(ctx context.Context, event EscrowEvent) error
	Close() error
}

// KafkaPublisher writes JSON events keyed by donation id.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, event EscrowEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.DonationID),
		Value: v,
		Time:  event.OccurredAt,
	})
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, EscrowEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// MemoryPublisher keeps published events in order.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []EscrowEvent
}

func (m *MemoryPublisher) Publish(_ context.Context, event EscrowEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryPublisher) Close() error { return nil }

// Types returns the type of every published event.
func (m *MemoryPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}
