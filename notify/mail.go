// Package notify sends donors receipts for escrow milestones.
package notify

import (
	"context"
	"fmt"

	"github.com/Govind-619/CareFund/models"
	"gopkg.in/gomail.v2"
)

// Notifier tells a donor about their donation. Implementations must not
// block the caller on delivery failures beyond returning the error.
type Notifier interface {
	PaymentHeld(ctx context.Context, donation *models.Donation) error
	PaymentReleased(ctx context.Context, donation *models.Donation) error
}

// SMTPConfig holds the outgoing mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailNotifier sends HTML mails through an SMTP relay.
type MailNotifier struct {
	from   string
	dialer sender
}

func NewMailNotifier(cfg SMTPConfig) *MailNotifier {
	return &MailNotifier{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (n *MailNotifier) PaymentHeld(_ context.Context, d *models.Donation) error {
	body := fmt.Sprintf(`
		<h2>Thank you for your donation!</h2>
		<p>We have received ₹%.2f for %d x %s.</p>
		<p>Your funds are held in escrow and will be released to the NGO once delivery is confirmed.</p>
		<p>Invoice number: <strong>%s</strong></p>
	`, d.TotalAmount, d.Quantity, d.PackageTitle, d.InvoiceNumber)
	return n.send(d.DonorEmail, "Your CareFund donation is in escrow", body)
}

func (n *MailNotifier) PaymentReleased(_ context.Context, d *models.Donation) error {
	body := fmt.Sprintf(`
		<h2>Your donation has been delivered</h2>
		<p>%d x %s has been delivered and ₹%.2f was released to the NGO.</p>
		<p>Invoice number: <strong>%s</strong></p>
	`, d.Quantity, d.PackageTitle, d.TotalAmount, d.InvoiceNumber)
	return n.send(d.DonorEmail, "Your CareFund donation was delivered", body)
}

func (n *MailNotifier) send(to, subject, body string) error {
	if to == "" {
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) PaymentHeld(context.Context, *models.Donation) error     { return nil }
func (NopNotifier) PaymentReleased(context.Context, *models.Donation) error { return nil }
