package smtp

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/go-notify-dispatch/internal/config"
	"github.com/go-notify-dispatch/internal/domain"
)

// Mailer is the email delivery provider. The recipient address travels in
// the event's content metadata under the "email" key.
type Mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *Mailer) Send(_ context.Context, msg *domain.RankedMessage) error {
	to := msg.Event.Content.Metadata["email"]
	if to == "" {
		return fmt.Errorf("event %s has no email recipient", msg.Event.EventID)
	}
	body := msg.Event.Content.Body
	if msg.Event.Content.CTA != "" {
		body += "\r\n\r\n" + msg.Event.Content.CTA
	}
	return m.sendEmail(to, msg.Event.Content.Title, body)
}

func (m *Mailer) sendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
