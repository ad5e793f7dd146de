// Package mail implements the outbound notification collaborator over SMTP.
package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Config carries the SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends applicant and user notifications. Send calls honour the
// caller's context deadline by running the SMTP dial in a goroutine.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendDecision notifies an applicant that their application was decided.
func (m *Mailer) SendDecision(ctx context.Context, to, name, status, reason string) error {
	var subject, body string
	switch status {
	case "approved":
		subject = "Your Housify agent application has been approved"
		body = fmt.Sprintf(
			"<p>Hello %s,</p><p>Your application has been approved! You can now sign in to your account.</p><p>Best regards,<br>The Housify Team</p>",
			name)
	case "rejected":
		subject = "Update on your Housify agent application"
		body = fmt.Sprintf(
			"<p>Hello %s,</p><p>Your application has been rejected. Please contact support for more information.</p>",
			name)
		if reason != "" {
			body += fmt.Sprintf("<p>Reason: %s</p>", reason)
		}
		body += "<p>Best regards,<br>The Housify Team</p>"
	default:
		return fmt.Errorf("no decision template for status %q", status)
	}
	return m.send(ctx, to, subject, body)
}

// SendWelcome greets a newly registered user account.
func (m *Mailer) SendWelcome(ctx context.Context, to, username string) error {
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Welcome to Housify! Your account is ready.</p><p>Best regards,<br>The Housify Team</p>",
		username)
	return m.send(ctx, to, "Welcome to Housify", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
