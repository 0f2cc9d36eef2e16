package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

// EmailNotifier mails notifications through an SMTP server.
type EmailNotifier struct {
	Server   string
	Port     int
	Address  string
	Password string
	To       []string

	send func(m *email.Email, addr string, auth smtp.Auth) error
}

// NewEmailNotifier creates a notifier that sends from address to the given recipients.
func NewEmailNotifier(server string, port int, address, password string, to []string) *EmailNotifier {
	return &EmailNotifier{
		Server:   server,
		Port:     port,
		Address:  address,
		Password: password,
		To:       to,
		send: func(m *email.Email, addr string, auth smtp.Auth) error {
			return m.Send(addr, auth)
		},
	}
}

func (e *EmailNotifier) Name() string { return "email" }

// Notify sends title as the subject and message as a plain text body. Servers
// that don't offer AUTH are retried without it.
func (e *EmailNotifier) Notify(ctx context.Context, title, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Results Monitor <%s>", e.Address)
	mail.To = e.To
	mail.Subject = title
	mail.Text = []byte(message + "\n")

	addr := fmt.Sprintf("%s:%d", e.Server, e.Port)
	err := e.send(mail, addr, smtp.PlainAuth("", e.Address, e.Password, e.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = e.send(mail, addr, nil)
	}
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
