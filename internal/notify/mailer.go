package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/spec-kit/voting-identity/internal/config"
)

// Mailer sends notifications over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
}

// NewMailer builds an SMTP-backed gateway from config.
func NewMailer(cfg config.SMTPConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(30 * time.Second),
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return &Mailer{client: client, from: cfg.From}, nil
}

func (m *Mailer) SendWelcomeEmail(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour account has been created. You can sign in with the password you chose.\n",
		name,
	)
	return m.send(ctx, to, "Welcome to the voting platform", body)
}

func (m *Mailer) SendPasswordEmail(ctx context.Context, to, name, temporaryPassword string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour account has been created. Your temporary password is: %s\n\nYou will be asked to change it on first sign-in.\n",
		name, temporaryPassword,
	)
	return m.send(ctx, to, "Your temporary password", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return m.client.DialAndSendWithContext(ctx, msg)
}
