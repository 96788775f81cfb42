package mailer

import (
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"

	"tryout-service/internal/config"
	"tryout-service/internal/util"
)

// ErrNotConfigured is returned when outbound mail is attempted without
// credentials; callers fail closed instead of dispatching.
var ErrNotConfigured = errors.New("mail credentials not configured")

// Mailer dispatches the transactional emails of the registration flow.
// Plaintext OTP codes and generated passwords travel only through here,
// straight to the registrant's own verified address.
type Mailer interface {
	SendOTP(toEmail, nama, code string) error
	SendPassword(toEmail, nama, password string, reset bool) error
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	client *resend.Client
	cfg    config.MailConfig
}

func NewResendMailer(cfg config.MailConfig) *ResendMailer {
	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	}
	return &ResendMailer{
		client: client,
		cfg:    cfg,
	}
}

func (m *ResendMailer) SendOTP(toEmail, nama, code string) error {
	return m.send(toEmail, otpSubject, otpHTML(nama, code))
}

func (m *ResendMailer) SendPassword(toEmail, nama, password string, reset bool) error {
	subject := passwordSubject
	if reset {
		subject = passwordResetSubject
	}
	return m.send(toEmail, subject, passwordHTML(nama, toEmail, password, reset))
}

func (m *ResendMailer) send(toEmail, subject, html string) error {
	if m.client == nil {
		return ErrNotConfigured
	}

	sent, err := m.client.Emails.Send(&resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromAddress),
		To:      []string{toEmail},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		util.Error("Failed to send email",
			util.String("to", toEmail),
			util.String("subject", subject),
			util.ErrorField(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	util.Info("Email sent",
		util.String("to", toEmail),
		util.String("subject", subject),
		util.String("message_id", sent.Id))
	return nil
}
