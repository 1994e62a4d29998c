// Package mailer sends transactional email through Resend.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// Mailer wraps the Resend client. With no API key configured (local dev) it
// logs instead of sending, so the reset flow stays usable offline.
type Mailer struct {
	client    *resend.Client
	fromName  string
	fromEmail string
	baseURL   string
}

func New(apiKey, fromName, fromEmail, baseURL string) *Mailer {
	m := &Mailer{fromName: fromName, fromEmail: fromEmail, baseURL: baseURL}
	if apiKey != "" {
		m.client = resend.NewClient(apiKey)
	}
	return m
}

// SendPasswordReset emails a reset link carrying the token.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)

	if m.client == nil {
		logrus.Infof("mailer disabled, reset link for %s: %s", to, link)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail),
		To:      []string{to},
		Subject: "Reset your password",
		Html: fmt.Sprintf(`<p>A password reset was requested for your account.</p>
<p><a href="%s">Reset password</a></p>
<p>The link expires in one hour. If you didn't request this, ignore this email.</p>`, link),
	}

	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}
