package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendVerificationEmail(toEmail, fullName, verifyURL string) error {
	subject, text := verificationBody(fullName, verifyURL)
	return m.sendEmail(toEmail, fullName, subject, text)
}

func (m *MailerSendClient) SendAccountCreatedEmail(toEmail, fullName, roleText, tempPassword, loginURL string) error {
	subject, text := accountCreatedBody(fullName, roleText, toEmail, tempPassword, loginURL)
	return m.sendEmail(toEmail, fullName, subject, text)
}

func (m *MailerSendClient) SendPasswordResetEmail(toEmail, resetURL string) error {
	subject, text := passwordResetBody(resetURL)
	return m.sendEmail(toEmail, "", subject, text)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
