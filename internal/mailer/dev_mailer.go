package mailer

import (
	"github.com/fassa-ttu/fassa-backend/pkg/logger"
)

// DevMailer logs emails instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendVerificationEmail(toEmail, fullName, verifyURL string) error {
	logger.Info("[DEV MAIL] Verification email",
		"to", toEmail,
		"name", fullName,
		"verify_url", verifyURL,
	)
	return nil
}

func (d *DevMailer) SendAccountCreatedEmail(toEmail, fullName, roleText, tempPassword, loginURL string) error {
	logger.Info("[DEV MAIL] Account created email",
		"to", toEmail,
		"name", fullName,
		"role", roleText,
		"temp_password", tempPassword,
		"login_url", loginURL,
	)
	return nil
}

func (d *DevMailer) SendPasswordResetEmail(toEmail, resetURL string) error {
	logger.Info("[DEV MAIL] Password reset email",
		"to", toEmail,
		"reset_url", resetURL,
	)
	return nil
}
