package mailer

type Service interface {
	SendVerificationEmail(toEmail, fullName, verifyURL string) error
	SendAccountCreatedEmail(toEmail, fullName, roleText, tempPassword, loginURL string) error
	SendPasswordResetEmail(toEmail, resetURL string) error
}
