package mailer

import "fmt"

// Plain-text bodies shared by the SMTP and MailerSend implementations.

func verificationBody(fullName, verifyURL string) (subject, text string) {
	subject = "Verify Your FASSA Account"
	text = fmt.Sprintf(`Hello %s,

Thank you for registering at FASSA. Please verify your account by clicking the link below:

%s

Once verified, you can log in using your email and password.

Regards,
FASSA`, fullName, verifyURL)
	return subject, text
}

func accountCreatedBody(fullName, roleText, email, tempPassword, loginURL string) (subject, text string) {
	subject = "Your FASSA Account Has Been Created"
	text = fmt.Sprintf(`Hello %s,

An account has been created for you as a FASSA %s.
Here are your login details:

Email: %s
Temporary Password: %s

Login here: %s

Please change your password after logging in.

Regards,
FASSA`, fullName, roleText, email, tempPassword, loginURL)
	return subject, text
}

func passwordResetBody(resetURL string) (subject, text string) {
	subject = "Reset Your FASSA Password"
	text = fmt.Sprintf(`Hello,

Click the link below to reset your password:

%s

If you did not request this, ignore this email.

Regards,
FASSA`, resetURL)
	return subject, text
}
