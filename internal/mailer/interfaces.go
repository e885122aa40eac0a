package mailer

import "fmt"

// Verification kinds select which verify endpoint the emailed link points at.
const (
	KindUser   = "user"
	KindVendor = "vendor"
)

type Service interface {
	SendVerificationEmail(toEmail, toName, token, kind string) error
	SendWelcomeEmail(toEmail, toName string) error
}

// VerifyURL builds the link embedded in verification emails.
func VerifyURL(baseURL, token, kind string) string {
	if kind == KindVendor {
		return fmt.Sprintf("%s/vendor/verify?token=%s", baseURL, token)
	}
	return fmt.Sprintf("%s/auth/verify?token=%s", baseURL, token)
}
