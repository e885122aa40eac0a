package mailer

import (
	"fmt"

	"github.com/shadiejo/shadiejo-api/pkg/logger"
)

// DevMailer prints emails to the console instead of sending them. It is the
// default transport in development and the last-resort fallback elsewhere.
type DevMailer struct {
	BaseURL string
}

func NewDevMailer(baseURL string) *DevMailer {
	return &DevMailer{BaseURL: baseURL}
}

func (d *DevMailer) SendVerificationEmail(toEmail, toName, token, kind string) error {
	verifyURL := VerifyURL(d.BaseURL, token, kind)

	logger.Info("📧 [DEV MAIL] Verification Email",
		"to", toEmail,
		"name", toName,
		"kind", kind,
		"verify_url", verifyURL,
	)

	fmt.Printf("\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"📧 VERIFICATION EMAIL (DEV MODE)\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"To: %s (%s)\n"+
		"Subject: Welcome to Shadiejo - Verify Your Email\n"+
		"\n"+
		"Verification URL: %s\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n",
		toEmail, toName, verifyURL)

	return nil
}

func (d *DevMailer) SendWelcomeEmail(toEmail, toName string) error {
	logger.Info("📧 [DEV MAIL] Welcome Email", "to", toEmail, "name", toName)

	fmt.Printf("\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"📧 WELCOME EMAIL (DEV MODE)\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"To: %s (%s)\n"+
		"Subject: Welcome to Shadiejo!\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n",
		toEmail, toName)

	return nil
}
