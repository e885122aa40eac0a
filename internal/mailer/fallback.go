package mailer

import (
	"github.com/shadiejo/shadiejo-api/pkg/config"
	"github.com/shadiejo/shadiejo-api/pkg/logger"
)

// Fallback tries the primary transport and dumps the email to the console
// when it fails, so a broken SMTP relay never loses the verification link
// entirely. The primary's error is still returned; callers decide whether
// delivery failure is fatal for their operation.
type Fallback struct {
	primary Service
	console *DevMailer
}

func NewFallback(primary Service, console *DevMailer) *Fallback {
	return &Fallback{primary: primary, console: console}
}

func (f *Fallback) SendVerificationEmail(toEmail, toName, token, kind string) error {
	err := f.primary.SendVerificationEmail(toEmail, toName, token, kind)
	if err != nil {
		logger.Warn("Primary mail transport failed, falling back to console", "to", toEmail, "error", err)
		_ = f.console.SendVerificationEmail(toEmail, toName, token, kind)
	}
	return err
}

func (f *Fallback) SendWelcomeEmail(toEmail, toName string) error {
	err := f.primary.SendWelcomeEmail(toEmail, toName)
	if err != nil {
		logger.Warn("Primary mail transport failed, falling back to console", "to", toEmail, "error", err)
		_ = f.console.SendWelcomeEmail(toEmail, toName)
	}
	return err
}

// NewService picks the transport from configuration: MailerSend when an API
// key is present, SMTP when a host is configured, console otherwise or when
// dev mode is forced.
func NewService(cfg *config.Config) Service {
	console := NewDevMailer(cfg.App.BaseURL)

	if cfg.Email.DevMode {
		return console
	}
	if cfg.Email.MailerSendKey != "" {
		return NewFallback(NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail, cfg.App.BaseURL), console)
	}
	if cfg.Email.SMTPHost != "" {
		return NewFallback(NewSMTPMailer(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
			cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS,
			cfg.App.BaseURL,
		), console)
	}

	logger.Warn("No mail transport configured - emails will be printed to the console")
	return console
}
