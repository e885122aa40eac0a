package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	baseURL string
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail, baseURL string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		baseURL: baseURL,
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

func (m *MailerSendClient) SendVerificationEmail(toEmail, toName, token, kind string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	verifyURL := VerifyURL(m.baseURL, token, kind)

	subject := "Welcome to Shadiejo - Verify Your Email"
	if kind == KindVendor {
		subject = "Shadiejo Vendor Registration - Verify Your Email"
	}
	html := fmt.Sprintf(`
		<h2>Welcome to Shadiejo!</h2>
		<p>Hi %s,</p>
		<p>Please verify your email address by clicking the link below:</p>
		<p><a href="%s" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Verify Email</a></p>
		<p>This link will expire in 24 hours.</p>
		<p>If you didn't create an account with us, please ignore this email.</p>
	`, toName, verifyURL)

	text := fmt.Sprintf("Hi %s,\n\nPlease verify your email by clicking this link: %s\n\nThis link will expire in 24 hours.", toName, verifyURL)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) SendWelcomeEmail(toEmail, toName string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Welcome to Shadiejo!"
	html := fmt.Sprintf(`
		<h2>Welcome to Shadiejo, %s!</h2>
		<p>Your email has been verified and your account is ready.</p>
		<p>Log in to start exploring venues for your big day.</p>
	`, toName)
	text := fmt.Sprintf("Hi %s,\n\nYour email has been verified and your account is ready. Welcome aboard!", toName)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
