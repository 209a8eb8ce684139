package service

import (
	"context"
	"fmt"

	"github.com/tradehub/tradehub-api/internal/config"
	"gopkg.in/gomail.v2"
)

// EmailNotifier sends transactional email over SMTP. All sends are
// best-effort from the caller's point of view; an unconfigured notifier
// silently does nothing.
type EmailNotifier struct {
	cfg config.SMTPConfig
}

// NewEmailNotifier creates a new notifier
func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

func (n *EmailNotifier) send(to, subject, body string) error {
	if !n.cfg.Configured() {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendConfirmation sends the confirm-your-email message
func (n *EmailNotifier) SendConfirmation(_ context.Context, email, redirectURL string) error {
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Confirm your email</h2>
			<p>Thanks for signing up to TradeHub.</p>
			<p><a href="%s">Click here to confirm your email address</a></p>
		</body>
		</html>
	`, redirectURL)

	return n.send(email, "Confirm your TradeHub account", body)
}

// SendWelcome sends the welcome message
func (n *EmailNotifier) SendWelcome(_ context.Context, email, firstName string) error {
	greeting := "Hi"
	if firstName != "" {
		greeting = fmt.Sprintf("Hi %s", firstName)
	}
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome to TradeHub</h2>
			<p>%s,</p>
			<p>Your account is ready. Post a job or start bidding as soon as your email is confirmed.</p>
		</body>
		</html>
	`, greeting)

	return n.send(email, "Welcome to TradeHub", body)
}
