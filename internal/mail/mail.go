// Package mail sends vendor outreach email over SMTP with STARTTLS.
// All config fields empty means mail is disabled and Send returns an error.
package mail

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
)

// Mailer sends plain-text mail through a configured SMTP relay.
type Mailer struct {
	cfg    config.MailConfig
	logger *slog.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New builds a Mailer. A Mailer with empty config is returned as disabled
// rather than nil so callers get a consistent error instead of a panic.
func New(cfg config.MailConfig, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

// ESGRequest is the vendor outreach payload.
type ESGRequest struct {
	VendorEmail string
	VendorName  string
	ProductName string
}

// SendESGRequest emails a vendor asking for their ESG scores.
func (m *Mailer) SendESGRequest(req ESGRequest) error {
	if !m.Enabled() {
		return errors.Validation("mail is not configured")
	}
	if req.VendorEmail == "" {
		return errors.Validation("vendor email is required")
	}

	subject := "ESG Score Registration Request"
	body := fmt.Sprintf(
		"Dear %s Team,\n\n"+
			"We are reaching out regarding your product %q for ESG score registration.\n\n"+
			"Required ESG information:\n"+
			"  - Environmental score (0-100)\n"+
			"  - Social score (0-100)\n"+
			"  - Governance score (0-100)\n"+
			"  - Supporting documentation\n\n"+
			"Please reply with your ESG scores and we'll process your registration within 2-3 business days.\n\n"+
			"Best regards,\nSustainability Team\n",
		req.VendorName, req.ProductName,
	)

	return m.sendPlain(req.VendorEmail, subject, body)
}

// sendPlain delivers one message over SMTP.
func (m *Mailer) sendPlain(to, subject, body string) error {
	addr := m.cfg.Host + ":" + m.cfg.Port

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	if err := m.send(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to send mail")
	}

	m.logger.Info("Mail sent", "to", to, "subject", subject)
	return nil
}
