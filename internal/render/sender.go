package render

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/formcoach/trendwatch/internal/config"
)

// ErrSMTPNotConfigured means no SMTP host is set. The run still writes
// the HTML to disk, delivery is just skipped.
var ErrSMTPNotConfigured = errors.New("smtp not configured")

// Sender delivers the rendered brief over SMTP.
type Sender struct {
	host     string
	port     string
	from     string
	to       string
	auth     smtp.Auth
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(cfg *config.Config) *Sender {
	var auth smtp.Auth
	if cfg.SMTPUser != "" && cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}

	return &Sender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.EmailFrom,
		to:       cfg.EmailTo,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

// Send mails an HTML body with the given subject to the configured
// recipient.
func (s *Sender) Send(subject, htmlBody string) error {
	if s.host == "" || s.from == "" || s.to == "" {
		return ErrSMTPNotConfigured
	}

	to := sanitizeHeader(s.to)
	msg := []string{
		fmt.Sprintf("From: %s", sanitizeHeader(s.from)),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", sanitizeHeader(subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		htmlBody,
	}

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.sendMail(addr, s.auth, s.from, []string{to}, []byte(strings.Join(msg, "\r\n"))); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// sanitizeHeader strips CRLF so user-influenced values cannot inject
// extra headers.
func sanitizeHeader(v string) string {
	v = strings.ReplaceAll(v, "\r", "")
	v = strings.ReplaceAll(v, "\n", "")
	return v
}
