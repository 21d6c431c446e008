package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"meal-coupon/registration"

	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("smtp is not configured")

type Config struct {
	Server   string
	Port     string
	User     string
	Pass     string
	FromAddr string
	FromName string
}

func (c Config) Configured() bool {
	return c.Server != "" && c.Port != "" && c.FromAddr != ""
}

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg  Config
	send sendFunc
	now  func() time.Time
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

// Send delivers msg through the configured relay. net/smtp has no context support, so
// the call is abandoned, not interrupted, when ctx expires.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.cfg.Configured() {
		return ErrNotConfigured
	}
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("invalid header value for %q", msg.To)
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Server)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.send(m.cfg.Server+":"+m.cfg.Port, auth, m.cfg.FromAddr, []string{msg.To}, m.compose(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return &registration.UpstreamError{Service: "smtp", Err: err}
		}
		return nil
	case <-ctx.Done():
		return &registration.UpstreamError{Service: "smtp", Err: ctx.Err()}
	}
}

func (m *SMTPMailer) compose(msg Message) []byte {
	domain := m.cfg.FromAddr
	if at := strings.LastIndex(domain, "@"); at >= 0 {
		domain = domain[at+1:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.FromAddr)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.New().String(), domain)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
