package mailer

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Attachment is a file attached to an outgoing mail.
type Attachment struct {
	Filename string
	Content  []byte
}

// Mailer sends transactional email. Handlers treat failures as best-effort
// side effects: log and continue, never fail the primary request.
type Mailer interface {
	Send(to, subject, body string, attachments ...Attachment) error
}

// SMTPMailer sends mail through the SMTP server configured in the
// environment (SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD,
// SMTP_FROM).
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// New builds an SMTPMailer from environment variables.
func New() *SMTPMailer {
	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			port = parsed
		}
	}

	return &SMTPMailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

func (m *SMTPMailer) Send(to, subject, body string, attachments ...Attachment) error {
	if m.host == "" {
		return fmt.Errorf("SMTP_HOST environment variable is not set")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	for _, att := range attachments {
		content := att.Content
		msg.Attach(att.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(msg)
}
