package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig carries the connection details for the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPDispatcher delivers HTML emails through a plain-auth SMTP relay.
type SMTPDispatcher struct {
	cfg SMTPConfig
}

// NewSMTPDispatcher constructs a dispatcher for the given relay.
func NewSMTPDispatcher(cfg SMTPConfig) *SMTPDispatcher {
	return &SMTPDispatcher{cfg: cfg}
}

func (d *SMTPDispatcher) Send(_ context.Context, to, subject, htmlBody string) error {
	var msg strings.Builder
	msg.WriteString("From: " + d.cfg.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")

	auth := smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	addr := d.cfg.Host + ":" + d.cfg.Port

	if err := smtp.SendMail(addr, auth, d.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	return nil
}
