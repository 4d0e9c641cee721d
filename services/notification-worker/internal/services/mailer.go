package services

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/novabank/payportal/services/notification-worker/configs"
	"go.uber.org/zap"
)

// Mailer delivers a single message. The SMTP implementation is the only real
// one; tests swap in a recorder.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPMailer struct {
	logger  *zap.Logger
	host    string
	port    string
	auth    smtp.Auth
	from    string
	sandbox bool
}

func NewSMTPMailer(logger *zap.Logger, cfg *configs.Config) Mailer {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &SMTPMailer{
		logger:  logger,
		host:    cfg.SMTPHost,
		port:    cfg.SMTPPort,
		auth:    auth,
		from:    cfg.MailFrom,
		sandbox: cfg.MailSandbox,
	}
}

// Send delivers one message over SMTP. In sandbox mode the rendered message is
// logged instead, so local stacks need no mail server.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	if m.sandbox {
		m.logger.Info("sandbox mail delivery",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Int("bytes", len(msg)))
		m.logger.Debug("sandbox mail body", zap.ByteString("message", msg))
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	return smtp.SendMail(addr, m.auth, m.from, []string{to}, msg)
}
