package reply

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"
)

// SMTPConfig holds the outbound mail configuration.
type SMTPConfig struct {
	Server    string
	Port      int
	User      string
	Pass      string
	FromEmail string
	Enabled   bool
}

// Sender delivers rendered replies via SMTP.
type Sender struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewSender creates a sender with the given SMTP configuration.
func NewSender(cfg SMTPConfig, logger *zap.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// Enabled reports whether this sender will actually deliver mail.
func (s *Sender) Enabled() bool { return s.cfg.Enabled }

// Send delivers a reply with HTML body and plain text fallback. A disabled
// sender is a no-op so the workflow can run without SMTP configured.
func (s *Sender) Send(to string, msg *RenderedMessage) error {
	if !s.cfg.Enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" && msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else if msg.HTML != "" {
		m.SetBody("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Text)
	}

	dialer := gomail.NewDialer(s.cfg.Server, s.cfg.Port, s.cfg.User, s.cfg.Pass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(m); err != nil {
		s.logger.Error("failed to send reply",
			zap.String("to", to),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("send reply to %s: %w", to, err)
	}

	s.logger.Info("reply sent", zap.String("to", to), zap.String("subject", msg.Subject))
	return nil
}

// CheckConnection dials the SMTP server without sending anything.
func (s *Sender) CheckConnection() error {
	if !s.cfg.Enabled {
		return nil
	}

	dialer := gomail.NewDialer(s.cfg.Server, s.cfg.Port, s.cfg.User, s.cfg.Pass)
	dialer.Timeout = 10 * time.Second

	closer, err := dialer.Dial()
	if err != nil {
		return fmt.Errorf("dial SMTP server %s:%d: %w", s.cfg.Server, s.cfg.Port, err)
	}
	return closer.Close()
}
