package notification

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	appnotification "github.com/homechef/backend/internal/application/notification"
	"go.uber.org/zap"
)

// SMTPConfig holds outbound mail settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Language string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender implements the email channel over SMTP
type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	from     mail.Address
	engine   *TemplateEngine
	logger   *zap.Logger
	sendMail sendMailFunc
	now      func() time.Time
}

// NewSMTPSender validates the sender address and prepares the templates
func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", cfg.From, err)
	}
	engine, err := NewTemplateEngine(cfg.Language)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}

	s := &SMTPSender{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		from:     *from,
		engine:   engine,
		logger:   logger.Named("smtp"),
		sendMail: smtp.SendMail,
		now:      time.Now,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s, nil
}

// SendEmail renders the email for its kind and hands it to the SMTP server
func (s *SMTPSender) SendEmail(ctx context.Context, email appnotification.Email) error {
	to, err := mail.ParseAddress(email.To)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", email.To, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	content := EmailContent{
		Name:    email.Name,
		Subject: email.Subject,
		Body:    email.Body,
		Kind:    email.Kind,
		Data:    email.Data,
	}
	html, err := s.engine.Render(content)
	if err != nil {
		return err
	}
	to.Name = email.Name
	msg := s.buildMessage(*to, s.engine.Subject(content), html)

	if err := s.sendMail(s.addr, s.auth, s.from.Address, []string{to.Address}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	s.logger.Debug("Email sent", zap.String("kind", string(email.Kind)))
	return nil
}

func (s *SMTPSender) buildMessage(to mail.Address, subject, html string) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.from.String() + "\r\n")
	b.WriteString("To: " + to.String() + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + s.now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(html)
	return []byte(b.String())
}

var _ appnotification.EmailSender = (*SMTPSender)(nil)
