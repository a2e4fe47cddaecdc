package service

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/config"

	"github.com/google/uuid"
)

// NotificationEmail 通知邮件内容
type NotificationEmail struct {
	To      string
	Subject string
	Body    string
	Link    string
}

// mailSender 投递已编码的邮件
type mailSender func(cfg *config.EmailConfig, from string, to []string, msg []byte) error

// EmailService 邮件发送服务
type EmailService struct {
	cfg  *config.EmailConfig
	send mailSender
	now  func() time.Time
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg, send: deliverSMTP, now: time.Now}
}

// SetConfig 更新运行时邮件配置
func (s *EmailService) SetConfig(cfg *config.EmailConfig) {
	if cfg == nil {
		return
	}
	s.cfg = cfg
}

// SendNotificationEmail 发送站内通知的邮件副本
func (s *EmailService) SendNotificationEmail(email NotificationEmail) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	to, err := mail.ParseAddress(strings.TrimSpace(email.To))
	if err != nil {
		return ErrInvalidEmail
	}

	subject := strings.TrimSpace(email.Subject)
	if subject == "" {
		subject = "RealCPA Hub"
	}
	body := strings.TrimSpace(email.Body)
	if link := strings.TrimSpace(email.Link); link != "" {
		body += "\r\n\r\n" + link
	}

	msg := s.compose(to.Address, subject, body)
	if err := s.send(s.cfg, s.cfg.From, []string{to.Address}, msg); err != nil {
		if isEmailRecipientRejected(err) {
			return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
		}
		return err
	}
	return nil
}

func (s *EmailService) compose(to, subject, body string) []byte {
	from := s.cfg.From
	if name := strings.TrimSpace(s.cfg.FromName); name != "" {
		from = (&mail.Address{Name: name, Address: s.cfg.From}).String()
	}
	domain := "realcpa.local"
	if at := strings.LastIndex(s.cfg.From, "@"); at >= 0 && at < len(s.cfg.From)-1 {
		domain = s.cfg.From[at+1:]
	}

	var buf bytes.Buffer
	header := func(key, value string) {
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	}
	header("From", from)
	header("To", to)
	header("Subject", mime.QEncoding.Encode("UTF-8", subject))
	header("Date", s.now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domain))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}

// deliverSMTP use_ssl 走隐式 TLS，use_tls 走 STARTTLS，否则明文
func deliverSMTP(cfg *config.EmailConfig, from string, to []string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	var client *smtp.Client
	if cfg.UseSSL {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return err
		}
		client, err = smtp.NewClient(conn, cfg.Host)
		if err != nil {
			_ = conn.Close()
			return err
		}
	} else {
		var err error
		client, err = smtp.Dial(addr)
		if err != nil {
			return err
		}
		if cfg.UseTLS {
			if err := client.StartTLS(tlsConfig); err != nil {
				_ = client.Close()
				return err
			}
		}
	}
	defer client.Close()

	if cfg.Username != "" || cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

var recipientRejectedHints = []string{
	"no such recipient",
	"no such user",
	"recipient not found",
	"recipient address rejected",
	"invalid recipient",
	"user unknown",
	"unknown user",
	"unknown mailbox",
	"mailbox unavailable",
}

// isEmailRecipientRejected 收件人不存在时不再重试
func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 550, 551, 553:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	for _, hint := range recipientRejectedHints {
		if strings.Contains(message, hint) {
			return true
		}
	}
	return false
}
