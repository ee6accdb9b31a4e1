// Package mail delivers import notices.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
)

const defaultSMTPTimeout = 30 * time.Second

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds one whole delivery, dial included.
	Timeout time.Duration
}

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPSender struct {
	cfg  SMTPConfig
	send sendFunc
	now  func() time.Time
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSMTPTimeout
	}
	return &SMTPSender{cfg: cfg, send: sendMail, now: time.Now}
}

func (s *SMTPSender) Send(ctx context.Context, msg domain.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mail recipient is empty")
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(ctx, addr, auth, s.cfg.From, []string{msg.To}, s.compose(msg)); err != nil {
		return errors.Wrap(err, "smtp send")
	}
	return nil
}

// sendMail follows smtp.SendMail but dials with ctx and drops the connection
// once ctx is done, so a stalled server cannot hold the caller.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(a); err != nil {
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

func (s *SMTPSender) compose(msg domain.MailMessage) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", s.now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\n", "\r\n"))
	return buf.Bytes()
}

// LogSender writes notices to the log. It is used when no SMTP host is configured.
type LogSender struct {
	logger logrus.FieldLogger
}

func NewLogSender(logger logrus.FieldLogger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg domain.MailMessage) error {
	s.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}

func NewSender(cfg SMTPConfig, logger logrus.FieldLogger) domain.MailSender {
	if strings.TrimSpace(cfg.Host) == "" {
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg)
}
