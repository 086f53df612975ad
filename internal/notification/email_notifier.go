package notification

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stanstork/visitor-kiosk-api/internal/config"
)

const defaultSendTimeout = 10 * time.Second

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier emails the host directly over SMTP.
type EmailNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
	send     sendFunc
	logger   zerolog.Logger
}

func NewEmailNotifier(cfg config.EmailConfig, logger zerolog.Logger) (*EmailNotifier, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	from := strings.TrimSpace(cfg.From)
	if host == "" {
		return nil, fmt.Errorf("smtp_host is required for email notifier")
	}
	if from == "" {
		return nil, fmt.Errorf("from is required for email notifier")
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &EmailNotifier{
		host:     host,
		port:     port,
		username: strings.TrimSpace(cfg.Username),
		password: cfg.Password,
		from:     from,
		timeout:  timeout,
		send:     sendMail,
		logger:   logger.With().Str("notifier", "email").Logger(),
	}, nil
}

// Notify sends one message and gives up after the configured timeout.
func (n *EmailNotifier) Notify(ctx context.Context, arrival Arrival) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	recipient := singleLine(arrival.HostEmail)

	body := strings.Builder{}
	body.WriteString(fmt.Sprintf("Hello %s,\n\n", singleLine(arrival.HostName)))
	body.WriteString(Message(arrival))
	body.WriteString("\n\n")
	body.WriteString(fmt.Sprintf("Checked in: %s\n", arrival.CheckInAt.Format("2006-01-02 15:04:05 MST")))
	body.WriteString("Please meet them at reception.\n")

	// visitor-supplied text only reaches the headers encoded and on one line
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n",
		n.from, recipient, mime.QEncoding.Encode("utf-8", Subject(arrival)))

	message := []byte(headers + body.String())
	addr := net.JoinHostPort(n.host, fmt.Sprint(n.port))

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	if err := n.send(ctx, addr, auth, n.from, []string{recipient}, message); err != nil {
		return err
	}

	n.logger.Info().
		Int64("visit_id", arrival.VisitID).
		Str("recipient", recipient).
		Msg("arrival email sent")
	return nil
}

func (n *EmailNotifier) String() string {
	return "EmailNotifier"
}

// sendMail is smtp.SendMail bounded by ctx: the dial honours it and the
// connection deadline is taken from it.
func sendMail(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp server does not support AUTH")
		}
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt to: %w", err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}
