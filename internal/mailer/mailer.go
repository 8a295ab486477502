// Package mailer sends transactional email.
package mailer

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"travelagency/internal/config"
	"travelagency/internal/utils"
)

// DefaultTimeout bounds dialing and every SMTP round trip when the caller's
// context carries no earlier deadline.
const DefaultTimeout = 15 * time.Second

type Message struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a logging no-op when SMTP_HOST is empty.
func New(cfg config.MailConfig) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return LogMailer{}
	}
	return &SMTPMailer{cfg: cfg, timeout: DefaultTimeout}
}

type SMTPMailer struct {
	cfg     config.MailConfig
	timeout time.Duration
}

func (m *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.timeout),
		mail.WithDialContextFunc(dialWithDeadline),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}

// dialWithDeadline carries the context deadline onto the connection, so a
// server that accepts and then stays silent cannot block past it.
func dialWithDeadline(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mm, err := newMsg(m.cfg.From, msg)
	if err != nil {
		return err
	}
	c, err := m.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// newMsg builds a plain-text message. Newlines in the subject are folded to
// spaces so user input cannot start new headers.
func newMsg(from string, msg Message) (*mail.Msg, error) {
	mm := mail.NewMsg()
	if err := mm.From(from); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := mm.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("mail reply-to: %w", err)
		}
	}
	mm.Subject(strings.NewReplacer("\r", "", "\n", " ").Replace(msg.Subject))
	mm.SetDate()
	mm.SetMessageID()
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)
	return mm, nil
}

// LogMailer only logs the recipient and subject.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	utils.LogEvent("", "mail", "send", fmt.Sprintf("mail not configured; to=%s subject=%q", msg.To, msg.Subject))
	return nil
}

// SendAsync sends in the background and logs failures; email never fails a request.
func SendAsync(m Mailer, requestID string, msg Message) {
	if m == nil || strings.TrimSpace(msg.To) == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.Send(ctx, msg); err != nil {
			utils.LogError(requestID, "mail", "send", err)
		}
	}()
}
