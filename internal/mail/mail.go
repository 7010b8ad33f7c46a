package mail

import (
	"context"
	"strconv"

	"github.com/wneessen/go-mail"
)

type Message struct {
	FromName  string
	FromEmail string
	To        string
	CC        string
	Subject   string
	HTML      string
}

// Sender delivers outbound mail; handlers hold the interface so tests can
// record messages instead of dialing SMTP.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	p, err := strconv.Atoi(port)
	if err != nil || p == 0 {
		p = 587
	}
	return &SMTPSender{
		Host:     host,
		Port:     p,
		Username: username,
		Password: password,
		From:     from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.FromName, s.From); err != nil {
		return err
	}
	if err := msg.To(m.To); err != nil {
		return err
	}
	if m.CC != "" {
		if err := msg.Cc(m.CC); err != nil {
			return err
		}
	}
	if m.FromEmail != "" {
		if err := msg.ReplyTo(m.FromEmail); err != nil {
			return err
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)

	client, err := mail.NewClient(s.Host,
		mail.WithPort(s.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(s.Username),
		mail.WithPassword(s.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	return client.DialAndSendWithContext(ctx, msg)
}
