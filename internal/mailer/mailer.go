// Package mailer delivers the run report by email and classifies delivery
// failures so the console fallback can name the cause.
package mailer

import (
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"time"

	"github.com/wneessen/go-mail"

	"s3backup/config"
	"s3backup/internal/report"
)

// Cause classifies a failed dispatch.
type Cause int

const (
	CauseNone Cause = iota
	CauseDNS
	CauseTimeout
	CauseAuth
	CauseOther
)

// Sender delivers one report email.
type Sender interface {
	Send(subject, body string) error
}

// SMTPSender sends mail over implicit TLS with SMTP authentication.
type SMTPSender struct {
	cfg *config.Config
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.MailFrom); err != nil {
		return fmt.Errorf("invalid sender address %s: %w", s.cfg.MailFrom, err)
	}
	if err := msg.To(s.cfg.MailTo); err != nil {
		return fmt.Errorf("invalid recipient address %s: %w", s.cfg.MailTo, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(s.cfg.MailServer,
		mail.WithPort(s.cfg.MailPort),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.MailFrom),
		mail.WithPassword(s.cfg.MailPassword),
		mail.WithTimeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to build mail client: %w", err)
	}

	return client.DialAndSend(msg)
}

// ClassifyFailure maps a delivery error onto the known causes.
func ClassifyFailure(err error) Cause {
	if err == nil {
		return CauseNone
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CauseDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CauseTimeout
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535:
			return CauseAuth
		}
	}

	return CauseOther
}

// Dispatch mails the sink's captured text as the report body. On failure the
// specific cause is appended to the sink, so the console fallback carries it,
// and false is returned. The sink is left open either way; closing it is the
// caller's job once the report has reached a human.
func Dispatch(snd Sender, sink *report.Sink, subject string) bool {
	body := sink.Text()
	err := snd.Send(subject, body)
	if err == nil {
		return true
	}

	switch ClassifyFailure(err) {
	case CauseDNS:
		sink.Error("No internet connection/invalid mail host name")
	case CauseTimeout:
		sink.Error("Mail operation timed out. Try after some time")
	case CauseAuth:
		sink.Error("The mail username and/or password is incorrect")
	default:
		sink.Error("%v", err)
	}
	return false
}
