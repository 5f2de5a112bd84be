package notifier

import (
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/pfrederiksen/sz-deals/internal/logger"
	"github.com/pfrederiksen/sz-deals/internal/report"
)

// MailConfig holds the SMTP endpoint and credentials
type MailConfig struct {
	Host      string
	Port      int
	Account   string
	Password  string
	Recipient string
}

// MailNotifier submits reports over SMTP. Port 465 uses implicit TLS.
type MailNotifier struct {
	from string
	to   string
	host string
	send func(m *gomail.Message) error
}

// NewMailNotifier creates a new mail notifier
func NewMailNotifier(cfg MailConfig) (*MailNotifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.Account == "" || cfg.Password == "" {
		return nil, fmt.Errorf("smtp credentials are required")
	}
	if cfg.Recipient == "" {
		return nil, fmt.Errorf("recipient is required")
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Account, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	return &MailNotifier{
		from: cfg.Account,
		to:   cfg.Recipient,
		host: cfg.Host,
		send: func(m *gomail.Message) error { return d.DialAndSend(m) },
	}, nil
}

// Notify builds the message and submits it to the single recipient
func (n *MailNotifier) Notify(rep *report.Report) error {
	m := n.message(rep)

	start := time.Now()
	err := n.send(m)
	logger.RecordTiming("send", time.Since(start))
	if err != nil {
		logger.IncrCounter("send.failed")
		return fmt.Errorf("sending mail to %s: %w", n.to, err)
	}

	logger.IncrCounter("send.ok")
	return nil
}

// message builds a multipart message with a UTF-8 text body and the
// workbook attached
func (n *MailNotifier) message(rep *report.Report) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", rep.Subject)
	m.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), n.host))
	m.SetDateHeader("Date", time.Now())
	m.SetBody("text/plain", rep.Body)

	attachment := rep.Attachment
	m.Attach(rep.Filename,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachment)
			return err
		}),
		gomail.SetHeader(map[string][]string{
			"Content-Type":        {mime.FormatMediaType(report.SpreadsheetMIME, map[string]string{"name": rep.Filename})},
			"Content-Disposition": {mime.FormatMediaType("attachment", map[string]string{"filename": rep.Filename})},
		}),
	)

	return m
}
