package mailer

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	mail "gopkg.in/mail.v2"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
}

type SMTPMailer struct {
	fromEmail string
	dialer    sender
	backoff   time.Duration
}

type sender interface {
	DialAndSend(m ...*mail.Message) error
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.FromEmail == "" {
		return nil, errors.New("smtp host and from email are required")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}

	d := mail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password)
	d.Timeout = 10 * time.Second
	d.StartTLSPolicy = mail.OpportunisticStartTLS

	return &SMTPMailer{fromEmail: cfg.FromEmail, dialer: d, backoff: time.Second}, nil
}

func (m *SMTPMailer) Send(templateFile, username, email string, data any) error {
	subject, body, err := render(templateFile, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, FromName)
	msg.SetAddressHeader("To", email, username)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	var lastErr error
	for i := 0; i < maxRetires; i++ {
		if lastErr = m.dialer.DialAndSend(msg); lastErr == nil {
			return nil
		}
		// linear backoff between attempts
		time.Sleep(m.backoff * time.Duration(i+1))
	}
	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetires, lastErr)
}

// render executes the "subject" and "body" blocks of an embedded template.
func render(templateFile string, data any) (string, string, error) {
	subjectTmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return "", "", err
	}
	subject := new(bytes.Buffer)
	if err := subjectTmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return "", "", err
	}

	bodyTmpl, err := htmltemplate.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return "", "", err
	}
	body := new(bytes.Buffer)
	if err := bodyTmpl.ExecuteTemplate(body, "body", data); err != nil {
		return "", "", err
	}
	return subject.String(), body.String(), nil
}
