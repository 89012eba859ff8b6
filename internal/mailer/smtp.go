package mailer

import (
	"fmt"
	"time"

	gomail "gopkg.in/mail.v2"
)

type SMTPClient struct {
	fromEmail string
	dialer    *gomail.Dialer
}

func NewSMTPClient(host string, port int, username, password, fromEmail string) (*SMTPClient, error) {
	if host == "" || fromEmail == "" {
		return nil, ErrNotConfigured
	}
	d := gomail.NewDialer(host, port, username, password)
	d.Timeout = 10 * time.Second
	return &SMTPClient{fromEmail: fromEmail, dialer: d}, nil
}

func (m *SMTPClient) Send(templateFile, username, email string, data any) (int, error) {
	subject, body, err := render(templateFile, data)
	if err != nil {
		return -1, err
	}

	message := gomail.NewMessage()
	message.SetAddressHeader("From", m.fromEmail, FromName)
	message.SetAddressHeader("To", email, username)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", body)

	var lastErr error
	for i := 0; i < maxRetires; i++ {
		if lastErr = m.dialer.DialAndSend(message); lastErr == nil {
			return 200, nil
		}
		// linear backoff between attempts
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return -1, fmt.Errorf("failed to send email after %d attempts: %w", maxRetires, lastErr)
}
