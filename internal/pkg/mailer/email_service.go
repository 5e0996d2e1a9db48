package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail, username string) error
	Enabled() bool
}

// Dialer is the part of gomail.Dialer the service uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      Dialer
	senderEmail string
	senderName  string
}

// NewEmailService returns a service that silently drops mail when host is empty.
func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	var d Dialer
	if host != "" {
		d = gomail.NewDialer(host, port, username, password)
	}
	return NewEmailServiceWithDialer(d, username, senderName)
}

func NewEmailServiceWithDialer(d Dialer, senderEmail, senderName string) IEmailService {
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) Enabled() bool {
	return s.dialer != nil
}

func (s *emailService) SendWelcome(toEmail, username string) error {
	if !s.Enabled() {
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Welcome to Intellius")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome, %s!</h2>
			<p>Your account is ready. Sign in any time to start a counseling chat.</p>
			<p>If you didn't create this account, please ignore this email.</p>
		</div>
	`, html.EscapeString(username))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send welcome mail to %s: %w", toEmail, err)
	}
	return nil
}
