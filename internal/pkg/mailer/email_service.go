package mailer

import (
	"fmt"
	"html"
	"log"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendResetCode(toEmail, code string) error
	SendContactMessage(toEmail string, msg ContactMessage) error
	SendNotification(toEmails []string, subject, body string) error
}

type ContactMessage struct {
	Name    string
	Email   string
	Company string
	Message string
}

// Dialer is the part of gomail.Dialer the service needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	return NewEmailServiceWithDialer(gomail.NewDialer(host, port, username, password), username, senderName)
}

func NewEmailServiceWithDialer(d Dialer, senderEmail, senderName string) IEmailService {
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) newMessage(subject string, to ...string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	return m
}

func (s *emailService) SendResetCode(toEmail, code string) error {
	m := s.newMessage("Your SimpliParts password reset code", toEmail)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Password reset</h2>
			<p>Use this code to reset your password:</p>
			<h1 style="letter-spacing: 6px;">%s</h1>
			<p>The code expires in 15 minutes. If you didn't request it, ignore this email.</p>
		</div>
	`, html.EscapeString(code))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("[MAILER ERROR] Failed to send reset code to %s: %v", toEmail, err)
		return err
	}
	log.Printf("[MAILER] Reset code sent to %s", toEmail)
	return nil
}

func (s *emailService) SendContactMessage(toEmail string, msg ContactMessage) error {
	m := s.newMessage("Contact form: "+msg.Name, toEmail)
	m.SetHeader("Reply-To", msg.Email)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<p><b>Name:</b> %s</p>
			<p><b>Email:</b> %s</p>
			<p><b>Company:</b> %s</p>
			<p style="white-space: pre-wrap;">%s</p>
		</div>
	`, html.EscapeString(msg.Name), html.EscapeString(msg.Email), html.EscapeString(msg.Company), html.EscapeString(msg.Message))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("[MAILER ERROR] Failed to forward contact message from %s: %v", msg.Email, err)
		return err
	}
	return nil
}

func (s *emailService) SendNotification(toEmails []string, subject, body string) error {
	if len(toEmails) == 0 {
		return nil
	}
	m := s.newMessage(subject, toEmails...)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("[MAILER ERROR] Failed to send %q to %s: %v", subject, strings.Join(toEmails, ","), err)
		return err
	}
	return nil
}
