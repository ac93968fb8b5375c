package services

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"
)

// OTPMailer delivers one-time password-reset codes
type OTPMailer interface {
	SendOTP(to string, otp int) error
}

// SMTPMailer implements OTPMailer over an SMTP relay
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPMailer creates an SMTPMailer from relay settings
func NewSMTPMailer(host, port, user, pass string) (*SMTPMailer, error) {
	if host == "" {
		return nil, fmt.Errorf("SMTP host not configured")
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port %q: %w", port, err)
	}
	return &SMTPMailer{host: host, port: p, user: user, pass: pass, from: user}, nil
}

// SendOTP emails the password-reset code to the user
func (m *SMTPMailer) SendOTP(to string, otp int) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your password reset code")
	msg.SetBody("text/html", fmt.Sprintf(
		"<p>Your one-time password reset code is <strong>%d</strong>.</p><p>It expires in 10 minutes.</p>", otp))

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send OTP email: %w", err)
	}
	return nil
}
