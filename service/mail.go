package service

import (
	"errors"
	"fmt"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a single message out of band. The registration
// workflow only needs this narrow surface, and tests substitute a
// fake so no SMTP server is involved
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through the SMTP relay from the config
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
}

func NewSMTPMailer() *SMTPMailer {
	sender := viper.GetString("mail.sender")

	return &SMTPMailer{
		sender: sender,
		dialer: gomail.NewDialer(
			viper.GetString("mail.host"),
			viper.GetInt("mail.port"),
			sender,
			viper.GetString("mail.password"),
		),
	}
}

func (s *SMTPMailer) Send(to, subject, body string) error {
	if to == s.sender {
		return errors.New("invalid email address")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.sender)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return s.dialer.DialAndSend(m)
}

// SendPasscodeMail composes and delivers the message carrying a
// freshly issued code. A failure here means the caller must roll the
// registration back, see the register handler
func SendPasscodeMail(m Mailer, record *model.OneTimePasscode) error {
	ttl := viper.GetInt("otp.ttl")

	var subject, body string

	switch record.Purpose {
	case model.PasscodePurposeReset:
		subject = "Planora Password Reset OTP"
		body = fmt.Sprintf("Your OTP for password reset is %s. It will expire in %d minutes.", record.Code, ttl)
	default:
		subject = "Your OTP Code"
		body = fmt.Sprintf("Your verification code is %s. It is valid for %d minutes.", record.Code, ttl)
	}

	return m.Send(record.Email, subject, body)
}
