// Package service contains the out-of-band collaborators of the
// authentication core, currently just verification-code delivery.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPMailer sends verification codes by email via gomail.
type SMTPMailer struct {
	host     string
	port     int
	sender   string
	password string
}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{
		host:     viper.GetString("mail.host"),
		port:     viper.GetInt("mail.port"),
		sender:   viper.GetString("mail.sender"),
		password: viper.GetString("mail.password"),
	}
}

func (m *SMTPMailer) SendVerificationCode(to, code string, ttl time.Duration) error {
	if to == m.sender {
		return errors.New("invalid email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your verification code")
	msg.SetBody("text/html", fmt.Sprintf(
		"Your verification code is <b>%v</b>.<br><br>It expires in %v.", code, ttl))

	d := gomail.NewDialer(m.host, m.port, m.sender, m.password)

	return d.DialAndSend(msg)
}

// LogMailer stands in when mail delivery is disabled. It only logs that a
// code was issued, never the code itself.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(to, _ string, ttl time.Duration) error {
	zap.L().Info("Verification code issued",
		zap.String("to", to),
		zap.Duration("ttl", ttl),
	)
	return nil
}
