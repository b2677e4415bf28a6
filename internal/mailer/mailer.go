package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Message — письмо пользователю.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer — абстракция доставки почты. Движок не зависит от механики
// доставки; ошибки отправки логируются и не влияют на состояние брони.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer отправляет письма через обычный SMTP-релей.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.From, msg.To, msg.Subject, msg.Body)

	if err := smtp.SendMail(addr, auth, m.From, []string{msg.To}, []byte(body)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer пишет письма в лог вместо отправки; используется в dev-режиме.
type LogMailer struct {
	Log zerolog.Logger
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.Log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("mail suppressed (log mailer)")
	return nil
}
