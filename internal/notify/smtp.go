package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

type SMTPSender struct {
	from     string
	fromName string
	host     string
	port     string
	user     string
	pass     string
}

func NewSMTPSender(from, fromName, host, port, user, pass string) *SMTPSender {
	return &SMTPSender{from: from, fromName: fromName, host: host, port: port, user: user, pass: pass}
}

func (s *SMTPSender) Send(ctx context.Context, job Job) error {
	_ = ctx
	var auth smtp.Auth
	if s.user != "" && s.pass != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	return smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{job.To}, s.message(job))
}

func (s *SMTPSender) message(job Job) []byte {
	msg := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	msg += fmt.Sprintf("To: %s\r\n", job.To)
	msg += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	msg += "\r\n" + job.Body
	return []byte(msg)
}
