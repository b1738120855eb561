// Package mailer sends email over SMTP.
//
// It is used by the development mail relay, which drains the broker-backed mail
// queue. In production the mail extension watching the Firestore `mail`
// collection does the sending instead.
package mailer

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPMailer sends multipart/alternative messages through an SMTP server.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
	From string

	// sendMail is smtp.SendMail, replaceable in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer returns a mailer for the given server and sender.
func NewSMTPMailer(host, port, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, User: user, Pass: pass, From: from, sendMail: smtp.SendMail}
}

// Send delivers a mail with a plain text part, an HTML part, or both.
func (m *SMTPMailer) Send(to []string, subject, text, html string) error {
	if len(to) == 0 {
		return errors.New("recipient list cannot be empty")
	}
	if subject == "" {
		return errors.New("email subject cannot be empty")
	}
	if m.Host == "" || m.From == "" {
		return errors.New("SMTP host and sender must be configured")
	}

	msg, err := BuildMessage(m.From, to, subject, text, html, time.Now())
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	send := m.sendMail
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(net.JoinHostPort(m.Host, m.Port), auth, envelopeAddress(m.From), to, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// BuildMessage renders the RFC 5322 message bytes.
func BuildMessage(from string, to []string, subject, text, html string, date time.Time) ([]byte, error) {
	if text == "" && html == "" {
		return nil, errors.New("email body cannot be empty")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case html == "":
		buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		buf.WriteString(text)
	case text == "":
		buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		buf.WriteString(html)
	default:
		boundary, err := newBoundary()
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
		fmt.Fprintf(&buf, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, text)
		fmt.Fprintf(&buf, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, html)
		fmt.Fprintf(&buf, "--%s--", boundary)
	}
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}

func newBoundary() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate MIME boundary: %w", err)
	}
	return "formcraft-" + hex.EncodeToString(b), nil
}

// envelopeAddress extracts the bare address from "Name <addr>".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return strings.TrimSpace(from)
}
