package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

const smtpsPort = 465

// SMTPChannel submits mail over SMTP, upgrading with STARTTLS when the server
// offers it. gomail renders the message. The conversation itself runs on a
// connection whose deadline follows ctx, so a server that stops answering is
// hung up on when the attempt ends.
type SMTPChannel struct {
	host     string
	port     int
	username string
	password string
	from     string
	tls      *tls.Config
	timeout  time.Duration
}

func NewSMTPChannel(host string, port int, username, password, from string) *SMTPChannel {
	return &SMTPChannel{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		tls:      &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
		timeout:  10 * time.Second,
	}
}

func (c *SMTPChannel) Name() string { return "smtp" }

func (c *SMTPChannel) Send(ctx context.Context, e Email) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", c.from)
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/plain", e.Text)
	if e.HTML != "" {
		msg.AddAlternative("text/html", e.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.send(ctx, msg)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("smtp send abandoned: %w", errors.Join(ctx.Err(), err))
	}
	if err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func (c *SMTPChannel) send(ctx context.Context, msg *gomail.Message) error {
	client, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	deliver := gomail.SendFunc(func(from string, to []string, m io.WriterTo) error {
		if err := client.Mail(from); err != nil {
			return err
		}
		for _, addr := range to {
			if err := client.Rcpt(addr); err != nil {
				return err
			}
		}
		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := m.WriteTo(w); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	})
	if err := gomail.Send(deliver, msg); err != nil {
		return err
	}
	return client.Quit()
}

// dial connects, greets, upgrades and authenticates. Every read and write on
// the returned client fails once ctx is done.
func (c *SMTPChannel) dial(ctx context.Context) (*smtp.Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(c.host, strconv.Itoa(c.port)))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })

	if c.port == smtpsPort {
		conn = tls.Client(conn, c.tls)
	}

	client, err := smtp.NewClient(conn, c.host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if c.port != smtpsPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(c.tls); err != nil {
				_ = client.Close()
				return nil, err
			}
		}
	}

	if c.username != "" {
		if ok, mechs := client.Extension("AUTH"); ok {
			if err := client.Auth(c.auth(mechs)); err != nil {
				_ = client.Close()
				return nil, err
			}
		}
	}
	return client, nil
}

func (c *SMTPChannel) auth(mechs string) smtp.Auth {
	if strings.Contains(mechs, "CRAM-MD5") && !strings.Contains(mechs, "PLAIN") {
		return smtp.CRAMMD5Auth(c.username, c.password)
	}
	return smtp.PlainAuth("", c.username, c.password, c.host)
}

// FormatAddress renders "Name <addr>" for the From header.
func FormatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return gomail.NewMessage().FormatAddress(addr, name)
}
