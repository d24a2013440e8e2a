package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a rendered email ready for delivery. HTML is optional.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailgun wraps a Mailgun client and the From address.
type Mailgun struct {
	client *mg.MailgunImpl
	Sender string
}

func NewMailgun(domain, apiKey, sender string) (*Mailgun, error) {
	if domain == "" || apiKey == "" || sender == "" {
		return nil, errors.New("mailgun: domain, api key and sender are required")
	}
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), Sender: sender}, nil
}

// Send sends msg via Mailgun, using HTML as the HTML body when present.
func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("mailgun: empty recipient")
	}
	message := m.client.NewMessage(m.Sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, _, err := m.client.Send(c, message)
	return err
}
