package templates

import (
	"strings"
	"time"
)

// EmailData defines the fields available to every template.
type EmailData struct {
	Name    string    `json:"Name"`
	Email   string    `json:"Email"`
	AppName string    `json:"AppName"`
	Time    string    `json:"Time"`
	TimeAt  time.Time `json:"TimeAt"`
}

// Option pattern
type Option func(*EmailData)

func WithAppName(name string) Option {
	return func(d *EmailData) {
		if s := strings.TrimSpace(name); s != "" {
			d.AppName = s
		}
	}
}

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// NewEmailData builds template data for a recipient.
func NewEmailData(name, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Email: email}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
