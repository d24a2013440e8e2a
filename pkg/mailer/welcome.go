package mailer

import (
	"time"

	tpl "github.com/oksasatya/go-user-accounts/pkg/mailer/templates"
)

// WelcomeMessage renders the welcome email sent after sign-up.
func WelcomeMessage(appName, username, email string, createdAt time.Time) (Message, error) {
	data := tpl.NewEmailData(username, email, tpl.WithAppName(appName), tpl.WithTime(createdAt))
	subject, text, html, err := tpl.Render(tpl.Welcome, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: email, Subject: subject, Text: text, HTML: html}, nil
}
