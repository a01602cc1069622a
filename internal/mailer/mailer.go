package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends transactional mail through the configured SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, email, password string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, email, password),
		from:   email,
	}
}

func (m *Mailer) Send(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("\"Shopshere\" <%s>", m.from))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	return m.dialer.DialAndSend(msg)
}

// ResetPasswordHTML builds the password reset mail body around the raw token
// link. The token itself is never stored, only its hash.
func ResetPasswordHTML(clientURL, token string) string {
	link := fmt.Sprintf("%s/reset-password/%s", clientURL, token)
	return fmt.Sprintf(
		`<p>You requested a password reset for your Shopshere account.</p>
<p><a href="%s">Click here to choose a new password</a>. The link expires in 10 minutes.</p>
<p>If you did not request this, you can ignore this email.</p>`, link)
}
