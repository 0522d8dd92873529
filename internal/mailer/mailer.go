// Package mailer sends transactional e-mail over SMTP. Two letters
// exist today: the address-verification letter on registration and the
// booking confirmation sent by the queue consumer.
package mailer

import (
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"
)

// Mailer wraps an SMTP dialer with the sender address. When no SMTP
// user is configured the mailer runs disabled: sends become log lines
// so local development works without a relay.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	enabled bool
}

// New builds a Mailer for the given relay. Pass an empty user to
// disable actual delivery.
func New(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{
		dialer:  gomail.NewDialer(host, port, user, pass),
		from:    from,
		enabled: user != "",
	}
}

// Send delivers a single HTML message.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if !m.enabled {
		log.Printf("mailer: disabled, would send %q to %s", subject, to)
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// SendVerificationLetter asks a new user to confirm their address.
func (m *Mailer) SendVerificationLetter(to, link string) error {
	body := fmt.Sprintf(
		`<p>Welcome to the cinema!</p>
<p>Please confirm your e-mail address by following <a href=%q>this link</a>.</p>
<p>If you did not register, ignore this letter.</p>`, link)
	return m.Send(to, "Confirm your e-mail", body)
}

// BookingLine is one session's share of a confirmation letter.
type BookingLine struct {
	MovieTitle string
	HallName   string
	StartsAt   string
	Seats      []string
}

// SendBookingConfirmation tells the customer which seats they now
// hold, one block per session in the batch.
func (m *Mailer) SendBookingConfirmation(to string, lines []BookingLine, total float64) error {
	var body strings.Builder
	body.WriteString("<p>Your booking is confirmed.</p>\n")
	for _, line := range lines {
		fmt.Fprintf(&body,
			`<p><b>%s</b><br>Hall %s, %s<br>Seats: %s</p>
`,
			line.MovieTitle, line.HallName, line.StartsAt, strings.Join(line.Seats, ", "))
	}
	fmt.Fprintf(&body, "<p>Total: %.2f</p>", total)
	return m.Send(to, "Booking confirmed", body.String())
}
