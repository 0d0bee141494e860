package mailer

import (
	"bytes"
	"ddtours/src/models"
	"fmt"
	"html/template"
	"log"
)

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; border: 1px solid #e5e7eb; border-radius: 12px; overflow: hidden;">
  <div style="background: #0f172a; color: #ffffff; padding: 24px;">
    <h2 style="margin: 0;">Mission Confirmed</h2>
  </div>
  <div style="padding: 24px; color: #1f2937;">
    <p>Hi {{.Name}},</p>
    <p>Your seats for <strong>{{.Title}}</strong> are locked in.</p>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><td style="padding: 6px 0;">Date</td><td style="padding: 6px 0;"><strong>{{.Date}}</strong></td></tr>
      <tr><td style="padding: 6px 0;">Seats</td><td style="padding: 6px 0;"><strong>{{.Seats}}</strong></td></tr>
      <tr><td style="padding: 6px 0;">Total paid</td><td style="padding: 6px 0;"><strong>&#8377;{{.Amount}}</strong></td></tr>
      <tr><td style="padding: 6px 0;">Transaction ID</td><td style="padding: 6px 0;">{{.PaymentID}}</td></tr>
    </table>
    <p style="margin-top: 24px;">
      <a href="{{.ProfileURL}}" style="background: #f59e0b; color: #0f172a; padding: 12px 20px; border-radius: 8px; text-decoration: none;">Download your pass</a>
    </p>
  </div>
</div>`))

type confirmationData struct {
	Name       string
	Title      string
	Date       string
	Seats      int
	Amount     string
	PaymentID  string
	ProfileURL string
}

// Notifier renders booking notifications and hands them to the dispatcher.
type Notifier struct {
	dispatcher *Dispatcher
	from       string
	fromName   string
	profileURL string
}

func NewNotifier(d *Dispatcher, from, fromName, profileURL string) *Notifier {
	return &Notifier{dispatcher: d, from: from, fromName: fromName, profileURL: profileURL}
}

func (n *Notifier) BookingConfirmed(b *models.Booking) {
	msg, err := n.ConfirmationMessage(b)
	if err != nil {
		log.Printf("[mailer] Could not render confirmation for booking [%s]: %s\n", b.ID, err.Error())
		return
	}
	if msg == nil {
		log.Printf("[mailer] Booking [%s] has no traveler email. Skipping confirmation\n", b.ID)
		return
	}
	n.dispatcher.Dispatch(msg)
}

func (n *Notifier) ConfirmationMessage(b *models.Booking) (*Message, error) {
	if b.UserDetails.Email == "" {
		return nil, nil
	}
	var buf bytes.Buffer
	err := confirmationTemplate.Execute(&buf, confirmationData{
		Name:       b.UserDetails.Name,
		Title:      b.TripTitle,
		Date:       b.TripDate,
		Seats:      b.Seats,
		Amount:     fmt.Sprintf("%.2f", b.TotalAmount),
		PaymentID:  b.PaymentID,
		ProfileURL: n.profileURL,
	})
	if err != nil {
		return nil, err
	}
	return &Message{
		From:     n.from,
		FromName: n.fromName,
		To:       []string{b.UserDetails.Email},
		Subject:  fmt.Sprintf("🏔️ Mission Confirmed: %s", b.TripTitle),
		Body:     buf.String(),
		Html:     true,
	}, nil
}
