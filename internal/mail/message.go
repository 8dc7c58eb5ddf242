package mail

import (
	"fmt"
	"regexp"
	"strings"

	"ivyresort/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Message is one rendered confirmation, shared by every transport.
type Message struct {
	Recipient string
	FromName  string
	Subject   string
	Text      string
	HTML      string
}

// ValidateForSend checks the precondition shared by all transports: the
// fields the template needs must be present and the address well-formed.
// A failure here means no transport is attempted at all.
func ValidateForSend(res *models.Reservation) error {
	switch {
	case res == nil:
		return fmt.Errorf("reservation is nil")
	case res.Email == "":
		return fmt.Errorf("email is required")
	case !emailPattern.MatchString(res.Email):
		return fmt.Errorf("email %q is not a valid address", res.Email)
	case res.GuestName == "":
		return fmt.Errorf("guest name is required")
	case res.ConfirmationID == "":
		return fmt.Errorf("confirmation id is required")
	case res.RoomName == "":
		return fmt.Errorf("room name is required")
	case res.CheckIn == "":
		return fmt.Errorf("check-in date is required")
	case res.CheckOut == "":
		return fmt.Errorf("check-out date is required")
	case res.TotalAmount <= 0:
		return fmt.Errorf("total amount is required")
	}
	return nil
}

// RenderConfirmation builds the text and HTML bodies for a reservation.
func RenderConfirmation(res *models.Reservation, fromName string) (*Message, error) {
	if err := ValidateForSend(res); err != nil {
		return nil, err
	}

	currency := res.Currency
	if currency == "" {
		currency = "USD"
	}
	amount := fmt.Sprintf("%.2f %s", res.TotalAmount, currency)

	subject := fmt.Sprintf("Your Ivy Resort reservation %s", res.ConfirmationID)

	text := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Thank you for booking with Ivy Resort. Your reservation is confirmed below.\n\n"+
			"Confirmation: %s\n"+
			"Room: %s\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n"+
			"Guests: %d\n"+
			"Total: %s\n\n"+
			"Please keep this confirmation number for check-in.\n"+
			"We look forward to welcoming you.\n",
		res.GuestName, res.ConfirmationID, res.RoomName,
		res.CheckIn, res.CheckOut, res.Guests, amount,
	)

	html := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Reservation Confirmation</title>
<style>
body { background:#f4f6f3; font-family:Georgia, 'Times New Roman', serif; color:#27382b; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #dbe5da; padding:24px; border-radius:8px; }
.ref { font-size:20px; letter-spacing:1px; color:#2f6b3a; }
table { width:100%%; border-collapse:collapse; margin-top:16px; }
td { padding:6px 0; border-bottom:1px solid #eef2ed; }
td:first-child { color:#6b7b6e; width:40%%; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Reservation confirmed</h2>
    <p>Dear %s,</p>
    <p>Thank you for booking with Ivy Resort.</p>
    <p class="ref">%s</p>
    <table>
      <tr><td>Room</td><td>%s</td></tr>
      <tr><td>Check-in</td><td>%s</td></tr>
      <tr><td>Check-out</td><td>%s</td></tr>
      <tr><td>Guests</td><td>%d</td></tr>
      <tr><td>Total</td><td>%s</td></tr>
    </table>
    <p>Please keep this confirmation number for check-in.</p>
  </div>
</div>
</body>
</html>`,
		htmlEscape(res.GuestName), res.ConfirmationID, htmlEscape(res.RoomName),
		res.CheckIn, res.CheckOut, res.Guests, amount,
	)

	return &Message{
		Recipient: res.Email,
		FromName:  fromName,
		Subject:   subject,
		Text:      text,
		HTML:      html,
	}, nil
}

func htmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}
