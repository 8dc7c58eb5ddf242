package models

import "time"

type Reservation struct {
	ID              int64     `json:"id"`
	ConfirmationID  string    `json:"confirmation_id"`
	GuestName       string    `json:"guest_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	RoomName        string    `json:"room_name"`
	RoomType        string    `json:"room_type,omitempty"`
	CheckIn         string    `json:"check_in"`
	CheckOut        string    `json:"check_out"`
	Guests          int       `json:"guests"`
	TotalAmount     float64   `json:"total_amount"`
	Currency        string    `json:"currency,omitempty"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	EmailSent       bool      `json:"email_sent"`
	Status          string    `json:"status"` // pending, confirmed, checked-in, checked-out, cancelled, deleted
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int64     `json:"version"`
}

// Visible reports whether the reservation should appear in the dashboard
// list. Checked-out rows stay queryable through the history filter.
func (r *Reservation) Visible() bool {
	switch r.Status {
	case StatusCancelled, StatusDeleted, StatusCheckedOut:
		return false
	}
	return true
}

// Terminal reports whether the reservation is eligible for the retention
// sweep once it ages past the window.
func (r *Reservation) Terminal() bool {
	switch r.Status {
	case StatusCancelled, StatusDeleted, StatusCheckedOut:
		return true
	}
	return false
}

// Stats is the trailing-window aggregate served by the stats endpoint.
type Stats struct {
	TotalReservations int     `json:"total_reservations"`
	Pending           int     `json:"pending"`
	Confirmed         int     `json:"confirmed"`
	CheckedIn         int     `json:"checked_in"`
	CheckedOut        int     `json:"checked_out"`
	Cancelled         int     `json:"cancelled"`
	TotalRevenue      float64 `json:"total_revenue"`
}
