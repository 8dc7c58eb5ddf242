package models

import "time"

// ReservationFilter narrows list queries. Zero values mean "no filter".
// Rows with status "deleted" are hidden unless IncludeDeleted is set or
// Status asks for them directly.
type ReservationFilter struct {
	Status         string
	Since          time.Time
	Limit          int
	IncludeDeleted bool
}

// ReservationPatch carries the fields a merge-update may touch. Nil
// pointers leave the stored value untouched.
type ReservationPatch struct {
	GuestName       *string
	Email           *string
	Phone           *string
	RoomName        *string
	RoomType        *string
	CheckIn         *string
	CheckOut        *string
	Guests          *int
	TotalAmount     *float64
	Currency        *string
	SpecialRequests *string
	EmailSent       *bool
	Status          *string
}

// Empty reports whether the patch touches nothing.
func (p ReservationPatch) Empty() bool {
	return p == ReservationPatch{}
}
