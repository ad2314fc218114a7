package model

import "time"

// Booking ties a user to a listing.  An active booking occupies one room;
// the owner ends it with a manual checkout (IsActive=false) that cannot be
// reversed.
type Booking struct {
	ID              uint64    `json:"bookingId"`       // bookings.id
	UserID          uint64    `json:"userId"`          // bookings.user_id
	BoardingHouseID uint64    `json:"boardingHouseId"` // bookings.boarding_house_id
	IsActive        bool      `json:"isActive"`        // bookings.is_active
	BookedDate      time.Time `json:"bookedDate"`      // bookings.booked_date
}

// BookingWithUser is a booking row joined with the booking user, as shown to
// the listing owner on the transactions page.
type BookingWithUser struct {
	ID         uint64      `json:"bookingId"`
	IsActive   bool        `json:"isActive"`
	BookedDate time.Time   `json:"bookedDate"`
	User       UserSummary `json:"user"`
}

// BookingActivity is a booking joined with its listing for the history feed.
type BookingActivity struct {
	Booking
	Listing ListingSummary
}

// RoomSummary is the occupancy of a listing derived from its active bookings.
type RoomSummary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Active    int `json:"active"`
}
