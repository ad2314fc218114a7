package model

import "time"

// Activity types emitted in a user's history feed.
const (
	ActivityBooking = "BOOKING"
	ActivityReview  = "REVIEW"
)

// HistoryEvent is one entry of the merged booking/review feed.  RelativeTime
// is computed at response time and never stored.
type HistoryEvent struct {
	Type            string    `json:"type"`
	BoardingHouseID uint64    `json:"boardingHouseId"`
	Message         string    `json:"message"`
	District        string    `json:"district"`
	Subdistrict     string    `json:"subdistrict"`
	Time            time.Time `json:"time"`
	Picture         *string   `json:"picture"`
	RelativeTime    string    `json:"timeRelative"`
	CreatedAt       time.Time `json:"createdAt"`
}
