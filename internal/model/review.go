package model

import "time"

// Review is a user's rating of a listing; one per (user, listing) pair.
type Review struct {
	ID              uint64    `json:"reviewId"`
	UserID          uint64    `json:"userId"`
	BoardingHouseID uint64    `json:"boardingHouseId"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ReviewActivity is a review joined with its listing for the history feed.
type ReviewActivity struct {
	Review
	Listing ListingSummary
}

// Bookmark marks a listing as saved by a user.  Presence means bookmarked.
type Bookmark struct {
	ID              uint64    `json:"bookmarkId"`
	UserID          uint64    `json:"userId"`
	BoardingHouseID uint64    `json:"boardingHouseId"`
	BookmarkDate    time.Time `json:"bookmarkDate"`
}
