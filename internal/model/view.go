package model

import "time"

// ListingView is a listing enriched with the values computed per request:
// its pictures, the mean review rating and the number of free rooms.
type ListingView struct {
	BoardingHouse
	Pictures      []Picture `json:"pictures"`
	AverageRating float64   `json:"averageRating"`
	AvailableRoom int       `json:"availableRoom"`
}

// BookmarkedListing is a discovery entry saved by the requesting user.
type BookmarkedListing struct {
	ListingView
	BookmarkDate time.Time `json:"bookmarkDate"`
}

// Discovery is the mobile home feed: every bookable listing by rating and
// the caller's bookmarks, most recent first.
type Discovery struct {
	All        []ListingView       `json:"all"`
	Bookmarked []BookmarkedListing `json:"bookmarked"`
}

// KeyLocations lists the distinct areas that have bookable listings.
type KeyLocations struct {
	District    []string `json:"district"`
	Subdistrict []string `json:"subdistrict"`
	All         []string `json:"all"`
}

// ReviewWithUser is a review shown on a listing page with its author.
type ReviewWithUser struct {
	Review
	User UserSummary `json:"user"`
}

// ContactLinks are derived from the listing's location and phone.
type ContactLinks struct {
	Maps     string `json:"maps"`
	WhatsApp string `json:"whatsapp"`
}

// ListingDetail is the mobile listing page for one user.
type ListingDetail struct {
	ListingView
	Panoramas    []Panorama       `json:"panoramas"`
	Reviews      []ReviewWithUser `json:"reviews"`
	IsBookmarked bool             `json:"isBookmarked"`
	Review       *Review          `json:"review"`
	Booking      *Booking         `json:"booking"`
	Links        ContactLinks     `json:"links"`
}

// ListingDashboard summarises bookings for the web listing page.
type ListingDashboard struct {
	TotalTransaction int `json:"totalTransaction"`
	TotalRoom        int `json:"totalRoom"`
	TotalFilledRoom  int `json:"totalFilledRoom"`
	TotalFreeRoom    int `json:"totalFreeRoom"`
}

// ManagedListing is the web listing page seen by an admin or the owner.
type ManagedListing struct {
	ListingView
	Panoramas []Panorama       `json:"panoramas"`
	Reviews   []ReviewWithUser `json:"reviews"`
	Dashboard ListingDashboard `json:"dashboard"`
}

// AdminListing is one row of the admin listing table.
type AdminListing struct {
	ListingView
	BookingCount int `json:"bookingCount"`
}

// PlatformDashboard aggregates counts for the admin home page.
type PlatformDashboard struct {
	ListingCounts
	TotalUser          int `json:"totalUser"`
	TotalBooking       int `json:"totalBooking"`
	TotalActiveBooking int `json:"totalActiveBooking"`
	TotalReview        int `json:"totalReview"`
}

// Transactions is the owner's booking list with its occupancy summary.
type Transactions struct {
	Bookings []BookingWithUser `json:"bookings"`
	Room     RoomSummary       `json:"room"`
}

// Session is returned by the login and registration endpoints.
type Session struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
}

// Registration is the mobile registration response.
type Registration struct {
	User
	Session
}
