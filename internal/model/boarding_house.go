package model

import "time"

// BoardingHouse is a listing ("kos") in the `boarding_houses` table.  The
// three status flags form the listing lifecycle: a freshly registered
// listing is pending, an admin then confirms or denies it, and the owner may
// toggle IsActive afterwards.  PasswordHash stays nil until the first
// confirmation issues credentials.
type BoardingHouse struct {
	ID           uint64    `json:"boardingHouseId"` // boarding_houses.id
	Name         string    `json:"name"`
	Owner        string    `json:"owner"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Description  string    `json:"description"`
	District     string    `json:"district"`
	Subdistrict  string    `json:"subdistrict"`
	Location     string    `json:"location"`
	MaxCapacity  int       `json:"maxCapacity"`
	Price        int64     `json:"price"`
	IsPending    bool      `json:"isPending"`
	IsConfirmed  bool      `json:"isConfirmed"`
	IsActive     bool      `json:"isActive"`
	PasswordHash *string   `json:"-"`
	OwnerPicture *string   `json:"ownerPicture"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Discoverable reports whether the listing may appear in the mobile app.
// Room availability is checked separately because it needs the booking count.
func (b *BoardingHouse) Discoverable() bool {
	return b.IsActive && b.IsConfirmed && !b.IsPending
}

// Picture is one of the ordered photos attached to a listing at registration.
type Picture struct {
	ID              uint64    `json:"pictureId"`
	BoardingHouseID uint64    `json:"boardingHouseId"`
	Picture         string    `json:"picture"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Panorama is a 360° image of a listing.  At least one must exist before an
// admin can confirm the listing.
type Panorama struct {
	ID              uint64    `json:"panoramaId"`
	BoardingHouseID uint64    `json:"boardingHouseId"`
	Picture         string    `json:"picture"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ListingSummary carries the listing columns that activity feeds need
// alongside a booking or review row.
type ListingSummary struct {
	ID          uint64
	Name        string
	District    string
	Subdistrict string
	Picture     *string // first picture, if any
}

// ListingCounts aggregates listing states for the admin dashboard.
type ListingCounts struct {
	Total     int `json:"totalBoardingHouse"`
	Pending   int `json:"totalPending"`
	Confirmed int `json:"totalConfirmed"`
	Active    int `json:"totalActive"`
}
