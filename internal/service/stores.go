package service

import (
	"context"
	"time"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// The store interfaces below are satisfied by the MySQL repositories.  Each
// lookup returns repository.ErrNotFound for a missing row and inserts return
// repository.ErrDuplicate on a unique key violation.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint64, name, phone, email string) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	UpdatePicture(ctx context.Context, id uint64, picture *string) error
	Count(ctx context.Context) (int, error)
}

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
}

type IdentityStore interface {
	EmailOwner(ctx context.Context, email string) (*model.EmailOwner, error)
}

type BoardingHouseStore interface {
	Create(ctx context.Context, b *model.BoardingHouse, pictures []string) error
	GetByID(ctx context.Context, id uint64) (*model.BoardingHouse, error)
	GetByEmail(ctx context.Context, email string) (*model.BoardingHouse, error)
	List(ctx context.Context) ([]model.BoardingHouse, error)
	ListDiscoverable(ctx context.Context) ([]model.BoardingHouse, error)
	UpdateDetails(ctx context.Context, b *model.BoardingHouse) error
	SetConfirmation(ctx context.Context, id uint64, confirmed bool, passwordHash *string) error
	SetActive(ctx context.Context, id uint64, active bool) error
	SetOwnerPicture(ctx context.Context, id uint64, picture *string) error
	Pictures(ctx context.Context, ids []uint64) (map[uint64][]model.Picture, error)
	Counts(ctx context.Context) (model.ListingCounts, error)
}

type PanoramaStore interface {
	Add(ctx context.Context, boardingHouseID uint64, picture string) (*model.Panorama, error)
	GetByID(ctx context.Context, id uint64) (*model.Panorama, error)
	ListByListing(ctx context.Context, boardingHouseID uint64) ([]model.Panorama, error)
	CountByListing(ctx context.Context, boardingHouseID uint64) (int, error)
	Delete(ctx context.Context, id uint64) error
}

type BookingStore interface {
	Create(ctx context.Context, userID, boardingHouseID uint64, at time.Time) (*model.Booking, error)
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	FindActive(ctx context.Context, userID, boardingHouseID uint64) (*model.Booking, error)
	Deactivate(ctx context.Context, id uint64) error
	CountByListing(ctx context.Context, ids []uint64, activeOnly bool) (map[uint64]int, error)
	ListByListing(ctx context.Context, boardingHouseID uint64, activeOnly bool) ([]model.BookingWithUser, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingActivity, error)
	Totals(ctx context.Context) (total, active int, err error)
}

type ReviewStore interface {
	Create(ctx context.Context, rv *model.Review) error
	Find(ctx context.Context, userID, boardingHouseID uint64) (*model.Review, error)
	ListByListing(ctx context.Context, boardingHouseID uint64) ([]model.ReviewWithUser, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.ReviewActivity, error)
	Ratings(ctx context.Context, ids []uint64) (map[uint64][]int, error)
	Count(ctx context.Context) (int, error)
}

type BookmarkStore interface {
	Find(ctx context.Context, userID, boardingHouseID uint64) (*model.Bookmark, error)
	Create(ctx context.Context, userID, boardingHouseID uint64, at time.Time) (*model.Bookmark, error)
	Delete(ctx context.Context, id uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Bookmark, error)
}

// FileStore keeps uploaded images.  Save returns the public URL of the
// stored object; Remove accepts such a URL.
type FileStore interface {
	Save(ctx context.Context, category string, f model.Upload) (string, error)
	Remove(ctx context.Context, url string) error
}

// Upload categories.
const (
	CategoryBoarding = "boarding"
	CategoryPanorama = "panorama"
	CategoryProfile  = "profile"
)
