package service

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// ListingRef is the body of the book, bookmark and review endpoints.
type ListingRef struct {
	BoardingHouseID uint64 `validate:"required"`
}

// BookingService creates and ends bookings.
type BookingService struct {
	stores Stores
	opts   Options
}

func NewBookingService(stores Stores, opts Options) *BookingService {
	return &BookingService{stores: stores, opts: opts.withDefaults()}
}

// userAndListing loads both ends of a user action concurrently.  Either
// missing yields NotFound.
func userAndListing(ctx context.Context, st Stores, userID, listingID uint64) (*model.User, *model.BoardingHouse, error) {
	var (
		u *model.User
		b *model.BoardingHouse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		u, err = st.Users.GetByID(gctx, userID)
		return storeErr(err, "get user")
	})
	g.Go(func() (err error) {
		b, err = st.Listings.GetByID(gctx, listingID)
		return storeErr(err, "get listing")
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return u, b, nil
}

// Book creates an active booking for the caller.  The listing must be
// bookable, have a free room and not already be booked by the caller.
func (s *BookingService) Book(ctx context.Context, userID uint64, in ListingRef) (*model.Booking, error) {
	if err := check(in, MsgIncomplete); err != nil {
		return nil, err
	}
	_, b, err := userAndListing(ctx, s.stores, userID, in.BoardingHouseID)
	if err != nil {
		return nil, err
	}
	if !b.Discoverable() {
		return nil, errNotFound
	}

	existing, err := s.stores.Bookings.FindActive(ctx, userID, b.ID)
	if err != nil && !isNotFound(err) {
		return nil, errors.Wrap(err, "find booking")
	}
	if existing != nil {
		return nil, newError(KindConflict, MsgAlreadyBooked)
	}
	active, err := s.stores.Bookings.CountByListing(ctx, []uint64{b.ID}, true)
	if err != nil {
		return nil, errors.Wrap(err, "count bookings")
	}
	if availableRooms(b.MaxCapacity, active[b.ID]) <= 0 {
		return nil, newError(KindConflict, MsgRoomFull)
	}

	booking, err := s.stores.Bookings.Create(ctx, userID, b.ID, s.opts.Now())
	if isDuplicate(err) {
		return nil, newError(KindConflict, MsgAlreadyBooked)
	}
	if err != nil {
		return nil, errors.Wrap(err, "create booking")
	}
	return booking, nil
}

// Transactions lists a listing's bookings, newest first, with the room
// occupancy derived from the active ones in the result.
func (s *BookingService) Transactions(ctx context.Context, listingID uint64, activeOnly bool) (*model.Transactions, error) {
	b, err := s.stores.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, storeErr(err, "get listing")
	}
	bookings, err := s.stores.Bookings.ListByListing(ctx, listingID, activeOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list bookings")
	}
	return &model.Transactions{Bookings: bookings, Room: roomSummary(b.MaxCapacity, bookings)}, nil
}

// SetInactive checks a booking out of the caller's listing.
func (s *BookingService) SetInactive(ctx context.Context, listingID, bookingID uint64) (*model.Booking, error) {
	bk, err := s.stores.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr(err, "get booking")
	}
	if bk.BoardingHouseID != listingID {
		return nil, errForbidden
	}
	if err := s.stores.Bookings.Deactivate(ctx, bookingID); err != nil {
		return nil, storeErr(err, "deactivate booking")
	}
	bk.IsActive = false
	return bk, nil
}
