package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/apparte-kost/internal/model"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

// ListingDetails are the owner-editable fields of a listing.  Capacity and
// price arrive as text from forms and JSON alike and are parsed here.
type ListingDetails struct {
	Name        string `validate:"required"`
	Owner       string `validate:"required"`
	Phone       string `validate:"required"`
	Description string `validate:"required"`
	District    string `validate:"required"`
	Subdistrict string `validate:"required"`
	Location    string `validate:"required"`
	MaxCapacity string `validate:"required"`
	Price       string `validate:"required"`
}

// RegisterListingInput is the web registration form.
type RegisterListingInput struct {
	ListingDetails
	Email string `validate:"required"`
}

// parse checks the numeric fields: capacity is a positive integer and price
// a non-negative integer amount in rupiah.
func (d ListingDetails) parse() (capacity int, price int64, err error) {
	capacity, cerr := strconv.Atoi(strings.TrimSpace(d.MaxCapacity))
	price, perr := strconv.ParseInt(strings.TrimSpace(d.Price), 10, 64)
	if cerr != nil || perr != nil || capacity <= 0 || price < 0 {
		return 0, 0, newError(KindValidation, MsgNumeric)
	}
	return capacity, price, nil
}

func (d ListingDetails) apply(b *model.BoardingHouse, capacity int, price int64) {
	b.Name = d.Name
	b.Owner = d.Owner
	b.Phone = d.Phone
	b.Description = d.Description
	b.District = d.District
	b.Subdistrict = d.Subdistrict
	b.Location = d.Location
	b.MaxCapacity = capacity
	b.Price = price
}

// ListingService owns the listing lifecycle and the listing read models.
type ListingService struct {
	stores   Stores
	files    FileStore
	notifier *Dispatcher
	opts     Options
}

func NewListingService(stores Stores, files FileStore, notifier *Dispatcher, opts Options) *ListingService {
	return &ListingService{stores: stores, files: files, notifier: notifier, opts: opts.withDefaults()}
}

// views enriches listings with pictures, average rating and free rooms.
// The three lookups run concurrently.
func (s *ListingService) views(ctx context.Context, listings []model.BoardingHouse) ([]model.ListingView, error) {
	ids := make([]uint64, len(listings))
	for i, b := range listings {
		ids[i] = b.ID
	}

	var (
		pictures map[uint64][]model.Picture
		ratings  map[uint64][]int
		active   map[uint64]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pictures, err = s.stores.Listings.Pictures(gctx, ids)
		return errors.Wrap(err, "load pictures")
	})
	g.Go(func() (err error) {
		ratings, err = s.stores.Reviews.Ratings(gctx, ids)
		return errors.Wrap(err, "load ratings")
	})
	g.Go(func() (err error) {
		active, err = s.stores.Bookings.CountByListing(gctx, ids, true)
		return errors.Wrap(err, "count bookings")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.ListingView, len(listings))
	for i, b := range listings {
		pics := pictures[b.ID]
		if pics == nil {
			pics = []model.Picture{}
		}
		out[i] = model.ListingView{
			BoardingHouse: b,
			Pictures:      pics,
			AverageRating: averageRating(ratings[b.ID]),
			AvailableRoom: availableRooms(b.MaxCapacity, active[b.ID]),
		}
	}
	return out, nil
}

// Discover returns the bookable listings by rating, highest first, and the
// caller's bookmarked ones among them, most recently bookmarked first.
func (s *ListingService) Discover(ctx context.Context, userID uint64) (*model.Discovery, error) {
	var (
		listings  []model.BoardingHouse
		bookmarks []model.Bookmark
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		listings, err = s.stores.Listings.ListDiscoverable(gctx)
		return errors.Wrap(err, "list listings")
	})
	g.Go(func() (err error) {
		bookmarks, err = s.stores.Bookmarks.ListByUser(gctx, userID)
		return errors.Wrap(err, "list bookmarks")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views, err := s.views(ctx, listings)
	if err != nil {
		return nil, err
	}

	out := &model.Discovery{All: []model.ListingView{}, Bookmarked: []model.BookmarkedListing{}}
	byID := make(map[uint64]model.ListingView, len(views))
	for _, v := range views {
		if v.AvailableRoom <= 0 {
			continue
		}
		out.All = append(out.All, v)
		byID[v.ID] = v
	}
	sort.SliceStable(out.All, func(i, j int) bool {
		return out.All[i].AverageRating > out.All[j].AverageRating
	})

	for _, bm := range bookmarks {
		if v, ok := byID[bm.BoardingHouseID]; ok {
			out.Bookmarked = append(out.Bookmarked, model.BookmarkedListing{ListingView: v, BookmarkDate: bm.BookmarkDate})
		}
	}
	sort.SliceStable(out.Bookmarked, func(i, j int) bool {
		return out.Bookmarked[i].BookmarkDate.After(out.Bookmarked[j].BookmarkDate)
	})
	return out, nil
}

// KeyLocations lists the distinct districts and subdistricts of bookable
// listings that still have a free room.
func (s *ListingService) KeyLocations(ctx context.Context) (*model.KeyLocations, error) {
	listings, err := s.stores.Listings.ListDiscoverable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list listings")
	}
	ids := make([]uint64, len(listings))
	for i, b := range listings {
		ids[i] = b.ID
	}
	active, err := s.stores.Bookings.CountByListing(ctx, ids, true)
	if err != nil {
		return nil, errors.Wrap(err, "count bookings")
	}

	var districts, subdistricts []string
	for _, b := range listings {
		if availableRooms(b.MaxCapacity, active[b.ID]) <= 0 {
			continue
		}
		districts = append(districts, b.District)
		subdistricts = append(subdistricts, b.Subdistrict)
	}
	out := &model.KeyLocations{District: distinct(districts), Subdistrict: distinct(subdistricts)}
	out.All = append(append([]string{}, out.District...), out.Subdistrict...)
	return out, nil
}

// Detail is the mobile listing page for userID.
func (s *ListingService) Detail(ctx context.Context, userID, id uint64) (*model.ListingDetail, error) {
	b, err := s.stores.Listings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get listing")
	}

	var (
		views     []model.ListingView
		panoramas []model.Panorama
		reviews   []model.ReviewWithUser
		bookmark  *model.Bookmark
		booking   *model.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = s.views(gctx, []model.BoardingHouse{*b})
		return err
	})
	g.Go(func() (err error) {
		panoramas, err = s.stores.Panoramas.ListByListing(gctx, id)
		return errors.Wrap(err, "list panoramas")
	})
	g.Go(func() (err error) {
		reviews, err = s.stores.Reviews.ListByListing(gctx, id)
		return errors.Wrap(err, "list reviews")
	})
	g.Go(func() error {
		bm, err := s.stores.Bookmarks.Find(gctx, userID, id)
		if err != nil && !isNotFound(err) {
			return errors.Wrap(err, "find bookmark")
		}
		bookmark = bm
		return nil
	})
	g.Go(func() error {
		bk, err := s.stores.Bookings.FindActive(gctx, userID, id)
		if err != nil && !isNotFound(err) {
			return errors.Wrap(err, "find booking")
		}
		booking = bk
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &model.ListingDetail{
		ListingView:  views[0],
		Panoramas:    panoramas,
		Reviews:      reviews,
		IsBookmarked: bookmark != nil,
		Booking:      booking,
		Links:        contactLinks(b.Location, b.Phone),
	}
	for i := range reviews {
		if reviews[i].UserID == userID {
			own := reviews[i].Review
			out.Review = &own
			break
		}
	}
	return out, nil
}

// Register creates a pending listing from the web registration form and
// tells the owner to wait for confirmation.
func (s *ListingService) Register(ctx context.Context, in RegisterListingInput, pictures []model.Upload) (*model.ListingView, error) {
	if err := check(in, MsgIncomplete); err != nil {
		return nil, err
	}
	capacity, price, err := in.parse()
	if err != nil {
		return nil, err
	}
	if len(pictures) == 0 {
		return nil, newError(KindValidation, MsgPictureRequired)
	}
	if err := emailFree(ctx, s.stores.Identity, in.Email, nil); err != nil {
		return nil, err
	}

	urls, err := s.saveAll(ctx, CategoryBoarding, pictures)
	if err != nil {
		return nil, err
	}
	b := &model.BoardingHouse{Email: in.Email}
	in.apply(b, capacity, price)
	if err := s.stores.Listings.Create(ctx, b, urls); err != nil {
		s.removeFiles(ctx, urls)
		if isDuplicate(err) {
			return nil, errEmailTaken
		}
		return nil, errors.Wrap(err, "create listing")
	}

	s.notifier.Dispatch(model.Notification{
		Phone: b.Phone,
		Text:  registrationMessage(s.opts.AppName, b.Name),
		Kind:  model.NotifyRegistration,
	})

	views, err := s.views(ctx, []model.BoardingHouse{*b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// saveAll stores uploads concurrently, keeping their order.  On failure the
// objects already written are removed.
func (s *ListingService) saveAll(ctx context.Context, category string, files []model.Upload) ([]string, error) {
	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() (err error) {
			urls[i], err = s.files.Save(gctx, category, f)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		var saved []string
		for _, u := range urls {
			if u != "" {
				saved = append(saved, u)
			}
		}
		s.removeFiles(ctx, saved)
		return nil, errors.Wrap(err, "store pictures")
	}
	return urls, nil
}

// AdminList returns every listing, newest first, with its booking count.
func (s *ListingService) AdminList(ctx context.Context) ([]model.AdminListing, error) {
	listings, err := s.stores.Listings.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list listings")
	}
	ids := make([]uint64, len(listings))
	for i, b := range listings {
		ids[i] = b.ID
	}

	var (
		views  []model.ListingView
		counts map[uint64]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = s.views(gctx, listings)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.stores.Bookings.CountByListing(gctx, ids, false)
		return errors.Wrap(err, "count bookings")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.AdminListing, len(views))
	for i, v := range views {
		out[i] = model.AdminListing{ListingView: v, BookingCount: counts[v.ID]}
	}
	return out, nil
}

// Dashboard aggregates platform-wide counts for admins.
func (s *ListingService) Dashboard(ctx context.Context) (*model.PlatformDashboard, error) {
	var out model.PlatformDashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.ListingCounts, err = s.stores.Listings.Counts(gctx)
		return errors.Wrap(err, "count listings")
	})
	g.Go(func() (err error) {
		out.TotalUser, err = s.stores.Users.Count(gctx)
		return errors.Wrap(err, "count users")
	})
	g.Go(func() (err error) {
		out.TotalBooking, out.TotalActiveBooking, err = s.stores.Bookings.Totals(gctx)
		return errors.Wrap(err, "count bookings")
	})
	g.Go(func() (err error) {
		out.TotalReview, err = s.stores.Reviews.Count(gctx)
		return errors.Wrap(err, "count reviews")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Managed is the web listing page with its booking dashboard.
func (s *ListingService) Managed(ctx context.Context, p Principal, pathID uint64) (*model.ManagedListing, error) {
	id := p.listingTarget(pathID)
	b, err := s.stores.Listings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get listing")
	}

	var (
		views     []model.ListingView
		panoramas []model.Panorama
		reviews   []model.ReviewWithUser
		total     map[uint64]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = s.views(gctx, []model.BoardingHouse{*b})
		return err
	})
	g.Go(func() (err error) {
		panoramas, err = s.stores.Panoramas.ListByListing(gctx, id)
		return errors.Wrap(err, "list panoramas")
	})
	g.Go(func() (err error) {
		reviews, err = s.stores.Reviews.ListByListing(gctx, id)
		return errors.Wrap(err, "list reviews")
	})
	g.Go(func() (err error) {
		total, err = s.stores.Bookings.CountByListing(gctx, []uint64{id}, false)
		return errors.Wrap(err, "count bookings")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v := views[0]
	filled := b.MaxCapacity - v.AvailableRoom
	return &model.ManagedListing{
		ListingView: v,
		Panoramas:   panoramas,
		Reviews:     reviews,
		Dashboard: model.ListingDashboard{
			TotalTransaction: total[id],
			TotalRoom:        b.MaxCapacity,
			TotalFilledRoom:  filled,
			TotalFreeRoom:    v.AvailableRoom,
		},
	}, nil
}

// Edit replaces the descriptive fields of a listing.  The login email is
// not editable here.
func (s *ListingService) Edit(ctx context.Context, p Principal, pathID uint64, in ListingDetails) (*model.BoardingHouse, error) {
	if err := check(in, MsgIncomplete); err != nil {
		return nil, err
	}
	capacity, price, err := in.parse()
	if err != nil {
		return nil, err
	}
	id := p.listingTarget(pathID)
	b, err := s.stores.Listings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get listing")
	}
	in.apply(b, capacity, price)
	if err := s.stores.Listings.UpdateDetails(ctx, b); err != nil {
		return nil, storeErr(err, "update listing")
	}
	return s.reload(ctx, id)
}

// Confirm records an admin decision on a listing.
//
// Approving requires at least one panorama.  A fresh credential is issued
// when the listing leaves the pending state or has never had one; it is
// sent to the owner once and only its hash is kept.  Approving a listing
// that already has a credential re-activates it.  Denying hides the listing
// and leaves the credential in place.
func (s *ListingService) Confirm(ctx context.Context, id uint64, confirm bool) (*model.BoardingHouse, error) {
	b, err := s.stores.Listings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get listing")
	}

	var (
		hash *string
		note = model.Notification{Phone: b.Phone, Kind: model.NotifyRejection, Text: rejectionMessage(s.opts.AppName, b.Name)}
	)
	if confirm {
		n, err := s.stores.Panoramas.CountByListing(ctx, id)
		if err != nil {
			return nil, errors.Wrap(err, "count panoramas")
		}
		if n == 0 {
			return nil, newError(KindPreconditionFailed, MsgPanoramaRequired)
		}

		if b.IsPending || b.PasswordHash == nil {
			password, err := utils.RandomString(8)
			if err != nil {
				return nil, errors.Wrap(err, "generate credential")
			}
			h, err := utils.HashPassword(password, s.opts.BcryptCost)
			if err != nil {
				return nil, errors.Wrap(err, "hash credential")
			}
			hash = &h
			note.Kind = model.NotifyConfirmation
			note.Text = credentialMessage(s.opts.AppName, b.Email, password)
		} else {
			note.Kind = model.NotifyReactivation
			note.Text = reactivationMessage(s.opts.AppName, b.Name)
		}
	}

	if err := s.stores.Listings.SetConfirmation(ctx, id, confirm, hash); err != nil {
		return nil, storeErr(err, "set confirmation")
	}
	s.notifier.Dispatch(note)
	return s.reload(ctx, id)
}

// ToggleActive flips the activation flag.
func (s *ListingService) ToggleActive(ctx context.Context, p Principal, pathID uint64) (*model.BoardingHouse, error) {
	id := p.listingTarget(pathID)
	b, err := s.stores.Listings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get listing")
	}
	if err := s.stores.Listings.SetActive(ctx, id, !b.IsActive); err != nil {
		return nil, storeErr(err, "set active")
	}
	b.IsActive = !b.IsActive
	return b, nil
}

// AddPanorama appends a panorama image to a listing.
func (s *ListingService) AddPanorama(ctx context.Context, p Principal, pathID uint64, f *model.Upload) (*model.Panorama, error) {
	if f == nil {
		return nil, newError(KindValidation, MsgPanoramaRequired)
	}
	id := p.listingTarget(pathID)
	if _, err := s.stores.Listings.GetByID(ctx, id); err != nil {
		return nil, storeErr(err, "get listing")
	}
	url, err := s.files.Save(ctx, CategoryPanorama, *f)
	if err != nil {
		return nil, errors.Wrap(err, "store panorama")
	}
	pano, err := s.stores.Panoramas.Add(ctx, id, url)
	if err != nil {
		s.removeFiles(ctx, []string{url})
		return nil, storeErr(err, "add panorama")
	}
	return pano, nil
}

// DeletePanorama removes one panorama of a listing and its stored image.
func (s *ListingService) DeletePanorama(ctx context.Context, p Principal, pathID, panoramaID uint64) error {
	if panoramaID == 0 {
		return errIncomplete
	}
	id := p.listingTarget(pathID)
	pano, err := s.stores.Panoramas.GetByID(ctx, panoramaID)
	if err != nil {
		return storeErr(err, "get panorama")
	}
	if pano.BoardingHouseID != id {
		return errNotFound
	}
	if err := s.stores.Panoramas.Delete(ctx, panoramaID); err != nil {
		return storeErr(err, "delete panorama")
	}
	s.removeFiles(ctx, []string{pano.Picture})
	return nil
}

// SetOwnerPicture replaces the owner's photo on the caller's listing.
func (s *ListingService) SetOwnerPicture(ctx context.Context, listingID uint64, f *model.Upload) (*model.BoardingHouse, error) {
	if f == nil {
		return nil, newError(KindValidation, MsgPictureRequired)
	}
	b, err := s.stores.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, storeErr(err, "get listing")
	}
	url, err := s.files.Save(ctx, CategoryProfile, *f)
	if err != nil {
		return nil, errors.Wrap(err, "store owner picture")
	}
	if err := s.stores.Listings.SetOwnerPicture(ctx, listingID, &url); err != nil {
		s.removeFiles(ctx, []string{url})
		return nil, storeErr(err, "set owner picture")
	}
	if b.OwnerPicture != nil {
		s.removeFiles(ctx, []string{*b.OwnerPicture})
	}
	b.OwnerPicture = &url
	return b, nil
}

func (s *ListingService) reload(ctx context.Context, id uint64) (*model.BoardingHouse, error) {
	b, err := s.stores.Listings.GetByID(ctx, id)
	return b, storeErr(err, "reload listing")
}

func (s *ListingService) removeFiles(ctx context.Context, urls []string) {
	for _, u := range urls {
		if err := s.files.Remove(ctx, u); err != nil {
			s.opts.Log.WithError(err).WithField("url", u).Warn("remove stored picture")
		}
	}
}
