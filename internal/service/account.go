package service

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/apparte-kost/internal/model"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

// EditProfileInput is the mobile profile edit body.
type EditProfileInput struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// ChangePasswordInput is the mobile change-password body.
type ChangePasswordInput struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// AccountService manages an app user's own profile and activity feed.
type AccountService struct {
	stores Stores
	files  FileStore
	opts   Options
}

func NewAccountService(stores Stores, files FileStore, opts Options) *AccountService {
	return &AccountService{stores: stores, files: files, opts: opts.withDefaults()}
}

// Profile returns the caller's account.
func (s *AccountService) Profile(ctx context.Context, userID uint64) (*model.User, error) {
	u, err := s.stores.Users.GetByID(ctx, userID)
	return u, storeErr(err, "get user")
}

// Edit updates name, phone and email.  The email may stay the caller's own
// but may not belong to any other account.
func (s *AccountService) Edit(ctx context.Context, userID uint64, in EditProfileInput) (*model.User, error) {
	if err := check(in, MsgIncomplete); err != nil {
		return nil, err
	}
	self := &model.EmailOwner{Kind: utils.RoleUser, ID: userID}
	if err := emailFree(ctx, s.stores.Identity, in.Email, self); err != nil {
		return nil, err
	}
	if err := s.stores.Users.UpdateProfile(ctx, userID, in.Name, in.Phone, in.Email); err != nil {
		if isDuplicate(err) {
			return nil, errEmailTaken
		}
		return nil, storeErr(err, "update profile")
	}
	return s.Profile(ctx, userID)
}

// SetPicture stores a new profile picture and removes the previous one.
func (s *AccountService) SetPicture(ctx context.Context, userID uint64, f *model.Upload) (*model.User, error) {
	if f == nil {
		return nil, errIncomplete
	}
	u, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "get user")
	}
	url, err := s.files.Save(ctx, CategoryProfile, *f)
	if err != nil {
		return nil, errors.Wrap(err, "store profile picture")
	}
	if err := s.stores.Users.UpdatePicture(ctx, userID, &url); err != nil {
		s.removeFile(ctx, url)
		return nil, storeErr(err, "update picture")
	}
	if u.Picture != nil {
		s.removeFile(ctx, *u.Picture)
	}
	return s.Profile(ctx, userID)
}

// DeletePicture clears the profile picture.
func (s *AccountService) DeletePicture(ctx context.Context, userID uint64) (*model.User, error) {
	u, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "get user")
	}
	if err := s.stores.Users.UpdatePicture(ctx, userID, nil); err != nil {
		return nil, storeErr(err, "clear picture")
	}
	if u.Picture != nil {
		s.removeFile(ctx, *u.Picture)
	}
	u.Picture = nil
	return u, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint64, in ChangePasswordInput) (*model.User, error) {
	if err := check(in, MsgIncomplete); err != nil {
		return nil, err
	}
	if in.NewPassword != in.ConfirmPassword {
		return nil, newError(KindValidation, MsgPasswordMismatch)
	}
	u, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "get user")
	}
	if !utils.VerifyPassword(u.PasswordHash, in.OldPassword) {
		return nil, newError(KindValidation, MsgWrongOldPassword)
	}
	hash, err := utils.HashPassword(in.NewPassword, s.opts.BcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	if err := s.stores.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return nil, storeErr(err, "update password")
	}
	u.PasswordHash = hash
	return u, nil
}

// History merges the caller's bookings and reviews into one feed, newest
// first.  Entries with the same timestamp keep bookings before reviews.
func (s *AccountService) History(ctx context.Context, userID uint64) ([]model.HistoryEvent, error) {
	var (
		bookings []model.BookingActivity
		reviews  []model.ReviewActivity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bookings, err = s.stores.Bookings.ListByUser(gctx, userID)
		return errors.Wrap(err, "list bookings")
	})
	g.Go(func() (err error) {
		reviews, err = s.stores.Reviews.ListByUser(gctx, userID)
		return errors.Wrap(err, "list reviews")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.opts.Now()
	events := make([]model.HistoryEvent, 0, len(bookings)+len(reviews))
	for _, b := range bookings {
		events = append(events, historyEvent(model.ActivityBooking, b.Listing,
			bookingHistoryMessage(b.Listing.Name), b.BookedDate, now))
	}
	for _, r := range reviews {
		events = append(events, historyEvent(model.ActivityReview, r.Listing,
			reviewHistoryMessage(r.Rating, r.Listing.Name), r.CreatedAt, now))
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func historyEvent(kind string, l model.ListingSummary, msg string, at, now time.Time) model.HistoryEvent {
	return model.HistoryEvent{
		Type:            kind,
		BoardingHouseID: l.ID,
		Message:         msg,
		District:        l.District,
		Subdistrict:     l.Subdistrict,
		Time:            at,
		Picture:         l.Picture,
		RelativeTime:    utils.RelativeTime(at, now),
		CreatedAt:       at,
	}
}

func (s *AccountService) removeFile(ctx context.Context, url string) {
	if err := s.files.Remove(ctx, url); err != nil {
		s.opts.Log.WithError(err).WithField("url", url).Warn("remove stored picture")
	}
}
