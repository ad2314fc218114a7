package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// ReviewInput is the body of the review endpoint.
type ReviewInput struct {
	BoardingHouseID uint64 `validate:"required"`
	Rating          int    `validate:"required"`
	Comment         string
}

// ReviewService records reviews and bookmark toggles.
type ReviewService struct {
	stores Stores
	opts   Options
}

func NewReviewService(stores Stores, opts Options) *ReviewService {
	return &ReviewService{stores: stores, opts: opts.withDefaults()}
}

// Review adds the caller's single review of a listing.
func (s *ReviewService) Review(ctx context.Context, userID uint64, in ReviewInput) (*model.Review, error) {
	if err := check(in, MsgIncomplete); err != nil {
		return nil, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, newError(KindValidation, MsgRatingRange)
	}
	if _, _, err := userAndListing(ctx, s.stores, userID, in.BoardingHouseID); err != nil {
		return nil, err
	}

	existing, err := s.stores.Reviews.Find(ctx, userID, in.BoardingHouseID)
	if err != nil && !isNotFound(err) {
		return nil, errors.Wrap(err, "find review")
	}
	if existing != nil {
		return nil, newError(KindConflict, MsgAlreadyReviewed)
	}

	rv := &model.Review{
		UserID:          userID,
		BoardingHouseID: in.BoardingHouseID,
		Rating:          in.Rating,
		Comment:         in.Comment,
		CreatedAt:       s.opts.Now(),
	}
	if err := s.stores.Reviews.Create(ctx, rv); err != nil {
		if isDuplicate(err) {
			return nil, newError(KindConflict, MsgAlreadyReviewed)
		}
		return nil, errors.Wrap(err, "create review")
	}
	return rv, nil
}

// ToggleBookmark removes the caller's bookmark on a listing if present and
// adds one otherwise.  It reports whether the listing is bookmarked
// afterwards.
func (s *ReviewService) ToggleBookmark(ctx context.Context, userID uint64, in ListingRef) (bool, error) {
	if err := check(in, MsgIncomplete); err != nil {
		return false, err
	}
	if _, _, err := userAndListing(ctx, s.stores, userID, in.BoardingHouseID); err != nil {
		return false, err
	}

	existing, err := s.stores.Bookmarks.Find(ctx, userID, in.BoardingHouseID)
	switch {
	case err == nil:
		if err := s.stores.Bookmarks.Delete(ctx, existing.ID); err != nil && !isNotFound(err) {
			return false, errors.Wrap(err, "delete bookmark")
		}
		return false, nil
	case !isNotFound(err):
		return false, errors.Wrap(err, "find bookmark")
	}

	if _, err := s.stores.Bookmarks.Create(ctx, userID, in.BoardingHouseID, s.opts.Now()); err != nil && !isDuplicate(err) {
		return false, errors.Wrap(err, "create bookmark")
	}
	return true, nil
}
