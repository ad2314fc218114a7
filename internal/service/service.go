// Package service implements the marketplace rules: identity and access,
// accounts, the listing lifecycle, bookings, reviews and bookmarks, and the
// activity feed.  Services read current state from the stores on every
// call and return *Error values for rule violations.
package service

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/repository"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

// Stores bundles the persistence dependencies shared by the services.
type Stores struct {
	Users     UserStore
	Admins    AdminStore
	Identity  IdentityStore
	Listings  BoardingHouseStore
	Panoramas PanoramaStore
	Bookings  BookingStore
	Reviews   ReviewStore
	Bookmarks BookmarkStore
}

// TokenSigner issues access tokens.
type TokenSigner interface {
	Issue(id uint64, role string) (string, error)
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	ID   uint64
	Role string
}

// listingTarget resolves which listing a web operation acts on.  A listing
// account always acts on itself whatever id is in the path; an admin acts
// on the path id.
func (p Principal) listingTarget(pathID uint64) uint64 {
	if p.Role == utils.RoleBoardingHouse {
		return p.ID
	}
	return pathID
}

// Options carries the settings the services need from configuration.
type Options struct {
	BcryptCost int
	AppName    string
	Now        func() time.Time
	Log        logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.BcryptCost == 0 {
		o.BcryptCost = 10
	}
	if o.AppName == "" {
		o.AppName = "ApparteKost"
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	return o
}

// storeErr turns a missing row into a NotFound error and wraps anything
// else as an internal failure.  Duplicate keys are handled by the caller
// because their message depends on the operation.
func storeErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return errNotFound
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return errors.Wrap(err, op)
}

func isNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }

func isDuplicate(err error) bool { return errors.Is(err, repository.ErrDuplicate) }
