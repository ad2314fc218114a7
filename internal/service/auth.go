package service

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/apparte-kost/internal/model"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

// LoginInput is the body of both login endpoints.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterUserInput is the mobile registration body.
type RegisterUserInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
}

// AuthService verifies credentials and issues role-scoped tokens.
type AuthService struct {
	stores Stores
	tokens TokenSigner
	opts   Options
}

func NewAuthService(stores Stores, tokens TokenSigner, opts Options) *AuthService {
	return &AuthService{stores: stores, tokens: tokens, opts: opts.withDefaults()}
}

func (s *AuthService) session(id uint64, role string) (*model.Session, error) {
	token, err := s.tokens.Issue(id, role)
	if err != nil {
		return nil, errors.Wrap(err, "issue token")
	}
	return &model.Session{AccessToken: token, Role: role}, nil
}

// MobileLogin authenticates an app user.
func (s *AuthService) MobileLogin(ctx context.Context, in LoginInput) (*model.Session, error) {
	if err := check(in, MsgLoginRequired); err != nil {
		return nil, err
	}
	u, err := s.stores.Users.GetByEmail(ctx, in.Email)
	if isNotFound(err) {
		return nil, newError(KindInvalidCredentials, MsgWrongLogin)
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, newError(KindInvalidCredentials, MsgWrongPassword)
	}
	return s.session(u.ID, utils.RoleUser)
}

// RegisterUser creates an app account and logs it in.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterUserInput) (*model.Registration, error) {
	if err := check(in, MsgIncomplete); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, nil); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	u := &model.User{Email: in.Email, PasswordHash: hash, Name: in.Name, Phone: in.Phone}
	if err := s.stores.Users.Create(ctx, u); err != nil {
		if isDuplicate(err) {
			return nil, errEmailTaken
		}
		return nil, errors.Wrap(err, "create user")
	}
	sess, err := s.session(u.ID, utils.RoleUser)
	if err != nil {
		return nil, err
	}
	return &model.Registration{User: *u, Session: *sess}, nil
}

// WebLogin authenticates an admin or a listing account.  Both tables are
// read concurrently; an admin match takes priority.
func (s *AuthService) WebLogin(ctx context.Context, in LoginInput) (*model.Session, error) {
	if err := check(in, MsgLoginRequired); err != nil {
		return nil, err
	}

	var (
		admin   *model.Admin
		listing *model.BoardingHouse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.stores.Admins.GetByEmail(gctx, in.Email)
		if err != nil && !isNotFound(err) {
			return errors.Wrap(err, "find admin")
		}
		admin = a
		return nil
	})
	g.Go(func() error {
		b, err := s.stores.Listings.GetByEmail(gctx, in.Email)
		if err != nil && !isNotFound(err) {
			return errors.Wrap(err, "find boarding house")
		}
		listing = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	switch {
	case admin != nil:
		if !utils.VerifyPassword(admin.PasswordHash, in.Password) {
			return nil, newError(KindInvalidCredentials, MsgWrongPassword)
		}
		return s.session(admin.ID, utils.RoleAdmin)
	case listing != nil:
		if !listing.IsConfirmed {
			return nil, newError(KindNotConfirmed, MsgNotConfirmed)
		}
		if listing.PasswordHash == nil || !utils.VerifyPassword(*listing.PasswordHash, in.Password) {
			return nil, newError(KindInvalidCredentials, MsgWrongPassword)
		}
		return s.session(listing.ID, utils.RoleBoardingHouse)
	}
	return nil, newError(KindInvalidCredentials, MsgEmailNotFound)
}

// ensureEmailFree fails with a conflict when email belongs to any account
// other than self.
func (s *AuthService) ensureEmailFree(ctx context.Context, email string, self *model.EmailOwner) error {
	return emailFree(ctx, s.stores.Identity, email, self)
}

func emailFree(ctx context.Context, identity IdentityStore, email string, self *model.EmailOwner) error {
	owner, err := identity.EmailOwner(ctx, email)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "check email")
	}
	if self != nil && owner.Kind == self.Kind && owner.ID == self.ID {
		return nil
	}
	return errEmailTaken
}
