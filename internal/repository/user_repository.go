package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// UserRepo reads and writes the 'users' table.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, email, password_hash, name, phone, picture, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u   model.User
		pic sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &pic, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	u.Picture = stringPtr(pic)
	return &u, nil
}

// Create inserts a user and fills in its ID and timestamps.  The email is
// normalised to lower case; a taken email yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, name, phone) VALUES (?,?,?,?)",
		u.Email, u.PasswordHash, u.Name, u.Phone)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a user by normalised email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email)))
}

// UpdateProfile replaces name, phone and email.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, phone, email string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET name=?, phone=?, email=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		name, phone, normalizeEmail(email), id)
	return affected(res, err)
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", hash, id)
	return affected(res, err)
}

// UpdatePicture sets or clears (nil) the profile picture URL.
func (r *UserRepo) UpdatePicture(ctx context.Context, id uint64, picture *string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET picture=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", nullString(picture), id)
	return affected(res, err)
}

// Count returns the number of registered users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// affected maps a write result to ErrNotFound when no row matched.  The DSN
// sets clientFoundRows, so an UPDATE that leaves values unchanged still
// counts its matched row.
func affected(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
