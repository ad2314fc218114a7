package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// BoardingHouseRepo reads and writes listings and their registration
// pictures.
type BoardingHouseRepo struct{ db *sql.DB }

func NewBoardingHouseRepo(db *sql.DB) *BoardingHouseRepo { return &BoardingHouseRepo{db: db} }

const listingColumns = `id, name, owner, email, phone, description, district, subdistrict, location,
	max_capacity, price, is_pending, is_confirmed, is_active, password_hash, owner_picture, created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (*model.BoardingHouse, error) {
	var (
		b        model.BoardingHouse
		pwd, pic sql.NullString
	)
	err := row.Scan(&b.ID, &b.Name, &b.Owner, &b.Email, &b.Phone, &b.Description, &b.District,
		&b.Subdistrict, &b.Location, &b.MaxCapacity, &b.Price, &b.IsPending, &b.IsConfirmed,
		&b.IsActive, &pwd, &pic, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	b.PasswordHash = stringPtr(pwd)
	b.OwnerPicture = stringPtr(pic)
	return &b, nil
}

func (r *BoardingHouseRepo) list(ctx context.Context, q string, args ...any) ([]model.BoardingHouse, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BoardingHouse
	for rows.Next() {
		b, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Create inserts a pending listing together with its picture URLs in one
// transaction.  The listing's ID and timestamps are filled in.
func (r *BoardingHouseRepo) Create(ctx context.Context, b *model.BoardingHouse, pictures []string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b.Email = normalizeEmail(b.Email)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO boarding_houses
		   (name, owner, email, phone, description, district, subdistrict, location,
		    max_capacity, price, is_pending, is_confirmed, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?,?,TRUE,FALSE,FALSE)`,
		b.Name, b.Owner, b.Email, b.Phone, b.Description, b.District, b.Subdistrict, b.Location,
		b.MaxCapacity, b.Price)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, p := range pictures {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO pictures (boarding_house_id, picture) VALUES (?,?)", id, p); err != nil {
			return err
		}
	}
	created, err := scanListing(tx.QueryRowContext(ctx,
		"SELECT "+listingColumns+" FROM boarding_houses WHERE id=?", id))
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	*b = *created
	return nil
}

// GetByID fetches a listing by id.
func (r *BoardingHouseRepo) GetByID(ctx context.Context, id uint64) (*model.BoardingHouse, error) {
	return scanListing(r.db.QueryRowContext(ctx,
		"SELECT "+listingColumns+" FROM boarding_houses WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a listing by its normalised login email.
func (r *BoardingHouseRepo) GetByEmail(ctx context.Context, email string) (*model.BoardingHouse, error) {
	return scanListing(r.db.QueryRowContext(ctx,
		"SELECT "+listingColumns+" FROM boarding_houses WHERE email=? LIMIT 1", normalizeEmail(email)))
}

// List returns every listing, newest first.
func (r *BoardingHouseRepo) List(ctx context.Context) ([]model.BoardingHouse, error) {
	return r.list(ctx, "SELECT "+listingColumns+" FROM boarding_houses ORDER BY created_at DESC, id DESC")
}

// ListDiscoverable returns listings that are active and confirmed and no
// longer pending.  Room availability is applied by the caller.
func (r *BoardingHouseRepo) ListDiscoverable(ctx context.Context) ([]model.BoardingHouse, error) {
	return r.list(ctx, "SELECT "+listingColumns+` FROM boarding_houses
		WHERE is_active = TRUE AND is_confirmed = TRUE AND is_pending = FALSE
		ORDER BY id`)
}

// UpdateDetails replaces the descriptive, capacity and price fields.  Email
// and status flags are left alone.
func (r *BoardingHouseRepo) UpdateDetails(ctx context.Context, b *model.BoardingHouse) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE boarding_houses SET name=?, owner=?, phone=?, description=?, district=?,
		   subdistrict=?, location=?, max_capacity=?, price=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		b.Name, b.Owner, b.Phone, b.Description, b.District, b.Subdistrict, b.Location,
		b.MaxCapacity, b.Price, b.ID)
	return affected(res, err)
}

// SetConfirmation records an admin decision.  The listing leaves the
// pending state either way.  A non-nil passwordHash replaces the login
// credential; nil keeps the current one.
func (r *BoardingHouseRepo) SetConfirmation(ctx context.Context, id uint64, confirmed bool, passwordHash *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE boarding_houses
		 SET is_confirmed=?, is_pending=FALSE, password_hash=COALESCE(?, password_hash),
		     updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		confirmed, nullString(passwordHash), id)
	return affected(res, err)
}

// SetActive sets the activation flag.
func (r *BoardingHouseRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE boarding_houses SET is_active=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", active, id)
	return affected(res, err)
}

// SetOwnerPicture sets or clears the owner's photo URL.
func (r *BoardingHouseRepo) SetOwnerPicture(ctx context.Context, id uint64, picture *string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE boarding_houses SET owner_picture=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		nullString(picture), id)
	return affected(res, err)
}

// Pictures returns the registration pictures of the given listings keyed by
// listing id, each slice in upload order.
func (r *BoardingHouseRepo) Pictures(ctx context.Context, ids []uint64) (map[uint64][]model.Picture, error) {
	out := make(map[uint64][]model.Picture, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, boarding_house_id, picture, created_at FROM pictures
		 WHERE boarding_house_id IN (`+placeholders(len(ids))+`) ORDER BY id`, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Picture
		if err := rows.Scan(&p.ID, &p.BoardingHouseID, &p.Picture, &p.CreatedAt); err != nil {
			return nil, err
		}
		out[p.BoardingHouseID] = append(out[p.BoardingHouseID], p)
	}
	return out, rows.Err()
}

// Counts aggregates listing states for the admin dashboard.
func (r *BoardingHouseRepo) Counts(ctx context.Context) (model.ListingCounts, error) {
	var c model.ListingCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(is_pending), 0),
		        COALESCE(SUM(is_confirmed), 0),
		        COALESCE(SUM(is_active), 0)
		 FROM boarding_houses`).Scan(&c.Total, &c.Pending, &c.Confirmed, &c.Active)
	return c, err
}
