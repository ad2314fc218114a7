package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// ReviewRepo reads and writes the 'reviews' table.  (user_id,
// boarding_house_id) is unique, so a second review fails with ErrDuplicate.
type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review and fills in its ID.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (user_id, boarding_house_id, rating, comment, created_at) VALUES (?,?,?,?,?)",
		rv.UserID, rv.BoardingHouseID, rv.Rating, rv.Comment, rv.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// Find returns the user's review of a listing, or ErrNotFound.
func (r *ReviewRepo) Find(ctx context.Context, userID, boardingHouseID uint64) (*model.Review, error) {
	var rv model.Review
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, boarding_house_id, rating, comment, created_at FROM reviews
		 WHERE user_id=? AND boarding_house_id=? LIMIT 1`, userID, boardingHouseID).
		Scan(&rv.ID, &rv.UserID, &rv.BoardingHouseID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &rv, nil
}

// ListByListing returns a listing's reviews, newest first, with their
// authors.
func (r *ReviewRepo) ListByListing(ctx context.Context, boardingHouseID uint64) ([]model.ReviewWithUser, error) {
	const q = `SELECT r.id, r.user_id, r.boarding_house_id, r.rating, r.comment, r.created_at,
	                  u.id, u.name, u.email, u.phone, u.picture
	           FROM reviews r JOIN users u ON u.id = r.user_id
	           WHERE r.boarding_house_id = ?
	           ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, boardingHouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ReviewWithUser{}
	for rows.Next() {
		var (
			rv  model.ReviewWithUser
			pic sql.NullString
		)
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.BoardingHouseID, &rv.Rating, &rv.Comment, &rv.CreatedAt,
			&rv.User.ID, &rv.User.Name, &rv.User.Email, &rv.User.Phone, &pic); err != nil {
			return nil, err
		}
		rv.User.Picture = stringPtr(pic)
		out = append(out, rv)
	}
	return out, rows.Err()
}

// ListByUser returns the user's reviews joined with the listing, for the
// activity feed.
func (r *ReviewRepo) ListByUser(ctx context.Context, userID uint64) ([]model.ReviewActivity, error) {
	const q = `SELECT r.id, r.user_id, r.boarding_house_id, r.rating, r.comment, r.created_at,
	                  h.name, h.district, h.subdistrict,
	                  (SELECT p.picture FROM pictures p WHERE p.boarding_house_id = h.id ORDER BY p.id LIMIT 1)
	           FROM reviews r JOIN boarding_houses h ON h.id = r.boarding_house_id
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ReviewActivity
	for rows.Next() {
		var (
			a   model.ReviewActivity
			pic sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.BoardingHouseID, &a.Rating, &a.Comment, &a.CreatedAt,
			&a.Listing.Name, &a.Listing.District, &a.Listing.Subdistrict, &pic); err != nil {
			return nil, err
		}
		a.Listing.ID = a.BoardingHouseID
		a.Listing.Picture = stringPtr(pic)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Ratings returns the ratings of the given listings keyed by listing id.
func (r *ReviewRepo) Ratings(ctx context.Context, ids []uint64) (map[uint64][]int, error) {
	out := make(map[uint64][]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT boarding_house_id, rating FROM reviews WHERE boarding_house_id IN ("+placeholders(len(ids))+")",
		idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id     uint64
			rating int
		)
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, err
		}
		out[id] = append(out[id], rating)
	}
	return out, rows.Err()
}

// Count returns the number of reviews on the platform.
func (r *ReviewRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews").Scan(&n)
	return n, err
}
