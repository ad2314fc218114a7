package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// BookingRepo reads and writes the 'bookings' table.  The generated
// active_slot column carries a unique key so at most one active booking can
// exist per (user, listing); a second insert fails with ErrDuplicate.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = "id, user_id, boarding_house_id, is_active, booked_date"

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.BoardingHouseID, &b.IsActive, &b.BookedDate); err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

// Create inserts an active booking stamped with at.
func (r *BookingRepo) Create(ctx context.Context, userID, boardingHouseID uint64, at time.Time) (*model.Booking, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO bookings (user_id, boarding_house_id, is_active, booked_date) VALUES (?,?,TRUE,?)",
		userID, boardingHouseID, at)
	if err != nil {
		return nil, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Booking{
		ID:              uint64(id),
		UserID:          userID,
		BoardingHouseID: boardingHouseID,
		IsActive:        true,
		BookedDate:      at,
	}, nil
}

// GetByID fetches a booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=?", id))
}

// FindActive returns the user's active booking on a listing, or ErrNotFound.
func (r *BookingRepo) FindActive(ctx context.Context, userID, boardingHouseID uint64) (*model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+` FROM bookings
		 WHERE user_id=? AND boarding_house_id=? AND is_active=TRUE LIMIT 1`,
		userID, boardingHouseID))
}

// Deactivate checks a booking out.  There is no way back to active.
func (r *BookingRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE bookings SET is_active=FALSE WHERE id=?", id)
	return affected(res, err)
}

// CountByListing returns the number of bookings per listing id.  With
// activeOnly only active bookings are counted.  Listings without bookings
// are absent from the map.
func (r *BookingRepo) CountByListing(ctx context.Context, ids []uint64, activeOnly bool) (map[uint64]int, error) {
	out := make(map[uint64]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT boarding_house_id, COUNT(*) FROM bookings
	      WHERE boarding_house_id IN (` + placeholders(len(ids)) + `)`
	if activeOnly {
		q += " AND is_active = TRUE"
	}
	q += " GROUP BY boarding_house_id"

	rows, err := r.db.QueryContext(ctx, q, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id uint64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// ListByListing returns a listing's bookings, newest first, joined with the
// booking user.
func (r *BookingRepo) ListByListing(ctx context.Context, boardingHouseID uint64, activeOnly bool) ([]model.BookingWithUser, error) {
	q := `SELECT b.id, b.is_active, b.booked_date, u.id, u.name, u.email, u.phone, u.picture
	      FROM bookings b JOIN users u ON u.id = b.user_id
	      WHERE b.boarding_house_id = ?`
	if activeOnly {
		q += " AND b.is_active = TRUE"
	}
	q += " ORDER BY b.booked_date DESC, b.id DESC"

	rows, err := r.db.QueryContext(ctx, q, boardingHouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingWithUser{}
	for rows.Next() {
		var (
			b   model.BookingWithUser
			pic sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.IsActive, &b.BookedDate,
			&b.User.ID, &b.User.Name, &b.User.Email, &b.User.Phone, &pic); err != nil {
			return nil, err
		}
		b.User.Picture = stringPtr(pic)
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByUser returns the user's bookings joined with the listing name,
// area and first picture, for the activity feed.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingActivity, error) {
	const q = `SELECT b.id, b.user_id, b.boarding_house_id, b.is_active, b.booked_date,
	                  h.name, h.district, h.subdistrict,
	                  (SELECT p.picture FROM pictures p WHERE p.boarding_house_id = h.id ORDER BY p.id LIMIT 1)
	           FROM bookings b JOIN boarding_houses h ON h.id = b.boarding_house_id
	           WHERE b.user_id = ?
	           ORDER BY b.booked_date DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookingActivity
	for rows.Next() {
		var (
			a   model.BookingActivity
			pic sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.BoardingHouseID, &a.IsActive, &a.BookedDate,
			&a.Listing.Name, &a.Listing.District, &a.Listing.Subdistrict, &pic); err != nil {
			return nil, err
		}
		a.Listing.ID = a.BoardingHouseID
		a.Listing.Picture = stringPtr(pic)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Totals returns the number of bookings and of active bookings.
func (r *BookingRepo) Totals(ctx context.Context) (total, active int, err error) {
	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(is_active), 0) FROM bookings").Scan(&total, &active)
	return total, active, err
}
