package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// BookmarkRepo reads and writes the 'bookmarks' table.
type BookmarkRepo struct{ db *sql.DB }

func NewBookmarkRepo(db *sql.DB) *BookmarkRepo { return &BookmarkRepo{db: db} }

// Find returns the user's bookmark on a listing, or ErrNotFound.
func (r *BookmarkRepo) Find(ctx context.Context, userID, boardingHouseID uint64) (*model.Bookmark, error) {
	var b model.Bookmark
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, boarding_house_id, bookmark_date FROM bookmarks
		 WHERE user_id=? AND boarding_house_id=? LIMIT 1`, userID, boardingHouseID).
		Scan(&b.ID, &b.UserID, &b.BoardingHouseID, &b.BookmarkDate)
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

// Create saves a bookmark.
func (r *BookmarkRepo) Create(ctx context.Context, userID, boardingHouseID uint64, at time.Time) (*model.Bookmark, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO bookmarks (user_id, boarding_house_id, bookmark_date) VALUES (?,?,?)",
		userID, boardingHouseID, at)
	if err != nil {
		return nil, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Bookmark{ID: uint64(id), UserID: userID, BoardingHouseID: boardingHouseID, BookmarkDate: at}, nil
}

// Delete removes a bookmark row.
func (r *BookmarkRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id=?", id)
	return affected(res, err)
}

// ListByUser returns the user's bookmarks, most recent first.
func (r *BookmarkRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, boarding_house_id, bookmark_date FROM bookmarks
		 WHERE user_id=? ORDER BY bookmark_date DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bookmark
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.BoardingHouseID, &b.BookmarkDate); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
