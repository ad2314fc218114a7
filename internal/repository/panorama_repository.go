package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// PanoramaRepo reads and writes the 'panoramas' table.
type PanoramaRepo struct{ db *sql.DB }

func NewPanoramaRepo(db *sql.DB) *PanoramaRepo { return &PanoramaRepo{db: db} }

// Add appends a panorama to a listing.
func (r *PanoramaRepo) Add(ctx context.Context, boardingHouseID uint64, picture string) (*model.Panorama, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO panoramas (boarding_house_id, picture) VALUES (?,?)", boardingHouseID, picture)
	if err != nil {
		return nil, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one panorama.
func (r *PanoramaRepo) GetByID(ctx context.Context, id uint64) (*model.Panorama, error) {
	var p model.Panorama
	err := r.db.QueryRowContext(ctx,
		"SELECT id, boarding_house_id, picture, created_at FROM panoramas WHERE id=?", id).
		Scan(&p.ID, &p.BoardingHouseID, &p.Picture, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// ListByListing returns a listing's panoramas in upload order.
func (r *PanoramaRepo) ListByListing(ctx context.Context, boardingHouseID uint64) ([]model.Panorama, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, boarding_house_id, picture, created_at FROM panoramas
		 WHERE boarding_house_id=? ORDER BY id`, boardingHouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Panorama{}
	for rows.Next() {
		var p model.Panorama
		if err := rows.Scan(&p.ID, &p.BoardingHouseID, &p.Picture, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountByListing returns how many panoramas a listing has.
func (r *PanoramaRepo) CountByListing(ctx context.Context, boardingHouseID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM panoramas WHERE boarding_house_id=?", boardingHouseID).Scan(&n)
	return n, err
}

// Delete removes one panorama row.
func (r *PanoramaRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM panoramas WHERE id=?", id)
	return affected(res, err)
}
