package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// AdminRepo reads and writes the 'admins' table.
type AdminRepo struct{ db *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

// Create inserts an admin account.  Used by the provisioning command only.
func (r *AdminRepo) Create(ctx context.Context, a *model.Admin) error {
	a.Email = normalizeEmail(a.Email)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO admins (email, password_hash, name) VALUES (?,?,?)",
		a.Email, a.PasswordHash, a.Name)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByEmail fetches an admin by normalised email.
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var a model.Admin
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, name, created_at FROM admins WHERE email=? LIMIT 1",
		normalizeEmail(email)).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}
