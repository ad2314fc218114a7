package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// IdentityRepo answers questions that span the three account tables.
type IdentityRepo struct{ db *sql.DB }

func NewIdentityRepo(db *sql.DB) *IdentityRepo { return &IdentityRepo{db: db} }

// EmailOwner reports which account kind holds email.  Email addresses are
// meant to be unique across users, admins and boarding houses; each table
// has its own unique key and this lookup covers the gap between them.
func (r *IdentityRepo) EmailOwner(ctx context.Context, email string) (*model.EmailOwner, error) {
	const q = `SELECT kind, id FROM (
	             SELECT 'ADMIN' AS kind, id FROM admins WHERE email = ?
	             UNION ALL
	             SELECT 'BOARDING_HOUSE', id FROM boarding_houses WHERE email = ?
	             UNION ALL
	             SELECT 'USER', id FROM users WHERE email = ?
	           ) owners LIMIT 1`
	e := normalizeEmail(email)
	var o model.EmailOwner
	if err := r.db.QueryRowContext(ctx, q, e, e, e).Scan(&o.Kind, &o.ID); err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}
