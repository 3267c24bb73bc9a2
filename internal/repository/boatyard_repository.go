package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
	"github.com/iliyamo/marina-mooring-management/internal/model"
)

const boatYardColumns = "id,customer_owner_id,name,address,capacity,created_at,updated_at"

// BoatYardRepo persists boat yards scoped to a customer owner.
type BoatYardRepo struct{ DB *sql.DB }

func NewBoatYardRepo(db *sql.DB) *BoatYardRepo { return &BoatYardRepo{DB: db} }

// Create inserts a boat yard within the scope and returns its ID.
func (r *BoatYardRepo) Create(ctx context.Context, scope auth.Scope, y *model.BoatYard) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO boat_yards (customer_owner_id, name, address, capacity) VALUES (?,?,?,?)",
		scope.OwnerID, y.Name, y.Address, y.Capacity)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	y.ID = uint64(id)
	y.CustomerOwnerID = scope.OwnerID
	return nil
}

// Get fetches one boat yard within the scope.
func (r *BoatYardRepo) Get(ctx context.Context, scope auth.Scope, id uint64) (model.BoatYard, error) {
	var y model.BoatYard
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+boatYardColumns+" FROM boat_yards WHERE id=? AND customer_owner_id=? LIMIT 1",
		id, scope.OwnerID).
		Scan(&y.ID, &y.CustomerOwnerID, &y.Name, &y.Address, &y.Capacity, &y.CreatedAt, &y.UpdatedAt)
	return y, err
}

// List returns all boat yards within the scope.
func (r *BoatYardRepo) List(ctx context.Context, scope auth.Scope) ([]model.BoatYard, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+boatYardColumns+" FROM boat_yards WHERE customer_owner_id=? ORDER BY id",
		scope.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var yards []model.BoatYard
	for rows.Next() {
		var y model.BoatYard
		if err := rows.Scan(&y.ID, &y.CustomerOwnerID, &y.Name, &y.Address, &y.Capacity,
			&y.CreatedAt, &y.UpdatedAt); err != nil {
			return nil, err
		}
		yards = append(yards, y)
	}
	return yards, rows.Err()
}

// Update rewrites the mutable fields of a boat yard within the scope.
func (r *BoatYardRepo) Update(ctx context.Context, scope auth.Scope, y *model.BoatYard) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE boat_yards SET name=?, address=?, capacity=?, updated_at=NOW() WHERE id=? AND customer_owner_id=?",
		y.Name, y.Address, y.Capacity, y.ID, scope.OwnerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a boat yard within the scope.
func (r *BoatYardRepo) Delete(ctx context.Context, scope auth.Scope, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM boat_yards WHERE id=? AND customer_owner_id=?", id, scope.OwnerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
