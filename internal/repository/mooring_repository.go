package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
	"github.com/iliyamo/marina-mooring-management/internal/model"
)

const mooringColumns = "id,customer_owner_id,serial_number,harbor,gps_coordinates,boat_name,boat_type,status,created_at,updated_at"

// MooringRepo persists moorings. Every query is restricted by the granted
// tenant scope.
type MooringRepo struct{ DB *sql.DB }

func NewMooringRepo(db *sql.DB) *MooringRepo { return &MooringRepo{DB: db} }

// Create inserts a mooring within the scope and returns its ID.
func (r *MooringRepo) Create(ctx context.Context, scope auth.Scope, m *model.Mooring) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO moorings (customer_owner_id, serial_number, harbor, gps_coordinates, boat_name, boat_type, status) VALUES (?,?,?,?,?,?,?)",
		scope.OwnerID, m.SerialNumber, m.Harbor, m.GPSCoordinates, m.BoatName, m.BoatType, m.Status)
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
	m.ID = uint64(id)
	m.CustomerOwnerID = scope.OwnerID
	return nil
}

// Get fetches one mooring within the scope.
func (r *MooringRepo) Get(ctx context.Context, scope auth.Scope, id uint64) (model.Mooring, error) {
	var m model.Mooring
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+mooringColumns+" FROM moorings WHERE id=? AND customer_owner_id=? LIMIT 1",
		id, scope.OwnerID).
		Scan(&m.ID, &m.CustomerOwnerID, &m.SerialNumber, &m.Harbor, &m.GPSCoordinates,
			&m.BoatName, &m.BoatType, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// List returns all moorings within the scope, optionally filtered by a
// case-insensitive search over serial number and boat name.
func (r *MooringRepo) List(ctx context.Context, scope auth.Scope, search string) ([]model.Mooring, error) {
	query := "SELECT " + mooringColumns + " FROM moorings WHERE customer_owner_id=?"
	args := []interface{}{scope.OwnerID}
	if s := strings.TrimSpace(search); s != "" {
		query += " AND (serial_number LIKE ? OR boat_name LIKE ?)"
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	query += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moorings []model.Mooring
	for rows.Next() {
		var m model.Mooring
		if err := rows.Scan(&m.ID, &m.CustomerOwnerID, &m.SerialNumber, &m.Harbor,
			&m.GPSCoordinates, &m.BoatName, &m.BoatType, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		moorings = append(moorings, m)
	}
	return moorings, rows.Err()
}

// Update rewrites the mutable fields of a mooring within the scope.
func (r *MooringRepo) Update(ctx context.Context, scope auth.Scope, m *model.Mooring) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE moorings SET serial_number=?, harbor=?, gps_coordinates=?, boat_name=?, boat_type=?, status=?, updated_at=NOW() WHERE id=? AND customer_owner_id=?",
		m.SerialNumber, m.Harbor, m.GPSCoordinates, m.BoatName, m.BoatType, m.Status,
		m.ID, scope.OwnerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a mooring within the scope. Moorings with open work orders
// cannot be removed.
func (r *MooringRepo) Delete(ctx context.Context, scope auth.Scope, id uint64) error {
	var open int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM work_orders WHERE mooring_id=? AND status<>?",
		id, model.WorkOrderStatusCompleted).Scan(&open)
	if err != nil {
		return err
	}
	if open > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM moorings WHERE id=? AND customer_owner_id=?", id, scope.OwnerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
