package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
	"github.com/iliyamo/marina-mooring-management/internal/model"
)

const workOrderColumns = "id,customer_owner_id,mooring_id,technician_id,due_date,status,problem,note,created_at,updated_at"

// WorkOrderRepo persists work orders scoped to a customer owner, plus the
// cross-tenant due-date query the notification scheduler runs.
type WorkOrderRepo struct{ DB *sql.DB }

func NewWorkOrderRepo(db *sql.DB) *WorkOrderRepo { return &WorkOrderRepo{DB: db} }

// Create inserts a work order within the scope and returns its ID. The
// mooring must belong to the same scope.
func (r *WorkOrderRepo) Create(ctx context.Context, scope auth.Scope, w *model.WorkOrder) error {
	var mooringOwner uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT customer_owner_id FROM moorings WHERE id=? LIMIT 1", w.MooringID).
		Scan(&mooringOwner)
	if err != nil {
		return err
	}
	if mooringOwner != scope.OwnerID {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO work_orders (customer_owner_id, mooring_id, technician_id, due_date, status, problem, note) VALUES (?,?,?,?,?,?,?)",
		scope.OwnerID, w.MooringID, w.TechnicianID, w.DueDate, w.Status, w.Problem, w.Note)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	w.CustomerOwnerID = scope.OwnerID
	return nil
}

// Get fetches one work order within the scope.
func (r *WorkOrderRepo) Get(ctx context.Context, scope auth.Scope, id uint64) (model.WorkOrder, error) {
	var w model.WorkOrder
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+workOrderColumns+" FROM work_orders WHERE id=? AND customer_owner_id=? LIMIT 1",
		id, scope.OwnerID).
		Scan(&w.ID, &w.CustomerOwnerID, &w.MooringID, &w.TechnicianID, &w.DueDate,
			&w.Status, &w.Problem, &w.Note, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

// List returns all work orders within the scope, optionally filtered by status.
func (r *WorkOrderRepo) List(ctx context.Context, scope auth.Scope, status string) ([]model.WorkOrder, error) {
	query := "SELECT " + workOrderColumns + " FROM work_orders WHERE customer_owner_id=?"
	args := []interface{}{scope.OwnerID}
	if status != "" {
		query += " AND status=?"
		args = append(args, status)
	}
	query += " ORDER BY due_date, id"
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.WorkOrder
	for rows.Next() {
		var w model.WorkOrder
		if err := rows.Scan(&w.ID, &w.CustomerOwnerID, &w.MooringID, &w.TechnicianID,
			&w.DueDate, &w.Status, &w.Problem, &w.Note, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, w)
	}
	return orders, rows.Err()
}

// Update rewrites the mutable fields of a work order within the scope.
func (r *WorkOrderRepo) Update(ctx context.Context, scope auth.Scope, w *model.WorkOrder) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE work_orders SET technician_id=?, due_date=?, status=?, problem=?, note=?, updated_at=NOW() WHERE id=? AND customer_owner_id=?",
		w.TechnicianID, w.DueDate, w.Status, w.Problem, w.Note, w.ID, scope.OwnerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a work order within the scope.
func (r *WorkOrderRepo) Delete(ctx context.Context, scope auth.Scope, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM work_orders WHERE id=? AND customer_owner_id=?", id, scope.OwnerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindDueWithin returns every not-yet-completed work order across all
// tenants whose due date falls inside [now, now+window], joined with the
// assigned technician's email and the mooring serial. The notification
// scheduler is the only caller.
func (r *WorkOrderRepo) FindDueWithin(ctx context.Context, now time.Time, window time.Duration) ([]model.DueWorkOrder, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT w.id, w.customer_owner_id, w.mooring_id, w.technician_id, w.due_date,
		        w.status, w.problem, w.note, w.created_at, w.updated_at,
		        u.email, m.serial_number
		 FROM work_orders w
		 JOIN users u ON u.id = w.technician_id
		 JOIN moorings m ON m.id = w.mooring_id
		 WHERE w.status <> ? AND w.due_date >= ? AND w.due_date <= ?
		 ORDER BY w.due_date, w.id`,
		model.WorkOrderStatusCompleted, now, now.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []model.DueWorkOrder
	for rows.Next() {
		var d model.DueWorkOrder
		if err := rows.Scan(&d.ID, &d.CustomerOwnerID, &d.MooringID, &d.TechnicianID,
			&d.DueDate, &d.Status, &d.Problem, &d.Note, &d.CreatedAt, &d.UpdatedAt,
			&d.TechnicianEmail, &d.MooringSerial); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	return due, rows.Err()
}
