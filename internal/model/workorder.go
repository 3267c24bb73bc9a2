package model

import "time"

// Work order statuses as stored in the work_orders.status column.
const (
	WorkOrderStatusNew        = "NEW"
	WorkOrderStatusInProgress = "IN_PROGRESS"
	WorkOrderStatusCompleted  = "COMPLETED"
)

// WorkOrder represents maintenance work scheduled against a mooring and
// assigned to a technician. This struct corresponds to a row in the
// `work_orders` table.
//
// Fields:
//  ID              – primary key identifier.
//  CustomerOwnerID – tenant root this order belongs to.
//  MooringID       – mooring the work targets.
//  TechnicianID    – user ID of the assigned technician.
//  DueDate         – date the work must be completed by.
//  Status          – one of the WorkOrderStatus* constants.
//  Problem         – short description of the problem.
//  Note            – free-form internal note.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type WorkOrder struct {
	ID              uint64    // work_orders.id
	CustomerOwnerID uint64    // work_orders.customer_owner_id
	MooringID       uint64    // work_orders.mooring_id
	TechnicianID    uint64    // work_orders.technician_id
	DueDate         time.Time // work_orders.due_date
	Status          string    // work_orders.status
	Problem         string    // work_orders.problem
	Note            string    // work_orders.note
	CreatedAt       time.Time // work_orders.created_at
	UpdatedAt       time.Time // work_orders.updated_at
}

// DueWorkOrder is the scheduler's join of a due work order with the
// assigned technician's contact details.
type DueWorkOrder struct {
	WorkOrder
	TechnicianEmail string // users.email of the assigned technician
	MooringSerial   string // moorings.serial_number of the target mooring
}
