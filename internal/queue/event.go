// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into notifications.
package queue

// Queue names. Both are declared durable by publisher and consumer.
const (
	WorkOrderDueQueue  = "workorder.due"
	PasswordResetQueue = "user.password_reset"
)

// WorkOrderDueEvent is published for every work order whose due date falls
// inside the notification window. It carries enough information for the
// consumer to compose the technician email without querying the primary
// database.
type WorkOrderDueEvent struct {
	WorkOrderID     uint64 `json:"work_order_id"`
	CustomerOwnerID uint64 `json:"customer_owner_id"`
	TechnicianID    uint64 `json:"technician_id"`
	TechnicianEmail string `json:"technician_email"`
	MooringID       uint64 `json:"mooring_id"`
	MooringSerial   string `json:"mooring_serial"`
	Problem         string `json:"problem"`
	DueDate         string `json:"due_date"`
}

// PasswordResetEvent is published when a reset token has been issued and
// must be delivered to the account's email address.
type PasswordResetEvent struct {
	UserID    uint64 `json:"user_id"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
