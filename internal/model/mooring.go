package model

import "time"

// Mooring statuses as stored in the moorings.status column.
const (
	MooringStatusAvailable   = "AVAILABLE"
	MooringStatusOccupied    = "OCCUPIED"
	MooringStatusMaintenance = "MAINTENANCE"
)

// Mooring represents a single mooring berth managed for a customer owner.
// This struct corresponds to a row in the `moorings` table.
//
// Fields:
//  ID              – primary key identifier.
//  CustomerOwnerID – tenant root this mooring belongs to.
//  SerialNumber    – unique serial per customer owner.
//  Harbor          – harbor name.
//  GPSCoordinates  – free-form coordinates string.
//  BoatName        – name of the boat currently assigned, if any.
//  BoatType        – type of the assigned boat.
//  Status          – one of the MooringStatus* constants.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type Mooring struct {
	ID              uint64    // moorings.id
	CustomerOwnerID uint64    // moorings.customer_owner_id
	SerialNumber    string    // moorings.serial_number
	Harbor          string    // moorings.harbor
	GPSCoordinates  string    // moorings.gps_coordinates
	BoatName        string    // moorings.boat_name
	BoatType        string    // moorings.boat_type
	Status          string    // moorings.status
	CreatedAt       time.Time // moorings.created_at
	UpdatedAt       time.Time // moorings.updated_at
}
