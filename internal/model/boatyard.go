package model

import "time"

// BoatYard represents a storage yard operated by a customer owner. This
// struct corresponds to a row in the `boat_yards` table.
//
// Fields:
//  ID              – primary key identifier.
//  CustomerOwnerID – tenant root this yard belongs to.
//  Name            – unique yard name per customer owner.
//  Address         – street address of the yard.
//  Capacity        – number of boats the yard can hold.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type BoatYard struct {
	ID              uint64    // boat_yards.id
	CustomerOwnerID uint64    // boat_yards.customer_owner_id
	Name            string    // boat_yards.name
	Address         string    // boat_yards.address
	Capacity        uint32    // boat_yards.capacity
	CreatedAt       time.Time // boat_yards.created_at
	UpdatedAt       time.Time // boat_yards.updated_at
}
