package model

import "time"

// Hall represents an individual screening hall.  The seating layout
// is a plain rectangular grid described by SeatRows and SeatCols;
// individual seats exist only as coordinates on bookings.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique hall name.
//  SeatRows  – number of seating rows.
//  SeatCols  – number of seats per row.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Hall struct {
	ID        uint64    // halls.id
	Name      string    // halls.name
	SeatRows  uint32    // halls.seat_rows
	SeatCols  uint32    // halls.seat_cols
	CreatedAt time.Time // halls.created_at
	UpdatedAt time.Time // halls.updated_at
}
