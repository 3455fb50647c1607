package model

import "time"

// Reservation status values. A reservation is created as pending and is
// later approved or rejected by the manager.
const (
	ReservationPending  = "pending"
	ReservationApproved = "approved"
	ReservationRejected = "rejected"
)

// CommonArea mirrors the `common_areas` table: a bookable shared
// facility (party room, grill area, ...) belonging to one condominium.
// OpeningTime and ClosingTime are local times of day in "HH:MM" form and
// are informational defaults for the booking form.
type CommonArea struct {
	ID          string
	Matricula   string
	Name        string
	Description string
	Capacity    int
	OpeningTime string
	ClosingTime string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CommonAreaReservation mirrors the `common_area_reservations` table.
// ReservationDate is a calendar date in "2006-01-02" form; StartTime and
// EndTime are local times of day in "15:04" form. No two reservations
// for the same area and date may overlap; intervals that merely touch at
// a boundary instant also conflict, leaving a buffer between bookings.
type CommonAreaReservation struct {
	ID              string
	CommonAreaID    string
	ResidentID      string
	ReservationDate string
	StartTime       string
	EndTime         string
	Notes           string
	Status          string
	CreatedAt       time.Time
}
