package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/meuresidencial/condo-api/internal/model"
)

// ReservationRepo provides data access to the `common_area_reservations`
// table. The overlap test is a closed-interval comparison: an existing
// reservation conflicts when existing.start_time <= new.end_time AND
// existing.end_time >= new.start_time, so bookings that touch at a
// shared boundary instant also conflict. Times are "HH:MM" strings and
// compare correctly both in SQL (TIME columns) and lexicographically.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

const reservationCols = `id,common_area_id,resident_id,reservation_date,start_time,end_time,notes,status,created_at`

const overlapQuery = `SELECT COUNT(*) FROM common_area_reservations
	WHERE common_area_id=? AND reservation_date=? AND start_time<=? AND end_time>=?`

func scanReservation(row interface{ Scan(...any) error }) (model.CommonAreaReservation, error) {
	var v model.CommonAreaReservation
	err := row.Scan(&v.ID, &v.CommonAreaID, &v.ResidentID, &v.ReservationDate,
		&v.StartTime, &v.EndTime, &v.Notes, &v.Status, &v.CreatedAt)
	return v, err
}

// CountOverlapping returns how many reservations for the area and date
// overlap the [start,end] interval under the closed-interval test.
func (r *ReservationRepo) CountOverlapping(ctx context.Context, areaID, date, start, end string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, overlapQuery, areaID, date, end, start).Scan(&n)
	return n, err
}

// Create inserts a reservation after re-running the overlap check inside
// a transaction with a locking read, so two concurrent requests for the
// same slot serialize on the matching range instead of both passing the
// application-level pre-check. Returns ErrSlotTaken when the recheck
// finds a conflict; nothing is written in that case.
func (r *ReservationRepo) Create(ctx context.Context, v *model.CommonAreaReservation) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = model.ReservationPending
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var n int
	if err := tx.QueryRowContext(ctx, overlapQuery+" FOR UPDATE",
		v.CommonAreaID, v.ReservationDate, v.EndTime, v.StartTime).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrSlotTaken
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO common_area_reservations (id, common_area_id, resident_id, reservation_date, start_time, end_time, notes, status)
		 VALUES (?,?,?,?,?,?,?,?)`,
		v.ID, v.CommonAreaID, v.ResidentID, v.ReservationDate, v.StartTime, v.EndTime, v.Notes, v.Status); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByResident returns a resident's reservations, newest date first.
func (r *ReservationRepo) ListByResident(ctx context.Context, residentID string) ([]model.CommonAreaReservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reservationCols+` FROM common_area_reservations
		 WHERE resident_id=? ORDER BY reservation_date DESC, start_time`, residentID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListByMatricula returns all reservations across the condominium's
// common areas for the manager view, newest date first.
func (r *ReservationRepo) ListByMatricula(ctx context.Context, matricula string) ([]model.CommonAreaReservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id,r.common_area_id,r.resident_id,r.reservation_date,r.start_time,r.end_time,r.notes,r.status,r.created_at
		 FROM common_area_reservations r
		 JOIN common_areas a ON a.id = r.common_area_id
		 WHERE a.matricula=? ORDER BY r.reservation_date DESC, r.start_time`, matricula)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]model.CommonAreaReservation, error) {
	defer rows.Close()
	out := []model.CommonAreaReservation{}
	for rows.Next() {
		v, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a reservation, scoped by matricula through
// the owning common area so managers cannot touch foreign rows.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, matricula, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE common_area_reservations r
		 JOIN common_areas a ON a.id = r.common_area_id
		 SET r.status=? WHERE r.id=? AND a.matricula=?`,
		status, id, matricula)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}
