// Package booking implements the common-area reservation flow: input
// validation, resident/area resolution and the overlap check that keeps
// a common area from being double-booked on a given date.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meuresidencial/condo-api/internal/model"
	"github.com/meuresidencial/condo-api/internal/repository"
)

// Validation and resolution failures surfaced to the handler layer.
var (
	ErrBadDate          = errors.New("invalid reservation date")
	ErrPastDate         = errors.New("reservation date is in the past")
	ErrBadTimeRange     = errors.New("invalid time range")
	ErrResidentNotFound = errors.New("resident not identified")
	ErrAreaNotFound     = errors.New("common area not found")
	ErrWrongCondominium = errors.New("common area belongs to another condominium")
)

// ResidentStore, AreaStore and ReservationStore are the repository
// slices the service needs. Create must be atomic with respect to the
// overlap invariant (the MySQL implementation rechecks inside a locking
// transaction and returns repository.ErrSlotTaken on conflict).
type ResidentStore interface {
	GetByID(ctx context.Context, id string) (model.Resident, error)
}

type AreaStore interface {
	GetByID(ctx context.Context, id string) (model.CommonArea, error)
}

type ReservationStore interface {
	CountOverlapping(ctx context.Context, areaID, date, start, end string) (int, error)
	Create(ctx context.Context, v *model.CommonAreaReservation) error
}

// ReserveRequest carries one booking attempt. Date is "2006-01-02";
// StartTime and EndTime are "15:04" local times of day.
type ReserveRequest struct {
	CommonAreaID string
	ResidentID   string
	Date         string
	StartTime    string
	EndTime      string
	Notes        string
}

// Service runs the reservation conflict check. Now is overridable so
// tests can pin "today"; nil means time.Now.
type Service struct {
	Residents    ResidentStore
	Areas        AreaStore
	Reservations ReservationStore
	Log          *zap.Logger
	Now          func() time.Time
}

func NewService(residents ResidentStore, areas AreaStore, reservations ReservationStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Residents: residents, Areas: areas, Reservations: reservations, Log: log}
}

// Reserve validates the request, checks for overlapping reservations on
// the same area and date, and inserts a pending reservation when the
// slot is free.
//
// The overlap test is deliberately closed-interval: an existing
// reservation conflicts when existing.start <= new.end AND
// existing.end >= new.start, so back-to-back bookings sharing a
// boundary instant ("12:00"–"13:00" after "10:00"–"12:00") are rejected,
// leaving a buffer between uses. repository.ErrSlotTaken reports the
// conflict; nothing is inserted in that case.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (model.CommonAreaReservation, error) {
	var zero model.CommonAreaReservation
	if req.ResidentID == "" {
		return zero, ErrResidentNotFound
	}
	if req.CommonAreaID == "" {
		return zero, ErrAreaNotFound
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return zero, ErrBadDate
	}
	if day.Before(s.today()) {
		return zero, ErrPastDate
	}
	if !validClock(req.StartTime) || !validClock(req.EndTime) || req.StartTime >= req.EndTime {
		return zero, ErrBadTimeRange
	}

	res, err := s.Residents.GetByID(ctx, req.ResidentID)
	if errors.Is(err, repository.ErrNotFound) {
		return zero, ErrResidentNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("resident lookup: %w", err)
	}
	area, err := s.Areas.GetByID(ctx, req.CommonAreaID)
	if errors.Is(err, repository.ErrNotFound) {
		return zero, ErrAreaNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("common area lookup: %w", err)
	}
	if area.Matricula != res.Matricula {
		return zero, ErrWrongCondominium
	}

	n, err := s.Reservations.CountOverlapping(ctx, area.ID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return zero, fmt.Errorf("overlap check: %w", err)
	}
	if n > 0 {
		return zero, repository.ErrSlotTaken
	}

	v := model.CommonAreaReservation{
		CommonAreaID:    area.ID,
		ResidentID:      res.ID,
		ReservationDate: req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Notes:           req.Notes,
		Status:          model.ReservationPending,
	}
	if err := s.Reservations.Create(ctx, &v); err != nil {
		// The store recheck may race-detect a conflict the pre-check
		// missed; pass the sentinel through untouched.
		if errors.Is(err, repository.ErrSlotTaken) {
			return zero, err
		}
		return zero, fmt.Errorf("create reservation: %w", err)
	}
	s.Log.Info("reservation created",
		zap.String("reservation_id", v.ID),
		zap.String("common_area_id", area.ID),
		zap.String("date", req.Date))
	return v, nil
}

func (s *Service) today() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// validClock accepts zero-padded "HH:MM" strings only, which keeps
// lexicographic comparison equivalent to chronological comparison.
func validClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
