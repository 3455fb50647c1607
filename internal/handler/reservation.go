package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meuresidencial/condo-api/internal/booking"
	"github.com/meuresidencial/condo-api/internal/middleware"
	"github.com/meuresidencial/condo-api/internal/model"
	"github.com/meuresidencial/condo-api/internal/publisher"
	"github.com/meuresidencial/condo-api/internal/queue"
	"github.com/meuresidencial/condo-api/internal/repository"
)

// ReservationHandler exposes the booking flow to residents and the
// review flow to managers.
type ReservationHandler struct {
	Svc          *booking.Service
	Areas        *repository.CommonAreaRepo
	Reservations *repository.ReservationRepo
	Events       *publisher.Publisher
	Log          *zap.Logger
}

func NewReservationHandler(svc *booking.Service, areas *repository.CommonAreaRepo, reservations *repository.ReservationRepo, events *publisher.Publisher, log *zap.Logger) *ReservationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationHandler{Svc: svc, Areas: areas, Reservations: reservations, Events: events, Log: log}
}

type reserveReq struct {
	Date      string `json:"date"`       // "2006-01-02"
	StartTime string `json:"start_time"` // "15:04"
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`
}

type reservationView struct {
	ID              string `json:"id"`
	CommonAreaID    string `json:"common_area_id"`
	ResidentID      string `json:"resident_id"`
	ReservationDate string `json:"reservation_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Notes           string `json:"notes,omitempty"`
	Status          string `json:"status"`
}

func toReservationView(v model.CommonAreaReservation) reservationView {
	return reservationView{
		ID:              v.ID,
		CommonAreaID:    v.CommonAreaID,
		ResidentID:      v.ResidentID,
		ReservationDate: v.ReservationDate,
		StartTime:       v.StartTime,
		EndTime:         v.EndTime,
		Notes:           v.Notes,
		Status:          v.Status,
	}
}

// Reserve books a slot on a common area for the logged-in resident. A
// conflicting slot (including one merely touching at a boundary) comes
// back as 409.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	s, ok := middleware.CurrentSession(c)
	if !ok || !s.IsResident() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Svc.Reserve(ctx, booking.ReserveRequest{
		CommonAreaID: c.Param("id"),
		ResidentID:   s.ResidentID,
		Date:         strings.TrimSpace(req.Date),
		StartTime:    strings.TrimSpace(req.StartTime),
		EndTime:      strings.TrimSpace(req.EndTime),
		Notes:        req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBadDate),
			errors.Is(err, booking.ErrPastDate),
			errors.Is(err, booking.ErrBadTimeRange):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, booking.ErrResidentNotFound):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "resident not found"})
		case errors.Is(err, booking.ErrAreaNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "common area not found"})
		case errors.Is(err, booking.ErrWrongCondominium):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "common area belongs to another condominium"})
		case errors.Is(err, repository.ErrSlotTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "horário indisponível para esta área"})
		}
		h.Log.Error("reserve failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reserve failed"})
	}

	h.publishRequested(v, s.Matricula, s.Nome, s.Unidade)
	return c.JSON(http.StatusCreated, toReservationView(v))
}

// publishRequested emits the notification event. Best-effort: the
// reservation row is already committed, so a broker outage only costs
// the notification.
func (h *ReservationHandler) publishRequested(v model.CommonAreaReservation, matricula, residentName, unidade string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	areaName := ""
	if area, err := h.Areas.GetByID(ctx, v.CommonAreaID); err == nil {
		areaName = area.Name
	}
	_ = h.Events.ReservationRequested(ctx, queue.ReservationRequestedEvent{
		ReservationID:  v.ID,
		CommonAreaID:   v.CommonAreaID,
		CommonAreaName: areaName,
		Matricula:      matricula,
		ResidentID:     v.ResidentID,
		ResidentName:   residentName,
		Unidade:        unidade,
		Date:           v.ReservationDate,
		StartTime:      v.StartTime,
		EndTime:        v.EndTime,
		Status:         v.Status,
		RequestedAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

// MyReservations lists the logged-in resident's reservations.
func (h *ReservationHandler) MyReservations(c echo.Context) error {
	s, ok := middleware.CurrentSession(c)
	if !ok || !s.IsResident() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByResident(ctx, s.ResidentID)
	if err != nil {
		h.Log.Error("list reservations failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]reservationView, 0, len(list))
	for _, v := range list {
		out = append(out, toReservationView(v))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// ListForCondominium lists every reservation across the active
// condominium's common areas for the manager review screen.
func (h *ReservationHandler) ListForCondominium(c echo.Context) error {
	s, ok := middleware.CurrentSession(c)
	if !ok || s.Matricula == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByMatricula(ctx, s.Matricula)
	if err != nil {
		h.Log.Error("list reservations failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]reservationView, 0, len(list))
	for _, v := range list {
		out = append(out, toReservationView(v))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus approves or rejects a pending reservation.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	s, ok := middleware.CurrentSession(c)
	if !ok || s.Matricula == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != model.ReservationApproved && status != model.ReservationRejected && status != model.ReservationPending {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be pending, approved or rejected"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.UpdateStatus(ctx, c.Param("id"), s.Matricula, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		h.Log.Error("status update failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "status": status})
}
