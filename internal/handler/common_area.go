package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meuresidencial/condo-api/internal/middleware"
	"github.com/meuresidencial/condo-api/internal/model"
	"github.com/meuresidencial/condo-api/internal/repository"
)

// CommonAreaHandler manages a condominium's bookable facilities.
// Managers get full CRUD; residents get the read side for the booking
// form.
type CommonAreaHandler struct {
	Areas *repository.CommonAreaRepo
	Log   *zap.Logger
}

func NewCommonAreaHandler(areas *repository.CommonAreaRepo, log *zap.Logger) *CommonAreaHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommonAreaHandler{Areas: areas, Log: log}
}

type commonAreaReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
	OpeningTime string `json:"opening_time"` // "HH:MM"
	ClosingTime string `json:"closing_time"`
}

type commonAreaView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Capacity    int    `json:"capacity"`
	OpeningTime string `json:"opening_time,omitempty"`
	ClosingTime string `json:"closing_time,omitempty"`
}

func toCommonAreaView(a model.CommonArea) commonAreaView {
	return commonAreaView{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Capacity:    a.Capacity,
		OpeningTime: a.OpeningTime,
		ClosingTime: a.ClosingTime,
	}
}

func (req *commonAreaReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name required"
	}
	if req.Capacity < 0 {
		return "capacity must not be negative"
	}
	return ""
}

// List returns the common areas of the session's condominium. Serves
// both the manager screen and the resident booking form.
func (h *CommonAreaHandler) List(c echo.Context) error {
	s, ok := middleware.CurrentSession(c)
	if !ok || s.Matricula == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Areas.ListByMatricula(ctx, s.Matricula)
	if err != nil {
		h.Log.Error("list common areas failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]commonAreaView, 0, len(list))
	for _, a := range list {
		out = append(out, toCommonAreaView(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"common_areas": out})
}

// Create adds a facility to the active condominium.
func (h *CommonAreaHandler) Create(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	var req commonAreaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := model.CommonArea{
		Matricula:   s.Matricula,
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
	}
	if err := h.Areas.Create(ctx, &a); err != nil {
		h.Log.Error("create common area failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toCommonAreaView(a))
}

// Update rewrites a facility's fields.
func (h *CommonAreaHandler) Update(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	var req commonAreaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := model.CommonArea{
		ID:          c.Param("id"),
		Matricula:   s.Matricula,
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
	}
	if err := h.Areas.Update(ctx, &a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "common area not found"})
		}
		h.Log.Error("update common area failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toCommonAreaView(a))
}

// Delete removes a facility and, via cascade, its reservations.
func (h *CommonAreaHandler) Delete(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Areas.Delete(ctx, c.Param("id"), s.Matricula); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "common area not found"})
		}
		h.Log.Error("delete common area failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
