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
	"github.com/meuresidencial/condo-api/internal/publisher"
	"github.com/meuresidencial/condo-api/internal/queue"
	"github.com/meuresidencial/condo-api/internal/repository"
)

// AnnouncementHandler manages condominium announcements. Creating one
// also emits an announcement.published event so the delivery worker can
// push it over the requested channels.
type AnnouncementHandler struct {
	Announcements *repository.AnnouncementRepo
	Events        *publisher.Publisher
	Log           *zap.Logger
}

func NewAnnouncementHandler(announcements *repository.AnnouncementRepo, events *publisher.Publisher, log *zap.Logger) *AnnouncementHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnnouncementHandler{Announcements: announcements, Events: events, Log: log}
}

type announcementReq struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	SendEmail    bool   `json:"send_email"`
	SendWhatsApp bool   `json:"send_whatsapp"`
}

type announcementView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	SentEmail    bool      `json:"sent_email"`
	SentWhatsApp bool      `json:"sent_whatsapp"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAnnouncementView(a model.Announcement) announcementView {
	return announcementView{
		ID:           a.ID,
		Title:        a.Title,
		Content:      a.Content,
		SentEmail:    a.SentEmail,
		SentWhatsApp: a.SentWhatsApp,
		CreatedAt:    a.CreatedAt,
	}
}

// List returns the condominium's announcements, newest first.
func (h *AnnouncementHandler) List(c echo.Context) error {
	s, ok := middleware.CurrentSession(c)
	if !ok || s.Matricula == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Announcements.ListByMatricula(ctx, s.Matricula)
	if err != nil {
		h.Log.Error("list announcements failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]announcementView, 0, len(list))
	for _, a := range list {
		out = append(out, toAnnouncementView(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"announcements": out})
}

// Create stores an announcement and publishes the delivery event.
func (h *AnnouncementHandler) Create(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	var req announcementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := model.Announcement{
		Matricula:    s.Matricula,
		Title:        req.Title,
		Content:      req.Content,
		SentEmail:    req.SendEmail,
		SentWhatsApp: req.SendWhatsApp,
	}
	if err := h.Announcements.Create(ctx, &a); err != nil {
		h.Log.Error("create announcement failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	// Best-effort: the row is committed, a broker outage only delays
	// delivery.
	evCtx, evCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer evCancel()
	_ = h.Events.AnnouncementPublished(evCtx, queue.AnnouncementPublishedEvent{
		AnnouncementID: a.ID,
		Matricula:      a.Matricula,
		Title:          a.Title,
		SendEmail:      a.SentEmail,
		SendWhatsApp:   a.SentWhatsApp,
		PublishedAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, toAnnouncementView(a))
}

// Update rewrites an announcement without re-publishing the event.
func (h *AnnouncementHandler) Update(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	var req announcementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := model.Announcement{
		ID:           c.Param("id"),
		Matricula:    s.Matricula,
		Title:        req.Title,
		Content:      req.Content,
		SentEmail:    req.SendEmail,
		SentWhatsApp: req.SendWhatsApp,
	}
	if err := h.Announcements.Update(ctx, &a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "announcement not found"})
		}
		h.Log.Error("update announcement failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toAnnouncementView(a))
}

// Delete removes an announcement.
func (h *AnnouncementHandler) Delete(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Announcements.Delete(ctx, c.Param("id"), s.Matricula); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "announcement not found"})
		}
		h.Log.Error("delete announcement failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
