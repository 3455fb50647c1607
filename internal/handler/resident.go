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

// ResidentHandler covers the manager's resident roster. Every call is
// scoped to the session's active condominium.
type ResidentHandler struct {
	Residents *repository.ResidentRepo
	Log       *zap.Logger
}

func NewResidentHandler(residents *repository.ResidentRepo, log *zap.Logger) *ResidentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResidentHandler{Residents: residents, Log: log}
}

type residentReq struct {
	NomeCompleto         string `json:"nome_completo"`
	CPF                  string `json:"cpf"`
	Telefone             string `json:"telefone"`
	Email                string `json:"email"`
	Unidade              string `json:"unidade"`
	ValorCondominioCents int64  `json:"valor_condominio_cents"`
}

type residentView struct {
	ID                   string `json:"id"`
	NomeCompleto         string `json:"nome_completo"`
	CPF                  string `json:"cpf"`
	Telefone             string `json:"telefone,omitempty"`
	Email                string `json:"email"`
	Unidade              string `json:"unidade"`
	ValorCondominioCents int64  `json:"valor_condominio_cents"`
}

func toResidentView(m model.Resident) residentView {
	return residentView{
		ID:                   m.ID,
		NomeCompleto:         m.NomeCompleto,
		CPF:                  m.CPF,
		Telefone:             m.Telefone,
		Email:                m.Email,
		Unidade:              m.Unidade,
		ValorCondominioCents: m.ValorCondominioCents,
	}
}

func (req *residentReq) validate() string {
	req.NomeCompleto = strings.TrimSpace(req.NomeCompleto)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Unidade = strings.TrimSpace(req.Unidade)
	req.CPF = digitsOnly(req.CPF)
	switch {
	case req.NomeCompleto == "":
		return "nome_completo required"
	case req.Email == "":
		return "email required"
	case len(req.CPF) != 11:
		return "cpf must have 11 digits"
	case req.Unidade == "":
		return "unidade required"
	}
	return ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// List returns the roster of the active condominium.
func (h *ResidentHandler) List(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Residents.ListByMatricula(ctx, s.Matricula)
	if err != nil {
		h.Log.Error("list residents failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]residentView, 0, len(list))
	for _, m := range list {
		out = append(out, toResidentView(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"residents": out})
}

// Create registers a resident in the active condominium.
func (h *ResidentHandler) Create(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	var req residentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := model.Resident{
		Matricula:            s.Matricula,
		NomeCompleto:         req.NomeCompleto,
		CPF:                  req.CPF,
		Telefone:             req.Telefone,
		Email:                req.Email,
		Unidade:              req.Unidade,
		ValorCondominioCents: req.ValorCondominioCents,
	}
	if err := h.Residents.Create(ctx, &m); err != nil {
		if errors.Is(err, repository.ErrCPFExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "cpf já cadastrado neste condomínio"})
		}
		h.Log.Error("create resident failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toResidentView(m))
}

// Update rewrites a resident's mutable fields.
func (h *ResidentHandler) Update(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	var req residentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := model.Resident{
		ID:                   c.Param("id"),
		Matricula:            s.Matricula,
		NomeCompleto:         req.NomeCompleto,
		CPF:                  req.CPF,
		Telefone:             req.Telefone,
		Email:                req.Email,
		Unidade:              req.Unidade,
		ValorCondominioCents: req.ValorCondominioCents,
	}
	if err := h.Residents.Update(ctx, &m); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resident not found"})
		case errors.Is(err, repository.ErrCPFExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "cpf já cadastrado neste condomínio"})
		}
		h.Log.Error("update resident failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toResidentView(m))
}

// Delete removes a resident from the roster.
func (h *ResidentHandler) Delete(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Residents.Delete(ctx, c.Param("id"), s.Matricula); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resident not found"})
		}
		h.Log.Error("delete resident failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
