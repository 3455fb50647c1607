package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meuresidencial/condo-api/internal/auth"
	"github.com/meuresidencial/condo-api/internal/config"
	"github.com/meuresidencial/condo-api/internal/middleware"
	"github.com/meuresidencial/condo-api/internal/repository"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Resolver *auth.Resolver
	Tokens   *repository.TokenRepo
	Log      *zap.Logger
}

func NewAuthHandler(cfg config.Config, resolver *auth.Resolver, tokens *repository.TokenRepo, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Cfg: cfg, Resolver: resolver, Tokens: tokens, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Identifier string `json:"identifier"` // email or matricula
	Secret     string `json:"secret"`     // password, or CPF for residents
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type switchReq struct {
	Matricula string `json:"matricula"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	Session auth.Session `json:"session"`
	Access  tokenPart    `json:"access"`
	Refresh tokenPart    `json:"refresh"`
}

// issuePair signs an access token for the session and stores a fresh
// refresh token under the session's subject.
func (h *AuthHandler) issuePair(ctx context.Context, s auth.Session) (authResp, error) {
	access, err := auth.NewAccessToken(h.Cfg.JWTSecret, s, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := auth.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, s.Subject(), auth.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		Session: s,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Login resolves the credential into a role and returns a token pair.
// All credential failures share one 401 body; only an inactive
// condominium is surfaced separately so the resident knows the account
// itself is fine.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Secret == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "identifier/secret required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Resolver.Login(ctx, req.Identifier, req.Secret)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCondominiumInactive):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "condomínio inativo ou não encontrado"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciais inválidas ou usuário inativo"})
		}
		h.Log.Error("login resolution failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	resp, err := h.issuePair(ctx, s)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	h.Log.Info("login", zap.String("role", string(s.Role)), zap.String("subject", s.Subject()))
	return c.JSON(http.StatusOK, resp)
}

// Refresh validates by hash, revokes the old token and issues a new
// pair. The session is re-resolved from the store so a renamed
// condominium or moved resident shows up in the rotated token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := auth.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	subject, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	s, err := h.Resolver.Resolve(ctx, subject)
	if err != nil {
		// The account disappeared or was deactivated since the last
		// login; the refresh token is no longer worth anything.
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}

	resp, err := h.issuePair(ctx, s)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes a specific refresh token when one is supplied, or
// every token of the current session otherwise (protected route, so a
// session always exists here).
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if raw != "" {
		if err := h.Tokens.RevokeByHash(ctx, auth.HashRefreshRaw(raw)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	s, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Tokens.RevokeAllForSubject(ctx, s.Subject()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the current session back to the client.
func (h *AuthHandler) Me(c echo.Context) error {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, s)
}

// SwitchCondominium moves a manager session to another administered
// condominium and returns the updated session with a fresh access
// token. Old access tokens keep their previous tenancy until expiry.
func (h *AuthHandler) SwitchCondominium(c echo.Context) error {
	var req switchReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Matricula) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "matricula required"})
	}
	s, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switched, err := h.Resolver.SwitchCondominium(ctx, s, strings.TrimSpace(req.Matricula))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotAdministered):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "condomínio não administrado por esta conta"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "condomínio não encontrado"})
		}
		h.Log.Error("condominium switch failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "switch failed"})
	}

	access, err := auth.NewAccessToken(h.Cfg.JWTSecret, switched, h.Cfg.AccessTTLMin)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session": switched,
		"access":  tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
