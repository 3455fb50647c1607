// Package auth implements credential resolution and session handling.
// A login attempt is classified into exactly one role (admin, manager or
// resident) against the shared store, and the resulting Session is
// serialized into the access token at the process boundary; middleware
// rebuilds it into the request context so no handler reads ambient
// global state.
package auth

import "github.com/meuresidencial/condo-api/internal/model"

// Role identifies which of the three account kinds a session belongs to.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleResident Role = "resident"
)

// CondominiumRef is the lightweight entry of a manager's administered
// condominium list, enough to render the tenancy switcher.
type CondominiumRef struct {
	Matricula      string `json:"matricula"`
	NomeCondominio string `json:"nome_condominio"`
}

// Session is the payload produced by a successful login. Exactly one
// role is active; a resident session always carries ResidentID and
// Unidade, a manager/admin session never does. Matricula holds the
// active tenancy; managers additionally carry the full administered
// list so the tenancy can be switched later.
type Session struct {
	Role           Role             `json:"role"`
	Nome           string           `json:"nome"`
	Email          string           `json:"email"`
	Matricula      string           `json:"matricula,omitempty"`
	NomeCondominio string           `json:"nome_condominio,omitempty"`
	Address        model.Address    `json:"address,omitzero"`
	ResidentID     string           `json:"resident_id,omitempty"`
	Unidade        string           `json:"unidade,omitempty"`
	Condominiums   []CondominiumRef `json:"condominiums,omitempty"`
}

func (s Session) IsAdmin() bool    { return s.Role == RoleAdmin }
func (s Session) IsManager() bool  { return s.Role == RoleManager }
func (s Session) IsResident() bool { return s.Role == RoleResident }

// Subject returns the stable key identifying this session's account,
// used for refresh-token ownership and re-resolution.
func (s Session) Subject() string {
	switch s.Role {
	case RoleAdmin:
		return "op:" + s.Email
	case RoleManager:
		return "mgr:" + s.Email
	case RoleResident:
		return "res:" + s.ResidentID
	}
	return ""
}

// Administers reports whether a manager session carries the given
// registration code in its administered list.
func (s Session) Administers(matricula string) bool {
	for _, c := range s.Condominiums {
		if c.Matricula == matricula {
			return true
		}
	}
	return false
}
