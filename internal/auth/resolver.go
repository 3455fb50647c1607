package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/meuresidencial/condo-api/internal/model"
	"github.com/meuresidencial/condo-api/internal/repository"
)

// ErrInvalidCredentials covers every authentication failure that must
// stay indistinguishable to the caller: unknown identifier, wrong
// secret, inactive account. Never wrap stage-specific detail into it.
var ErrInvalidCredentials = errors.New("invalid credentials or inactive user")

// ErrCondominiumInactive is the one deliberate exception: a resident
// whose email/CPF matched but whose condominium is missing or inactive
// gets an operational error distinct from bad credentials.
var ErrCondominiumInactive = errors.New("condominium not found or inactive")

// ErrNotAdministered is returned by SwitchCondominium when the target
// registration code is not in the session's administered list.
var ErrNotAdministered = errors.New("condominium not administered by this account")

// OperatorStore, CondominiumStore and ResidentStore are the slices of
// the repository layer the resolver needs. Lookups that match nothing
// return repository.ErrNotFound.
type OperatorStore interface {
	GetByEmail(ctx context.Context, email string) (model.Operator, error)
}

type CondominiumStore interface {
	FindActiveByEmail(ctx context.Context, email string) ([]model.Condominium, error)
	FindActiveByMatricula(ctx context.Context, matricula string) ([]model.Condominium, error)
	GetByMatricula(ctx context.Context, matricula string) (model.Condominium, error)
}

type ResidentStore interface {
	GetByEmail(ctx context.Context, email string) (model.Resident, error)
	GetByID(ctx context.Context, id string) (model.Resident, error)
}

// Resolver classifies a login attempt into exactly one role and builds
// the session payload. The three strategies run in order and the first
// match wins: operator, then manager (condominium legal representative),
// then resident.
type Resolver struct {
	Operators OperatorStore
	Condos    CondominiumStore
	Residents ResidentStore
	Log       *zap.Logger
}

func NewResolver(ops OperatorStore, condos CondominiumStore, residents ResidentStore, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{Operators: ops, Condos: condos, Residents: residents, Log: log}
}

// Login resolves identifier (email or registration code) and secret
// (password, or CPF digits for residents) into a Session. Store errors
// abort the attempt; they are never folded into ErrInvalidCredentials.
func (r *Resolver) Login(ctx context.Context, identifier, secret string) (Session, error) {
	ident := strings.TrimSpace(identifier)
	email := strings.ToLower(ident)
	if ident == "" || secret == "" {
		return Session{}, ErrInvalidCredentials
	}

	// 1. Seeded operator account.
	op, err := r.Operators.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if op.Ativo && VerifyPassword(op.SenhaHash, secret) {
			return Session{Role: RoleAdmin, Nome: op.Nome, Email: op.Email}, nil
		}
		// Fall through: an operator email with a wrong password still
		// gets the manager/resident strategies, same as any identifier.
	case !errors.Is(err, repository.ErrNotFound):
		return Session{}, fmt.Errorf("operator lookup: %w", err)
	}

	// 2. Manager: the identifier may be the legal email or a matricula,
	// and one email may be tied to several registrations.
	byEmail, err := r.Condos.FindActiveByEmail(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("condominium lookup by email: %w", err)
	}
	byCode, err := r.Condos.FindActiveByMatricula(ctx, ident)
	if err != nil {
		return Session{}, fmt.Errorf("condominium lookup by matricula: %w", err)
	}
	var administered []model.Condominium
	seen := map[string]bool{}
	for _, c := range append(byEmail, byCode...) {
		if seen[c.Matricula] {
			continue
		}
		seen[c.Matricula] = true
		if VerifyPassword(c.SenhaHash, secret) {
			administered = append(administered, c)
		}
	}
	if len(administered) > 0 {
		return managerSession(administered), nil
	}

	// 3. Resident: email + CPF digits.
	res, err := r.Residents.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("resident lookup: %w", err)
	}
	if !cpfMatches(res.CPF, secret) {
		return Session{}, ErrInvalidCredentials
	}
	condo, err := r.Condos.GetByMatricula(ctx, res.Matricula)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrCondominiumInactive
	}
	if err != nil {
		return Session{}, fmt.Errorf("resident condominium lookup: %w", err)
	}
	if !condo.Ativo {
		return Session{}, ErrCondominiumInactive
	}
	return residentSession(res, condo), nil
}

// SwitchCondominium moves a manager session to another administered
// tenancy, re-fetching that condominium's display name and address. The
// result is reported to the caller; nothing fails silently.
func (r *Resolver) SwitchCondominium(ctx context.Context, s Session, matricula string) (Session, error) {
	if !s.IsManager() || !s.Administers(matricula) {
		return Session{}, ErrNotAdministered
	}
	condo, err := r.Condos.GetByMatricula(ctx, matricula)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, repository.ErrNotFound
		}
		return Session{}, fmt.Errorf("condominium refetch: %w", err)
	}
	s.Matricula = condo.Matricula
	s.NomeCondominio = displayName(condo)
	s.Address = condo.Address
	r.Log.Info("tenancy switched", zap.String("matricula", condo.Matricula))
	return s, nil
}

// Resolve rebuilds a fresh Session from a refresh-token subject so that
// rotated access tokens pick up store changes (renamed condominium,
// revoked registration, moved resident).
func (r *Resolver) Resolve(ctx context.Context, subject string) (Session, error) {
	kind, key, ok := strings.Cut(subject, ":")
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	switch kind {
	case "op":
		op, err := r.Operators.GetByEmail(ctx, key)
		if err != nil || !op.Ativo {
			return Session{}, ErrInvalidCredentials
		}
		return Session{Role: RoleAdmin, Nome: op.Nome, Email: op.Email}, nil
	case "mgr":
		condos, err := r.Condos.FindActiveByEmail(ctx, key)
		if err != nil || len(condos) == 0 {
			return Session{}, ErrInvalidCredentials
		}
		return managerSession(condos), nil
	case "res":
		res, err := r.Residents.GetByID(ctx, key)
		if err != nil {
			return Session{}, ErrInvalidCredentials
		}
		condo, err := r.Condos.GetByMatricula(ctx, res.Matricula)
		if err != nil || !condo.Ativo {
			return Session{}, ErrCondominiumInactive
		}
		return residentSession(res, condo), nil
	}
	return Session{}, ErrInvalidCredentials
}

// managerSession seeds the session from the first administered
// condominium's legal-representative fields. The order is stable
// (email matches before matricula matches, store order within each), so
// repeated logins land on the same active tenancy.
func managerSession(administered []model.Condominium) Session {
	first := administered[0]
	refs := make([]CondominiumRef, 0, len(administered))
	for _, c := range administered {
		refs = append(refs, CondominiumRef{Matricula: c.Matricula, NomeCondominio: displayName(c)})
	}
	nome := first.NomeLegal
	if nome == "" {
		nome = first.Matricula
	}
	return Session{
		Role:           RoleManager,
		Nome:           nome,
		Email:          first.EmailLegal,
		Matricula:      first.Matricula,
		NomeCondominio: displayName(first),
		Address:        first.Address,
		Condominiums:   refs,
	}
}

func residentSession(res model.Resident, condo model.Condominium) Session {
	return Session{
		Role:           RoleResident,
		Nome:           res.NomeCompleto,
		Email:          res.Email,
		Matricula:      res.Matricula,
		NomeCondominio: displayName(condo),
		Address:        condo.Address,
		ResidentID:     res.ID,
		Unidade:        res.Unidade,
	}
}

func displayName(c model.Condominium) string {
	if c.NomeCondominio == "" {
		return "Condomínio"
	}
	return c.NomeCondominio
}

// cpfMatches compares CPFs digit-by-digit in constant time after
// stripping formatting, so "123.456.789-09" and "12345678909" match.
func cpfMatches(stored, supplied string) bool {
	a, b := cpfDigits(stored), cpfDigits(supplied)
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func cpfDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
