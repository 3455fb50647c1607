package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meuresidencial/condo-api/internal/model"
	"github.com/meuresidencial/condo-api/internal/repository"
)

type fakeOperators struct {
	byEmail map[string]model.Operator
	err     error
}

func (f *fakeOperators) GetByEmail(_ context.Context, email string) (model.Operator, error) {
	if f.err != nil {
		return model.Operator{}, f.err
	}
	op, ok := f.byEmail[email]
	if !ok {
		return model.Operator{}, repository.ErrNotFound
	}
	return op, nil
}

type fakeCondos struct {
	all []model.Condominium
}

func (f *fakeCondos) FindActiveByEmail(_ context.Context, email string) ([]model.Condominium, error) {
	var out []model.Condominium
	for _, c := range f.all {
		if c.Ativo && c.EmailLegal == email {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCondos) FindActiveByMatricula(_ context.Context, matricula string) ([]model.Condominium, error) {
	var out []model.Condominium
	for _, c := range f.all {
		if c.Ativo && c.Matricula == matricula {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCondos) GetByMatricula(_ context.Context, matricula string) (model.Condominium, error) {
	for _, c := range f.all {
		if c.Matricula == matricula {
			return c, nil
		}
	}
	return model.Condominium{}, repository.ErrNotFound
}

type fakeResidents struct {
	byEmail map[string]model.Resident
}

func (f *fakeResidents) GetByEmail(_ context.Context, email string) (model.Resident, error) {
	r, ok := f.byEmail[email]
	if !ok {
		return model.Resident{}, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeResidents) GetByID(_ context.Context, id string) (model.Resident, error) {
	for _, r := range f.byEmail {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Resident{}, repository.ErrNotFound
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	ops := &fakeOperators{byEmail: map[string]model.Operator{
		"admin@plataforma.com": {ID: 1, Nome: "Operador", Email: "admin@plataforma.com", SenhaHash: mustHash(t, "op-secret"), Ativo: true},
	}}
	condos := &fakeCondos{all: []model.Condominium{
		{Matricula: "COND-001", NomeCondominio: "Residencial Aurora", NomeLegal: "Maria Silva",
			EmailLegal: "sindica@aurora.com", SenhaHash: mustHash(t, "mgr-secret"), Ativo: true},
		{Matricula: "COND-002", NomeCondominio: "Residencial Bosque", NomeLegal: "Maria Silva",
			EmailLegal: "sindica@aurora.com", SenhaHash: mustHash(t, "mgr-secret"), Ativo: true},
		{Matricula: "COND-003", NomeCondominio: "Residencial Cedro", NomeLegal: "João Souza",
			EmailLegal: "sindico@cedro.com", SenhaHash: mustHash(t, "other-secret"), Ativo: true},
		{Matricula: "COND-INATIVO", NomeCondominio: "Residencial Parado", NomeLegal: "Ana Lima",
			EmailLegal: "sindica@parado.com", SenhaHash: mustHash(t, "mgr-secret"), Ativo: false},
	}}
	residents := &fakeResidents{byEmail: map[string]model.Resident{
		"morador@aurora.com": {ID: "res-1", Matricula: "COND-001", NomeCompleto: "Carlos Pereira",
			CPF: "12345678909", Email: "morador@aurora.com", Unidade: "Apto 101"},
		"morador@parado.com": {ID: "res-2", Matricula: "COND-INATIVO", NomeCompleto: "Pedro Nunes",
			CPF: "98765432100", Email: "morador@parado.com", Unidade: "Apto 202"},
	}}
	return NewResolver(ops, condos, residents, nil)
}

func TestResolverLogin_Operator(t *testing.T) {
	r := newTestResolver(t)

	t.Run("valid password yields admin session", func(t *testing.T) {
		s, err := r.Login(context.Background(), "admin@plataforma.com", "op-secret")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, s.Role)
		assert.Equal(t, "Operador", s.Nome)
		assert.Empty(t, s.Matricula)
		assert.Empty(t, s.ResidentID)
	})

	t.Run("email matching is case-insensitive", func(t *testing.T) {
		s, err := r.Login(context.Background(), "Admin@Plataforma.COM", "op-secret")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, s.Role)
	})

	t.Run("wrong password is a uniform failure", func(t *testing.T) {
		_, err := r.Login(context.Background(), "admin@plataforma.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("store failure is surfaced, not folded into 401", func(t *testing.T) {
		boom := errors.New("connection reset")
		broken := NewResolver(&fakeOperators{err: boom}, &fakeCondos{}, &fakeResidents{}, nil)
		_, err := broken.Login(context.Background(), "admin@plataforma.com", "op-secret")
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestResolverLogin_Manager(t *testing.T) {
	r := newTestResolver(t)

	t.Run("by legal email with multiple condominiums", func(t *testing.T) {
		s, err := r.Login(context.Background(), "sindica@aurora.com", "mgr-secret")
		require.NoError(t, err)
		assert.Equal(t, RoleManager, s.Role)
		assert.Equal(t, "Maria Silva", s.Nome)
		assert.Equal(t, "COND-001", s.Matricula)
		require.Len(t, s.Condominiums, 2)
		assert.Equal(t, "COND-001", s.Condominiums[0].Matricula)
		assert.Equal(t, "COND-002", s.Condominiums[1].Matricula)
	})

	t.Run("by matricula", func(t *testing.T) {
		s, err := r.Login(context.Background(), "COND-003", "other-secret")
		require.NoError(t, err)
		assert.Equal(t, RoleManager, s.Role)
		assert.Equal(t, "COND-003", s.Matricula)
	})

	t.Run("inactive condominium never authenticates a manager", func(t *testing.T) {
		_, err := r.Login(context.Background(), "COND-INATIVO", "mgr-secret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password falls through to uniform failure", func(t *testing.T) {
		_, err := r.Login(context.Background(), "sindica@aurora.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("email and matricula hits are deduplicated", func(t *testing.T) {
		// One identifier can hit the same registration through both
		// lookups; it must appear once in the administered list.
		condos := &fakeCondos{all: []model.Condominium{
			{Matricula: "cond-x", NomeCondominio: "Residencial X", NomeLegal: "Rita Dias",
				EmailLegal: "cond-x", SenhaHash: mustHash(t, "mgr-secret"), Ativo: true},
		}}
		dup := NewResolver(&fakeOperators{}, condos, &fakeResidents{}, nil)
		s, err := dup.Login(context.Background(), "cond-x", "mgr-secret")
		require.NoError(t, err)
		assert.Equal(t, RoleManager, s.Role)
		require.Len(t, s.Condominiums, 1)
	})
}

func TestResolverLogin_Resident(t *testing.T) {
	r := newTestResolver(t)

	t.Run("email plus CPF digits", func(t *testing.T) {
		s, err := r.Login(context.Background(), "morador@aurora.com", "12345678909")
		require.NoError(t, err)
		assert.Equal(t, RoleResident, s.Role)
		assert.Equal(t, "res-1", s.ResidentID)
		assert.Equal(t, "Apto 101", s.Unidade)
		assert.Equal(t, "COND-001", s.Matricula)
		assert.Equal(t, "Residencial Aurora", s.NomeCondominio)
	})

	t.Run("formatted CPF matches stored digits", func(t *testing.T) {
		s, err := r.Login(context.Background(), "morador@aurora.com", "123.456.789-09")
		require.NoError(t, err)
		assert.Equal(t, RoleResident, s.Role)
	})

	t.Run("wrong CPF is a uniform failure", func(t *testing.T) {
		_, err := r.Login(context.Background(), "morador@aurora.com", "00000000000")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive condominium is a distinct error", func(t *testing.T) {
		_, err := r.Login(context.Background(), "morador@parado.com", "98765432100")
		assert.ErrorIs(t, err, ErrCondominiumInactive)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown identifier is a uniform failure", func(t *testing.T) {
		_, err := r.Login(context.Background(), "ninguem@nada.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty secret never authenticates", func(t *testing.T) {
		_, err := r.Login(context.Background(), "morador@aurora.com", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestResolverSwitchCondominium(t *testing.T) {
	r := newTestResolver(t)

	login := func(t *testing.T) Session {
		s, err := r.Login(context.Background(), "sindica@aurora.com", "mgr-secret")
		require.NoError(t, err)
		return s
	}

	t.Run("switch to an administered condominium", func(t *testing.T) {
		s := login(t)
		switched, err := r.SwitchCondominium(context.Background(), s, "COND-002")
		require.NoError(t, err)
		assert.Equal(t, "COND-002", switched.Matricula)
		assert.Equal(t, "Residencial Bosque", switched.NomeCondominio)
		// The administered list survives the switch.
		assert.Len(t, switched.Condominiums, 2)
	})

	t.Run("switch to a foreign condominium is refused", func(t *testing.T) {
		s := login(t)
		_, err := r.SwitchCondominium(context.Background(), s, "COND-003")
		assert.ErrorIs(t, err, ErrNotAdministered)
	})

	t.Run("non-manager sessions cannot switch", func(t *testing.T) {
		admin, err := r.Login(context.Background(), "admin@plataforma.com", "op-secret")
		require.NoError(t, err)
		_, err = r.SwitchCondominium(context.Background(), admin, "COND-001")
		assert.ErrorIs(t, err, ErrNotAdministered)
	})
}

func TestResolverResolve(t *testing.T) {
	r := newTestResolver(t)

	t.Run("operator subject", func(t *testing.T) {
		s, err := r.Resolve(context.Background(), "op:admin@plataforma.com")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, s.Role)
	})

	t.Run("manager subject", func(t *testing.T) {
		s, err := r.Resolve(context.Background(), "mgr:sindica@aurora.com")
		require.NoError(t, err)
		assert.Equal(t, RoleManager, s.Role)
		assert.Len(t, s.Condominiums, 2)
	})

	t.Run("resident subject", func(t *testing.T) {
		s, err := r.Resolve(context.Background(), "res:res-1")
		require.NoError(t, err)
		assert.Equal(t, RoleResident, s.Role)
		assert.Equal(t, "res-1", s.ResidentID)
	})

	t.Run("resident of an inactive condominium cannot refresh", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), "res:res-2")
		assert.ErrorIs(t, err, ErrCondominiumInactive)
	})

	t.Run("malformed subject", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), "garbage")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestSessionSubject(t *testing.T) {
	assert.Equal(t, "op:a@b.c", Session{Role: RoleAdmin, Email: "a@b.c"}.Subject())
	assert.Equal(t, "mgr:a@b.c", Session{Role: RoleManager, Email: "a@b.c"}.Subject())
	assert.Equal(t, "res:uuid-1", Session{Role: RoleResident, ResidentID: "uuid-1"}.Subject())
}
