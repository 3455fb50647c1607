package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/meuresidencial/condo-api/internal/model"
)

// CondominiumRepo provides lookups over the `condominiums` table. The
// manager login path queries it twice (by legal email and by matricula)
// and the resident path uses it to gate on the tenancy being active.
type CondominiumRepo struct{ DB *sql.DB }

func NewCondominiumRepo(db *sql.DB) *CondominiumRepo { return &CondominiumRepo{DB: db} }

const condominiumCols = `matricula,nomecondominio,nomelegal,emaillegal,senha_hash,ativo,telefone,
	rua,numero,complemento,bairro,cidade,estado,cep,created_at,updated_at`

func scanCondominium(row interface{ Scan(...any) error }) (model.Condominium, error) {
	var c model.Condominium
	err := row.Scan(&c.Matricula, &c.NomeCondominio, &c.NomeLegal, &c.EmailLegal, &c.SenhaHash,
		&c.Ativo, &c.Telefone,
		&c.Address.Rua, &c.Address.Numero, &c.Address.Complemento, &c.Address.Bairro,
		&c.Address.Cidade, &c.Address.Estado, &c.Address.CEP,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// FindActiveByEmail returns all active condominiums whose legal email
// matches. A manager tied to several registrations gets several rows.
func (r *CondominiumRepo) FindActiveByEmail(ctx context.Context, email string) ([]model.Condominium, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findActive(ctx, "emaillegal=?", email)
}

// FindActiveByMatricula returns the active condominium with the given
// registration code, as a slice for symmetry with the email lookup.
func (r *CondominiumRepo) FindActiveByMatricula(ctx context.Context, matricula string) ([]model.Condominium, error) {
	return r.findActive(ctx, "matricula=?", strings.TrimSpace(matricula))
}

func (r *CondominiumRepo) findActive(ctx context.Context, cond string, arg any) ([]model.Condominium, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+condominiumCols+" FROM condominiums WHERE "+cond+" AND ativo=1 ORDER BY matricula", arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Condominium
	for rows.Next() {
		c, err := scanCondominium(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByMatricula fetches one condominium regardless of active flag;
// callers decide whether an inactive row is acceptable.
func (r *CondominiumRepo) GetByMatricula(ctx context.Context, matricula string) (model.Condominium, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+condominiumCols+" FROM condominiums WHERE matricula=? LIMIT 1",
		strings.TrimSpace(matricula))
	c, err := scanCondominium(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Condominium{}, ErrNotFound
	}
	return c, err
}
