package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/meuresidencial/condo-api/internal/model"
)

// ResidentRepo provides CRUD over the `residents` table. All list and
// write operations are scoped by matricula so a manager can never touch
// residents of a condominium they do not administer.
type ResidentRepo struct{ DB *sql.DB }

func NewResidentRepo(db *sql.DB) *ResidentRepo { return &ResidentRepo{DB: db} }

const residentCols = `id,matricula,nome_completo,cpf,telefone,email,unidade,valor_condominio_cents,created_at,updated_at`

func scanResident(row interface{ Scan(...any) error }) (model.Resident, error) {
	var m model.Resident
	err := row.Scan(&m.ID, &m.Matricula, &m.NomeCompleto, &m.CPF, &m.Telefone, &m.Email,
		&m.Unidade, &m.ValorCondominioCents, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// GetByEmail fetches a resident by normalized email. Resident emails are
// globally unique in the store.
func (r *ResidentRepo) GetByEmail(ctx context.Context, email string) (model.Resident, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+residentCols+" FROM residents WHERE email=? LIMIT 1", email)
	m, err := scanResident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Resident{}, ErrNotFound
	}
	return m, err
}

// GetByID fetches a resident by UUID.
func (r *ResidentRepo) GetByID(ctx context.Context, id string) (model.Resident, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+residentCols+" FROM residents WHERE id=? LIMIT 1", id)
	m, err := scanResident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Resident{}, ErrNotFound
	}
	return m, err
}

// ListByMatricula returns all residents of one condominium ordered by name.
func (r *ResidentRepo) ListByMatricula(ctx context.Context, matricula string) ([]model.Resident, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+residentCols+" FROM residents WHERE matricula=? ORDER BY nome_completo", matricula)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Resident{}
	for rows.Next() {
		m, err := scanResident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create inserts a resident and returns it with the generated ID. A CPF
// collision inside the condominium maps to ErrCPFExists.
func (r *ResidentRepo) Create(ctx context.Context, m *model.Resident) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO residents (id, matricula, nome_completo, cpf, telefone, email, unidade, valor_condominio_cents)
		 VALUES (?,?,?,?,?,?,?,?)`,
		m.ID, m.Matricula, m.NomeCompleto, m.CPF, m.Telefone, m.Email, m.Unidade, m.ValorCondominioCents)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrCPFExists
		}
		return err
	}
	return nil
}

// Update rewrites the mutable resident fields. Returns ErrNotFound when
// the id does not belong to the given matricula.
func (r *ResidentRepo) Update(ctx context.Context, m *model.Resident) error {
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	res, err := r.DB.ExecContext(ctx,
		`UPDATE residents SET nome_completo=?, cpf=?, telefone=?, email=?, unidade=?, valor_condominio_cents=?
		 WHERE id=? AND matricula=?`,
		m.NomeCompleto, m.CPF, m.Telefone, m.Email, m.Unidade, m.ValorCondominioCents,
		m.ID, m.Matricula)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrCPFExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// Delete removes a resident scoped by matricula.
func (r *ResidentRepo) Delete(ctx context.Context, id, matricula string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM residents WHERE id=? AND matricula=?", id, matricula)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}
