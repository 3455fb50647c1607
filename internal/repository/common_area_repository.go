package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/meuresidencial/condo-api/internal/model"
)

// CommonAreaRepo provides CRUD over the `common_areas` table.
type CommonAreaRepo struct{ DB *sql.DB }

func NewCommonAreaRepo(db *sql.DB) *CommonAreaRepo { return &CommonAreaRepo{DB: db} }

const commonAreaCols = `id,matricula,name,description,capacity,opening_time,closing_time,created_at,updated_at`

func scanCommonArea(row interface{ Scan(...any) error }) (model.CommonArea, error) {
	var a model.CommonArea
	err := row.Scan(&a.ID, &a.Matricula, &a.Name, &a.Description, &a.Capacity,
		&a.OpeningTime, &a.ClosingTime, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetByID fetches a common area by UUID.
func (r *CommonAreaRepo) GetByID(ctx context.Context, id string) (model.CommonArea, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+commonAreaCols+" FROM common_areas WHERE id=? LIMIT 1", id)
	a, err := scanCommonArea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CommonArea{}, ErrNotFound
	}
	return a, err
}

// ListByMatricula returns the common areas of one condominium.
func (r *CommonAreaRepo) ListByMatricula(ctx context.Context, matricula string) ([]model.CommonArea, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+commonAreaCols+" FROM common_areas WHERE matricula=? ORDER BY name", matricula)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CommonArea{}
	for rows.Next() {
		a, err := scanCommonArea(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create inserts a common area, generating the UUID when absent.
func (r *CommonAreaRepo) Create(ctx context.Context, a *model.CommonArea) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO common_areas (id, matricula, name, description, capacity, opening_time, closing_time)
		 VALUES (?,?,?,?,?,?,?)`,
		a.ID, a.Matricula, a.Name, a.Description, a.Capacity, a.OpeningTime, a.ClosingTime)
	return err
}

// Update rewrites the mutable fields of a common area scoped by matricula.
func (r *CommonAreaRepo) Update(ctx context.Context, a *model.CommonArea) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE common_areas SET name=?, description=?, capacity=?, opening_time=?, closing_time=?
		 WHERE id=? AND matricula=?`,
		a.Name, a.Description, a.Capacity, a.OpeningTime, a.ClosingTime, a.ID, a.Matricula)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// Delete removes a common area and cascades to its reservations.
func (r *CommonAreaRepo) Delete(ctx context.Context, id, matricula string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM common_areas WHERE id=? AND matricula=?", id, matricula)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}
