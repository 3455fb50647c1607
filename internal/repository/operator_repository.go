package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/meuresidencial/condo-api/internal/model"
)

// OperatorRepo reads the `operators` table: seeded platform
// administrator accounts that log in through the regular credential
// path instead of a hardcoded bypass.
type OperatorRepo struct{ DB *sql.DB }

func NewOperatorRepo(db *sql.DB) *OperatorRepo { return &OperatorRepo{DB: db} }

// GetByEmail fetches an operator by normalized email.
func (r *OperatorRepo) GetByEmail(ctx context.Context, email string) (model.Operator, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var op model.Operator
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,nome,email,senha_hash,ativo,created_at FROM operators WHERE email=? LIMIT 1",
		email).Scan(&op.ID, &op.Nome, &op.Email, &op.SenhaHash, &op.Ativo, &op.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Operator{}, ErrNotFound
	}
	return op, err
}

// EnsureSeed inserts the operator account if it does not exist yet and
// refreshes its password hash otherwise. Called at startup so a fresh
// database always has a working administrator.
func (r *OperatorRepo) EnsureSeed(ctx context.Context, nome, email, senhaHash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO operators (nome, email, senha_hash, ativo) VALUES (?,?,?,1)
		 ON DUPLICATE KEY UPDATE nome=VALUES(nome), senha_hash=VALUES(senha_hash), ativo=1`,
		nome, email, senhaHash)
	return err
}
