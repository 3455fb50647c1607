package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/meuresidencial/condo-api/internal/model"
)

// FinancialRepo provides access to the income, expense and balance
// tables backing the accountability report. Amounts are cents; the
// competency month is a "2006-01" string filterable with a plain
// equality match.
type FinancialRepo struct{ DB *sql.DB }

func NewFinancialRepo(db *sql.DB) *FinancialRepo { return &FinancialRepo{DB: db} }

// ListIncomes returns incomes for the condominium, optionally filtered
// by competency month (empty month means all).
func (r *FinancialRepo) ListIncomes(ctx context.Context, matricula, month string) ([]model.FinancialIncome, error) {
	q := `SELECT id,matricula,category,amount_cents,reference_month,unit,observations,created_at
	      FROM financial_incomes WHERE matricula=?`
	args := []any{matricula}
	if month != "" {
		q += " AND reference_month=?"
		args = append(args, month)
	}
	rows, err := r.DB.QueryContext(ctx, q+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.FinancialIncome{}
	for rows.Next() {
		var m model.FinancialIncome
		if err := rows.Scan(&m.ID, &m.Matricula, &m.Category, &m.AmountCents,
			&m.ReferenceMonth, &m.Unit, &m.Observations, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListExpenses mirrors ListIncomes for the expense table.
func (r *FinancialRepo) ListExpenses(ctx context.Context, matricula, month string) ([]model.FinancialExpense, error) {
	q := `SELECT id,matricula,category,amount_cents,reference_month,due_date,payment_date,observations,created_at
	      FROM financial_expenses WHERE matricula=?`
	args := []any{matricula}
	if month != "" {
		q += " AND reference_month=?"
		args = append(args, month)
	}
	rows, err := r.DB.QueryContext(ctx, q+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.FinancialExpense{}
	for rows.Next() {
		var m model.FinancialExpense
		var payment sql.NullString
		if err := rows.Scan(&m.ID, &m.Matricula, &m.Category, &m.AmountCents,
			&m.ReferenceMonth, &m.DueDate, &payment, &m.Observations, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.PaymentDate = payment.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateIncome inserts an income row.
func (r *FinancialRepo) CreateIncome(ctx context.Context, m *model.FinancialIncome) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO financial_incomes (id, matricula, category, amount_cents, reference_month, unit, observations)
		 VALUES (?,?,?,?,?,?,?)`,
		m.ID, m.Matricula, m.Category, m.AmountCents, m.ReferenceMonth, m.Unit, m.Observations)
	return err
}

// CreateExpense inserts an expense row. PaymentDate may be empty.
func (r *FinancialRepo) CreateExpense(ctx context.Context, m *model.FinancialExpense) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	var payment any
	if m.PaymentDate != "" {
		payment = m.PaymentDate
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO financial_expenses (id, matricula, category, amount_cents, reference_month, due_date, payment_date, observations)
		 VALUES (?,?,?,?,?,?,?,?)`,
		m.ID, m.Matricula, m.Category, m.AmountCents, m.ReferenceMonth, m.DueDate, payment, m.Observations)
	return err
}

// DeleteIncome removes an income row scoped by matricula.
func (r *FinancialRepo) DeleteIncome(ctx context.Context, id, matricula string) error {
	return r.deleteRow(ctx, "financial_incomes", id, matricula)
}

// DeleteExpense removes an expense row scoped by matricula.
func (r *FinancialRepo) DeleteExpense(ctx context.Context, id, matricula string) error {
	return r.deleteRow(ctx, "financial_expenses", id, matricula)
}

func (r *FinancialRepo) deleteRow(ctx context.Context, table, id, matricula string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM "+table+" WHERE id=? AND matricula=?", id, matricula)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// GetBalance returns the condominium's running balance row. A missing
// row reads as a zero balance rather than an error.
func (r *FinancialRepo) GetBalance(ctx context.Context, matricula string) (model.FinancialBalance, error) {
	var b model.FinancialBalance
	err := r.DB.QueryRowContext(ctx,
		"SELECT matricula,balance_cents,updated_at FROM financial_balances WHERE matricula=? LIMIT 1",
		matricula).Scan(&b.Matricula, &b.BalanceCents, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FinancialBalance{Matricula: matricula}, nil
	}
	return b, err
}

// UpsertBalance sets the running balance for a condominium.
func (r *FinancialRepo) UpsertBalance(ctx context.Context, matricula string, cents int64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO financial_balances (matricula, balance_cents) VALUES (?,?)
		 ON DUPLICATE KEY UPDATE balance_cents=VALUES(balance_cents)`,
		matricula, cents)
	return err
}
