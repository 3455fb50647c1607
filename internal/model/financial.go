package model

import "time"

// Income categories accepted by the financial module. Stored as-is; the
// UI maps them to friendly labels.
const (
	IncomeTaxaCondominio   = "taxa_condominio"
	IncomeReservaAreaComum = "reserva_area_comum"
	IncomeTaxaExtra        = "taxa_extra"
	IncomeOutros           = "outros"
)

// FinancialIncome mirrors the `financial_incomes` table. Amounts are
// stored in cents; ReferenceMonth is the competency month in "2006-01"
// form. Unit ties the income to a resident unit when applicable.
type FinancialIncome struct {
	ID             string
	Matricula      string
	Category       string
	AmountCents    int64
	ReferenceMonth string
	Unit           string
	Observations   string
	CreatedAt      time.Time
}

// FinancialExpense mirrors the `financial_expenses` table. DueDate and
// PaymentDate are calendar dates in "2006-01-02" form; PaymentDate is
// empty while the expense is unpaid.
type FinancialExpense struct {
	ID             string
	Matricula      string
	Category       string
	AmountCents    int64
	ReferenceMonth string
	DueDate        string
	PaymentDate    string
	Observations   string
	CreatedAt      time.Time
}

// FinancialBalance mirrors the `financial_balances` table: one running
// balance row per condominium, adjusted by the manager.
type FinancialBalance struct {
	Matricula    string
	BalanceCents int64
	UpdatedAt    time.Time
}

// MonthlySummary aggregates one competency month for the accountability
// report: total incomes, total expenses and the estimated balance after
// applying both to the stored running balance.
type MonthlySummary struct {
	Month             string             `json:"month"`
	IncomeCents       int64              `json:"income_cents"`
	ExpenseCents      int64              `json:"expense_cents"`
	StartBalanceCents int64              `json:"start_balance_cents"`
	EndBalanceCents   int64              `json:"end_balance_cents"`
	Incomes           []FinancialIncome  `json:"-"`
	Expenses          []FinancialExpense `json:"-"`
}
