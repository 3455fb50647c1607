package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meuresidencial/condo-api/internal/middleware"
	"github.com/meuresidencial/condo-api/internal/model"
	"github.com/meuresidencial/condo-api/internal/repository"
)

// FinancialHandler serves the manager's accountability module: incomes,
// expenses, the running balance and the monthly summary.
type FinancialHandler struct {
	Financials *repository.FinancialRepo
	Log        *zap.Logger
}

func NewFinancialHandler(financials *repository.FinancialRepo, log *zap.Logger) *FinancialHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FinancialHandler{Financials: financials, Log: log}
}

type incomeReq struct {
	Category       string `json:"category"`
	AmountCents    int64  `json:"amount_cents"`
	ReferenceMonth string `json:"reference_month"` // "2006-01"
	Unit           string `json:"unit"`
	Observations   string `json:"observations"`
}

type expenseReq struct {
	Category       string `json:"category"`
	AmountCents    int64  `json:"amount_cents"`
	ReferenceMonth string `json:"reference_month"`
	DueDate        string `json:"due_date"`     // "2006-01-02"
	PaymentDate    string `json:"payment_date"` // empty while unpaid
	Observations   string `json:"observations"`
}

type incomeView struct {
	ID             string `json:"id"`
	Category       string `json:"category"`
	AmountCents    int64  `json:"amount_cents"`
	ReferenceMonth string `json:"reference_month"`
	Unit           string `json:"unit,omitempty"`
	Observations   string `json:"observations,omitempty"`
}

type expenseView struct {
	ID             string `json:"id"`
	Category       string `json:"category"`
	AmountCents    int64  `json:"amount_cents"`
	ReferenceMonth string `json:"reference_month"`
	DueDate        string `json:"due_date"`
	PaymentDate    string `json:"payment_date,omitempty"`
	Observations   string `json:"observations,omitempty"`
}

func toIncomeView(m model.FinancialIncome) incomeView {
	return incomeView{
		ID:             m.ID,
		Category:       m.Category,
		AmountCents:    m.AmountCents,
		ReferenceMonth: m.ReferenceMonth,
		Unit:           m.Unit,
		Observations:   m.Observations,
	}
}

func toExpenseView(m model.FinancialExpense) expenseView {
	return expenseView{
		ID:             m.ID,
		Category:       m.Category,
		AmountCents:    m.AmountCents,
		ReferenceMonth: m.ReferenceMonth,
		DueDate:        m.DueDate,
		PaymentDate:    m.PaymentDate,
		Observations:   m.Observations,
	}
}

func validMonth(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}

func validIncomeCategory(s string) bool {
	switch s {
	case model.IncomeTaxaCondominio, model.IncomeReservaAreaComum, model.IncomeTaxaExtra, model.IncomeOutros:
		return true
	}
	return false
}

// ListIncomes returns incomes, optionally filtered by ?month=2006-01.
func (h *FinancialHandler) ListIncomes(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	month := c.QueryParam("month")
	if month != "" && !validMonth(month) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "month must be YYYY-MM"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Financials.ListIncomes(ctx, s.Matricula, month)
	if err != nil {
		h.Log.Error("list incomes failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]incomeView, 0, len(list))
	for _, m := range list {
		out = append(out, toIncomeView(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"incomes": out})
}

// CreateIncome records an income entry.
func (h *FinancialHandler) CreateIncome(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	var req incomeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Category = strings.TrimSpace(req.Category)
	switch {
	case !validIncomeCategory(req.Category):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	case req.AmountCents <= 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_cents must be positive"})
	case !validMonth(req.ReferenceMonth):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference_month must be YYYY-MM"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := model.FinancialIncome{
		Matricula:      s.Matricula,
		Category:       req.Category,
		AmountCents:    req.AmountCents,
		ReferenceMonth: req.ReferenceMonth,
		Unit:           strings.TrimSpace(req.Unit),
		Observations:   req.Observations,
	}
	if err := h.Financials.CreateIncome(ctx, &m); err != nil {
		h.Log.Error("create income failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toIncomeView(m))
}

// DeleteIncome removes an income entry.
func (h *FinancialHandler) DeleteIncome(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Financials.DeleteIncome(ctx, c.Param("id"), s.Matricula); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "income not found"})
		}
		h.Log.Error("delete income failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListExpenses returns expenses, optionally filtered by ?month=2006-01.
func (h *FinancialHandler) ListExpenses(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	month := c.QueryParam("month")
	if month != "" && !validMonth(month) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "month must be YYYY-MM"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Financials.ListExpenses(ctx, s.Matricula, month)
	if err != nil {
		h.Log.Error("list expenses failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]expenseView, 0, len(list))
	for _, m := range list {
		out = append(out, toExpenseView(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"expenses": out})
}

// CreateExpense records an expense entry.
func (h *FinancialHandler) CreateExpense(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	var req expenseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Category = strings.TrimSpace(req.Category)
	switch {
	case req.Category == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category required"})
	case req.AmountCents <= 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_cents must be positive"})
	case !validMonth(req.ReferenceMonth):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference_month must be YYYY-MM"})
	}
	if _, err := time.Parse("2006-01-02", req.DueDate); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "due_date must be YYYY-MM-DD"})
	}
	if req.PaymentDate != "" {
		if _, err := time.Parse("2006-01-02", req.PaymentDate); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_date must be YYYY-MM-DD"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := model.FinancialExpense{
		Matricula:      s.Matricula,
		Category:       req.Category,
		AmountCents:    req.AmountCents,
		ReferenceMonth: req.ReferenceMonth,
		DueDate:        req.DueDate,
		PaymentDate:    req.PaymentDate,
		Observations:   req.Observations,
	}
	if err := h.Financials.CreateExpense(ctx, &m); err != nil {
		h.Log.Error("create expense failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toExpenseView(m))
}

// DeleteExpense removes an expense entry.
func (h *FinancialHandler) DeleteExpense(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Financials.DeleteExpense(ctx, c.Param("id"), s.Matricula); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "expense not found"})
		}
		h.Log.Error("delete expense failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// GetBalance returns the condominium's running balance; a missing row
// reads as zero.
func (h *FinancialHandler) GetBalance(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Financials.GetBalance(ctx, s.Matricula)
	if err != nil {
		h.Log.Error("get balance failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "balance failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"balance_cents": b.BalanceCents})
}

type balanceReq struct {
	BalanceCents int64 `json:"balance_cents"`
}

// SetBalance lets the manager adjust the stored running balance.
func (h *FinancialHandler) SetBalance(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	var req balanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Financials.UpsertBalance(ctx, s.Matricula, req.BalanceCents); err != nil {
		h.Log.Error("set balance failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"balance_cents": req.BalanceCents})
}

// Summary aggregates one competency month: total incomes, total
// expenses and the estimated end balance on top of the stored running
// balance. ?month=2006-01 is required.
func (h *FinancialHandler) Summary(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	month := c.QueryParam("month")
	if !validMonth(month) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "month must be YYYY-MM"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	incomes, err := h.Financials.ListIncomes(ctx, s.Matricula, month)
	if err != nil {
		h.Log.Error("summary incomes failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "summary failed"})
	}
	expenses, err := h.Financials.ListExpenses(ctx, s.Matricula, month)
	if err != nil {
		h.Log.Error("summary expenses failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "summary failed"})
	}
	balance, err := h.Financials.GetBalance(ctx, s.Matricula)
	if err != nil {
		h.Log.Error("summary balance failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "summary failed"})
	}

	sum := model.MonthlySummary{
		Month:             month,
		StartBalanceCents: balance.BalanceCents,
		Incomes:           incomes,
		Expenses:          expenses,
	}
	for _, m := range incomes {
		sum.IncomeCents += m.AmountCents
	}
	for _, m := range expenses {
		sum.ExpenseCents += m.AmountCents
	}
	sum.EndBalanceCents = sum.StartBalanceCents + sum.IncomeCents - sum.ExpenseCents

	iv := make([]incomeView, 0, len(incomes))
	for _, m := range incomes {
		iv = append(iv, toIncomeView(m))
	}
	ev := make([]expenseView, 0, len(expenses))
	for _, m := range expenses {
		ev = append(ev, toExpenseView(m))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"summary":  sum,
		"incomes":  iv,
		"expenses": ev,
	})
}
