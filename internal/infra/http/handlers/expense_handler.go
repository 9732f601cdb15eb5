package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type ExpenseUseCase interface {
	Create(ctx context.Context, actor usecase.Actor, input usecase.CreateExpenseInput) (*entity.Expense, error)
	Get(ctx context.Context, id string) (*entity.Expense, error)
	List(ctx context.Context, filter entity.ExpenseFilter, page entity.PageRequest) (*entity.Page[*entity.Expense], error)
	Update(ctx context.Context, actor usecase.Actor, id string, input usecase.UpdateExpenseInput) (*entity.Expense, error)
	Pay(ctx context.Context, actor usecase.Actor, id string, input usecase.PayExpenseInput) (*entity.Expense, error)
	BatchPay(ctx context.Context, actor usecase.Actor, input usecase.BatchPayInput) (*usecase.BatchPayResult, error)
	Cancel(ctx context.Context, actor usecase.Actor, id string) (*entity.Expense, error)
	Delete(ctx context.Context, actor usecase.Actor, id string) error
}

type ExpenseHandler struct {
	Expenses ExpenseUseCase
	logger   *zap.Logger
}

func NewExpenseHandler(expenses ExpenseUseCase, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses, logger: logger}
}

func (h *ExpenseHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/batch-pay", h.BatchPay)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/pay", h.Pay)
	r.Post("/{id}/cancel", h.Cancel)
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateExpenseInput
	if !decodeJSON(w, r, &input) {
		return
	}
	e, err := h.Expenses.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.Expenses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "date_from")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	to, err := queryDate(r, "date_to")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	filter := entity.ExpenseFilter{
		Category:   entity.ExpenseCategory(queryUpper(r, "category")),
		Status:     entity.ExpenseStatus(queryUpper(r, "status")),
		PropertyID: r.URL.Query().Get("property_id"),
		DateFrom:   from,
		DateTo:     to,
	}
	page, err := h.Expenses.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateExpenseInput
	if !decodeJSON(w, r, &input) {
		return
	}
	e, err := h.Expenses.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *ExpenseHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var input usecase.PayExpenseInput
	if !decodeJSON(w, r, &input) {
		return
	}
	e, err := h.Expenses.Pay(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// BatchPay always answers 200 when the batch itself is valid; per-expense
// failures are reported inside the result.
func (h *ExpenseHandler) BatchPay(w http.ResponseWriter, r *http.Request) {
	var input usecase.BatchPayInput
	if !decodeJSON(w, r, &input) {
		return
	}
	res, err := h.Expenses.BatchPay(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ExpenseHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	e, err := h.Expenses.Cancel(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Expenses.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
