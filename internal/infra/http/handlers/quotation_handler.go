package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type QuotationUseCase interface {
	Create(ctx context.Context, actor usecase.Actor, input usecase.CreateQuotationInput) (*entity.Quotation, error)
	Get(ctx context.Context, id string) (*entity.Quotation, error)
	List(ctx context.Context, filter entity.QuotationFilter, page entity.PageRequest) (*entity.Page[*entity.Quotation], error)
	Update(ctx context.Context, actor usecase.Actor, id string, input usecase.UpdateQuotationInput) (*entity.Quotation, error)
	Send(ctx context.Context, actor usecase.Actor, id string) (*entity.Quotation, error)
	Accept(ctx context.Context, actor usecase.Actor, id string) (*entity.Quotation, error)
	Reject(ctx context.Context, actor usecase.Actor, id string) (*entity.Quotation, error)
	Convert(ctx context.Context, actor usecase.Actor, id string) (*entity.Tenant, error)
}

type QuotationHandler struct {
	Quotations QuotationUseCase
	logger     *zap.Logger
}

func NewQuotationHandler(quotations QuotationUseCase, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{Quotations: quotations, logger: logger}
}

func (h *QuotationHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/send", h.transition(h.Quotations.Send))
	r.Post("/{id}/accept", h.transition(h.Quotations.Accept))
	r.Post("/{id}/reject", h.transition(h.Quotations.Reject))
	r.Post("/{id}/convert", h.Convert)
}

func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateQuotationInput
	if !decodeJSON(w, r, &input) {
		return
	}
	q, err := h.Quotations.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.Quotations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := entity.QuotationFilter{
		Status:     entity.QuotationStatus(queryUpper(r, "status")),
		LeadID:     r.URL.Query().Get("lead_id"),
		PropertyID: r.URL.Query().Get("property_id"),
	}
	page, err := h.Quotations.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateQuotationInput
	if !decodeJSON(w, r, &input) {
		return
	}
	q, err := h.Quotations.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QuotationHandler) transition(fn func(context.Context, usecase.Actor, string) (*entity.Quotation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := fn(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// Convert turns an accepted quotation into a pending tenant with its cheque
// schedule.
func (h *QuotationHandler) Convert(w http.ResponseWriter, r *http.Request) {
	t, err := h.Quotations.Convert(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}
