package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type ComplianceUseCase interface {
	Create(ctx context.Context, actor usecase.Actor, input usecase.CreateComplianceInput) (*entity.ComplianceRequirement, error)
	Get(ctx context.Context, id string) (*entity.ComplianceRequirement, error)
	List(ctx context.Context, filter entity.ComplianceFilter, page entity.PageRequest) (*entity.Page[*entity.ComplianceRequirement], error)
	Update(ctx context.Context, actor usecase.Actor, id string, input usecase.UpdateComplianceInput) (*entity.ComplianceRequirement, error)
	MarkCompliant(ctx context.Context, actor usecase.Actor, id string) (*entity.ComplianceRequirement, error)
	MarkNonCompliant(ctx context.Context, actor usecase.Actor, id string) (*entity.ComplianceRequirement, error)
	Delete(ctx context.Context, actor usecase.Actor, id string) error
	ListOverdue(ctx context.Context) ([]*entity.ComplianceRequirement, error)
}

type ComplianceHandler struct {
	Compliance ComplianceUseCase
	logger     *zap.Logger
}

func NewComplianceHandler(compliance ComplianceUseCase, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{Compliance: compliance, logger: logger}
}

func (h *ComplianceHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/overdue", h.ListOverdue)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/compliant", h.mark(h.Compliance.MarkCompliant))
	r.Post("/{id}/non-compliant", h.mark(h.Compliance.MarkNonCompliant))
}

func (h *ComplianceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateComplianceInput
	if !decodeJSON(w, r, &input) {
		return
	}
	c, err := h.Compliance.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ComplianceHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Compliance.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ComplianceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := entity.ComplianceFilter{
		Status:     entity.ComplianceStatus(queryUpper(r, "status")),
		PropertyID: r.URL.Query().Get("property_id"),
	}
	page, err := h.Compliance.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ComplianceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateComplianceInput
	if !decodeJSON(w, r, &input) {
		return
	}
	c, err := h.Compliance.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ComplianceHandler) mark(fn func(context.Context, usecase.Actor, string) (*entity.ComplianceRequirement, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := fn(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (h *ComplianceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Compliance.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ComplianceHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	out, err := h.Compliance.ListOverdue(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
