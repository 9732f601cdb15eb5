package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type TenantUseCase interface {
	Create(ctx context.Context, actor usecase.Actor, input usecase.CreateTenantInput) (*entity.Tenant, error)
	Get(ctx context.Context, id string) (*entity.Tenant, error)
	List(ctx context.Context, filter entity.TenantFilter, page entity.PageRequest) (*entity.Page[*entity.Tenant], error)
	Update(ctx context.Context, actor usecase.Actor, id string, input usecase.UpdateTenantInput) (*entity.Tenant, error)
	Activate(ctx context.Context, actor usecase.Actor, id string) (*entity.Tenant, error)
	Terminate(ctx context.Context, actor usecase.Actor, id string) (*entity.Tenant, error)
	Delete(ctx context.Context, actor usecase.Actor, id string) error
	ListCheques(ctx context.Context, tenantID string) ([]*entity.Cheque, error)
	ClearCheque(ctx context.Context, actor usecase.Actor, chequeID string) (*entity.Cheque, error)
	BounceCheque(ctx context.Context, actor usecase.Actor, chequeID string) (*entity.Cheque, error)
}

type TenantHandler struct {
	Tenants TenantUseCase
	logger  *zap.Logger
}

func NewTenantHandler(tenants TenantUseCase, logger *zap.Logger) *TenantHandler {
	return &TenantHandler{Tenants: tenants, logger: logger}
}

func (h *TenantHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/activate", h.Activate)
	r.Post("/{id}/terminate", h.Terminate)
	r.Get("/{id}/cheques", h.ListCheques)
}

func (h *TenantHandler) ChequeRoutes(r chi.Router) {
	r.Post("/{chequeID}/clear", h.ClearCheque)
	r.Post("/{chequeID}/bounce", h.BounceCheque)
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateTenantInput
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.Tenants.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tenants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	endingBefore, err := queryDate(r, "lease_ending_before")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	filter := entity.TenantFilter{
		Status:            entity.TenantStatus(queryUpper(r, "status")),
		PropertyID:        r.URL.Query().Get("property_id"),
		Search:            r.URL.Query().Get("search"),
		LeaseEndingBefore: endingBefore,
	}
	page, err := h.Tenants.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateTenantInput
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.Tenants.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TenantHandler) Activate(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tenants.Activate(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TenantHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tenants.Terminate(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Tenants.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TenantHandler) ListCheques(w http.ResponseWriter, r *http.Request) {
	cheques, err := h.Tenants.ListCheques(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cheques)
}

func (h *TenantHandler) ClearCheque(w http.ResponseWriter, r *http.Request) {
	c, err := h.Tenants.ClearCheque(r.Context(), actorFrom(r), chi.URLParam(r, "chequeID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *TenantHandler) BounceCheque(w http.ResponseWriter, r *http.Request) {
	c, err := h.Tenants.BounceCheque(r.Context(), actorFrom(r), chi.URLParam(r, "chequeID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
