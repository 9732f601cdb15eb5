package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type PropertyUseCase interface {
	Create(ctx context.Context, actor usecase.Actor, input usecase.CreatePropertyInput) (*entity.Property, error)
	Get(ctx context.Context, id string) (*entity.Property, error)
	List(ctx context.Context, filter entity.PropertyFilter, page entity.PageRequest) (*entity.Page[*entity.Property], error)
	Update(ctx context.Context, actor usecase.Actor, id string, input usecase.UpdatePropertyInput) (*entity.Property, error)
	Delete(ctx context.Context, actor usecase.Actor, id string) error
	AddUnit(ctx context.Context, actor usecase.Actor, propertyID string, input usecase.AddUnitInput) (*entity.Unit, error)
	ListUnits(ctx context.Context, propertyID string) ([]*entity.Unit, error)
	GetUnit(ctx context.Context, id string) (*entity.Unit, error)
	SetUnitStatus(ctx context.Context, actor usecase.Actor, unitID string, status entity.UnitStatus) (*entity.Unit, error)
}

type PropertyHandler struct {
	Properties PropertyUseCase
	logger     *zap.Logger
}

func NewPropertyHandler(properties PropertyUseCase, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{Properties: properties, logger: logger}
}

func (h *PropertyHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/units", h.ListUnits)
	r.Post("/{id}/units", h.AddUnit)
}

func (h *PropertyHandler) UnitRoutes(r chi.Router) {
	r.Get("/{unitID}", h.GetUnit)
	r.Put("/{unitID}/status", h.SetUnitStatus)
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreatePropertyInput
	if !decodeJSON(w, r, &input) {
		return
	}
	p, err := h.Properties.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Properties.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.PropertyFilter{
		Type:      entity.PropertyType(queryUpper(r, "type")),
		City:      q.Get("city"),
		ManagerID: q.Get("manager_id"),
		Search:    q.Get("search"),
	}
	page, err := h.Properties.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdatePropertyInput
	if !decodeJSON(w, r, &input) {
		return
	}
	p, err := h.Properties.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Properties.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PropertyHandler) AddUnit(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddUnitInput
	if !decodeJSON(w, r, &input) {
		return
	}
	u, err := h.Properties.AddUnit(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *PropertyHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Properties.ListUnits(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, units)
}

func (h *PropertyHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	u, err := h.Properties.GetUnit(r.Context(), chi.URLParam(r, "unitID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type unitStatusRequest struct {
	Status string `json:"status"`
}

func (h *PropertyHandler) SetUnitStatus(w http.ResponseWriter, r *http.Request) {
	var req unitStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status := entity.UnitStatus(strings.ToUpper(req.Status))
	u, err := h.Properties.SetUnitStatus(r.Context(), actorFrom(r), chi.URLParam(r, "unitID"), status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
