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

type WorkOrderUseCase interface {
	Create(ctx context.Context, actor usecase.Actor, input usecase.CreateWorkOrderInput) (*entity.WorkOrder, error)
	Get(ctx context.Context, id string) (*entity.WorkOrder, error)
	List(ctx context.Context, filter entity.WorkOrderFilter, page entity.PageRequest) (*entity.Page[*entity.WorkOrder], error)
	Update(ctx context.Context, actor usecase.Actor, id string, input usecase.UpdateWorkOrderInput) (*entity.WorkOrder, error)
	ChangeStatus(ctx context.Context, actor usecase.Actor, id string, next entity.WorkOrderStatus) (*entity.WorkOrder, error)
	Delete(ctx context.Context, actor usecase.Actor, id string) error
}

type WorkOrderHandler struct {
	WorkOrders WorkOrderUseCase
	logger     *zap.Logger
}

func NewWorkOrderHandler(workOrders WorkOrderUseCase, logger *zap.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{WorkOrders: workOrders, logger: logger}
}

func (h *WorkOrderHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Put("/{id}/status", h.ChangeStatus)
}

func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateWorkOrderInput
	if !decodeJSON(w, r, &input) {
		return
	}
	wo, err := h.WorkOrders.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, wo)
}

func (h *WorkOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	wo, err := h.WorkOrders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := entity.WorkOrderFilter{
		Status:     entity.WorkOrderStatus(queryUpper(r, "status")),
		Priority:   entity.WorkOrderPriority(queryUpper(r, "priority")),
		PropertyID: r.URL.Query().Get("property_id"),
		AssignedTo: r.URL.Query().Get("assigned_to"),
	}
	page, err := h.WorkOrders.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *WorkOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateWorkOrderInput
	if !decodeJSON(w, r, &input) {
		return
	}
	wo, err := h.WorkOrders.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

type workOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *WorkOrderHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req workOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next := entity.WorkOrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	wo, err := h.WorkOrders.ChangeStatus(r.Context(), actorFrom(r), chi.URLParam(r, "id"), next)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (h *WorkOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.WorkOrders.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
