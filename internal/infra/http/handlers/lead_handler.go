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

type LeadUseCase interface {
	Create(ctx context.Context, actor usecase.Actor, input usecase.CreateLeadInput) (*entity.Lead, error)
	Get(ctx context.Context, id string) (*entity.Lead, error)
	List(ctx context.Context, filter entity.LeadFilter, page entity.PageRequest) (*entity.Page[*entity.Lead], error)
	Update(ctx context.Context, actor usecase.Actor, id string, input usecase.UpdateLeadInput) (*entity.Lead, error)
	ChangeStatus(ctx context.Context, actor usecase.Actor, id string, next entity.LeadStatus) (*entity.Lead, error)
	MarkLost(ctx context.Context, actor usecase.Actor, id, reason string) (*entity.Lead, error)
	Delete(ctx context.Context, actor usecase.Actor, id string) error
}

type LeadHandler struct {
	Leads  LeadUseCase
	logger *zap.Logger
}

func NewLeadHandler(leads LeadUseCase, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{Leads: leads, logger: logger}
}

func (h *LeadHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Put("/{id}/status", h.ChangeStatus)
	r.Post("/{id}/lost", h.MarkLost)
}

type CaptureLeadRequest struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	PropertyID string `json:"property_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

type CaptureLeadResponse struct {
	Success    bool   `json:"success"`
	LeadNumber string `json:"lead_number,omitempty"`
	Message    string `json:"message,omitempty"`
}

// CaptureLead is the public website form endpoint. It is mounted behind a
// per-IP rate limiter and runs without an authenticated actor.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var req CaptureLeadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeJSON(w, http.StatusBadRequest, CaptureLeadResponse{Message: "Email is required"})
		return
	}

	lead, err := h.Leads.Create(r.Context(), usecase.Actor{IP: getClientIP(r)}, usecase.CreateLeadInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Source:     "WEBSITE",
		PropertyID: req.PropertyID,
		Notes:      req.Message,
	})
	if err != nil {
		if usecase.ErrorCode(err) == usecase.CodeDuplicate {
			writeJSON(w, http.StatusOK, CaptureLeadResponse{Success: true})
			return
		}
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, CaptureLeadResponse{Success: true, LeadNumber: lead.LeadNumber})
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	l, err := h.Leads.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.Leads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := entity.LeadFilter{
		Status:     entity.LeadStatus(queryUpper(r, "status")),
		Source:     queryUpper(r, "source"),
		PropertyID: r.URL.Query().Get("property_id"),
		Search:     r.URL.Query().Get("search"),
	}
	page, err := h.Leads.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	l, err := h.Leads.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type leadStatusRequest struct {
	Status string `json:"status"`
}

func (h *LeadHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req leadStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	l, err := h.Leads.ChangeStatus(r.Context(), actorFrom(r), chi.URLParam(r, "id"), entity.LeadStatus(strings.ToUpper(req.Status)))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type markLostRequest struct {
	Reason string `json:"reason"`
}

func (h *LeadHandler) MarkLost(w http.ResponseWriter, r *http.Request) {
	var req markLostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	l, err := h.Leads.MarkLost(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Leads.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
