package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type NotificationUseCase interface {
	Notify(ctx context.Context, input usecase.QueueNotificationInput) (*entity.Notification, error)
	Retry(ctx context.Context, id string) (*entity.Notification, error)
	Get(ctx context.Context, id string) (*entity.Notification, error)
	List(ctx context.Context, filter entity.NotificationFilter, page entity.PageRequest) (*entity.Page[*entity.Notification], error)
	Statistics(ctx context.Context, from, to time.Time) (*usecase.NotificationStatistics, error)
}

type NotificationHandler struct {
	Notifications NotificationUseCase
	logger        *zap.Logger
	now           func() time.Time
}

func NewNotificationHandler(notifications NotificationUseCase, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications, logger: logger, now: time.Now}
}

func (h *NotificationHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Send)
	r.Get("/statistics", h.Statistics)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/retry", h.Retry)
}

type SendNotificationRequest struct {
	Type              string            `json:"type"`
	RecipientEmail    string            `json:"recipient_email"`
	RecipientName     string            `json:"recipient_name,omitempty"`
	Subject           string            `json:"subject"`
	TemplateKey       string            `json:"template_key"`
	Variables         map[string]string `json:"variables,omitempty"`
	RelatedEntityType string            `json:"related_entity_type,omitempty"`
	RelatedEntityID   string            `json:"related_entity_id,omitempty"`
}

func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.Notifications.Notify(r.Context(), usecase.QueueNotificationInput{
		Type:              entity.NotificationType(req.Type),
		RecipientEmail:    req.RecipientEmail,
		RecipientName:     req.RecipientName,
		Subject:           req.Subject,
		TemplateKey:       req.TemplateKey,
		Variables:         req.Variables,
		RelatedEntityType: req.RelatedEntityType,
		RelatedEntityID:   req.RelatedEntityID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, n)
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.Notifications.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
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
	filter := entity.NotificationFilter{
		Status:    entity.NotificationStatus(queryUpper(r, "status")),
		Type:      entity.NotificationType(queryUpper(r, "type")),
		Recipient: r.URL.Query().Get("recipient"),
		DateFrom:  from,
		DateTo:    to,
	}
	page, err := h.Notifications.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *NotificationHandler) Retry(w http.ResponseWriter, r *http.Request) {
	n, err := h.Notifications.Retry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Statistics defaults to the last 30 days. date_to is inclusive.
func (h *NotificationHandler) Statistics(w http.ResponseWriter, r *http.Request) {
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
	end := h.now()
	if to != nil {
		end = to.AddDate(0, 0, 1)
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}
	st, err := h.Notifications.Statistics(r.Context(), start, end)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
