package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type UserUseCase interface {
	Create(ctx context.Context, actor usecase.Actor, input usecase.CreateUserInput) (*entity.User, error)
	Get(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context, filter entity.UserFilter, page entity.PageRequest) (*entity.Page[*entity.User], error)
	Update(ctx context.Context, actor usecase.Actor, id string, input usecase.UpdateUserInput) (*entity.User, error)
	Deactivate(ctx context.Context, actor usecase.Actor, id string) (*entity.User, error)
	Activate(ctx context.Context, actor usecase.Actor, id string) (*entity.User, error)
	ChangePassword(ctx context.Context, actor usecase.Actor, id string, input usecase.ChangePasswordInput) error
	Delete(ctx context.Context, actor usecase.Actor, id string) error
}

type UserHandler struct {
	Users  UserUseCase
	logger *zap.Logger
}

func NewUserHandler(users UserUseCase, logger *zap.Logger) *UserHandler {
	return &UserHandler{Users: users, logger: logger}
}

func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/activate", h.Activate)
	r.Post("/{id}/deactivate", h.Deactivate)
	r.Put("/{id}/password", h.ChangePassword)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), actorFrom(r).UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateUserInput
	if !decodeJSON(w, r, &input) {
		return
	}
	u, err := h.Users.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := entity.UserFilter{
		Role:   entity.Role(queryUpper(r, "role")),
		Search: r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(w, "active must be true or false")
			return
		}
		filter.Active = &active
	}
	page, err := h.Users.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateUserInput
	if !decodeJSON(w, r, &input) {
		return
	}
	u, err := h.Users.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Activate(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Deactivate(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChangePasswordInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := h.Users.ChangePassword(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
