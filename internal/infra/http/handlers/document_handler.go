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

type DocumentUseCase interface {
	Upload(ctx context.Context, actor usecase.Actor, input usecase.UploadDocumentInput) (*entity.Document, error)
	Get(ctx context.Context, id string) (*entity.Document, error)
	ListByOwner(ctx context.Context, ownerType, ownerID string) ([]*entity.Document, error)
	DownloadURL(ctx context.Context, actor usecase.Actor, id string) (string, error)
	Delete(ctx context.Context, actor usecase.Actor, id string) error
	ListExpiring(ctx context.Context, withinDays int) ([]*entity.Document, error)
}

type DocumentHandler struct {
	Documents DocumentUseCase
	logger    *zap.Logger
}

func NewDocumentHandler(documents DocumentUseCase, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{Documents: documents, logger: logger}
}

func (h *DocumentHandler) Routes(r chi.Router) {
	r.Post("/", h.Upload)
	r.Get("/expiring", h.ListExpiring)
	r.Get("/owner/{ownerType}/{ownerID}", h.ListByOwner)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/download-url", h.DownloadURL)
	r.Delete("/{id}", h.Delete)
}

// Upload takes a multipart form with a "file" part plus owner_type,
// owner_id, document_type and an optional expiry_date.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, usecase.MaxDocumentSize+1<<20)
	if err := r.ParseMultipartForm(usecase.MaxDocumentSize); err != nil {
		badRequest(w, "invalid multipart form or file larger than 10MB")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file is required")
		return
	}
	defer file.Close()

	doc, err := h.Documents.Upload(r.Context(), actorFrom(r), usecase.UploadDocumentInput{
		OwnerType:    r.FormValue("owner_type"),
		OwnerID:      r.FormValue("owner_id"),
		DocumentType: r.FormValue("document_type"),
		FileName:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		SizeBytes:    header.Size,
		ExpiryDate:   r.FormValue("expiry_date"),
		Body:         file,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Documents.ListByOwner(r.Context(), chi.URLParam(r, "ownerType"), chi.URLParam(r, "ownerID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

type downloadURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.Documents.DownloadURL(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadURLResponse{URL: url, ExpiresIn: int(usecase.DownloadURLLifetime.Seconds())})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Documents.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) ListExpiring(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "days must be a number")
			return
		}
		days = n
	}
	docs, err := h.Documents.ListExpiring(r.Context(), days)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}
