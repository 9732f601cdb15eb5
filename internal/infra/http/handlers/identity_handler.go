package handlers

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type IdentityExtractor interface {
	ExtractIdentity(ctx context.Context, input usecase.IdentityExtractionInput) (*usecase.IdentityExtractionResult, error)
}

type IdentityHandler struct {
	Extractor IdentityExtractor
	logger    *zap.Logger
}

func NewIdentityHandler(extractor IdentityExtractor, logger *zap.Logger) *IdentityHandler {
	return &IdentityHandler{Extractor: extractor, logger: logger}
}

// Extract reads the optional "passport" and "emirates_id" image parts and
// returns whatever fields OCR could pull out of each.
func (h *IdentityHandler) Extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*usecase.MaxIdentityImageSize+1<<20)
	if err := r.ParseMultipartForm(2 * usecase.MaxIdentityImageSize); err != nil {
		badRequest(w, "invalid multipart form or images larger than 5MB")
		return
	}

	var input usecase.IdentityExtractionInput
	var err error
	if input.Passport, err = formImage(r, "passport"); err != nil {
		badRequest(w, "could not read passport image")
		return
	}
	if input.EmiratesID, err = formImage(r, "emirates_id"); err != nil {
		badRequest(w, "could not read emirates_id image")
		return
	}

	res, err := h.Extractor.ExtractIdentity(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// formImage returns nil when the part is absent.
func formImage(r *http.Request, field string) (*usecase.UploadedFile, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, usecase.MaxIdentityImageSize+1))
	if err != nil {
		return nil, err
	}
	return &usecase.UploadedFile{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
