package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

const maxJSONBody = 1 << 20

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusByCode = map[string]int{
	usecase.CodeNotFound:           http.StatusNotFound,
	usecase.CodeDuplicate:          http.StatusConflict,
	usecase.CodeInvalidState:       http.StatusConflict,
	usecase.CodeValidation:         http.StatusBadRequest,
	usecase.CodeAccessDenied:       http.StatusForbidden,
	usecase.CodeAccountLocked:      http.StatusLocked,
	usecase.CodeInvalidCredentials: http.StatusUnauthorized,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to their status. Anything else is logged and
// reported as a bare 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, ErrorResponse{Code: de.Code, Message: de.Message})
		return
	}

	code := "INTERNAL_ERROR"
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		code = te.Code
	}
	if logger != nil {
		logger.Error("request failed", zap.String("code", code), zap.Error(err))
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Code: code, Message: "internal server error"})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: usecase.CodeValidation, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			badRequest(w, "request body is required")
		} else {
			badRequest(w, "invalid JSON: "+err.Error())
		}
		return false
	}
	return true
}

func actorFrom(r *http.Request) usecase.Actor {
	a, _ := usecase.ActorFrom(r.Context())
	if a.IP == "" {
		a.IP = getClientIP(r)
	}
	return a
}

func pageRequest(r *http.Request) entity.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return entity.PageRequest{Page: page, Size: size}.Normalize()
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, usecase.Validation("%s must be a date (YYYY-MM-DD)", name)
	}
	return &t, nil
}

func queryUpper(r *http.Request, name string) string {
	return strings.ToUpper(strings.TrimSpace(r.URL.Query().Get(name)))
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
