package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

// TokenParser turns a bearer token into the caller it was issued to.
type TokenParser func(token string) (usecase.Actor, error)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func reject(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Code: code, Message: msg})
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the resulting actor, with the caller's IP, on the request context.
func Authenticate(parse TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				recordAuthRejection("missing_token")
				reject(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}
			actor, err := parse(strings.TrimSpace(token))
			if err != nil {
				recordAuthRejection("invalid_token")
				reject(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}
			actor.IP = clientIP(r)
			next.ServeHTTP(w, r.WithContext(usecase.WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole lets the request through only when the authenticated actor
// holds one of roles. SUPER_ADMIN always passes.
func RequireRole(roles ...entity.Role) func(http.Handler) http.Handler {
	allowed := make(map[entity.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := usecase.ActorFrom(r.Context())
			if !ok {
				recordAuthRejection("missing_token")
				reject(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if actor.Role != entity.RoleSuperAdmin && !allowed[actor.Role] {
				recordAuthRejection("forbidden_role")
				reject(w, http.StatusForbidden, usecase.CodeAccessDenied, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
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
