package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/finapi/internal/server/auth"
	"github.com/google/uuid"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// authenticator verifies the bearer token and stores the authenticated user id
// in the request context. The standard "Bearer <token>" scheme is accepted;
// the doubled "Authorization <token>" scheme is accepted too as a
// compatibility shim for the legacy client.
func (h *Handler) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Fields(r.Header.Get("Authorization"))
		if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Authorization") {
			writeMessage(w, http.StatusUnauthorized, "missing or malformed token")
			return
		}

		rawUserID, err := auth.GetUserIDFromToken(parts[1], h.jwtSecret)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}

		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// requestLogger logs every inbound request with its method, path and remote
// address.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.log.Info(r.Context(), "received request", "method", r.Method, "uri", r.URL.RequestURI(), "ip", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
