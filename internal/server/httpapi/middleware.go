package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/newsmarks/internal/common"
	"github.com/dmitrijs2005/newsmarks/internal/server/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// userIDFromContext returns the authenticated user's id, set by authMiddleware.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// authMiddleware validates the access token header and injects the user id
// into the request context. An expired token gets a distinguishable message
// so clients know to refresh instead of re-login.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(common.AccessTokenHeaderName)
		if token == "" {
			h.writeError(r, w, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
			return
		}

		userID, err := auth.GetUserIDFromToken(token, h.secretKey)
		if err != nil {
			h.writeServiceError(r, w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
