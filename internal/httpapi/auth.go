package httpapi

import (
	"context"
	"net/http"
	"strings"

	"placeplanner/shared/go/logging"
	"placeplanner/shared/go/models"
)

type identityKey struct{}

// Identity is the caller resolved from the bearer token. The token is the
// user id itself; there is no verification.
type Identity struct {
	UserID string
}

// IdentityFromContext returns the identity stored by requireUser.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authorization required"})
			return
		}
		userID := parseBearerToken(header)
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid authorization header"})
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, Identity{UserID: userID})
		ctx = logging.ContextWithUserID(ctx, userID)
		next(w, r.WithContext(ctx))
	}
}

// scopeFrom resolves the collection addressed by the request path.
func scopeFrom(r *http.Request) models.Scope {
	id, _ := IdentityFromContext(r.Context())
	return models.Scope{UserID: id.UserID, Collection: r.PathValue("collection")}
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
