package http

import (
	"context"
	"net/http"

	"github.com/review360/assessment-service/internal/domain"
)

// Identity is resolved by the gateway in front of this service and passed
// in trusted headers. The service itself does no credential checks.
const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"
)

const principalKey = contextKey("principal")

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(userIDHeader)
		if userID == "" {
			s.respondError(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		role := domain.Role(r.Header.Get(userRoleHeader))
		switch role {
		case domain.RoleAdmin, domain.RoleHR, domain.RoleEmployee:
		default:
			role = domain.RoleEmployee
		}

		principal := domain.Principal{
			UserID: userID,
			Role:   role,
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getPrincipal(ctx context.Context) domain.Principal {
	if principal, ok := ctx.Value(principalKey).(domain.Principal); ok {
		return principal
	}

	return domain.Principal{}
}
