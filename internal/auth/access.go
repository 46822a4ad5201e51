package auth

import (
	"log/slog"
	"net/http"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/transport"
)

// Access applies the per-request role and ownership checks. Handlers behind
// it can assume an identity is present in the context.
type Access struct {
	base   *transport.BaseHandler
	logger *slog.Logger
}

func NewAccess(base *transport.BaseHandler, logger *slog.Logger) *Access {
	return &Access{base: base, logger: logger}
}

// RequireAdmin rejects any non-Admin identity with 403.
func (a *Access) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := internal.IdentityFromContext(r.Context())
		if !ok {
			a.base.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		if !identity.IsAdmin() {
			a.logger.Warn("access denied: admin only",
				"user_id", identity.ID,
				"role", identity.Role,
				"path", r.URL.Path)
			a.base.WriteError(w, http.StatusForbidden, "Access denied: Admin only")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SelfOrAdmin reports whether the actor may act on the target account: Admins
// always, everyone else only on themselves.
func SelfOrAdmin(identity *internal.Identity, targetAccountID string) bool {
	if identity == nil {
		return false
	}
	return identity.IsAdmin() || identity.ID == targetAccountID
}
