package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/mind-engage/langinsight/internal/rbac"
	"github.com/mind-engage/langinsight/internal/users"
)

// RoleLookup resolves the current role of a user id.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (string, error)
}

// AttachRoleFromDB replaces the token's role claim with the role stored for
// the subject, so role changes apply before the token expires.
// allowClaimFallback=true in offline mode keeps the claim when the lookup fails.
func AttachRoleFromDB(lookup RoleLookup, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role, err := lookup.RoleOf(ctx, SubjectFromContext(ctx))
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, users.ErrNotFound):
				// deleted user with a still-valid token
				http.Error(w, "forbidden", http.StatusForbidden)
			case allowClaimFallback && rbac.RoleFromContext(ctx) != "":
				next.ServeHTTP(w, r)
			default:
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
