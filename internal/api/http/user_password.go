package http

import (
	"encoding/json"
	"errors"
	"net/http"

	authmw "github.com/mind-engage/langinsight/internal/auth/middleware"
	"github.com/mind-engage/langinsight/internal/users"
)

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// POST /api/users/change-password
func ChangePasswordHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req changePasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad request")
			return
		}
		if req.NewPassword == "" {
			writeError(w, http.StatusBadRequest, "new password required")
			return
		}

		err := store.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword)
		switch {
		case errors.Is(err, users.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, users.ErrInvalidCredentials):
			writeError(w, http.StatusForbidden, "incorrect old password")
		case err != nil:
			writeErr(w, err)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}
