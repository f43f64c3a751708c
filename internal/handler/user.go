package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/larder/internal/directory"
)

type UserHandler struct {
	users  *directory.Service
	logger *slog.Logger
}

func NewUserHandler(users *directory.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Sync handles POST /api/users/sync. The profile comes from the token, not
// the body.
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.CreateIfAbsent(r.Context(), identity(r))
	if err != nil {
		h.logger.Error("sync user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sync user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Lookup(r.Context(), identity(r).ExternalID)
	if err != nil {
		h.logger.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
