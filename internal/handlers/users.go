package handlers

import (
	"log/slog"
	"net/http"

	"github.com/agritrack/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
)

// UsersHandler provides the user listing consumed by selection dropdowns.
type UsersHandler struct {
	userService *services.UserService
}

func NewUsersHandler(userService *services.UserService) *UsersHandler {
	return &UsersHandler{userService: userService}
}

// UsersRouter registers user listing routes on the given router.
func UsersRouter(r chi.Router, userService *services.UserService) {
	handler := NewUsersHandler(userService)
	r.Get("/", handler.List)
}

// List returns id and fullname for every user.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.userService.ListSummaries(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}
