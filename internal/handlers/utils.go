package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agritrack/apiserver/internal/store"
	"github.com/agritrack/apiserver/types"
	"github.com/go-chi/chi/v5"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	// maxOffset caps pagination offsets well past any plausible row count
	// while staying clear of int64 overflow when multiplied out.
	maxOffset = 1 << 50
)

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a simple confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListResponse is the paginated list payload shared by every entity.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
}

func userIDFromContext(ctx context.Context) (types.ID, error) {
	value := ctx.Value(contextSubjectKey)
	switch subject := value.(type) {
	case types.ID:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return subject, nil
	case string:
		return types.ParseID(subject)
	default:
		return 0, errors.New("missing subject")
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeStoreError maps the store error taxonomy onto HTTP responses. Errors
// outside the taxonomy get a generic 500 with detail logged server-side.
func writeStoreError(w http.ResponseWriter, err error, entity string) {
	var fkErr *store.ForeignKeyError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, entity+" not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "a record with this unique value already exists")
	case errors.As(err, &fkErr):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: referenced record does not exist", fkErr.Reference))
	default:
		slog.Error("store operation failed", "entity", entity, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parsePagination reads page, limit, and search query parameters with the
// defaults page=1, limit=10, search="".
func parsePagination(r *http.Request) (page, limit, offset int, search string, err error) {
	page = defaultPage
	limit = defaultLimit
	search = strings.TrimSpace(r.URL.Query().Get("search"))

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, "", errors.New("invalid page")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, 0, "", errors.New("invalid limit")
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	// Bound the offset so an absurd page value can never overflow into a
	// negative SQL OFFSET. Pages past the bound read as empty.
	if page-1 > maxOffset/limit {
		offset = maxOffset
	} else {
		offset = (page - 1) * limit
	}
	return page, limit, offset, search, nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (types.ID, error) {
	return types.ParseID(chi.URLParam(r, "id"))
}

// parseOptionalDate accepts an empty value, a calendar date, or an RFC 3339
// timestamp. Empty means "no date" and returns nil.
func parseOptionalDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", value)
}

// nullableString maps an empty string to nil, matching how optional text
// fields are stored.
func nullableString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// parseDatePtr applies parseOptionalDate through a request pointer field.
func parseDatePtr(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	return parseOptionalDate(*value)
}

// nullablePtr applies nullableString through a request pointer field.
func nullablePtr(value *string) *string {
	if value == nil {
		return nil
	}
	return nullableString(*value)
}

// isBlank reports whether a request string field is absent or whitespace.
func isBlank(value *string) bool {
	return value == nil || strings.TrimSpace(*value) == ""
}
