package httpx

import (
	"context"
	"net/http"
	"strconv"

	"github.com/workdesk/workdesk-go/internal/domain/model"
)

const (
	defaultDirectoryLimit = 50
	maxDirectoryLimit     = 200
)

// DirectoryService defines the account operations the directory handlers need.
type DirectoryService interface {
	GetUser(ctx context.Context, id int) (*model.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error)
}

// DirectoryHandlers serves the account endpoints mounted behind the session
// middleware: the caller's own profile and the admin-only user directory.
type DirectoryHandlers struct {
	Svc DirectoryService
}

// Profile returns the full account record behind the session. Unlike the
// verification endpoint it serves the stored account, not the session's
// snapshot of it.
// GET /profile.
func (h *DirectoryHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteFailure(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := h.Svc.GetUser(r.Context(), session.UserID)
	if err != nil {
		WriteFailure(w, http.StatusNotFound, "account no longer exists")
		return
	}
	WriteSuccess(w, http.StatusOK, user)
}

// List returns the account directory.
// GET /users?limit=&offset=.
func (h *DirectoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultDirectoryLimit)
	if limit <= 0 || limit > maxDirectoryLimit {
		limit = defaultDirectoryLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := h.Svc.ListUsers(r.Context(), limit, offset)
	if err != nil {
		WriteFailure(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteSuccess(w, http.StatusOK, users)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
