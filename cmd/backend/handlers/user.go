package handlers

import (
	"errors"
	"net/http"

	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/user"
)

// UserHandler handles user management requests.
type UserHandler struct {
	userStore user.Store
	logger    logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userStore user.Store, log logger.Logger) *UserHandler {
	return &UserHandler{userStore: userStore, logger: log}
}

// UpdateUserRequest represents a user update request. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// List handles listing users with pagination.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := h.userStore.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	respondData(w, http.StatusOK, "users fetched", users)
}

// GetByID handles fetching a single user.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "user")
	if !ok {
		return
	}

	u, err := h.userStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	respondData(w, http.StatusOK, "user fetched", u)
}

// Update handles updating a user's own profile.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "user")
	if !ok {
		return
	}

	// Users can only modify themselves.
	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if actorID != id {
		respondError(w, http.StatusForbidden, "cannot modify another user")
		return
	}

	var req UpdateUserRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var setters []user.UpdateSetter
	if req.Name != nil {
		setters = append(setters, user.SetName(*req.Name))
	}
	if req.Password != nil {
		setters = append(setters, user.SetPassword(*req.Password))
	}

	if len(setters) == 0 {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.userStore.Update(r.Context(), id, setters...); err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, user.ErrInvalidName), errors.Is(err, user.ErrPasswordTooShort):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	updated, err := h.userStore.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	respondData(w, http.StatusOK, "user updated", updated)
}

// Delete handles deactivating a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "user")
	if !ok {
		return
	}

	actorID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if actorID != id {
		respondError(w, http.StatusForbidden, "cannot delete another user")
		return
	}

	if err := h.userStore.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	h.logger.Info(r.Context(), "user deactivated", logger.Fields{
		"user_id": id.String(),
	})

	respondData(w, http.StatusOK, "user deleted", nil)
}
