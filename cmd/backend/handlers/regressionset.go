package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/regressionset"
)

// RegressionSetHandler handles regression set management requests.
type RegressionSetHandler struct {
	setStore regressionset.Store
	logger   logger.Logger
}

// NewRegressionSetHandler creates a new regression set handler.
func NewRegressionSetHandler(setStore regressionset.Store, log logger.Logger) *RegressionSetHandler {
	return &RegressionSetHandler{setStore: setStore, logger: log}
}

// CreateRegressionSetRequest represents a regression set creation request.
type CreateRegressionSetRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Platform    regressionset.Platform `json:"platform"`
}

// UpdateRegressionSetRequest represents a regression set update request.
// Nil fields are left unchanged.
type UpdateRegressionSetRequest struct {
	Name        *string                 `json:"name,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Platform    *regressionset.Platform `json:"platform,omitempty"`
}

// RegressionSetListResponse is the payload of a regression set listing.
type RegressionSetListResponse struct {
	RegressionSets []*regressionset.RegressionSet `json:"regression_sets"`
	Pagination     Pagination                     `json:"pagination"`
}

// Create handles creating a new regression set.
func (h *RegressionSetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateRegressionSetRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	set := &regressionset.RegressionSet{
		Name:        req.Name,
		Description: req.Description,
		Platform:    req.Platform,
		CreatedBy:   userID,
	}

	if err := h.setStore.Create(r.Context(), set); err != nil {
		switch {
		case errors.Is(err, regressionset.ErrInvalidName), errors.Is(err, regressionset.ErrInvalidPlatform):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to create regression set")
		}
		return
	}

	h.logger.Info(r.Context(), "regression set created", logger.Fields{
		"regression_set_id": set.ID.String(),
		"platform":          string(set.Platform),
	})

	respondData(w, http.StatusCreated, "regression set created", set)
}

// GetByID handles fetching a single regression set.
func (h *RegressionSetHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	set, ok := h.ownedSet(w, r, userID)
	if !ok {
		return
	}

	respondData(w, http.StatusOK, "regression set fetched", set)
}

// List handles listing the authenticated user's regression sets.
func (h *RegressionSetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	platform := regressionset.Platform(r.URL.Query().Get("platform"))
	if platform != "" && !platform.IsValid() {
		respondError(w, http.StatusBadRequest, regressionset.ErrInvalidPlatform.Error())
		return
	}

	sets, err := h.setStore.ListByOwner(r.Context(), userID, platform, limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list regression sets")
		return
	}

	total, err := h.setStore.CountByOwner(r.Context(), userID, platform)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list regression sets")
		return
	}

	respondData(w, http.StatusOK, "regression sets fetched", RegressionSetListResponse{
		RegressionSets: sets,
		Pagination:     Pagination{Page: page, Limit: limit, Total: total},
	})
}

// Update handles updating a regression set.
func (h *RegressionSetHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	set, ok := h.ownedSet(w, r, userID)
	if !ok {
		return
	}

	var req UpdateRegressionSetRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var setters []regressionset.UpdateSetter
	if req.Name != nil {
		setters = append(setters, regressionset.SetName(*req.Name))
	}
	if req.Description != nil {
		setters = append(setters, regressionset.SetDescription(*req.Description))
	}
	if req.Platform != nil {
		setters = append(setters, regressionset.SetPlatform(*req.Platform))
	}

	if len(setters) == 0 {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.setStore.Update(r.Context(), set.ID, setters...); err != nil {
		switch {
		case errors.Is(err, regressionset.ErrInvalidName), errors.Is(err, regressionset.ErrInvalidPlatform):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to update regression set")
		}
		return
	}

	updated, err := h.setStore.GetByID(r.Context(), set.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch regression set")
		return
	}

	respondData(w, http.StatusOK, "regression set updated", updated)
}

// Delete handles deleting a regression set.
func (h *RegressionSetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	set, ok := h.ownedSet(w, r, userID)
	if !ok {
		return
	}

	if err := h.setStore.Delete(r.Context(), set.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete regression set")
		return
	}

	h.logger.Info(r.Context(), "regression set deleted", logger.Fields{
		"regression_set_id": set.ID.String(),
	})

	respondData(w, http.StatusOK, "regression set deleted", nil)
}

// ownedSet loads the regression set from the path and verifies ownership.
// The second return value is false when the error response has been sent.
func (h *RegressionSetHandler) ownedSet(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*regressionset.RegressionSet, bool) {
	id, ok := parseUUIDOrRespond(w, r, "id", "regression set")
	if !ok {
		return nil, false
	}

	set, err := h.setStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, regressionset.ErrRegressionSetNotFound) {
			respondError(w, http.StatusNotFound, "regression set not found")
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, "failed to fetch regression set")
		return nil, false
	}

	if set.CreatedBy != userID {
		respondError(w, http.StatusForbidden, "you do not own this regression set")
		return nil, false
	}

	return set, true
}
