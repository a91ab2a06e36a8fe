package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/regressionset"
	"github.com/regresshub/regresshub/run"
)

// RunHandler handles run lifecycle requests.
type RunHandler struct {
	engine *run.Engine
	logger logger.Logger
}

// NewRunHandler creates a new run handler.
func NewRunHandler(engine *run.Engine, log logger.Logger) *RunHandler {
	return &RunHandler{engine: engine, logger: log}
}

// StartRunRequest represents a run start request.
type StartRunRequest struct {
	RegressionSetID uuid.UUID `json:"regression_set_id"`
}

// RecordResultRequest represents a run item result. ActualResults is
// optional; when omitted the item's previous notes are kept.
type RecordResultRequest struct {
	Status        run.ItemStatus `json:"status"`
	ActualResults *string        `json:"actual_results,omitempty"`
}

// RunDetailResponse is the payload of a single-run fetch.
type RunDetailResponse struct {
	Run   *run.Run       `json:"run"`
	Items []*run.RunItem `json:"items"`
}

// RecordResultResponse is the payload of a result update.
type RecordResultResponse struct {
	Item *run.RunItem `json:"item"`
	Run  *run.Run     `json:"run"`
}

// HistoryResponse is the payload of a run history listing.
type HistoryResponse struct {
	Runs       []*run.Run `json:"runs"`
	Pagination Pagination `json:"pagination"`
}

// Start handles starting a new run over a regression set.
func (h *RunHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req StartRunRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RegressionSetID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "regression_set_id is required")
		return
	}

	started, err := h.engine.Start(r.Context(), req.RegressionSetID, userID)
	if err != nil {
		h.respondEngineError(w, r, err, "failed to start run")
		return
	}

	respondData(w, http.StatusCreated, "run started", started)
}

// GetByID handles fetching a run with its items.
func (h *RunHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	current, items, err := h.engine.Get(r.Context(), id, userID)
	if err != nil {
		h.respondEngineError(w, r, err, "failed to fetch run")
		return
	}

	respondData(w, http.StatusOK, "run fetched", RunDetailResponse{
		Run:   current,
		Items: items,
	})
}

// Next handles fetching the next pending item of a run.
func (h *RunHandler) Next(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	next, err := h.engine.Next(r.Context(), id, userID)
	if err != nil {
		h.respondEngineError(w, r, err, "failed to fetch next item")
		return
	}

	message := "next item fetched"
	if next.Done {
		message = "all items executed"
	}

	respondData(w, http.StatusOK, message, next)
}

// RecordResult handles recording a result on a run item.
func (h *RunHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := parseUUIDOrRespond(w, r, "id", "run item")
	if !ok {
		return
	}

	var req RecordResultRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, current, err := h.engine.RecordResult(r.Context(), id, userID, req.Status, req.ActualResults)
	if err != nil {
		h.respondEngineError(w, r, err, "failed to record result")
		return
	}

	respondData(w, http.StatusOK, "result recorded", RecordResultResponse{
		Item: item,
		Run:  current,
	})
}

// Cancel handles cancelling a run.
func (h *RunHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	cancelled, err := h.engine.Cancel(r.Context(), id, userID)
	if err != nil {
		h.respondEngineError(w, r, err, "failed to cancel run")
		return
	}

	respondData(w, http.StatusOK, "run cancelled", cancelled)
}

// History handles listing the authenticated user's runs.
func (h *RunHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter := run.HistoryFilter{
		Page:     queryInt(r, "page", 0),
		Limit:    queryInt(r, "limit", 0),
		Status:   run.Status(r.URL.Query().Get("status")),
		Platform: regressionset.Platform(r.URL.Query().Get("platform")),
	}

	page, err := h.engine.History(r.Context(), userID, filter)
	if err != nil {
		h.respondEngineError(w, r, err, "failed to list runs")
		return
	}

	respondData(w, http.StatusOK, "runs fetched", HistoryResponse{
		Runs: page.Runs,
		Pagination: Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
		},
	})
}

// respondEngineError maps engine errors onto HTTP statuses.
func (h *RunHandler) respondEngineError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, run.ErrRunNotFound):
		respondError(w, http.StatusNotFound, "run not found")
	case errors.Is(err, run.ErrRunItemNotFound):
		respondError(w, http.StatusNotFound, "run item not found")
	case errors.Is(err, regressionset.ErrRegressionSetNotFound):
		respondError(w, http.StatusNotFound, "regression set not found")
	case errors.Is(err, run.ErrNotOwner):
		respondError(w, http.StatusForbidden, "you do not own this run")
	case errors.Is(err, run.ErrInvalidResultStatus),
		errors.Is(err, run.ErrInvalidStatus),
		errors.Is(err, regressionset.ErrInvalidPlatform):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(r.Context(), fallback, logger.Fields{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
