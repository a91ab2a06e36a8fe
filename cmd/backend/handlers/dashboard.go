package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/regresshub/regresshub/dashboard"
	"github.com/regresshub/regresshub/logger"
)

// DashboardHandler handles reporting and aggregation requests.
type DashboardHandler struct {
	store  dashboard.Store
	logger logger.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(store dashboard.Store, log logger.Logger) *DashboardHandler {
	return &DashboardHandler{store: store, logger: log}
}

// Overview handles the workspace summary widget.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	overview, err := h.store.Overview(r.Context(), userID, parseDateRange(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch overview")
		return
	}

	respondData(w, http.StatusOK, "dashboard overview fetched", overview)
}

// RecentRuns handles the recent runs widget.
func (h *DashboardHandler) RecentRuns(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	runs, err := h.store.RecentRuns(r.Context(), userID, queryInt(r, "limit", 0))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch recent runs")
		return
	}

	respondData(w, http.StatusOK, "recent runs fetched", runs)
}

// PassFailTrend handles the per-day results trend widget. The range can be
// given as explicit from/to bounds or as a trailing window like "7d".
func (h *DashboardHandler) PassFailTrend(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	rng := parseDateRange(r)
	if rng.From == nil && rng.To == nil {
		if windowDays, ok := parseTrailingWindow(r.URL.Query().Get("range")); ok {
			to := time.Now()
			from := to.AddDate(0, 0, -windowDays+1)
			rng = dashboard.DateRange{From: &from, To: &to}
		}
	}

	trend, err := h.store.PassFailTrend(r.Context(), userID, rng)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch trend")
		return
	}

	respondData(w, http.StatusOK, "pass/fail trend fetched", trend)
}

// PlatformStats handles the runs-per-platform widget.
func (h *DashboardHandler) PlatformStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.store.PlatformStats(r.Context(), userID, parseDateRange(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch platform stats")
		return
	}

	respondData(w, http.StatusOK, "platform stats fetched", stats)
}

// ModuleFailures handles the failures-per-module widget.
func (h *DashboardHandler) ModuleFailures(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	failures, err := h.store.ModuleFailures(r.Context(), userID, parseDateRange(r), queryInt(r, "limit", 0))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch module failures")
		return
	}

	respondData(w, http.StatusOK, "module failure stats fetched", failures)
}

// SlowTests handles the slowest-items widget.
func (h *DashboardHandler) SlowTests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tests, err := h.store.SlowTests(r.Context(), userID, parseDateRange(r), queryInt(r, "limit", 0))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch slow tests")
		return
	}

	respondData(w, http.StatusOK, "slow tests fetched", tests)
}

// parseDateRange reads optional from/to query parameters. Values may be
// RFC 3339 timestamps or plain dates.
func parseDateRange(r *http.Request) dashboard.DateRange {
	rng := dashboard.DateRange{}

	if from, ok := parseTimeParam(r.URL.Query().Get("from")); ok {
		rng.From = &from
	}
	if to, ok := parseTimeParam(r.URL.Query().Get("to")); ok {
		rng.To = &to
	}

	return rng
}

func parseTimeParam(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseTrailingWindow parses values like "7d" or "30d" into a day count.
func parseTrailingWindow(raw string) (int, bool) {
	if !strings.HasSuffix(raw, "d") {
		return 0, false
	}
	days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
	if err != nil || days < 1 {
		return 0, false
	}
	return days, true
}
