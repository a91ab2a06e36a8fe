package handlers

import (
	"net/http"
)

// HealthHandler responds to health check requests.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "ok", map[string]string{"status": "healthy"})
}
