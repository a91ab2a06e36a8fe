package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/regresshub/regresshub/apitoken"
	"github.com/regresshub/regresshub/logger"
)

// APITokenHandler handles API token management requests.
type APITokenHandler struct {
	tokenStore apitoken.Store
	logger     logger.Logger
}

// NewAPITokenHandler creates a new API token handler.
func NewAPITokenHandler(tokenStore apitoken.Store, log logger.Logger) *APITokenHandler {
	return &APITokenHandler{tokenStore: tokenStore, logger: log}
}

// CreateTokenRequest represents a token creation request.
type CreateTokenRequest struct {
	Name          string `json:"name"`
	Scope         string `json:"scope"`
	ExpiresInDays int    `json:"expires_in_days"`
}

// CreateTokenResponse carries the raw token. It is shown exactly once; only
// the hash is persisted.
type CreateTokenResponse struct {
	Token    string             `json:"token"`
	APIToken *apitoken.APIToken `json:"api_token"`
}

// Create handles creating a new API token for the authenticated user.
func (h *APITokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateTokenRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rawToken, hash, err := apitoken.GenerateToken()
	if err != nil {
		h.logger.Error(r.Context(), "failed to generate token", logger.Fields{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	scope := req.Scope
	if scope == "" {
		scope = apitoken.ScopeReadOnly
	}

	expiry := apitoken.NormalizeExpiry(time.Duration(req.ExpiresInDays) * 24 * time.Hour)

	token := &apitoken.APIToken{
		UserID:    userID,
		Name:      req.Name,
		TokenHash: hash,
		Scope:     scope,
		ExpiresAt: time.Now().Add(expiry),
		IsActive:  true,
	}

	if err := h.tokenStore.Create(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, apitoken.ErrInvalidTokenName), errors.Is(err, apitoken.ErrInvalidScope):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, apitoken.ErrMaxTokensReached):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to create token")
		}
		return
	}

	h.logger.Info(r.Context(), "api token created", logger.Fields{
		"user_id":  userID.String(),
		"token_id": token.ID.String(),
		"scope":    token.Scope,
	})

	respondData(w, http.StatusCreated, "token created", CreateTokenResponse{
		Token:    rawToken,
		APIToken: token,
	})
}

// List handles listing the authenticated user's active tokens.
func (h *APITokenHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tokens, err := h.tokenStore.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list tokens")
		return
	}

	respondData(w, http.StatusOK, "tokens fetched", tokens)
}

// Revoke handles revoking one of the authenticated user's tokens.
func (h *APITokenHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := parseUUIDOrRespond(w, r, "id", "token")
	if !ok {
		return
	}

	token, err := h.tokenStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apitoken.ErrTokenNotFound) {
			respondError(w, http.StatusNotFound, "token not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to fetch token")
		return
	}
	if token.UserID != userID {
		respondError(w, http.StatusForbidden, "cannot revoke another user's token")
		return
	}

	if err := h.tokenStore.Revoke(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to revoke token")
		return
	}

	h.logger.Info(r.Context(), "api token revoked", logger.Fields{
		"user_id":  userID.String(),
		"token_id": id.String(),
	})

	respondData(w, http.StatusOK, "token revoked", nil)
}
