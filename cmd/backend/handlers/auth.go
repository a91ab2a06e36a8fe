package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/session"
	"github.com/regresshub/regresshub/user"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	userStore      user.Store
	sessionManager *session.Manager
	secureCookie   *securecookie.SecureCookie
	cookieName     string
	cookieSecure   bool
	logger         logger.Logger
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(
	userStore user.Store,
	sessionManager *session.Manager,
	cookieSecret string,
	cookieName string,
	cookieSecure bool,
	log logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		userStore:      userStore,
		sessionManager: sessionManager,
		secureCookie:   securecookie.New([]byte(cookieSecret), nil),
		cookieName:     cookieName,
		cookieSecure:   cookieSecure,
		logger:         log,
	}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newUser := &user.User{
		Email:    req.Email,
		Name:     req.Name,
		IsActive: true,
	}

	if err := newUser.SetPassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userStore.Create(r.Context(), newUser); err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			respondError(w, http.StatusConflict, "email already exists")
		case errors.Is(err, user.ErrInvalidEmail), errors.Is(err, user.ErrInvalidName):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error(r.Context(), "failed to create user", logger.Fields{
				"error": err.Error(),
				"email": req.Email,
			})
			respondError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	if !h.startSession(w, r, newUser) {
		return
	}

	h.logger.Info(r.Context(), "user registered", logger.Fields{
		"user_id": newUser.ID.String(),
		"email":   newUser.Email,
	})

	respondData(w, http.StatusCreated, "registered", newUser)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error(r.Context(), "failed to get user", logger.Fields{
			"error": err.Error(),
			"email": req.Email,
		})
		respondError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	if !existing.CheckPassword(req.Password) {
		h.logger.Warn(r.Context(), "invalid password attempt", logger.Fields{
			"email": req.Email,
		})
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !h.startSession(w, r, existing) {
		return
	}

	h.logger.Info(r.Context(), "user logged in", logger.Fields{
		"user_id": existing.ID.String(),
		"email":   existing.Email,
	})

	respondData(w, http.StatusOK, "logged in", existing)
}

// Logout handles user logout requests.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		var sessionValue string
		if err := h.secureCookie.Decode(h.cookieName, cookie.Value, &sessionValue); err == nil {
			if sessionID, err := uuid.Parse(sessionValue); err == nil {
				h.sessionManager.Delete(sessionID)
			}
		}
	}

	h.clearSessionCookie(w)
	respondData(w, http.StatusOK, "logged out", nil)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	current, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, "user no longer exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	respondData(w, http.StatusOK, "current user", current)
}

// startSession creates a session for the user and sets the cookie. Returns
// false when the error response has already been sent.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, u *user.User) bool {
	sess, err := h.sessionManager.Create(u.ID, u.Email)
	if err != nil {
		h.logger.Error(r.Context(), "failed to create session", logger.Fields{
			"error":   err.Error(),
			"user_id": u.ID.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return false
	}

	encoded, err := h.secureCookie.Encode(h.cookieName, sess.ID.String())
	if err != nil {
		h.logger.Error(r.Context(), "failed to encode session cookie", logger.Fields{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	return true
}

// clearSessionCookie clears the session cookie.
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
