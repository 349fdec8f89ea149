package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tabwire/userd/internal/users/service"
	"github.com/tabwire/userd/pkg/httpx"
	"github.com/tabwire/userd/pkg/slogx"
)

// LoginHandler serves POST /api/auth/login.
type LoginHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Authenticates a username/password pair and returns a signed JWT access token.
//	@Description	The token carries the username as its subject and expires 24 hours after issue.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		loginRequest			true	"Login credentials"
//	@Success		200			{object}	service.TokenResponse	"token"
//	@Failure		400			{object}	ErrorResponse			"error, error_description"
//	@Failure		401			{object}	ErrorResponse			"error, error_description"
//	@Failure		500			{object}	ErrorResponse			"error, error_description"
//	@Header			200			{string}	Cache-Control			"no-store"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	resp, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
			return
		}
		slogx.FromContext(ctx).Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
