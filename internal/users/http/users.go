package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tabwire/userd/internal/users/service"
	"github.com/tabwire/userd/pkg/httpx"
	"github.com/tabwire/userd/pkg/slogx"
)

// UsersHandler serves the /api/users CRUD surface.
type UsersHandler struct {
	UserService *service.UserService
}

type createUserRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

// HandleRegister godoc
//
//	@Summary		Register User
//	@Description	Creates a new user account and sends a confirmation email. Open endpoint, no token required.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			user	body		createUserRequest	true	"New user"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse	"error, error_description"
//	@Failure		409		{object}	ErrorResponse	"error, error_description"
//	@Failure		500		{object}	ErrorResponse	"error, error_description"
//	@Router			/api/users/register [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	user, err := h.UserService.Create(ctx, service.CreateUserInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.writeUserError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleList godoc
//
//	@Summary		List Users
//	@Description	Returns one page of users ordered by id.
//	@Tags			Users
//	@Produce		json
//	@Param			page	query		int	false	"Zero-based page number"	default(0)
//	@Param			size	query		int	false	"Page size (max 100)"		default(10)
//	@Success		200		{object}	PageResponse
//	@Failure		400		{object}	ErrorResponse	"error, error_description"
//	@Failure		401		{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, size, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.UserService.List(r.Context(), page, size)
	if err != nil {
		h.writeUserError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPageResponse(result))
}

// HandleSearch godoc
//
//	@Summary		Search Users
//	@Description	Returns one page of users whose full name contains the given fragment (case-insensitive).
//	@Tags			Users
//	@Produce		json
//	@Param			fullName	query		string	true	"Full name fragment"
//	@Param			page		query		int		false	"Zero-based page number"	default(0)
//	@Param			size		query		int		false	"Page size (max 100)"		default(10)
//	@Success		200			{object}	PageResponse
//	@Failure		400			{object}	ErrorResponse	"error, error_description"
//	@Failure		401			{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/users/search [get].
func (h *UsersHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	page, size, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.UserService.SearchByFullName(r.Context(), r.URL.Query().Get("fullName"), page, size)
	if err != nil {
		h.writeUserError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPageResponse(result))
}

// HandleGet godoc
//
//	@Summary		Get User
//	@Description	Returns a single user by id.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User id (ULID)"
//	@Success		200	{object}	UserResponse
//	@Failure		400	{object}	ErrorResponse	"error, error_description"
//	@Failure		401	{object}	ErrorResponse	"error, error_description"
//	@Failure		404	{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeUserError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdate godoc
//
//	@Summary		Update User
//	@Description	Updates the full name, role and active flag of an existing user. Username, email and password are immutable here.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"User id (ULID)"
//	@Param			user	body		updateUserRequest	true	"Fields to update"
//	@Success		200		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse	"error, error_description"
//	@Failure		401		{object}	ErrorResponse	"error, error_description"
//	@Failure		404		{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	user, err := h.UserService.Update(r.Context(), r.PathValue("id"), service.UpdateUserInput{
		FullName: req.FullName,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		h.writeUserError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDelete godoc
//
//	@Summary		Delete User
//	@Description	Deletes a user by id.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path	string	true	"User id (ULID)"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse	"error, error_description"
//	@Failure		401	{object}	ErrorResponse	"error, error_description"
//	@Failure		404	{object}	ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeUserError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) writeUserError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "invalid_role", "role must be USER, ADMIN or MODERATOR")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, service.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, "duplicate_username", "username already registered")
	case errors.Is(err, service.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "duplicate_email", "email already registered")
	default:
		slogx.FromContext(r.Context()).Error("user operation failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

func parsePagination(r *http.Request) (page, size int, err error) {
	page, size = 0, 10

	q := r.URL.Query()
	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("page must be an integer")
		}
	}
	if raw := q.Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("size must be an integer")
		}
	}
	return page, size, nil
}
