package auth

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/userbase/backend/internal/errors"
	"github.com/userbase/backend/internal/logger"
	"github.com/userbase/backend/internal/response"
)

type SignUpRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Handlers struct {
	service *Service
	log     *logger.Logger
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{
		service: service,
		log:     logger.Default().WithComponent("auth"),
	}
}

func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, apperrors.BadRequest("invalid request body"))
		return
	}

	res := h.service.SignUp(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if res.IsErr() {
		h.logFailure(r, "sign-up failed", res.Err())
		response.WriteError(w, res.Err())
		return
	}

	response.WriteSuccess(w, http.StatusCreated, res.Value(), "User registered successfully")
}

func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, apperrors.BadRequest("invalid request body"))
		return
	}

	res := h.service.SignIn(r.Context(), req.Email, req.Password)
	if res.IsErr() {
		h.logFailure(r, "sign-in failed", res.Err())
		response.WriteError(w, res.Err())
		return
	}

	response.WriteSuccess(w, http.StatusCreated, res.Value(), "Login successful")
}

// RefreshToken handles POST /auth/refresh-token/{userId}. The refresh token
// is presented as the bearer credential.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		response.WriteError(w, apperrors.BadRequest("userId must be a positive number"))
		return
	}

	presented, _ := bearerToken(r.Header.Get("Authorization"))

	res := h.service.Refresh(r.Context(), userID, presented)
	if res.IsErr() {
		h.logFailure(r, "token refresh failed", res.Err())
		response.WriteError(w, res.Err())
		return
	}

	response.WriteSuccess(w, http.StatusOK, map[string]string{"accessToken": res.Value()}, "Access token generated")
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		response.WriteError(w, apperrors.BadRequest("userId must be a positive number"))
		return
	}

	callerID, _ := UserIDFromContext(r.Context())

	res := h.service.Logout(r.Context(), callerID, userID)
	if res.IsErr() {
		h.logFailure(r, "logout failed", res.Err())
		response.WriteError(w, res.Err())
		return
	}

	response.WriteSuccess(w, http.StatusOK, nil, "Logout successful")
}

func (h *Handlers) logFailure(r *http.Request, msg string, err *apperrors.AppError) {
	if apperrors.IsServerError(err) {
		h.log.Error(r.Context(), msg, err)
		return
	}
	h.log.Info(r.Context(), msg, map[string]interface{}{"code": err.Code})
}

func pathUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
