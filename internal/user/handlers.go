package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/userbase/backend/internal/auth"
	apperrors "github.com/userbase/backend/internal/errors"
	"github.com/userbase/backend/internal/logger"
	"github.com/userbase/backend/internal/response"
)

type Handlers struct {
	service *Service
	log     *logger.Logger
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{
		service: service,
		log:     logger.Default().WithComponent("user"),
	}
}

// GetProfile handles GET /user/profile/{id}.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	res := h.service.GetProfile(r.Context(), r.PathValue("id"))
	if res.IsErr() {
		h.logFailure(r, "profile fetch failed", res.Err())
		response.WriteError(w, res.Err())
		return
	}

	response.WriteSuccess(w, http.StatusOK, res.Value(), "Profile fetched successfully")
}

// UpdateProfile handles POST /user/updateProfile. The authenticated caller
// may only update their own record.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, apperrors.Unauthenticated())
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, apperrors.BadRequest("invalid request body"))
		return
	}

	res := h.service.UpdateProfile(r.Context(), &req, callerID)
	if res.IsErr() {
		h.logFailure(r, "profile update failed", res.Err())
		response.WriteError(w, res.Err())
		return
	}

	response.WriteSuccess(w, http.StatusOK, res.Value(), "Profile updated successfully")
}

// ListUsers handles GET /user.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	res := h.service.ListUsers(r.Context())
	if res.IsErr() {
		h.logFailure(r, "user list failed", res.Err())
		response.WriteError(w, res.Err())
		return
	}

	response.WriteSuccess(w, http.StatusOK, res.Value(), "Users fetched successfully")
}

// DeleteUser handles DELETE /user/{userId}.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, apperrors.Unauthenticated())
		return
	}

	userID, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil || userID <= 0 {
		response.WriteError(w, apperrors.BadRequest("userId must be a positive number"))
		return
	}

	res := h.service.DeleteUser(r.Context(), userID, callerID)
	if res.IsErr() {
		h.logFailure(r, "user delete failed", res.Err())
		response.WriteError(w, res.Err())
		return
	}

	response.WriteSuccess(w, http.StatusOK, nil, "User deleted successfully")
}

// GetByEmail handles GET /user/email/{email}.
func (h *Handlers) GetByEmail(w http.ResponseWriter, r *http.Request) {
	res := h.service.GetByEmail(r.Context(), r.PathValue("email"))
	if res.IsErr() {
		h.logFailure(r, "user lookup failed", res.Err())
		response.WriteError(w, res.Err())
		return
	}

	response.WriteSuccess(w, http.StatusOK, res.Value(), "User fetched successfully")
}

func (h *Handlers) logFailure(r *http.Request, msg string, err *apperrors.AppError) {
	if apperrors.IsServerError(err) {
		h.log.Error(r.Context(), msg, err)
		return
	}
	h.log.Info(r.Context(), msg, map[string]interface{}{"code": err.Code})
}
