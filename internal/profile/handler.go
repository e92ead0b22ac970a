package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"userprofile-api/internal/auth"
	"userprofile-api/internal/httputil"
	"userprofile-api/internal/logging"
)

// Handler contains HTTP handlers for profile endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateProfileRequest represents the profile creation request body
type CreateProfileRequest struct {
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
}

// UpdateProfileRequest represents a partial profile update. Absent fields
// are left unchanged.
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Mobile      *string `json:"mobile"`
	Email       *string `json:"email"`
	Gender      *string `json:"gender"`
	DateOfBirth *string `json:"dateOfBirth"`
}

// DeleteProfileRequest represents the profile deletion request body
type DeleteProfileRequest struct {
	Mobile string `json:"mobile"`
}

// ProfileResponse represents a profile in API responses
type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Mobile      string    `json:"mobile"`
	Email       string    `json:"email"`
	Gender      string    `json:"gender"`
	DateOfBirth string    `json:"dateOfBirth"`
}

// ProfileView is the reduced shape returned by the view endpoint
type ProfileView struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
}

func toProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		Name:        p.Name,
		Mobile:      p.Mobile,
		Email:       p.Email,
		Gender:      p.Gender,
		DateOfBirth: p.DateOfBirth.Format(DateLayout),
	}
}

// Create handles profile creation
// @Summary      Create user profile
// @Description  Create the authenticated user's profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateProfileRequest true "Profile fields"
// @Success      201 {object} map[string]any
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "User does not exist"
// @Failure      409 {object} httputil.ErrorResponse "Profile, email or mobile already exists"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /user/profile [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create profile request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), userID, CreateInput{
		Name:        req.Name,
		Mobile:      req.Mobile,
		Email:       req.Email,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		h.respondServiceError(w, logger, "create profile", err)
		return
	}

	logger.Info("profile created successfully", "user_id", userID, "profile_id", created.ID)

	httputil.RespondJSON(w, map[string]any{
		"message": "Profile created successfully",
		"profile": toProfileResponse(created),
	}, http.StatusCreated)
}

// View handles reading the caller's profile
// @Summary      View user profile
// @Description  Return the authenticated user's profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]ProfileView
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "No profile"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /user/profile [get]
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	p, err := h.service.View(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Warn("profile view failed: no profile", "user_id", userID)
			httputil.RespondErrorWithCode(w, "no profile found", httputil.CodeProfileNotFound, http.StatusNotFound)
			return
		}
		logger.Error("profile view failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to retrieve profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]ProfileView{
		"data": {
			Name:        p.Name,
			Email:       p.Email,
			Gender:      p.Gender,
			DateOfBirth: p.DateOfBirth.Format(DateLayout),
		},
	}, http.StatusOK)
}

// Update handles partial profile updates
// @Summary      Update user profile
// @Description  Update any subset of the authenticated user's profile fields
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Fields to change"
// @Success      200 {object} map[string]any
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "No profile"
// @Failure      409 {object} httputil.ErrorResponse "Email or mobile already exists"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /user/profile [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update profile request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, UpdateInput{
		Name:        req.Name,
		Mobile:      req.Mobile,
		Email:       req.Email,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		h.respondServiceError(w, logger, "update profile", err)
		return
	}

	logger.Info("profile updated successfully", "user_id", userID)

	httputil.RespondJSON(w, map[string]any{
		"message": "Profile updated successfully",
		"profile": toProfileResponse(updated),
	}, http.StatusOK)
}

// Delete handles profile deletion by mobile number
// @Summary      Delete user profile
// @Description  Delete the authenticated user's profile matching the given mobile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body DeleteProfileRequest true "Mobile number"
// @Success      200 {object} map[string]string
// @Failure      400 {object} httputil.ErrorResponse "Missing mobile"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "No matching profile"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /user/profile [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req DeleteProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid delete profile request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), userID, req.Mobile); err != nil {
		h.respondServiceError(w, logger, "delete profile", err)
		return
	}

	logger.Info("profile deleted successfully", "user_id", userID)

	httputil.RespondJSON(w, map[string]string{"message": "Profile deleted successfully"}, http.StatusOK)
}

// respondServiceError maps profile service errors onto HTTP responses.
// Existence failures are 404, uniqueness violations 409.
func (h *Handler) respondServiceError(w http.ResponseWriter, logger *logging.Logger, op string, err error) {
	switch {
	case IsValidationError(err):
		logger.Warn(op+" failed: validation error", "error", err.Error())
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationError, http.StatusBadRequest)
	case errors.Is(err, ErrUserNotFound):
		logger.Warn(op + " failed: user does not exist")
		httputil.RespondErrorWithCode(w, "provided user does not exist", httputil.CodeUserNotFound, http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		logger.Warn(op + " failed: profile not found")
		httputil.RespondErrorWithCode(w, "profile not found", httputil.CodeProfileNotFound, http.StatusNotFound)
	case errors.Is(err, ErrAlreadyExists):
		logger.Warn(op + " failed: profile already exists")
		httputil.RespondErrorWithCode(w, "profile already exists for this user", httputil.CodeProfileExists, http.StatusConflict)
	case errors.Is(err, ErrDuplicateEmail):
		logger.Warn(op + " failed: email already exists")
		httputil.RespondErrorWithCode(w, "profile email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
	case errors.Is(err, ErrDuplicateMobile):
		logger.Warn(op + " failed: mobile already exists")
		httputil.RespondErrorWithCode(w, "mobile number already exists", httputil.CodeMobileAlreadyUsed, http.StatusConflict)
	default:
		logger.Error(op+" failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to "+op, httputil.CodeInternalError, http.StatusInternalServerError)
	}
}
