package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pfe-app/backend/internal/api"
)

type HandlerImpl struct {
	AuthService AuthService
	logger      *slog.Logger
}

func NewAuthHandlerImpl(authService AuthService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:      logger,
		AuthService: authService,
	}
}

func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.AuthService.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, AuthResponse{User: user, Token: token})
}

func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, AuthResponse{User: user, Token: token})
}

func (h *HandlerImpl) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	user, err := h.AuthService.GetCurrentUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

// GetUser looks up an arbitrary account by ID. Mounted behind the admin role
// check.
func (h *HandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.AuthService.GetCurrentUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

// writeError maps domain error kinds to transport status codes. The message
// never distinguishes which credential check failed.
func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, api.ErrValidation):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, api.ErrConflict):
		api.ErrorResponse(w, r, http.StatusConflict, "User already exists with this email")
	case errors.Is(err, api.ErrUnauthenticated):
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, api.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled service error", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
