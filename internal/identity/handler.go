package identity

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountPublicRoutes registers unauthenticated auth routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

// MountProtectedRoutes registers routes that expect the guard's Authenticate
// middleware upstream.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   Profile   `json:"profile"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed-body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "validation-failed", "email and password are required")
		return
	}

	profile, token, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountDisabled):
			h.logger.Warn("login rejected for disabled account",
				slog.String("email", req.Email),
				slog.String("remote", r.RemoteAddr))
			httpx.Error(w, http.StatusUnauthorized, "account-disabled", "this account is disabled")
		case errors.Is(err, ErrInvalidCredentials):
			h.logger.Warn("login failed",
				slog.String("remote", r.RemoteAddr))
			httpx.Error(w, http.StatusUnauthorized, "invalid-credentials", "invalid email or password")
		default:
			h.logger.Error("login error", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "internal-error", "internal error")
		}
		return
	}

	h.service.RecordIssuedToken(r.Context(), token, r.RemoteAddr, r.UserAgent())
	httpx.JSON(w, http.StatusOK, loginResponse{Token: token.Value, ExpiresAt: token.ExpiresAt, Profile: profile})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	value, ok := authz.BearerToken(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, authz.ReasonUnauthenticated, "authentication required")
		return
	}
	if err := h.service.Logout(r.Context(), value); err != nil {
		h.logger.Warn("logout", slog.Any("error", err))
	}
	// Logout is idempotent toward the client even if revocation raced.
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, authz.ReasonUnauthenticated, "authentication required")
		return
	}
	httpx.JSON(w, http.StatusOK, Profile{
		ID:    principal.ID,
		Email: principal.Email,
		Name:  principal.Name,
		Role:  principal.Role,
	})
}
