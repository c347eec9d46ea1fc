package authz

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// PermissionsHandler exposes the caller's effective permissions and
// navigation affordances. The client-side guard consumes this instead of
// keeping its own copy of the policy table, so the two layers cannot drift.
type PermissionsHandler struct {
	registry *Registry
}

// NewPermissionsHandler builds a PermissionsHandler.
func NewPermissionsHandler(registry *Registry) *PermissionsHandler {
	return &PermissionsHandler{registry: registry}
}

// MountRoutes registers the permissions endpoint. The route expects the
// guard's Authenticate middleware upstream.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/me/permissions", h.mePermissions)
}

type permissionsResponse struct {
	Role        Role         `json:"role"`
	ReadOnly    bool         `json:"read_only"`
	Permissions []Permission `json:"permissions"`
	Navigation  []NavItem    `json:"navigation"`
}

func (h *PermissionsHandler) mePermissions(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, ReasonUnauthenticated, denialMessage(ReasonUnauthenticated))
		return
	}
	httpx.JSON(w, http.StatusOK, permissionsResponse{
		Role:        principal.Role,
		ReadOnly:    h.registry.IsReadOnly(principal.Role),
		Permissions: h.registry.Permissions(principal.Role),
		Navigation:  h.registry.Navigation(principal.Role),
	})
}
