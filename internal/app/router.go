package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lumina-spa/lumina/internal/appointments"
	"github.com/lumina-spa/lumina/internal/audit"
	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/catalog"
	"github.com/lumina-spa/lumina/internal/clients"
	"github.com/lumina-spa/lumina/internal/dashboard"
	"github.com/lumina-spa/lumina/internal/documents"
	"github.com/lumina-spa/lumina/internal/identity"
	"github.com/lumina-spa/lumina/internal/observability"
	"github.com/lumina-spa/lumina/internal/payments"
	"github.com/lumina-spa/lumina/jobs"
	"github.com/lumina-spa/lumina/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	Guard              *authz.Guard
	PermissionsHandler *authz.PermissionsHandler

	IdentityHandler     *identity.Handler
	ClientsHandler      *clients.Handler
	AppointmentsHandler *appointments.Handler
	PaymentsHandler     *payments.Handler
	CatalogHandler      *catalog.Handler
	DocumentsHandler    *documents.Handler
	AuditHandler        *audit.Handler
	DashboardHandler    *dashboard.Handler

	JobHandler *jobs.Handler
	Metrics    *observability.Metrics
}

// NewRouter constructs the chi.Router with Lumina defaults. Every role
// namespace mounts the same resource subtree; the guard decides, per
// request, whether the caller's role may pass. Routes are generated from
// the same registry the guard enforces, so navigation and policy cannot
// disagree.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.IdentityHandler.MountPublicRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.Guard.Authenticate)

		params.IdentityHandler.MountProtectedRoutes(r)
		params.PermissionsHandler.MountRoutes(r)

		for _, role := range authz.Roles() {
			role := role
			r.Route(role.Namespace(), func(r chi.Router) {
				r.Use(params.Guard.Namespace(role))
				mountResources(r, params)
			})
		}

		// Legacy alias kept for old bookmarks and integrations. Same
		// subtree, same reception gate.
		r.Route("/staff", func(r chi.Router) {
			r.Use(params.Guard.Namespace(authz.RoleReception))
			mountResources(r, params)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// mountResources attaches the shared resource subtree. Each resource mount
// carries a Require middleware keyed by the registry resource it serves.
func mountResources(r chi.Router, params RouterParams) {
	guard := params.Guard

	r.Route("/clients", func(r chi.Router) {
		r.Use(guard.Require(authz.ResourceClients))
		params.ClientsHandler.MountRoutes(r)
	})
	r.Route("/appointments", func(r chi.Router) {
		r.Use(guard.Require(authz.ResourceAppointments))
		params.AppointmentsHandler.MountRoutes(r)
	})
	r.Route("/payments", func(r chi.Router) {
		r.Use(guard.Require(authz.ResourcePayments))
		params.PaymentsHandler.MountRoutes(r)
	})
	r.Route("/services", func(r chi.Router) {
		r.Use(guard.Require(authz.ResourceServices))
		params.CatalogHandler.MountServiceRoutes(r)
	})
	r.Route("/products", func(r chi.Router) {
		r.Use(guard.Require(authz.ResourceProducts))
		params.CatalogHandler.MountProductRoutes(r)
	})
	r.Route("/packages", func(r chi.Router) {
		r.Use(guard.Require(authz.ResourcePackages))
		params.CatalogHandler.MountPackageRoutes(r)
	})
	r.Route("/documents", func(r chi.Router) {
		r.Use(guard.Require(authz.ResourceDocuments))
		params.DocumentsHandler.MountRoutes(r)
	})
	r.Route("/audit", func(r chi.Router) {
		r.Use(guard.Require(authz.ResourceAudit))
		params.AuditHandler.MountRoutes(r)
	})
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(guard.Require(authz.ResourceDashboard))
		params.DashboardHandler.MountRoutes(r)
	})
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
