package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountServiceRoutes registers treatment-menu routes.
func (h *Handler) MountServiceRoutes(r chi.Router) {
	r.Get("/", h.listServices)
	r.Get("/{id}", h.getService)
}

// MountProductRoutes registers retail product routes.
func (h *Handler) MountProductRoutes(r chi.Router) {
	r.Get("/", h.listProducts)
	r.Get("/{id}", h.getProduct)
}

// MountPackageRoutes registers package routes.
func (h *Handler) MountPackageRoutes(r chi.Router) {
	r.Get("/", h.listPackages)
	r.Post("/", h.createPackage)
	r.Get("/{id}", h.getPackage)
	r.Put("/{id}", h.updatePackage)
	r.Delete("/{id}", h.deletePackage)
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") == ""
	out, err := h.service.ListServices(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("list services", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"services": out})
}

func (h *Handler) getService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid-id", "service id must be numeric")
		return
	}
	s, err := h.service.GetService(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") == ""
	out, err := h.service.ListProducts(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": out})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid-id", "product id must be numeric")
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type packageRequest struct {
	Name       string `json:"name" validate:"required"`
	ServiceID  int64  `json:"service_id" validate:"required"`
	Sessions   int    `json:"sessions" validate:"required,gt=0"`
	PriceCents int64  `json:"price_cents" validate:"required,gt=0"`
	IsActive   bool   `json:"is_active"`
}

func (h *Handler) listPackages(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListPackages(r.Context())
	if err != nil {
		h.logger.Error("list packages", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"packages": out})
}

func (h *Handler) getPackage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid-id", "package id must be numeric")
		return
	}
	p, err := h.service.GetPackage(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) createPackage(w http.ResponseWriter, r *http.Request) {
	var req packageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed-body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "validation-failed", err.Error())
		return
	}
	p, err := h.service.CreatePackage(r.Context(), Package{
		Name:       req.Name,
		ServiceID:  req.ServiceID,
		Sessions:   req.Sessions,
		PriceCents: req.PriceCents,
		IsActive:   req.IsActive,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) updatePackage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid-id", "package id must be numeric")
		return
	}
	var req packageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed-body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "validation-failed", err.Error())
		return
	}
	p, err := h.service.UpdatePackage(r.Context(), Package{
		ID:         id,
		Name:       req.Name,
		ServiceID:  req.ServiceID,
		Sessions:   req.Sessions,
		PriceCents: req.PriceCents,
		IsActive:   req.IsActive,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) deletePackage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid-id", "package id must be numeric")
		return
	}
	if err := h.service.DeletePackage(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
