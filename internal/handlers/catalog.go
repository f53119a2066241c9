package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/venuequote/api/internal/domain"
	"github.com/venuequote/api/internal/platform/httpx"
)

const catalogCacheControl = "public, max-age=60"

// CatalogReader exposes read-only catalog views.
type CatalogReader interface {
	Packages(ctx context.Context, eventType domain.EventType, tier domain.BudgetTier) ([]domain.Package, error)
	Addons(ctx context.Context, eventType domain.EventType) (domain.AddonCatalog, error)
	Settings(ctx context.Context) (domain.Settings, error)
}

// CatalogHandlers serves catalog data for the selection wizard.
type CatalogHandlers struct {
	catalog CatalogReader
}

// NewCatalogHandlers constructs catalog handlers.
func NewCatalogHandlers(catalog CatalogReader) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes registers catalog endpoints.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/settings", h.settings)
	r.Get("/{eventType}/packages", h.packages)
	r.Get("/{eventType}/addons", h.addons)
}

type packageListResponse struct {
	EventType domain.EventType `json:"eventType"`
	Packages  []domain.Package `json:"packages"`
}

type addonListResponse struct {
	EventType  domain.EventType    `json:"eventType"`
	Categories domain.AddonCatalog `json:"categories"`
}

func (h *CatalogHandlers) packages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.ready(ctx, w) {
		return
	}
	eventType := eventTypeParam(r)
	tier := domain.BudgetTier(strings.TrimSpace(r.URL.Query().Get("tier")))

	packages, err := h.catalog.Packages(ctx, eventType, tier)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, packageListResponse{EventType: eventType, Packages: packages})
}

func (h *CatalogHandlers) addons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.ready(ctx, w) {
		return
	}
	eventType := eventTypeParam(r)

	addons, err := h.catalog.Addons(ctx, eventType)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, addonListResponse{EventType: eventType, Categories: addons})
}

func (h *CatalogHandlers) settings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.ready(ctx, w) {
		return
	}
	settings, err := h.catalog.Settings(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, settings)
}

func (h *CatalogHandlers) ready(ctx context.Context, w http.ResponseWriter) bool {
	if h == nil || h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is not configured", http.StatusServiceUnavailable))
		return false
	}
	return true
}

func eventTypeParam(r *http.Request) domain.EventType {
	return domain.EventType(strings.ToLower(strings.TrimSpace(chi.URLParam(r, "eventType"))))
}
