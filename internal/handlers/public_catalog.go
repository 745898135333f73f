package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/platform/httpx"
	"github.com/maplecart/api/internal/platform/pagination"
	"github.com/maplecart/api/internal/services"
)

// PublicCatalogHandlers serves the storefront-facing read API. Only active
// products are visible here; drafts and archived products require admin access.
type PublicCatalogHandlers struct {
	catalog    services.CatalogService
	categories services.CategoryService
}

// NewPublicCatalogHandlers constructs public catalog endpoints.
func NewPublicCatalogHandlers(catalog services.CatalogService, categories services.CategoryService) *PublicCatalogHandlers {
	return &PublicCatalogHandlers{catalog: catalog, categories: categories}
}

// Register mounts the public catalog routes.
func (h *PublicCatalogHandlers) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{slug}", h.getProduct)
	r.Get("/categories", h.listCategories)
	r.Get("/categories/{slug}", h.getCategory)
}

func (h *PublicCatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := pagination.FromRequest(r, pagination.Options{DefaultPageSize: 24, MaxPageSize: 100})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	filter := services.ProductFilter{
		ActiveOnly: true,
		Pagination: domain.Pagination{PageSize: params.PageSize, PageToken: params.PageToken},
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filter.CategoryID = &category
	}

	page, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	resp := listResponse[productPayload]{NextPageToken: page.NextPageToken}
	for _, product := range page.Items {
		resp.Items = append(resp.Items, toProductPayload(product))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PublicCatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := h.catalog.GetProductBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	// Drafts and archived products are invisible to the storefront.
	if product.Status != domain.ProductStatusActive {
		httpx.WriteError(ctx, w, httpx.NewError("not_found", "product not found", http.StatusNotFound))
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(product))
}

func (h *PublicCatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.categories.ListCategories(ctx)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	resp := listResponse[categoryPayload]{}
	for _, category := range categories {
		resp.Items = append(resp.Items, toCategoryPayload(category))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PublicCatalogHandlers) getCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, err := h.categories.GetCategoryBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryPayload(category))
}
