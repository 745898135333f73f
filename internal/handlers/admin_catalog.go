package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/platform/pagination"
	"github.com/maplecart/api/internal/services"
)

// AdminCatalogHandlers exposes product management to staff users.
type AdminCatalogHandlers struct {
	catalog services.CatalogService
}

// NewAdminCatalogHandlers constructs admin catalog endpoints.
func NewAdminCatalogHandlers(catalog services.CatalogService) *AdminCatalogHandlers {
	return &AdminCatalogHandlers{catalog: catalog}
}

// Register mounts the admin product routes.
func (h *AdminCatalogHandlers) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/{productID}", h.getProduct)
	r.Put("/products/{productID}", h.updateProduct)
	r.Delete("/products/{productID}", h.deleteProduct)
	r.Post("/products/{productID}/status", h.changeStatus)
	r.Post("/products/{productID}/variants", h.generateVariants)
	r.Put("/products/{productID}/variants/{sku}", h.updateVariant)
	r.Post("/variants/preview", h.previewVariants)
}

type saveProductRequest struct {
	Slug        string         `json:"slug,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	CategoryID  string         `json:"categoryId,omitempty"`
	Status      string         `json:"status,omitempty"`
	BasePrice   int64          `json:"basePrice"`
	Currency    string         `json:"currency,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (req saveProductRequest) toDomain(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Status:      domain.ProductStatus(req.Status),
		BasePrice:   req.BasePrice,
		Currency:    req.Currency,
		Metadata:    req.Metadata,
	}
}

// adminProductListOptions declares the filter and order vocabulary accepted on
// the admin product listing, e.g. ?filter=status==draft&orderBy=updatedAt:desc.
var adminProductListOptions = pagination.Options{
	AllowedOrderFields: []string{"createdAt", "updatedAt"},
	AllowedFilterFields: map[string][]pagination.Operator{
		"category":  {pagination.OperatorEqual},
		"status":    {pagination.OperatorEqual},
		"updatedAt": {pagination.OperatorGreaterThan, pagination.OperatorGreaterEqual},
	},
}

func (h *AdminCatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := pagination.FromRequest(r, adminProductListOptions)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	filter := services.ProductFilter{
		Pagination: domain.Pagination{PageSize: params.PageSize, PageToken: params.PageToken},
	}
	for _, f := range params.Filters {
		switch f.Field {
		case "category":
			category := f.Value
			filter.CategoryID = &category
		case "status":
			filter.Status = append(filter.Status, domain.ProductStatus(f.Value))
		case "updatedAt":
			after, err := time.Parse(time.RFC3339, f.Value)
			if err != nil {
				respondBadRequest(ctx, w, "updatedAt filter must be an RFC 3339 timestamp")
				return
			}
			filter.UpdatedAfter = &after
		}
	}
	for _, order := range params.Orders {
		direction := domain.SortAsc
		if order.Desc {
			direction = domain.SortDesc
		}
		filter.Sort = append(filter.Sort, domain.Sort{Field: order.Field, Direction: direction})
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

func (h *AdminCatalogHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	product, err := h.catalog.CreateProduct(ctx, services.SaveProductCommand{Product: req.toDomain("")})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductPayload(product))
}

func (h *AdminCatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(product))
}

func (h *AdminCatalogHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	product, err := h.catalog.UpdateProduct(ctx, services.SaveProductCommand{
		Product: req.toDomain(chi.URLParam(r, "productID")),
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(product))
}

func (h *AdminCatalogHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "productID")); err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminCatalogHandlers) changeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req changeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	product, err := h.catalog.ChangeProductStatus(ctx, chi.URLParam(r, "productID"), domain.ProductStatus(req.Status))
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(product))
}

type generateVariantsRequest struct {
	Attributes []services.AttributeInput `json:"attributes"`
}

func (h *AdminCatalogHandlers) generateVariants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateVariantsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	product, err := h.catalog.GenerateVariants(ctx, services.GenerateVariantsCommand{
		ProductID: chi.URLParam(r, "productID"),
		Inputs:    req.Attributes,
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(product))
}

type previewVariantsResponse struct {
	Attributes []attributePayload `json:"attributes"`
	Count      int                `json:"count"`
}

func (h *AdminCatalogHandlers) previewVariants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateVariantsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	preview, err := h.catalog.PreviewVariants(ctx, req.Attributes)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	resp := previewVariantsResponse{Count: preview.Count}
	for _, attr := range preview.Attributes {
		resp.Attributes = append(resp.Attributes, attributePayload{Name: attr.Name, Values: attr.Values})
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateVariantRequest struct {
	Price *int64 `json:"price,omitempty"`
	Stock *int   `json:"stock,omitempty"`
}

func (h *AdminCatalogHandlers) updateVariant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateVariantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	product, err := h.catalog.UpdateVariant(ctx, services.UpdateVariantCommand{
		ProductID: chi.URLParam(r, "productID"),
		SKU:       chi.URLParam(r, "sku"),
		Price:     req.Price,
		Stock:     req.Stock,
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(product))
}
