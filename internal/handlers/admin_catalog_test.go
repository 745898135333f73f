package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/maplecart/api/internal/catalog"
	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/services"
)

func newAdminCatalogRouter(catalog *stubCatalogService) chi.Router {
	r := chi.NewRouter()
	NewAdminCatalogHandlers(catalog).Register(r)
	return r
}

func TestAdminListProductsForwardsFiltersAndOrder(t *testing.T) {
	catalog := &stubCatalogService{}
	router := newAdminCatalogRouter(catalog)

	target := "/products?filter=category==cat-1&filter=status==draft&filter=updatedAt>=2026-01-01T00:00:00Z&orderBy=updatedAt:desc"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	filter := catalog.lastListFilter
	if filter.CategoryID == nil || *filter.CategoryID != "cat-1" {
		t.Fatalf("expected category filter, got %+v", filter.CategoryID)
	}
	if len(filter.Status) != 1 || filter.Status[0] != domain.ProductStatusDraft {
		t.Fatalf("unexpected status filter %v", filter.Status)
	}
	if filter.UpdatedAfter == nil || filter.UpdatedAfter.Year() != 2026 {
		t.Fatalf("expected updatedAt filter, got %v", filter.UpdatedAfter)
	}
	if len(filter.Sort) != 1 || filter.Sort[0].Field != "updatedAt" || filter.Sort[0].Direction != domain.SortDesc {
		t.Fatalf("unexpected sort %v", filter.Sort)
	}
}

func TestAdminListProductsRejectsUnknownFilterField(t *testing.T) {
	router := newAdminCatalogRouter(&stubCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/products?filter=basePrice==100", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown filter field, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	if payload["error"] != "invalid_request" {
		t.Fatalf("expected invalid_request code, got %v", payload["error"])
	}
}

func TestAdminCreateProduct(t *testing.T) {
	catalog := &stubCatalogService{
		createFn: func(_ context.Context, cmd services.SaveProductCommand) (domain.Product, error) {
			out := cmd.Product
			out.ID = "prod-1"
			out.Slug = "classic-tee"
			out.Status = domain.ProductStatusDraft
			return out, nil
		},
	}
	router := newAdminCatalogRouter(catalog)

	body := `{"name": "Classic Tee", "categoryId": "cat-1", "basePrice": 2500, "currency": "USD"}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp productPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ID != "prod-1" || resp.Slug != "classic-tee" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAdminCreateProductSlugConflict(t *testing.T) {
	catalog := &stubCatalogService{
		createFn: func(context.Context, services.SaveProductCommand) (domain.Product, error) {
			return domain.Product{}, services.ErrProductSlugConflict
		},
	}
	router := newAdminCatalogRouter(catalog)

	body := `{"name": "Classic Tee"}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestAdminCreateProductRejectsUnknownFields(t *testing.T) {
	router := newAdminCatalogRouter(&stubCatalogService{})

	body := `{"name": "Classic Tee", "price": 100}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rr.Code)
	}
}

func TestAdminChangeStatus(t *testing.T) {
	catalog := &stubCatalogService{}
	router := newAdminCatalogRouter(catalog)

	body := `{"status": "active"}`
	req := httptest.NewRequest(http.MethodPost, "/products/prod-1/status", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if catalog.lastStatusChange != domain.ProductStatusActive {
		t.Fatalf("expected status forwarded, got %q", catalog.lastStatusChange)
	}
}

func TestAdminGenerateVariants(t *testing.T) {
	var generated services.GenerateVariantsCommand
	catalog := &stubCatalogService{
		generateFn: func(_ context.Context, cmd services.GenerateVariantsCommand) (domain.Product, error) {
			generated = cmd
			return domain.Product{
				ID: cmd.ProductID,
				Variants: []domain.Variant{
					{SKU: "classic-tee-black-s", DisplayName: "Color: Black, Size: S", Price: 2500},
				},
			}, nil
		},
	}
	router := newAdminCatalogRouter(catalog)

	body := `{"attributes": [{"name": "Color", "values": "Black"}, {"name": "Size", "values": "S"}]}`
	req := httptest.NewRequest(http.MethodPost, "/products/prod-1/variants", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if generated.ProductID != "prod-1" || len(generated.Inputs) != 2 {
		t.Fatalf("unexpected command %+v", generated)
	}
	var resp productPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Variants) != 1 || resp.Variants[0].DisplayName != "Color: Black, Size: S" {
		t.Fatalf("unexpected variants %+v", resp.Variants)
	}
}

func TestAdminPreviewVariants(t *testing.T) {
	catalog := &stubCatalogService{
		previewFn: func(_ context.Context, inputs []services.AttributeInput) (services.VariantPreview, error) {
			return services.VariantPreview{
				Attributes: []domain.Attribute{
					{Name: "Color", Values: []string{"Black", "White"}},
					{Name: "Size", Values: []string{"S", "M", "L"}},
				},
				Count: 6,
			}, nil
		},
	}
	router := newAdminCatalogRouter(catalog)

	body := `{"attributes": [{"name": "Color", "values": "Black, White"}, {"name": "Size", "values": "S, M, L"}]}`
	req := httptest.NewRequest(http.MethodPost, "/variants/preview", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp previewVariantsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 6 || len(resp.Attributes) != 2 {
		t.Fatalf("unexpected preview %+v", resp)
	}
}

func TestAdminPreviewVariantsEmptyValues(t *testing.T) {
	svc := &stubCatalogService{
		previewFn: func(context.Context, []services.AttributeInput) (services.VariantPreview, error) {
			return services.VariantPreview{}, &catalog.InvalidAttributeError{Attribute: "Color", Reason: "no values supplied"}
		},
	}
	router := newAdminCatalogRouter(svc)

	body := `{"attributes": [{"name": "Color", "values": ""}]}`
	req := httptest.NewRequest(http.MethodPost, "/variants/preview", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	if payload["error"] != "invalid_request" {
		t.Fatalf("expected invalid_request code, got %v", payload["error"])
	}
	message, _ := payload["message"].(string)
	if !strings.Contains(message, "Color") {
		t.Fatalf("expected message to name the attribute, got %q", message)
	}
}

func TestAdminUpdateVariantNotFound(t *testing.T) {
	catalog := &stubCatalogService{
		updateVariantFn: func(context.Context, services.UpdateVariantCommand) (domain.Product, error) {
			return domain.Product{}, services.ErrVariantNotFound
		},
	}
	router := newAdminCatalogRouter(catalog)

	body := `{"price": 2700}`
	req := httptest.NewRequest(http.MethodPut, "/products/prod-1/variants/ghost-sku", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAdminDeleteProduct(t *testing.T) {
	var deleted string
	catalog := &stubCatalogService{
		deleteFn: func(_ context.Context, productID string) error {
			deleted = productID
			return nil
		},
	}
	router := newAdminCatalogRouter(catalog)

	req := httptest.NewRequest(http.MethodDelete, "/products/prod-9", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if deleted != "prod-9" {
		t.Fatalf("expected prod-9 deleted, got %q", deleted)
	}
}
