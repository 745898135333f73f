package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestNewRouterDefaultMounts(t *testing.T) {
	router := NewRouter()

	t.Run("healthz", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected application/json, got %s", ct)
		}
	})

	t.Run("unconfigured group returns 501", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotImplemented {
			t.Fatalf("expected 501, got %d", rr.Code)
		}
	})

	t.Run("unknown route envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
		var payload map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("unmarshal error payload: %v", err)
		}
		if payload["error"] != "route_not_found" {
			t.Fatalf("expected route_not_found, got %v", payload["error"])
		}
	})
}

func TestNewRouterMountsRegistrars(t *testing.T) {
	catalog := &stubCatalogService{}
	categories := &stubCategoryService{}
	router := NewRouter(
		WithCatalogRoutes(NewPublicCatalogHandlers(catalog, categories).Register),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !catalog.lastListFilter.ActiveOnly {
		t.Fatal("public listing should be active-only")
	}
}

func TestNewRouterAdminMiddleware(t *testing.T) {
	var sawRequest bool
	router := NewRouter(
		WithAdminMiddlewares(RateLimitMiddleware(1)),
		WithAdminRoutes(func(r chi.Router) {
			r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
				sawRequest = true
				w.WriteHeader(http.StatusOK)
			})
		}),
	)

	first := httptest.NewRequest(http.MethodGet, "/api/v1/admin/ping", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, first)
	if rr.Code != http.StatusOK || !sawRequest {
		t.Fatalf("expected first request to pass, got %d", rr.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/v1/admin/ping", nil)
	second.RemoteAddr = "10.0.0.1:1234"
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, second)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second request, got %d", rr.Code)
	}
}
