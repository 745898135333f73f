package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/services"
)

// AdminCategoryHandlers exposes category management and count repair to staff users.
type AdminCategoryHandlers struct {
	categories services.CategoryService
}

// NewAdminCategoryHandlers constructs admin category endpoints.
func NewAdminCategoryHandlers(categories services.CategoryService) *AdminCategoryHandlers {
	return &AdminCategoryHandlers{categories: categories}
}

// Register mounts the admin category routes.
func (h *AdminCategoryHandlers) Register(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Get("/categories/{categoryID}", h.getCategory)
	r.Put("/categories/{categoryID}", h.updateCategory)
	r.Delete("/categories/{categoryID}", h.deleteCategory)
	r.Post("/categories:recount", h.recountAll)
}

type saveCategoryRequest struct {
	Slug        string `json:"slug,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (req saveCategoryRequest) toDomain(id string) domain.Category {
	return domain.Category{
		ID:          id,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
	}
}

func (h *AdminCategoryHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminCategoryHandlers) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	category, err := h.categories.CreateCategory(ctx, services.SaveCategoryCommand{Category: req.toDomain("")})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryPayload(category))
}

func (h *AdminCategoryHandlers) getCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, err := h.categories.GetCategory(ctx, chi.URLParam(r, "categoryID"))
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryPayload(category))
}

func (h *AdminCategoryHandlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	category, err := h.categories.UpdateCategory(ctx, services.SaveCategoryCommand{
		Category: req.toDomain(chi.URLParam(r, "categoryID")),
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryPayload(category))
}

func (h *AdminCategoryHandlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.categories.DeleteCategory(ctx, chi.URLParam(r, "categoryID")); err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type recountResponse struct {
	Recounted int      `json:"recounted"`
	Repaired  int      `json:"repaired"`
	Failed    []string `json:"failed,omitempty"`
}

func (h *AdminCategoryHandlers) recountAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.categories.RecountAll(ctx)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, recountResponse{
		Recounted: report.Recounted,
		Repaired:  report.Repaired,
		Failed:    report.Failed,
	})
}
