package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maplecart/api/internal/domain"
)

type stubCategoryRepo struct {
	byID    map[string]domain.Category
	inserts []domain.Category
	updates []domain.Category
	deletes []string
}

func newStubCategoryRepo(categories ...domain.Category) *stubCategoryRepo {
	repo := &stubCategoryRepo{byID: make(map[string]domain.Category)}
	for _, category := range categories {
		repo.byID[category.ID] = category
	}
	return repo
}

func (s *stubCategoryRepo) Insert(_ context.Context, category domain.Category) error {
	s.inserts = append(s.inserts, category)
	s.byID[category.ID] = category
	return nil
}

func (s *stubCategoryRepo) Update(_ context.Context, category domain.Category) error {
	s.updates = append(s.updates, category)
	s.byID[category.ID] = category
	return nil
}

func (s *stubCategoryRepo) Delete(_ context.Context, categoryID string) error {
	s.deletes = append(s.deletes, categoryID)
	delete(s.byID, categoryID)
	return nil
}

func (s *stubCategoryRepo) FindByID(_ context.Context, categoryID string) (domain.Category, error) {
	category, ok := s.byID[categoryID]
	if !ok {
		return domain.Category{}, &stubRepoError{notFound: true}
	}
	return category, nil
}

func (s *stubCategoryRepo) FindBySlug(_ context.Context, slug string) (domain.Category, error) {
	for _, category := range s.byID {
		if category.Slug == slug {
			return category, nil
		}
	}
	return domain.Category{}, &stubRepoError{notFound: true}
}

func (s *stubCategoryRepo) ListAll(context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(s.byID))
	for _, category := range s.byID {
		out = append(out, category)
	}
	return out, nil
}

func (s *stubCategoryRepo) SetProductCount(_ context.Context, categoryID string, count int) error {
	category, ok := s.byID[categoryID]
	if !ok {
		return &stubRepoError{notFound: true}
	}
	category.ActiveProductCount = count
	s.byID[categoryID] = category
	return nil
}

func newTestCategoryService(t *testing.T, categories *stubCategoryRepo, products *stubProductRepo, sync CountSynchronizer) CategoryService {
	t.Helper()
	if sync == nil {
		sync = &stubCountSync{}
	}
	svc, err := NewCategoryService(CategoryServiceDeps{
		Categories:  categories,
		Products:    products,
		Counts:      sync,
		Clock:       func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
		IDGenerator: func() string { return "cat-new" },
	})
	if err != nil {
		t.Fatalf("new category service: %v", err)
	}
	return svc
}

func TestCreateCategoryDerivesSlugAndZeroCount(t *testing.T) {
	categories := newStubCategoryRepo()
	svc := newTestCategoryService(t, categories, newStubProductRepo(), nil)

	category, err := svc.CreateCategory(context.Background(), SaveCategoryCommand{
		Category: domain.Category{Name: "Crème Brûlée Kits", ActiveProductCount: 12},
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if category.Slug != "creme-brulee-kits" {
		t.Fatalf("expected folded slug, got %q", category.Slug)
	}
	if category.ActiveProductCount != 0 {
		t.Fatalf("expected derived count reset to zero, got %d", category.ActiveProductCount)
	}
}

func TestCreateCategoryRejectsSlugConflict(t *testing.T) {
	categories := newStubCategoryRepo(domain.Category{ID: "cat-1", Slug: "apparel", Name: "Apparel"})
	svc := newTestCategoryService(t, categories, newStubProductRepo(), nil)

	_, err := svc.CreateCategory(context.Background(), SaveCategoryCommand{
		Category: domain.Category{Name: "Apparel"},
	})
	if !errors.Is(err, ErrCategorySlugConflict) {
		t.Fatalf("expected slug conflict, got %v", err)
	}
}

func TestUpdateCategoryPreservesDerivedCount(t *testing.T) {
	categories := newStubCategoryRepo(domain.Category{
		ID:                 "cat-1",
		Slug:               "apparel",
		Name:               "Apparel",
		ActiveProductCount: 8,
	})
	svc := newTestCategoryService(t, categories, newStubProductRepo(), nil)

	category, err := svc.UpdateCategory(context.Background(), SaveCategoryCommand{
		Category: domain.Category{
			ID:                 "cat-1",
			Slug:               "apparel",
			Name:               "Apparel & Accessories",
			ActiveProductCount: 0, // client payload must not clobber the count
		},
	})
	if err != nil {
		t.Fatalf("update category: %v", err)
	}
	if category.ActiveProductCount != 8 {
		t.Fatalf("expected derived count preserved, got %d", category.ActiveProductCount)
	}
}

func TestDeleteCategoryBlockedWhileReferenced(t *testing.T) {
	categories := newStubCategoryRepo(domain.Category{ID: "cat-1", Slug: "apparel", Name: "Apparel"})
	// An archived product still references the category.
	products := newStubProductRepo(domain.Product{
		ID:         "prod-1",
		CategoryID: "cat-1",
		Status:     domain.ProductStatusArchived,
	})
	svc := newTestCategoryService(t, categories, products, nil)

	err := svc.DeleteCategory(context.Background(), "cat-1")
	if !errors.Is(err, ErrCategoryNotEmpty) {
		t.Fatalf("expected deletion guard to fire, got %v", err)
	}
	if len(categories.deletes) != 0 {
		t.Fatalf("expected no delete, got %v", categories.deletes)
	}
}

func TestDeleteCategorySucceedsWhenEmpty(t *testing.T) {
	categories := newStubCategoryRepo(domain.Category{ID: "cat-1", Slug: "apparel", Name: "Apparel"})
	svc := newTestCategoryService(t, categories, newStubProductRepo(), nil)

	if err := svc.DeleteCategory(context.Background(), "cat-1"); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if len(categories.deletes) != 1 || categories.deletes[0] != "cat-1" {
		t.Fatalf("expected cat-1 deleted, got %v", categories.deletes)
	}

	// Deleting a missing category is a no-op.
	if err := svc.DeleteCategory(context.Background(), "cat-gone"); err != nil {
		t.Fatalf("delete missing category: %v", err)
	}
}

func TestCategoryRecountAllDelegates(t *testing.T) {
	categories := newStubCategoryRepo()
	sync := &stubCountSync{}
	svc := newTestCategoryService(t, categories, newStubProductRepo(), sync)

	if _, err := svc.RecountAll(context.Background()); err != nil {
		t.Fatalf("recount all: %v", err)
	}
}
