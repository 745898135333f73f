package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/platform/media"
	"github.com/maplecart/api/internal/platform/textutil"
	"github.com/maplecart/api/internal/repositories"
)

var (
	// ErrCategoryInvalidInput indicates the caller supplied invalid category data.
	ErrCategoryInvalidInput = errors.New("category service: invalid input")
	// ErrCategorySlugConflict indicates another category already owns the slug.
	ErrCategorySlugConflict = errors.New("category service: slug conflict")
	// ErrCategoryNotEmpty indicates products still reference the category.
	ErrCategoryNotEmpty = errors.New("category service: category has products")
)

// CategoryServiceDeps bundles constructor inputs for the category service.
type CategoryServiceDeps struct {
	Categories  repositories.CategoryRepository
	Products    repositories.ProductRepository
	Counts      CountSynchronizer
	Media       *media.Resolver
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type categoryService struct {
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
	counts     CountSynchronizer
	media      *media.Resolver
	sanitizer  *bluemonday.Policy
	clock      func() time.Time
	newID      func() string
	logger     func(context.Context, string, map[string]any)
}

// NewCategoryService constructs the category service with the supplied dependencies.
func NewCategoryService(deps CategoryServiceDeps) (CategoryService, error) {
	if deps.Categories == nil {
		return nil, errors.New("category service: category repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("category service: product repository is required")
	}
	if deps.Counts == nil {
		return nil, errors.New("category service: count synchronizer is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &categoryService{
		categories: deps.Categories,
		products:   deps.Products,
		counts:     deps.Counts,
		media:      deps.Media,
		sanitizer:  bluemonday.StrictPolicy(),
		clock:      func() time.Time { return clock().UTC() },
		newID:      idGen,
		logger:     logger,
	}, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i] = s.decorateCategory(categories[i])
	}
	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return domain.Category{}, fmt.Errorf("%w: category id is required", ErrCategoryInvalidInput)
	}
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return domain.Category{}, err
	}
	return s.decorateCategory(category), nil
}

func (s *categoryService) GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Category{}, fmt.Errorf("%w: slug is required", ErrCategoryInvalidInput)
	}
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Category{}, err
	}
	return s.decorateCategory(category), nil
}

func (s *categoryService) CreateCategory(ctx context.Context, cmd SaveCategoryCommand) (domain.Category, error) {
	category, err := s.normalizeCategory(cmd.Category)
	if err != nil {
		return domain.Category{}, err
	}
	if category.ID != "" {
		return domain.Category{}, fmt.Errorf("%w: id must be empty on create", ErrCategoryInvalidInput)
	}
	if err := s.ensureSlugFree(ctx, category.Slug, ""); err != nil {
		return domain.Category{}, err
	}

	now := s.clock()
	category.ID = s.newID()
	// The derived count starts at zero; only the synchronizer writes it.
	category.ActiveProductCount = 0
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := s.categories.Insert(ctx, category); err != nil {
		return domain.Category{}, err
	}
	return s.decorateCategory(category), nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, cmd SaveCategoryCommand) (domain.Category, error) {
	category, err := s.normalizeCategory(cmd.Category)
	if err != nil {
		return domain.Category{}, err
	}
	if category.ID == "" {
		return domain.Category{}, fmt.Errorf("%w: category id is required", ErrCategoryInvalidInput)
	}

	existing, err := s.categories.FindByID(ctx, category.ID)
	if err != nil {
		return domain.Category{}, err
	}
	if category.Slug != existing.Slug {
		if err := s.ensureSlugFree(ctx, category.Slug, category.ID); err != nil {
			return domain.Category{}, err
		}
	}

	// Category edits never touch the derived count.
	category.ActiveProductCount = existing.ActiveProductCount
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = s.clock()

	if err := s.categories.Update(ctx, category); err != nil {
		return domain.Category{}, err
	}
	return s.decorateCategory(category), nil
}

// DeleteCategory removes a category unless any product, in any status, still
// references it. Archived products count: deleting their category would leave
// dangling references behind.
func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return fmt.Errorf("%w: category id is required", ErrCategoryInvalidInput)
	}

	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if isRepoNotFound(err) {
			return nil
		}
		return err
	}

	inUse, err := s.products.ExistsByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: %s", ErrCategoryNotEmpty, categoryID)
	}
	return s.categories.Delete(ctx, categoryID)
}

func (s *categoryService) RecountAll(ctx context.Context) (RecountReport, error) {
	report, err := s.counts.RecountAll(ctx)
	if err != nil {
		return RecountReport{}, err
	}
	s.logger(ctx, "catalog.recount.completed", map[string]any{
		"recounted": report.Recounted,
		"repaired":  report.Repaired,
		"failed":    len(report.Failed),
	})
	return report, nil
}

func (s *categoryService) normalizeCategory(category domain.Category) (domain.Category, error) {
	category.ID = strings.TrimSpace(category.ID)
	category.Name = strings.TrimSpace(category.Name)
	category.Description = s.sanitizer.Sanitize(strings.TrimSpace(category.Description))
	category.Image = strings.TrimSpace(category.Image)

	if category.Name == "" {
		return domain.Category{}, fmt.Errorf("%w: name is required", ErrCategoryInvalidInput)
	}

	category.Slug = textutil.Slugify(category.Slug)
	if category.Slug == "" {
		category.Slug = textutil.Slugify(category.Name)
	}
	if category.Slug == "" {
		return domain.Category{}, fmt.Errorf("%w: cannot derive slug from name", ErrCategoryInvalidInput)
	}
	return category, nil
}

func (s *categoryService) ensureSlugFree(ctx context.Context, slug string, selfID string) error {
	existing, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		if isRepoNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != "" && existing.ID != selfID {
		return fmt.Errorf("%w: %s", ErrCategorySlugConflict, slug)
	}
	return nil
}

func (s *categoryService) decorateCategory(category domain.Category) domain.Category {
	if s.media == nil {
		return category
	}
	category.Image = s.media.Canonicalize(category.Image)
	return category
}
