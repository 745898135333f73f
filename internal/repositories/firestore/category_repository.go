package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/maplecart/api/internal/domain"
	pfirestore "github.com/maplecart/api/internal/platform/firestore"
)

const categoriesCollection = "categories"

type categoryDocument struct {
	Slug               string    `firestore:"slug"`
	Name               string    `firestore:"name"`
	Description        string    `firestore:"description"`
	Image              string    `firestore:"image"`
	ActiveProductCount int       `firestore:"activeProductCount"`
	CreatedAt          time.Time `firestore:"createdAt"`
	UpdatedAt          time.Time `firestore:"updatedAt"`
}

// CategoryRepository implements repositories.CategoryRepository backed by Firestore.
type CategoryRepository struct {
	categories *pfirestore.BaseRepository[categoryDocument]
}

// NewCategoryRepository constructs a Firestore-backed category repository.
func NewCategoryRepository(provider *pfirestore.Provider) (*CategoryRepository, error) {
	if provider == nil {
		return nil, errors.New("category repository requires firestore provider")
	}
	return &CategoryRepository{
		categories: pfirestore.NewBaseRepository[categoryDocument](provider, categoriesCollection, nil, nil),
	}, nil
}

func (r *CategoryRepository) Insert(ctx context.Context, category domain.Category) error {
	_, err := r.categories.Set(ctx, category.ID, encodeCategory(category))
	return err
}

// Update rewrites the editable fields but deliberately leaves the derived
// activeProductCount untouched; SetProductCount is its only writer.
func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	_, err := r.categories.Update(ctx, category.ID, []firestore.Update{
		{Path: "slug", Value: category.Slug},
		{Path: "name", Value: category.Name},
		{Path: "description", Value: category.Description},
		{Path: "image", Value: category.Image},
		{Path: "updatedAt", Value: category.UpdatedAt},
	})
	return err
}

func (r *CategoryRepository) Delete(ctx context.Context, categoryID string) error {
	return r.categories.Delete(ctx, categoryID)
}

func (r *CategoryRepository) FindByID(ctx context.Context, categoryID string) (domain.Category, error) {
	doc, err := r.categories.Get(ctx, categoryID)
	if err != nil {
		return domain.Category{}, err
	}
	return decodeCategory(doc.ID, doc.Data), nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (domain.Category, error) {
	docs, err := r.categories.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("slug", "==", strings.TrimSpace(slug)).Limit(1)
	})
	if err != nil {
		return domain.Category{}, err
	}
	if len(docs) == 0 {
		return domain.Category{}, pfirestore.WrapError("categories.find_by_slug", notFoundError(slug))
	}
	return decodeCategory(docs[0].ID, docs[0].Data), nil
}

// ListAll returns every category ordered by name. The catalog is expected to
// hold at most a few hundred categories, so no pagination.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	docs, err := r.categories.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	categories := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, decodeCategory(doc.ID, doc.Data))
	}
	return categories, nil
}

func (r *CategoryRepository) SetProductCount(ctx context.Context, categoryID string, count int) error {
	_, err := r.categories.Update(ctx, categoryID, []firestore.Update{
		{Path: "activeProductCount", Value: count},
	})
	return err
}

func encodeCategory(category domain.Category) categoryDocument {
	return categoryDocument{
		Slug:               category.Slug,
		Name:               category.Name,
		Description:        category.Description,
		Image:              category.Image,
		ActiveProductCount: category.ActiveProductCount,
		CreatedAt:          category.CreatedAt,
		UpdatedAt:          category.UpdatedAt,
	}
}

func decodeCategory(id string, doc categoryDocument) domain.Category {
	return domain.Category{
		ID:                 id,
		Slug:               doc.Slug,
		Name:               doc.Name,
		Description:        doc.Description,
		Image:              doc.Image,
		ActiveProductCount: doc.ActiveProductCount,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}
