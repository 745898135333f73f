package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/maplecart/api/internal/catalog"
	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/platform/media"
	"github.com/maplecart/api/internal/platform/textutil"
	"github.com/maplecart/api/internal/repositories"
)

var (
	// ErrCatalogInvalidInput indicates the caller supplied invalid data to a catalog mutation.
	ErrCatalogInvalidInput = errors.New("catalog service: invalid input")
	// ErrProductSlugConflict indicates another product already owns the slug.
	ErrProductSlugConflict = errors.New("catalog service: slug conflict")
	// ErrVariantNotFound indicates the referenced variant SKU does not exist on the product.
	ErrVariantNotFound = errors.New("catalog service: variant not found")
)

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Products    repositories.ProductRepository
	Counts      CountSynchronizer
	Media       *media.Resolver
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type catalogService struct {
	products  repositories.ProductRepository
	counts    CountSynchronizer
	media     *media.Resolver
	sanitizer *bluemonday.Policy
	clock     func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
}

// NewCatalogService constructs the catalog service with the supplied dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	if deps.Counts == nil {
		return nil, errors.New("catalog service: count synchronizer is required")
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
	return &catalogService{
		products:  deps.Products,
		counts:    deps.Counts,
		media:     deps.Media,
		sanitizer: bluemonday.UGCPolicy(),
		clock:     func() time.Time { return clock().UTC() },
		newID:     idGen,
		logger:    logger,
	}, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter ProductFilter) (domain.CursorPage[domain.Product], error) {
	repoFilter := repositories.ProductListFilter{
		CategoryID:   normalizeFilterPointer(filter.CategoryID),
		UpdatedAfter: filter.UpdatedAfter,
		Sort:         filter.Sort,
		Pagination: domain.Pagination{
			PageSize:  filter.Pagination.PageSize,
			PageToken: strings.TrimSpace(filter.Pagination.PageToken),
		},
	}
	if filter.ActiveOnly {
		repoFilter.Status = []domain.ProductStatus{domain.ProductStatusActive}
	} else {
		repoFilter.Status = filter.Status
	}

	page, err := s.products.List(ctx, repoFilter)
	if err != nil {
		return domain.CursorPage[domain.Product]{}, err
	}
	for i := range page.Items {
		page.Items[i] = s.decorateProduct(page.Items[i])
	}
	return page, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return s.decorateProduct(product), nil
}

func (s *catalogService) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Product{}, fmt.Errorf("%w: slug is required", ErrCatalogInvalidInput)
	}
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Product{}, err
	}
	return s.decorateProduct(product), nil
}

func (s *catalogService) CreateProduct(ctx context.Context, cmd SaveProductCommand) (domain.Product, error) {
	product, err := s.normalizeProduct(cmd.Product)
	if err != nil {
		return domain.Product{}, err
	}
	if product.ID != "" {
		return domain.Product{}, fmt.Errorf("%w: id must be empty on create", ErrCatalogInvalidInput)
	}

	if err := s.ensureSlugFree(ctx, product.Slug, ""); err != nil {
		return domain.Product{}, err
	}

	now := s.clock()
	product.ID = s.newID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Status == "" {
		product.Status = domain.ProductStatusDraft
	}

	if err := s.products.Insert(ctx, product); err != nil {
		return domain.Product{}, err
	}
	s.recount(ctx, product.CategoryID)
	return s.decorateProduct(product), nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, cmd SaveProductCommand) (domain.Product, error) {
	product, err := s.normalizeProduct(cmd.Product)
	if err != nil {
		return domain.Product{}, err
	}
	if product.ID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	existing, err := s.products.FindByID(ctx, product.ID)
	if err != nil {
		return domain.Product{}, err
	}
	if product.Slug != existing.Slug {
		if err := s.ensureSlugFree(ctx, product.Slug, product.ID); err != nil {
			return domain.Product{}, err
		}
	}

	// Variant edits travel through GenerateVariants/UpdateVariant, not the
	// general save path.
	product.Variants = existing.Variants
	product.Attributes = existing.Attributes
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.clock()
	if product.Status == "" {
		product.Status = existing.Status
	}

	if err := s.products.Update(ctx, product); err != nil {
		return domain.Product{}, err
	}

	// A reassignment affects both the old and the new category.
	if existing.CategoryID != product.CategoryID {
		s.recount(ctx, existing.CategoryID)
		s.recount(ctx, product.CategoryID)
	} else if existing.Status != product.Status {
		s.recount(ctx, product.CategoryID)
	}
	return s.decorateProduct(product), nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if isRepoNotFound(err) {
			return nil
		}
		return err
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return err
	}
	s.recount(ctx, existing.CategoryID)
	return nil
}

func (s *catalogService) ChangeProductStatus(ctx context.Context, productID string, status domain.ProductStatus) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	switch status {
	case domain.ProductStatusDraft, domain.ProductStatusActive, domain.ProductStatusArchived:
	default:
		return domain.Product{}, fmt.Errorf("%w: unknown status %q", ErrCatalogInvalidInput, status)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if product.Status == status {
		return s.decorateProduct(product), nil
	}

	product.Status = status
	product.UpdatedAt = s.clock()
	if err := s.products.Update(ctx, product); err != nil {
		return domain.Product{}, err
	}
	s.recount(ctx, product.CategoryID)
	return s.decorateProduct(product), nil
}

func (s *catalogService) PreviewVariants(_ context.Context, inputs []AttributeInput) (VariantPreview, error) {
	attrs, err := parseAttributeInputs(inputs)
	if err != nil {
		return VariantPreview{}, err
	}
	return VariantPreview{
		Attributes: attrs,
		Count:      catalog.EstimateCount(attrs),
	}, nil
}

func (s *catalogService) GenerateVariants(ctx context.Context, cmd GenerateVariantsCommand) (domain.Product, error) {
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	attrs, err := parseAttributeInputs(cmd.Inputs)
	if err != nil {
		return domain.Product{}, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	variants, err := catalog.Generate(attrs, product.BasePrice)
	if err != nil {
		return domain.Product{}, err
	}
	catalog.AssignSKUs(product.Slug, variants)

	// Regeneration always discards operator price/stock edits; combinations
	// that survive an attribute change restart from the base price.
	product.Attributes = attrs
	product.Variants = variants
	product.UpdatedAt = s.clock()

	if err := s.products.Update(ctx, product); err != nil {
		return domain.Product{}, err
	}
	s.logger(ctx, "catalog.variants.generated", map[string]any{
		"productId": product.ID,
		"count":     len(variants),
	})
	return s.decorateProduct(product), nil
}

func (s *catalogService) UpdateVariant(ctx context.Context, cmd UpdateVariantCommand) (domain.Product, error) {
	productID := strings.TrimSpace(cmd.ProductID)
	sku := strings.TrimSpace(cmd.SKU)
	if productID == "" || sku == "" {
		return domain.Product{}, fmt.Errorf("%w: product id and sku are required", ErrCatalogInvalidInput)
	}
	if cmd.Price != nil && *cmd.Price < 0 {
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", ErrCatalogInvalidInput)
	}
	if cmd.Stock != nil && *cmd.Stock < 0 {
		return domain.Product{}, fmt.Errorf("%w: stock must not be negative", ErrCatalogInvalidInput)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	found := false
	for i := range product.Variants {
		if product.Variants[i].SKU != sku {
			continue
		}
		if cmd.Price != nil {
			product.Variants[i].Price = *cmd.Price
		}
		if cmd.Stock != nil {
			product.Variants[i].Stock = *cmd.Stock
		}
		found = true
		break
	}
	if !found {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrVariantNotFound, sku)
	}

	product.UpdatedAt = s.clock()
	if err := s.products.Update(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return s.decorateProduct(product), nil
}

// recount is fire-and-forget: the cached count is eventually consistent and a
// failed sync must not fail the product mutation that triggered it.
func (s *catalogService) recount(ctx context.Context, categoryID string) {
	if strings.TrimSpace(categoryID) == "" {
		return
	}
	if _, err := s.counts.RecountOne(ctx, categoryID); err != nil {
		s.logger(ctx, "catalog.recount.deferred", map[string]any{
			"categoryId": categoryID,
			"error":      err.Error(),
		})
	}
}

func (s *catalogService) normalizeProduct(product domain.Product) (domain.Product, error) {
	product.ID = strings.TrimSpace(product.ID)
	product.Name = strings.TrimSpace(product.Name)
	product.CategoryID = strings.TrimSpace(product.CategoryID)
	product.Currency = strings.ToUpper(strings.TrimSpace(product.Currency))
	product.Description = s.sanitizer.Sanitize(strings.TrimSpace(product.Description))
	product.FeaturedImage = strings.TrimSpace(product.FeaturedImage)

	if product.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: name is required", ErrCatalogInvalidInput)
	}
	if product.BasePrice < 0 {
		return domain.Product{}, fmt.Errorf("%w: base price must not be negative", ErrCatalogInvalidInput)
	}
	if product.Currency == "" {
		product.Currency = "USD"
	}

	product.Slug = textutil.Slugify(product.Slug)
	if product.Slug == "" {
		product.Slug = textutil.Slugify(product.Name)
	}
	if product.Slug == "" {
		return domain.Product{}, fmt.Errorf("%w: cannot derive slug from name", ErrCatalogInvalidInput)
	}

	var images []string
	for _, image := range product.Images {
		if trimmed := strings.TrimSpace(image); trimmed != "" {
			images = append(images, trimmed)
		}
	}
	product.Images = images
	return product, nil
}

func (s *catalogService) ensureSlugFree(ctx context.Context, slug string, selfID string) error {
	existing, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		if isRepoNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != "" && existing.ID != selfID {
		return fmt.Errorf("%w: %s", ErrProductSlugConflict, slug)
	}
	return nil
}

// decorateProduct canonicalizes every stored image reference for client
// consumption. The resolver is idempotent, so re-decorating an already
// decorated product is harmless.
func (s *catalogService) decorateProduct(product domain.Product) domain.Product {
	if s.media == nil {
		return product
	}
	product.FeaturedImage = s.media.Canonicalize(product.FeaturedImage)
	product.Images = s.media.CanonicalizeAll(product.Images)
	return product
}

func parseAttributeInputs(inputs []AttributeInput) ([]domain.Attribute, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	attrs := make([]domain.Attribute, 0, len(inputs))
	for _, input := range inputs {
		attr, err := catalog.ParseAttribute(input.Name, input.Values)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func normalizeFilterPointer(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isRepoNotFound(err error) bool {
	if err == nil {
		return false
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}
