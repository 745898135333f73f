package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/maplecart/api/internal/catalog"
	"github.com/maplecart/api/internal/domain"
	pfirestore "github.com/maplecart/api/internal/platform/firestore"
	"github.com/maplecart/api/internal/platform/pagination"
	"github.com/maplecart/api/internal/repositories"
)

const productsCollection = "products"

type productOptionDocument struct {
	Attribute string `firestore:"attribute"`
	Value     string `firestore:"value"`
}

type productVariantDocument struct {
	SKU         string                  `firestore:"sku"`
	DisplayName string                  `firestore:"displayName"`
	Options     []productOptionDocument `firestore:"options"`
	Price       int64                   `firestore:"price"`
	Stock       int                     `firestore:"stock"`

	// Documents written before multi-axis variants carry a single
	// type/value pair instead of an options list.
	Type  string `firestore:"type,omitempty"`
	Value string `firestore:"value,omitempty"`
}

type productAttributeDocument struct {
	Name   string   `firestore:"name"`
	Values []string `firestore:"values"`
}

type productDocument struct {
	Slug          string                     `firestore:"slug"`
	Name          string                     `firestore:"name"`
	Description   string                     `firestore:"description"`
	CategoryID    string                     `firestore:"categoryId"`
	Status        string                     `firestore:"status"`
	BasePrice     int64                      `firestore:"basePrice"`
	Currency      string                     `firestore:"currency"`
	FeaturedImage string                     `firestore:"featuredImage"`
	Images        []string                   `firestore:"images"`
	Attributes    []productAttributeDocument `firestore:"attributes"`
	Variants      []productVariantDocument   `firestore:"variants"`
	Metadata      map[string]any             `firestore:"metadata,omitempty"`
	CreatedAt     time.Time                  `firestore:"createdAt"`
	UpdatedAt     time.Time                  `firestore:"updatedAt"`
}

// ProductRepository implements repositories.ProductRepository backed by Firestore.
type ProductRepository struct {
	products *pfirestore.BaseRepository[productDocument]
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{
		products: pfirestore.NewBaseRepository[productDocument](provider, productsCollection, nil, nil),
	}, nil
}

func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) error {
	_, err := r.products.Set(ctx, product.ID, encodeProduct(product))
	return err
}

func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	_, err := r.products.Set(ctx, product.ID, encodeProduct(product))
	return err
}

func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	return r.products.Delete(ctx, productID)
}

func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	doc, err := r.products.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return decodeProduct(doc.ID, doc.Data), nil
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (domain.Product, error) {
	docs, err := r.products.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("slug", "==", strings.TrimSpace(slug)).Limit(1)
	})
	if err != nil {
		return domain.Product{}, err
	}
	if len(docs) == 0 {
		return domain.Product{}, pfirestore.WrapError("products.find_by_slug", notFoundError(slug))
	}
	return decodeProduct(docs[0].ID, docs[0].Data), nil
}

// List pages products with a document-id tiebreak so the cursor stays stable
// across products written in the same instant. Ordering defaults to
// newest-first on createdAt; callers may instead order on updatedAt, and the
// cursor always follows whichever timestamp field orders the page.
func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
	pageSize := filter.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}

	orderField, direction := productListOrder(filter.Sort)

	cursor, err := pagination.DecodeToken(filter.Pagination.PageToken)
	if err != nil {
		return domain.CursorPage[domain.Product]{}, err
	}
	startAfter, err := decodeTimeCursor(cursor)
	if err != nil {
		return domain.CursorPage[domain.Product]{}, err
	}

	docs, err := r.products.Query(ctx, func(q firestore.Query) firestore.Query {
		if filter.CategoryID != nil {
			q = q.Where("categoryId", "==", *filter.CategoryID)
		}
		if len(filter.Status) == 1 {
			q = q.Where("status", "==", string(filter.Status[0]))
		} else if len(filter.Status) > 1 {
			statuses := make([]string, 0, len(filter.Status))
			for _, status := range filter.Status {
				statuses = append(statuses, string(status))
			}
			q = q.Where("status", "in", statuses)
		}
		if filter.UpdatedAfter != nil {
			q = q.Where("updatedAt", ">", *filter.UpdatedAfter)
		}
		q = q.OrderBy(orderField, direction).OrderBy(firestore.DocumentID, direction)
		if startAfter != nil {
			q = q.StartAfter(startAfter...)
		}
		return q.Limit(pageSize + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Product]{}, err
	}

	page := domain.CursorPage[domain.Product]{}
	hasMore := len(docs) > pageSize
	if hasMore {
		docs = docs[:pageSize]
	}
	for _, doc := range docs {
		page.Items = append(page.Items, decodeProduct(doc.ID, doc.Data))
	}
	if hasMore {
		last := docs[len(docs)-1]
		cursorTime := last.Data.CreatedAt
		if orderField == "updatedAt" {
			cursorTime = last.Data.UpdatedAt
		}
		token, err := encodeTimeCursor(cursorTime, last.ID)
		if err != nil {
			return domain.CursorPage[domain.Product]{}, err
		}
		page.NextPageToken = token
	}
	return page, nil
}

// productListOrder resolves the requested sort to a queryable timestamp field.
// Only createdAt and updatedAt participate in the composite index; anything
// else falls back to the default newest-first ordering.
func productListOrder(sorts []domain.Sort) (string, firestore.Direction) {
	for _, sort := range sorts {
		switch sort.Field {
		case "createdAt", "updatedAt":
			direction := firestore.Desc
			if sort.Direction == domain.SortAsc {
				direction = firestore.Asc
			}
			return sort.Field, direction
		}
	}
	return "createdAt", firestore.Desc
}

// CountActiveByCategory counts the source product documents with a server-side
// aggregation. The derived counter on the category document is never consulted.
func (r *ProductRepository) CountActiveByCategory(ctx context.Context, categoryID string) (int, error) {
	count, err := r.products.Count(ctx, func(q firestore.Query) firestore.Query {
		return q.
			Where("categoryId", "==", strings.TrimSpace(categoryID)).
			Where("status", "==", string(domain.ProductStatusActive))
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// ExistsByCategory reports whether any product, in any status, references the
// category. Backs the category deletion guard.
func (r *ProductRepository) ExistsByCategory(ctx context.Context, categoryID string) (bool, error) {
	return r.products.Exists(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("categoryId", "==", strings.TrimSpace(categoryID))
	})
}

func encodeProduct(product domain.Product) productDocument {
	doc := productDocument{
		Slug:          product.Slug,
		Name:          product.Name,
		Description:   product.Description,
		CategoryID:    product.CategoryID,
		Status:        string(product.Status),
		BasePrice:     product.BasePrice,
		Currency:      product.Currency,
		FeaturedImage: product.FeaturedImage,
		Images:        product.Images,
		Metadata:      product.Metadata,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
	for _, attr := range product.Attributes {
		doc.Attributes = append(doc.Attributes, productAttributeDocument{Name: attr.Name, Values: attr.Values})
	}
	for _, variant := range product.Variants {
		vdoc := productVariantDocument{
			SKU:         variant.SKU,
			DisplayName: variant.DisplayName,
			Price:       variant.Price,
			Stock:       variant.Stock,
		}
		for _, option := range variant.Options {
			vdoc.Options = append(vdoc.Options, productOptionDocument{Attribute: option.Attribute, Value: option.Value})
		}
		doc.Variants = append(doc.Variants, vdoc)
	}
	return doc
}

func decodeProduct(id string, doc productDocument) domain.Product {
	product := domain.Product{
		ID:            id,
		Slug:          doc.Slug,
		Name:          doc.Name,
		Description:   doc.Description,
		CategoryID:    doc.CategoryID,
		Status:        domain.ProductStatus(doc.Status),
		BasePrice:     doc.BasePrice,
		Currency:      doc.Currency,
		FeaturedImage: doc.FeaturedImage,
		Images:        doc.Images,
		Metadata:      doc.Metadata,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	for _, attr := range doc.Attributes {
		product.Attributes = append(product.Attributes, domain.Attribute{Name: attr.Name, Values: attr.Values})
	}
	for _, vdoc := range doc.Variants {
		if len(vdoc.Options) == 0 && (vdoc.Type != "" || vdoc.Value != "") {
			product.Variants = append(product.Variants, catalog.ConvertLegacyVariant(catalog.LegacyVariant{
				Type:  vdoc.Type,
				Value: vdoc.Value,
				SKU:   vdoc.SKU,
				Price: vdoc.Price,
				Stock: vdoc.Stock,
			}))
			continue
		}
		variant := domain.Variant{
			SKU:         vdoc.SKU,
			DisplayName: vdoc.DisplayName,
			Price:       vdoc.Price,
			Stock:       vdoc.Stock,
		}
		for _, option := range vdoc.Options {
			variant.Options = append(variant.Options, domain.OptionPair{Attribute: option.Attribute, Value: option.Value})
		}
		product.Variants = append(product.Variants, variant)
	}
	return product
}

// encodeTimeCursor serialises a (timestamp, document id) cursor as RFC 3339 so
// the token survives the JSON round trip.
func encodeTimeCursor(at time.Time, id string) (string, error) {
	return pagination.EncodeToken(pagination.Cursor{
		StartAfter: []any{at.UTC().Format(time.RFC3339Nano), id},
	})
}

// decodeTimeCursor restores the typed (timestamp, document id) pair, returning
// nil when the cursor is empty.
func decodeTimeCursor(cursor pagination.Cursor) ([]any, error) {
	if len(cursor.StartAfter) == 0 {
		return nil, nil
	}
	if len(cursor.StartAfter) != 2 {
		return nil, fmt.Errorf("%w: unexpected cursor shape", pagination.ErrInvalidPageToken)
	}
	rawTime, ok := cursor.StartAfter[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: cursor timestamp must be a string", pagination.ErrInvalidPageToken)
	}
	at, err := time.Parse(time.RFC3339Nano, rawTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pagination.ErrInvalidPageToken, err)
	}
	id, ok := cursor.StartAfter[1].(string)
	if !ok {
		return nil, fmt.Errorf("%w: cursor id must be a string", pagination.ErrInvalidPageToken)
	}
	return []any{at, id}, nil
}
