package repositories

import (
	"context"
	"time"

	domain "github.com/maplecart/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Categories() CategoryRepository
	Customers() CustomerRepository
	Orders() OrderRepository
	Counters() CounterRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProductRepository persists catalog products.
//
// CountActiveByCategory and ExistsByCategory back the category count
// synchronizer and the category deletion guard respectively; both count the
// source records, never the cached category counter.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) (domain.CursorPage[domain.Product], error)
	CountActiveByCategory(ctx context.Context, categoryID string) (int, error)
	ExistsByCategory(ctx context.Context, categoryID string) (bool, error)
}

// CategoryRepository persists categories and their derived product counts.
type CategoryRepository interface {
	Insert(ctx context.Context, category domain.Category) error
	Update(ctx context.Context, category domain.Category) error
	Delete(ctx context.Context, categoryID string) error
	FindByID(ctx context.Context, categoryID string) (domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (domain.Category, error)
	ListAll(ctx context.Context) ([]domain.Category, error)
	// SetProductCount writes the derived active-product count. Only the count
	// synchronizer calls this; category edits never touch the field.
	SetProductCount(ctx context.Context, categoryID string, count int) error
}

// CustomerRepository stores customer profiles.
type CustomerRepository interface {
	Insert(ctx context.Context, customer domain.Customer) error
	Update(ctx context.Context, customer domain.Customer) error
	FindByID(ctx context.Context, customerID string) (domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (domain.Customer, error)
	List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Customer], error)
}

// OrderRepository persists order headers and provides query helpers for admins.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	Update(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) (domain.CursorPage[domain.Order], error)
}

// CounterRepository provides transaction-safe sequence numbers for order numbering.
type CounterRepository interface {
	Next(ctx context.Context, counterID string, step int64) (int64, error)
	Configure(ctx context.Context, counterID string, cfg CounterConfig) error
}

// CounterConfig customises increment behaviour and bounds for a counter.
type CounterConfig struct {
	Step         int64
	MaxValue     *int64
	InitialValue *int64
}

// Filter DTOs shared across repositories ------------------------------------

// ProductListFilter narrows product listings for storefront and admin surfaces.
type ProductListFilter struct {
	CategoryID   *string
	Status       []domain.ProductStatus
	UpdatedAfter *time.Time
	Sort         []domain.Sort
	Pagination   domain.Pagination
}

// OrderListFilter narrows order listings for admin surfaces.
type OrderListFilter struct {
	CustomerRef string
	Status      []domain.OrderStatus
	Pagination  domain.Pagination
}
