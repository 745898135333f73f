package firestore

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pfirestore "github.com/maplecart/api/internal/platform/firestore"
	"github.com/maplecart/api/internal/repositories"
)

// Registry wires every Firestore-backed repository to a shared provider and
// implements repositories.Registry.
type Registry struct {
	provider   *pfirestore.Provider
	products   *ProductRepository
	categories *CategoryRepository
	customers  *CustomerRepository
	orders     *OrderRepository
	counters   *CounterRepository
}

// NewRegistry constructs the repository registry over the shared provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	products, err := NewProductRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("registry: products: %w", err)
	}
	categories, err := NewCategoryRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("registry: categories: %w", err)
	}
	customers, err := NewCustomerRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("registry: customers: %w", err)
	}
	orders, err := NewOrderRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("registry: orders: %w", err)
	}
	counters, err := NewCounterRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("registry: counters: %w", err)
	}

	return &Registry{
		provider:   provider,
		products:   products,
		categories: categories,
		customers:  customers,
		orders:     orders,
		counters:   counters,
	}, nil
}

// Close releases the shared Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

func (r *Registry) Products() repositories.ProductRepository    { return r.products }
func (r *Registry) Categories() repositories.CategoryRepository { return r.categories }
func (r *Registry) Customers() repositories.CustomerRepository  { return r.customers }
func (r *Registry) Orders() repositories.OrderRepository        { return r.orders }
func (r *Registry) Counters() repositories.CounterRepository    { return r.counters }

// notFoundError produces a NotFound status error for query paths where the
// Firestore client itself never raises one (e.g. slug lookups).
func notFoundError(key string) error {
	return status.Errorf(codes.NotFound, "document %q not found", key)
}
