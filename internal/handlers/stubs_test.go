package handlers

import (
	"context"

	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/services"
)

// Service stubs shared by the handler tests. Each field overrides one
// operation; unset operations return zero values.

type stubCatalogService struct {
	listFn           func(ctx context.Context, filter services.ProductFilter) (domain.CursorPage[domain.Product], error)
	getBySlugFn      func(ctx context.Context, slug string) (domain.Product, error)
	createFn         func(ctx context.Context, cmd services.SaveProductCommand) (domain.Product, error)
	updateFn         func(ctx context.Context, cmd services.SaveProductCommand) (domain.Product, error)
	deleteFn         func(ctx context.Context, productID string) error
	changeStatusFn   func(ctx context.Context, productID string, status domain.ProductStatus) (domain.Product, error)
	generateFn       func(ctx context.Context, cmd services.GenerateVariantsCommand) (domain.Product, error)
	previewFn        func(ctx context.Context, inputs []services.AttributeInput) (services.VariantPreview, error)
	updateVariantFn  func(ctx context.Context, cmd services.UpdateVariantCommand) (domain.Product, error)
	getFn            func(ctx context.Context, productID string) (domain.Product, error)
	lastListFilter   services.ProductFilter
	lastStatusChange domain.ProductStatus
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filter services.ProductFilter) (domain.CursorPage[domain.Product], error) {
	s.lastListFilter = filter
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return domain.CursorPage[domain.Product]{}, nil
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if s.getFn != nil {
		return s.getFn(ctx, productID)
	}
	return domain.Product{}, nil
}

func (s *stubCatalogService) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	if s.getBySlugFn != nil {
		return s.getBySlugFn(ctx, slug)
	}
	return domain.Product{}, nil
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, cmd services.SaveProductCommand) (domain.Product, error) {
	if s.createFn != nil {
		return s.createFn(ctx, cmd)
	}
	return cmd.Product, nil
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, cmd services.SaveProductCommand) (domain.Product, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, cmd)
	}
	return cmd.Product, nil
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, productID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, productID)
	}
	return nil
}

func (s *stubCatalogService) ChangeProductStatus(ctx context.Context, productID string, status domain.ProductStatus) (domain.Product, error) {
	s.lastStatusChange = status
	if s.changeStatusFn != nil {
		return s.changeStatusFn(ctx, productID, status)
	}
	return domain.Product{ID: productID, Status: status}, nil
}

func (s *stubCatalogService) GenerateVariants(ctx context.Context, cmd services.GenerateVariantsCommand) (domain.Product, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, cmd)
	}
	return domain.Product{ID: cmd.ProductID}, nil
}

func (s *stubCatalogService) PreviewVariants(ctx context.Context, inputs []services.AttributeInput) (services.VariantPreview, error) {
	if s.previewFn != nil {
		return s.previewFn(ctx, inputs)
	}
	return services.VariantPreview{}, nil
}

func (s *stubCatalogService) UpdateVariant(ctx context.Context, cmd services.UpdateVariantCommand) (domain.Product, error) {
	if s.updateVariantFn != nil {
		return s.updateVariantFn(ctx, cmd)
	}
	return domain.Product{ID: cmd.ProductID}, nil
}

type stubCategoryService struct {
	listFn    func(ctx context.Context) ([]domain.Category, error)
	getSlugFn func(ctx context.Context, slug string) (domain.Category, error)
	createFn  func(ctx context.Context, cmd services.SaveCategoryCommand) (domain.Category, error)
	deleteFn  func(ctx context.Context, categoryID string) error
	recountFn func(ctx context.Context) (services.RecountReport, error)
}

func (s *stubCategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubCategoryService) GetCategory(context.Context, string) (domain.Category, error) {
	return domain.Category{}, nil
}

func (s *stubCategoryService) GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	if s.getSlugFn != nil {
		return s.getSlugFn(ctx, slug)
	}
	return domain.Category{}, nil
}

func (s *stubCategoryService) CreateCategory(ctx context.Context, cmd services.SaveCategoryCommand) (domain.Category, error) {
	if s.createFn != nil {
		return s.createFn(ctx, cmd)
	}
	return cmd.Category, nil
}

func (s *stubCategoryService) UpdateCategory(ctx context.Context, cmd services.SaveCategoryCommand) (domain.Category, error) {
	return cmd.Category, nil
}

func (s *stubCategoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, categoryID)
	}
	return nil
}

func (s *stubCategoryService) RecountAll(ctx context.Context) (services.RecountReport, error) {
	if s.recountFn != nil {
		return s.recountFn(ctx)
	}
	return services.RecountReport{}, nil
}

type stubCustomerService struct {
	upsertFn func(ctx context.Context, cmd services.UpsertCustomerCommand) (domain.Customer, error)
	getFn    func(ctx context.Context, customerID string) (domain.Customer, error)
	listFn   func(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Customer], error)
}

func (s *stubCustomerService) GetCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	if s.getFn != nil {
		return s.getFn(ctx, customerID)
	}
	return domain.Customer{}, nil
}

func (s *stubCustomerService) UpsertCustomer(ctx context.Context, cmd services.UpsertCustomerCommand) (domain.Customer, error) {
	if s.upsertFn != nil {
		return s.upsertFn(ctx, cmd)
	}
	return cmd.Customer, nil
}

func (s *stubCustomerService) ListCustomers(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Customer], error) {
	if s.listFn != nil {
		return s.listFn(ctx, pager)
	}
	return domain.CursorPage[domain.Customer]{}, nil
}

type stubOrderService struct {
	placeFn  func(ctx context.Context, cmd services.PlaceOrderCommand) (domain.Order, error)
	getFn    func(ctx context.Context, orderID string) (domain.Order, error)
	listFn   func(ctx context.Context, filter services.OrderFilter) (domain.CursorPage[domain.Order], error)
	updateFn func(ctx context.Context, cmd services.UpdateOrderStatusCommand) (domain.Order, error)
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, cmd services.PlaceOrderCommand) (domain.Order, error) {
	if s.placeFn != nil {
		return s.placeFn(ctx, cmd)
	}
	return domain.Order{}, nil
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if s.getFn != nil {
		return s.getFn(ctx, orderID)
	}
	return domain.Order{}, nil
}

func (s *stubOrderService) ListOrders(ctx context.Context, filter services.OrderFilter) (domain.CursorPage[domain.Order], error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return domain.CursorPage[domain.Order]{}, nil
}

func (s *stubOrderService) UpdateOrderStatus(ctx context.Context, cmd services.UpdateOrderStatusCommand) (domain.Order, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, cmd)
	}
	return domain.Order{ID: cmd.OrderID, Status: cmd.Status}, nil
}

type stubMediaService struct {
	uploadFn         func(ctx context.Context, cmd services.CreateUploadURLCommand) (services.UploadTicket, error)
	downloadFn       func(ctx context.Context, cmd services.CreateDownloadURLCommand) (services.DownloadTicket, error)
	attachProductFn  func(ctx context.Context, cmd services.AttachImageCommand) (domain.Product, error)
	attachCategoryFn func(ctx context.Context, cmd services.AttachImageCommand) (domain.Category, error)
}

func (s *stubMediaService) CreateUploadURL(ctx context.Context, cmd services.CreateUploadURLCommand) (services.UploadTicket, error) {
	if s.uploadFn != nil {
		return s.uploadFn(ctx, cmd)
	}
	return services.UploadTicket{}, nil
}

func (s *stubMediaService) CreateDownloadURL(ctx context.Context, cmd services.CreateDownloadURLCommand) (services.DownloadTicket, error) {
	if s.downloadFn != nil {
		return s.downloadFn(ctx, cmd)
	}
	return services.DownloadTicket{}, nil
}

func (s *stubMediaService) AttachProductImage(ctx context.Context, cmd services.AttachImageCommand) (domain.Product, error) {
	if s.attachProductFn != nil {
		return s.attachProductFn(ctx, cmd)
	}
	return domain.Product{}, nil
}

func (s *stubMediaService) AttachCategoryImage(ctx context.Context, cmd services.AttachImageCommand) (domain.Category, error) {
	if s.attachCategoryFn != nil {
		return s.attachCategoryFn(ctx, cmd)
	}
	return domain.Category{}, nil
}
