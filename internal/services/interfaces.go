package services

import (
	"context"
	"time"

	domain "github.com/maplecart/api/internal/domain"
)

// CatalogService owns product lifecycle and variant generation. It is the
// single mutation path for products; every create/delete/status-change/
// category-reassignment triggers the count synchronizer for the affected
// categories, so a forgotten recount cannot happen outside this service.
type CatalogService interface {
	ListProducts(ctx context.Context, filter ProductFilter) (domain.CursorPage[domain.Product], error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	CreateProduct(ctx context.Context, cmd SaveProductCommand) (domain.Product, error)
	UpdateProduct(ctx context.Context, cmd SaveProductCommand) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	ChangeProductStatus(ctx context.Context, productID string, status domain.ProductStatus) (domain.Product, error)
	GenerateVariants(ctx context.Context, cmd GenerateVariantsCommand) (domain.Product, error)
	PreviewVariants(ctx context.Context, inputs []AttributeInput) (VariantPreview, error)
	UpdateVariant(ctx context.Context, cmd UpdateVariantCommand) (domain.Product, error)
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID   *string
	Status       []domain.ProductStatus
	ActiveOnly   bool
	UpdatedAfter *time.Time
	Sort         []domain.Sort
	Pagination   domain.Pagination
}

// SaveProductCommand carries product create/update input.
type SaveProductCommand struct {
	Product domain.Product
}

// AttributeInput is the raw admin form pair: attribute name plus a
// comma-separated value list.
type AttributeInput struct {
	Name   string `json:"name"`
	Values string `json:"values"`
}

// GenerateVariantsCommand regenerates a product's variant table from raw
// attribute inputs. Existing variants are discarded wholesale.
type GenerateVariantsCommand struct {
	ProductID string
	Inputs    []AttributeInput
}

// VariantPreview reports the size and shape of a pending generation without
// persisting anything.
type VariantPreview struct {
	Attributes []domain.Attribute
	Count      int
}

// UpdateVariantCommand edits price/stock of a single generated variant.
type UpdateVariantCommand struct {
	ProductID string
	SKU       string
	Price     *int64
	Stock     *int
}

// CategoryService owns category lifecycle, the deletion guard, and the bulk
// count repair operation.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, categoryID string) (domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error)
	CreateCategory(ctx context.Context, cmd SaveCategoryCommand) (domain.Category, error)
	UpdateCategory(ctx context.Context, cmd SaveCategoryCommand) (domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
	RecountAll(ctx context.Context) (RecountReport, error)
}

// SaveCategoryCommand carries category create/update input.
type SaveCategoryCommand struct {
	Category domain.Category
}

// CountSynchronizer maintains the derived active-product count per category.
type CountSynchronizer interface {
	RecountOne(ctx context.Context, categoryID string) (int, error)
	RecountAll(ctx context.Context) (RecountReport, error)
}

// CustomerService manages storefront customer profiles.
type CustomerService interface {
	GetCustomer(ctx context.Context, customerID string) (domain.Customer, error)
	UpsertCustomer(ctx context.Context, cmd UpsertCustomerCommand) (domain.Customer, error)
	ListCustomers(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Customer], error)
}

// UpsertCustomerCommand carries customer profile input.
type UpsertCustomerCommand struct {
	Customer domain.Customer
}

// OrderService places orders and drives their status lifecycle.
type OrderService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) (domain.CursorPage[domain.Order], error)
	UpdateOrderStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (domain.Order, error)
}

// PlaceOrderLine selects a product variant and quantity for an order.
type PlaceOrderLine struct {
	ProductID string
	SKU       string
	Quantity  int
}

// PlaceOrderCommand carries order placement input.
type PlaceOrderCommand struct {
	CustomerID      string
	Lines           []PlaceOrderLine
	ShippingAddress *domain.Address
	Notes           string
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	CustomerRef string
	Status      []domain.OrderStatus
	Pagination  domain.Pagination
}

// UpdateOrderStatusCommand transitions an order, with an optional reason for
// cancellations.
type UpdateOrderStatusCommand struct {
	OrderID string
	Status  domain.OrderStatus
	Reason  string
}

// NotificationService renders and enqueues customer-facing email
// notifications. Delivery transport lives behind the job queue.
type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, order domain.Order) error
	SendOrderStatusUpdate(ctx context.Context, order domain.Order) error
}

// EmailJobMessage is the payload delivered to the mail worker via Pub/Sub.
type EmailJobMessage struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	HTMLBody string         `json:"htmlBody"`
	Payload  map[string]any `json:"payload,omitempty"`
	QueuedAt time.Time      `json:"queuedAt"`
}

// EmailJobPublisher publishes email job messages to the background queue.
type EmailJobPublisher interface {
	PublishEmailJob(ctx context.Context, message EmailJobMessage) (string, error)
}

// MediaService issues signed upload URLs for catalog media, promotes finished
// uploads into their published object locations, and mints short-lived signed
// download URLs for stored objects.
type MediaService interface {
	CreateUploadURL(ctx context.Context, cmd CreateUploadURLCommand) (UploadTicket, error)
	CreateDownloadURL(ctx context.Context, cmd CreateDownloadURLCommand) (DownloadTicket, error)
	AttachProductImage(ctx context.Context, cmd AttachImageCommand) (domain.Product, error)
	AttachCategoryImage(ctx context.Context, cmd AttachImageCommand) (domain.Category, error)
}

// CreateUploadURLCommand describes the file an admin wants to upload.
type CreateUploadURLCommand struct {
	FileName    string
	ContentType string
	SizeBytes   int64
}

// UploadTicket is everything the client needs to PUT the file directly to
// the bucket, plus the upload id used to attach it afterwards.
type UploadTicket struct {
	UploadID   string
	ObjectPath string
	URL        string
	Method     string
	Headers    map[string]string
	ExpiresAt  time.Time
}

// CreateDownloadURLCommand names the stored object an admin wants to fetch.
// ObjectPath is the reference as persisted on the owning document, with or
// without its leading slash.
type CreateDownloadURLCommand struct {
	ObjectPath string
}

// DownloadTicket carries a short-lived signed GET URL for a stored object.
type DownloadTicket struct {
	URL       string
	Method    string
	ExpiresAt time.Time
}

// AttachImageCommand promotes a staged upload onto a product or category.
type AttachImageCommand struct {
	OwnerID  string
	UploadID string
	FileName string
	// Featured replaces the product's featured image instead of appending
	// to the gallery. Ignored for categories.
	Featured bool
}
