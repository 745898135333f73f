package domain

import (
	"time"
)

// Pagination defines standard cursor-based paging inputs for list operations.
type Pagination struct {
	PageSize  int
	PageToken string
}

// SortOrder indicates ascending or descending ordering for list queries.
type SortOrder string

const (
	// SortAsc sorts results in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts results in descending order.
	SortDesc SortOrder = "desc"
)

// Sort is a single order-by clause applied to list queries.
type Sort struct {
	Field     string
	Direction SortOrder
}

// CursorPage packages list results with an encoded next token.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}

// ProductStatus enumerates lifecycle states for catalog products.
type ProductStatus string

const (
	// ProductStatusDraft indicates the product is being edited and is not visible on the storefront.
	ProductStatusDraft ProductStatus = "draft"
	// ProductStatusActive indicates the product is published and purchasable.
	ProductStatusActive ProductStatus = "active"
	// ProductStatusArchived indicates the product has been retired but is kept for order history.
	ProductStatusArchived ProductStatus = "archived"
)

// Attribute is a named axis of product variation with an ordered list of allowed values.
type Attribute struct {
	Name   string
	Values []string
}

// OptionPair binds one attribute name to the value chosen for a variant.
type OptionPair struct {
	Attribute string
	Value     string
}

// Variant is one concrete purchasable configuration of a product, one value per attribute.
type Variant struct {
	SKU         string
	DisplayName string
	Options     []OptionPair
	Price       int64
	Stock       int
}

// Product captures the catalog product shared across layers. Prices are minor currency units.
type Product struct {
	ID            string
	Slug          string
	Name          string
	Description   string
	CategoryID    string
	Status        ProductStatus
	BasePrice     int64
	Currency      string
	FeaturedImage string
	Images        []string
	Attributes    []Attribute
	Variants      []Variant
	Metadata      map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Category groups products for storefront navigation. ActiveProductCount is a
// derived value owned by the count synchronizer; it is never edited directly.
type Category struct {
	ID                 string
	Slug               string
	Name               string
	Description        string
	Image              string
	ActiveProductCount int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Address represents postal address structures shared by customer and order layers.
type Address struct {
	Recipient  string
	Line1      string
	Line2      *string
	City       string
	State      *string
	PostalCode string
	Country    string
	Phone      *string
}

// Customer captures the storefront customer profile.
type Customer struct {
	ID        string
	Email     string
	Name      string
	Locale    string
	Addresses []Address
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderStatus enumerates valid lifecycle states for orders.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was placed and awaits processing.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing indicates the order is being prepared.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the order has been handed to the carrier.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order has reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCanceled indicates the order was canceled before fulfilment.
	OrderStatusCanceled OrderStatus = "canceled"
)

// OrderLineItem snapshots a purchased product/variant at the time of ordering.
type OrderLineItem struct {
	ProductRef  string
	SKU         string
	Name        string
	VariantName string
	Quantity    int
	UnitPrice   int64
	Total       int64
}

// OrderTotals holds rolled-up monetary fields in the smallest currency unit.
type OrderTotals struct {
	Subtotal int64
	Shipping int64
	Tax      int64
	Total    int64
}

// Order captures order headers returned to handlers and services.
type Order struct {
	ID              string
	OrderNumber     string
	CustomerRef     string
	Status          OrderStatus
	Currency        string
	Items           []OrderLineItem
	Totals          OrderTotals
	ShippingAddress *Address
	ContactEmail    string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CanceledAt      *time.Time
	CancelReason    *string
}

// EmailMessage describes a templated notification handed to the mail pipeline.
type EmailMessage struct {
	To       string
	Subject  string
	Template string
	Payload  map[string]any
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but service remains running.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates the service or a critical dependency is unavailable.
	HealthStatusError = "error"
)
