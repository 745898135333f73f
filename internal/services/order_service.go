package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/repositories"
)

var (
	// ErrOrderInvalidInput indicates the caller supplied invalid order data.
	ErrOrderInvalidInput = errors.New("order service: invalid input")
	// ErrOrderInvalidTransition indicates the requested status change is not allowed.
	ErrOrderInvalidTransition = errors.New("order service: invalid status transition")
	// ErrProductNotPurchasable indicates a line references a product that is not active.
	ErrProductNotPurchasable = errors.New("order service: product not purchasable")
)

// OrderServiceDeps bundles constructor inputs for the order service.
type OrderServiceDeps struct {
	Orders        repositories.OrderRepository
	Products      repositories.ProductRepository
	Customers     repositories.CustomerRepository
	Counters      repositories.CounterRepository
	Notifications NotificationService
	Clock         func() time.Time
	IDGenerator   func() string
	Logger        func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders        repositories.OrderRepository
	products      repositories.ProductRepository
	customers     repositories.CustomerRepository
	counters      repositories.CounterRepository
	notifications NotificationService
	clock         func() time.Time
	newID         func() string
	logger        func(context.Context, string, map[string]any)
}

// NewOrderService constructs the order service with the supplied dependencies.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}
	if deps.Customers == nil {
		return nil, errors.New("order service: customer repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("order service: counter repository is required")
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
	return &orderService{
		orders:        deps.Orders,
		products:      deps.Products,
		customers:     deps.Customers,
		counters:      deps.Counters,
		notifications: deps.Notifications,
		clock:         func() time.Time { return clock().UTC() },
		newID:         idGen,
		logger:        logger,
	}, nil
}

// PlaceOrder snapshots the selected variants into immutable line items,
// allocates the next order number and stores the order as pending. Later
// catalog edits never change what the customer sees on an existing order.
func (s *orderService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error) {
	customerID := strings.TrimSpace(cmd.CustomerID)
	if customerID == "" {
		return domain.Order{}, fmt.Errorf("%w: customer id is required", ErrOrderInvalidInput)
	}
	if len(cmd.Lines) == 0 {
		return domain.Order{}, fmt.Errorf("%w: at least one line is required", ErrOrderInvalidInput)
	}

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return domain.Order{}, err
	}

	currency := ""
	items := make([]domain.OrderLineItem, 0, len(cmd.Lines))
	var subtotal int64
	for _, line := range cmd.Lines {
		item, productCurrency, err := s.resolveLine(ctx, line)
		if err != nil {
			return domain.Order{}, err
		}
		if currency == "" {
			currency = productCurrency
		} else if currency != productCurrency {
			return domain.Order{}, fmt.Errorf("%w: mixed currencies %s and %s", ErrOrderInvalidInput, currency, productCurrency)
		}
		items = append(items, item)
		subtotal += item.Total
	}

	now := s.clock()
	number, err := s.nextOrderNumber(ctx, now)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:              s.newID(),
		OrderNumber:     number,
		CustomerRef:     customer.ID,
		Status:          domain.OrderStatusPending,
		Currency:        currency,
		Items:           items,
		Totals:          domain.OrderTotals{Subtotal: subtotal, Total: subtotal},
		ShippingAddress: cmd.ShippingAddress,
		ContactEmail:    customer.Email,
		Notes:           strings.TrimSpace(cmd.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if order.ShippingAddress == nil && len(customer.Addresses) > 0 {
		addr := customer.Addresses[0]
		order.ShippingAddress = &addr
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return domain.Order{}, err
	}
	s.notify(ctx, order, true)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	return s.orders.FindByID(ctx, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) (domain.CursorPage[domain.Order], error) {
	return s.orders.List(ctx, repositories.OrderListFilter{
		CustomerRef: strings.TrimSpace(filter.CustomerRef),
		Status:      filter.Status,
		Pagination:  filter.Pagination,
	})
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (domain.Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status == cmd.Status {
		return order, nil
	}
	if !validTransition(order.Status, cmd.Status) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", ErrOrderInvalidTransition, order.Status, cmd.Status)
	}

	now := s.clock()
	order.Status = cmd.Status
	order.UpdatedAt = now
	switch cmd.Status {
	case domain.OrderStatusShipped:
		order.ShippedAt = &now
	case domain.OrderStatusDelivered:
		order.DeliveredAt = &now
	case domain.OrderStatusCanceled:
		order.CanceledAt = &now
		if reason := strings.TrimSpace(cmd.Reason); reason != "" {
			order.CancelReason = &reason
		}
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return domain.Order{}, err
	}
	s.notify(ctx, order, false)
	return order, nil
}

func (s *orderService) resolveLine(ctx context.Context, line PlaceOrderLine) (domain.OrderLineItem, string, error) {
	productID := strings.TrimSpace(line.ProductID)
	if productID == "" {
		return domain.OrderLineItem{}, "", fmt.Errorf("%w: line product id is required", ErrOrderInvalidInput)
	}
	if line.Quantity <= 0 {
		return domain.OrderLineItem{}, "", fmt.Errorf("%w: line quantity must be positive", ErrOrderInvalidInput)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.OrderLineItem{}, "", err
	}
	if product.Status != domain.ProductStatusActive {
		return domain.OrderLineItem{}, "", fmt.Errorf("%w: %s is %s", ErrProductNotPurchasable, product.ID, product.Status)
	}

	item := domain.OrderLineItem{
		ProductRef: product.ID,
		Name:       product.Name,
		Quantity:   line.Quantity,
		UnitPrice:  product.BasePrice,
	}

	sku := strings.TrimSpace(line.SKU)
	if sku != "" {
		var variant *domain.Variant
		for i := range product.Variants {
			if product.Variants[i].SKU == sku {
				variant = &product.Variants[i]
				break
			}
		}
		if variant == nil {
			return domain.OrderLineItem{}, "", fmt.Errorf("%w: %s", ErrVariantNotFound, sku)
		}
		item.SKU = variant.SKU
		item.VariantName = variant.DisplayName
		item.UnitPrice = variant.Price
	} else if len(product.Variants) > 0 {
		return domain.OrderLineItem{}, "", fmt.Errorf("%w: sku required for product %s", ErrOrderInvalidInput, product.ID)
	}

	item.Total = item.UnitPrice * int64(item.Quantity)
	return item, product.Currency, nil
}

// nextOrderNumber allocates from a per-year counter so numbers restart each
// January and stay short: SF-2024-000123.
func (s *orderService) nextOrderNumber(ctx context.Context, now time.Time) (string, error) {
	year := now.Year()
	seq, err := s.counters.Next(ctx, fmt.Sprintf("orders-%d", year), 1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SF-%d-%06d", year, seq), nil
}

func (s *orderService) notify(ctx context.Context, order domain.Order, confirmation bool) {
	if s.notifications == nil {
		return
	}
	var err error
	if confirmation {
		err = s.notifications.SendOrderConfirmation(ctx, order)
	} else {
		err = s.notifications.SendOrderStatusUpdate(ctx, order)
	}
	if err != nil {
		s.logger(ctx, "orders.notification.failed", map[string]any{
			"orderId": order.ID,
			"status":  string(order.Status),
			"error":   err.Error(),
		})
	}
}

func validTransition(from, to domain.OrderStatus) bool {
	switch from {
	case domain.OrderStatusPending:
		return to == domain.OrderStatusProcessing || to == domain.OrderStatusCanceled
	case domain.OrderStatusProcessing:
		return to == domain.OrderStatusShipped || to == domain.OrderStatusCanceled
	case domain.OrderStatusShipped:
		return to == domain.OrderStatusDelivered
	default:
		return false
	}
}
