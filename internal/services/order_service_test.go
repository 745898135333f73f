package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/repositories"
)

type stubOrderRepo struct {
	byID    map[string]domain.Order
	inserts []domain.Order
	updates []domain.Order
}

func newStubOrderRepo(orders ...domain.Order) *stubOrderRepo {
	repo := &stubOrderRepo{byID: make(map[string]domain.Order)}
	for _, order := range orders {
		repo.byID[order.ID] = order
	}
	return repo
}

func (s *stubOrderRepo) Insert(_ context.Context, order domain.Order) error {
	s.inserts = append(s.inserts, order)
	s.byID[order.ID] = order
	return nil
}

func (s *stubOrderRepo) Update(_ context.Context, order domain.Order) error {
	s.updates = append(s.updates, order)
	s.byID[order.ID] = order
	return nil
}

func (s *stubOrderRepo) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	order, ok := s.byID[orderID]
	if !ok {
		return domain.Order{}, &stubRepoError{notFound: true}
	}
	return order, nil
}

func (s *stubOrderRepo) List(_ context.Context, _ repositories.OrderListFilter) (domain.CursorPage[domain.Order], error) {
	page := domain.CursorPage[domain.Order]{}
	for _, order := range s.byID {
		page.Items = append(page.Items, order)
	}
	return page, nil
}

type stubCounterRepo struct {
	values map[string]int64
}

func (s *stubCounterRepo) Next(_ context.Context, counterID string, step int64) (int64, error) {
	if s.values == nil {
		s.values = make(map[string]int64)
	}
	s.values[counterID] += step
	return s.values[counterID], nil
}

func (s *stubCounterRepo) Configure(context.Context, string, repositories.CounterConfig) error {
	return nil
}

type stubNotifier struct {
	confirmations []domain.Order
	updates       []domain.Order
	err           error
}

func (s *stubNotifier) SendOrderConfirmation(_ context.Context, order domain.Order) error {
	s.confirmations = append(s.confirmations, order)
	return s.err
}

func (s *stubNotifier) SendOrderStatusUpdate(_ context.Context, order domain.Order) error {
	s.updates = append(s.updates, order)
	return s.err
}

func newTestOrderService(t *testing.T, orders *stubOrderRepo, products *stubProductRepo, customers *stubCustomerRepo, notifier NotificationService) OrderService {
	t.Helper()
	svc, err := NewOrderService(OrderServiceDeps{
		Orders:        orders,
		Products:      products,
		Customers:     customers,
		Counters:      &stubCounterRepo{},
		Notifications: notifier,
		Clock:         func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
		IDGenerator:   func() string { return "order-new" },
	})
	if err != nil {
		t.Fatalf("new order service: %v", err)
	}
	return svc
}

func purchasableProduct() domain.Product {
	return domain.Product{
		ID:        "prod-1",
		Slug:      "classic-tee",
		Name:      "Classic Tee",
		Status:    domain.ProductStatusActive,
		BasePrice: 2500,
		Currency:  "USD",
		Variants: []domain.Variant{
			{SKU: "classic-tee-black-s", DisplayName: "Color: Black, Size: S", Price: 2500},
			{SKU: "classic-tee-black-m", DisplayName: "Color: Black, Size: M", Price: 2700},
		},
	}
}

func TestPlaceOrderSnapshotsVariantAndNumbers(t *testing.T) {
	orders := newStubOrderRepo()
	products := newStubProductRepo(purchasableProduct())
	customers := newStubCustomerRepo(domain.Customer{
		ID:    "cust-1",
		Email: "jamie@example.com",
		Addresses: []domain.Address{
			{Recipient: "Jamie", Line1: "1 Main St", City: "Toronto", PostalCode: "M5V 1A1", Country: "CA"},
		},
	})
	notifier := &stubNotifier{}
	svc := newTestOrderService(t, orders, products, customers, notifier)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		CustomerID: "cust-1",
		Lines: []PlaceOrderLine{
			{ProductID: "prod-1", SKU: "classic-tee-black-m", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if order.OrderNumber != "SF-2024-000001" {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	item := order.Items[0]
	if item.VariantName != "Color: Black, Size: M" || item.UnitPrice != 2700 || item.Total != 5400 {
		t.Fatalf("unexpected line snapshot %+v", item)
	}
	if order.Totals.Subtotal != 5400 || order.Totals.Total != 5400 {
		t.Fatalf("unexpected totals %+v", order.Totals)
	}
	if order.ShippingAddress == nil || order.ShippingAddress.City != "Toronto" {
		t.Fatal("expected default shipping address from customer profile")
	}
	if len(notifier.confirmations) != 1 {
		t.Fatalf("expected confirmation notification, got %d", len(notifier.confirmations))
	}

	// Sequential orders take sequential numbers.
	again, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		CustomerID: "cust-1",
		Lines:      []PlaceOrderLine{{ProductID: "prod-1", SKU: "classic-tee-black-s", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("second order: %v", err)
	}
	if again.OrderNumber != "SF-2024-000002" {
		t.Fatalf("unexpected second order number %q", again.OrderNumber)
	}
}

func TestPlaceOrderRejectsInactiveProduct(t *testing.T) {
	product := purchasableProduct()
	product.Status = domain.ProductStatusArchived
	svc := newTestOrderService(t, newStubOrderRepo(), newStubProductRepo(product),
		newStubCustomerRepo(domain.Customer{ID: "cust-1", Email: "jamie@example.com"}), nil)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		CustomerID: "cust-1",
		Lines:      []PlaceOrderLine{{ProductID: "prod-1", SKU: "classic-tee-black-s", Quantity: 1}},
	})
	if !errors.Is(err, ErrProductNotPurchasable) {
		t.Fatalf("expected not purchasable, got %v", err)
	}
}

func TestPlaceOrderRequiresSKUWhenVariantsExist(t *testing.T) {
	svc := newTestOrderService(t, newStubOrderRepo(), newStubProductRepo(purchasableProduct()),
		newStubCustomerRepo(domain.Customer{ID: "cust-1", Email: "jamie@example.com"}), nil)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		CustomerID: "cust-1",
		Lines:      []PlaceOrderLine{{ProductID: "prod-1", Quantity: 1}},
	})
	if !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	_, err = svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		CustomerID: "cust-1",
		Lines:      []PlaceOrderLine{{ProductID: "prod-1", SKU: "no-such-sku", Quantity: 1}},
	})
	if !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected variant not found, got %v", err)
	}
}

func TestUpdateOrderStatusEnforcesTransitions(t *testing.T) {
	orders := newStubOrderRepo(domain.Order{ID: "order-1", Status: domain.OrderStatusPending})
	notifier := &stubNotifier{}
	svc := newTestOrderService(t, orders, newStubProductRepo(),
		newStubCustomerRepo(), notifier)
	ctx := context.Background()

	// pending -> delivered is not allowed.
	_, err := svc.UpdateOrderStatus(ctx, UpdateOrderStatusCommand{
		OrderID: "order-1",
		Status:  domain.OrderStatusDelivered,
	})
	if !errors.Is(err, ErrOrderInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	// Walk the happy path.
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		if _, err := svc.UpdateOrderStatus(ctx, UpdateOrderStatusCommand{OrderID: "order-1", Status: status}); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	final := orders.byID["order-1"]
	if final.ShippedAt == nil || final.DeliveredAt == nil {
		t.Fatal("expected shipped/delivered timestamps set")
	}
	if len(notifier.updates) != 3 {
		t.Fatalf("expected 3 status notifications, got %d", len(notifier.updates))
	}

	// Delivered is terminal.
	_, err = svc.UpdateOrderStatus(ctx, UpdateOrderStatusCommand{
		OrderID: "order-1",
		Status:  domain.OrderStatusCanceled,
	})
	if !errors.Is(err, ErrOrderInvalidTransition) {
		t.Fatalf("expected terminal state to reject transition, got %v", err)
	}
}

func TestCancelOrderRecordsReason(t *testing.T) {
	orders := newStubOrderRepo(domain.Order{ID: "order-1", Status: domain.OrderStatusPending})
	svc := newTestOrderService(t, orders, newStubProductRepo(), newStubCustomerRepo(), nil)

	order, err := svc.UpdateOrderStatus(context.Background(), UpdateOrderStatusCommand{
		OrderID: "order-1",
		Status:  domain.OrderStatusCanceled,
		Reason:  "customer request",
	})
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if order.CanceledAt == nil {
		t.Fatal("expected canceled timestamp")
	}
	if order.CancelReason == nil || *order.CancelReason != "customer request" {
		t.Fatalf("expected cancel reason recorded, got %v", order.CancelReason)
	}
}
