package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/services"
)

// CheckoutHandlers places storefront orders. The customer profile is
// upserted by email before the order itself is created, so guest checkout
// and repeat checkout share one code path.
type CheckoutHandlers struct {
	orders    services.OrderService
	customers services.CustomerService
}

// NewCheckoutHandlers constructs checkout endpoints.
func NewCheckoutHandlers(orders services.OrderService, customers services.CustomerService) *CheckoutHandlers {
	return &CheckoutHandlers{orders: orders, customers: customers}
}

// Register mounts the checkout routes.
func (h *CheckoutHandlers) Register(r chi.Router) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{orderID}", h.getOrder)
}

type checkoutLineRequest struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku,omitempty"`
	Quantity  int    `json:"quantity"`
}

type checkoutCustomerRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Locale string `json:"locale,omitempty"`
}

type placeOrderRequest struct {
	Customer        checkoutCustomerRequest `json:"customer"`
	Lines           []checkoutLineRequest   `json:"lines"`
	ShippingAddress *addressPayload         `json:"shippingAddress,omitempty"`
	Notes           string                  `json:"notes,omitempty"`
}

func (h *CheckoutHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}
	if strings.TrimSpace(req.Customer.Email) == "" {
		respondBadRequest(ctx, w, "customer email is required")
		return
	}
	if len(req.Lines) == 0 {
		respondBadRequest(ctx, w, "at least one order line is required")
		return
	}

	customer, err := h.customers.UpsertCustomer(ctx, services.UpsertCustomerCommand{
		Customer: domain.Customer{
			Email:  req.Customer.Email,
			Name:   req.Customer.Name,
			Locale: req.Customer.Locale,
		},
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	cmd := services.PlaceOrderCommand{
		CustomerID: customer.ID,
		Notes:      req.Notes,
	}
	for _, line := range req.Lines {
		cmd.Lines = append(cmd.Lines, services.PlaceOrderLine{
			ProductID: line.ProductID,
			SKU:       line.SKU,
			Quantity:  line.Quantity,
		})
	}
	if req.ShippingAddress != nil {
		addr := fromAddressPayload(*req.ShippingAddress)
		cmd.ShippingAddress = &addr
	}

	order, err := h.orders.PlaceOrder(ctx, cmd)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderPayload(order))
}

func (h *CheckoutHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.orders.GetOrder(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderPayload(order))
}
