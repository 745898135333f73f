package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/platform/pagination"
	"github.com/maplecart/api/internal/services"
)

// AdminOrderHandlers exposes order management and customer lookups to staff users.
type AdminOrderHandlers struct {
	orders    services.OrderService
	customers services.CustomerService
}

// NewAdminOrderHandlers constructs admin order endpoints.
func NewAdminOrderHandlers(orders services.OrderService, customers services.CustomerService) *AdminOrderHandlers {
	return &AdminOrderHandlers{orders: orders, customers: customers}
}

// Register mounts the admin order and customer routes.
func (h *AdminOrderHandlers) Register(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{orderID}", h.getOrder)
	r.Post("/orders/{orderID}/status", h.updateStatus)
	r.Get("/customers", h.listCustomers)
	r.Get("/customers/{customerID}", h.getCustomer)
}

// adminOrderListOptions declares the filter vocabulary accepted on the admin
// order listing, e.g. ?filter=status==pending&filter=customer==cust-1.
var adminOrderListOptions = pagination.Options{
	AllowedFilterFields: map[string][]pagination.Operator{
		"customer": {pagination.OperatorEqual},
		"status":   {pagination.OperatorEqual},
	},
}

func (h *AdminOrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := pagination.FromRequest(r, adminOrderListOptions)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	filter := services.OrderFilter{
		Pagination: domain.Pagination{PageSize: params.PageSize, PageToken: params.PageToken},
	}
	for _, f := range params.Filters {
		switch f.Field {
		case "customer":
			filter.CustomerRef = f.Value
		case "status":
			filter.Status = append(filter.Status, domain.OrderStatus(f.Value))
		}
	}

	page, err := h.orders.ListOrders(ctx, filter)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	resp := listResponse[orderPayload]{NextPageToken: page.NextPageToken}
	for _, order := range page.Items {
		resp.Items = append(resp.Items, toOrderPayload(order))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminOrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.orders.GetOrder(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderPayload(order))
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (h *AdminOrderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	order, err := h.orders.UpdateOrderStatus(ctx, services.UpdateOrderStatusCommand{
		OrderID: chi.URLParam(r, "orderID"),
		Status:  domain.OrderStatus(req.Status),
		Reason:  req.Reason,
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderPayload(order))
}

func (h *AdminOrderHandlers) listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := pagination.FromRequest(r, pagination.Options{})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	page, err := h.customers.ListCustomers(ctx, domain.Pagination{
		PageSize:  params.PageSize,
		PageToken: params.PageToken,
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	resp := listResponse[customerPayload]{NextPageToken: page.NextPageToken}
	for _, customer := range page.Items {
		resp.Items = append(resp.Items, toCustomerPayload(customer))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminOrderHandlers) getCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customer, err := h.customers.GetCustomer(ctx, chi.URLParam(r, "customerID"))
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerPayload(customer))
}
