package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/maplecart/api/internal/domain"
	pfirestore "github.com/maplecart/api/internal/platform/firestore"
	"github.com/maplecart/api/internal/platform/pagination"
	"github.com/maplecart/api/internal/repositories"
)

const ordersCollection = "orders"

type orderLineDocument struct {
	ProductRef  string `firestore:"productRef"`
	SKU         string `firestore:"sku"`
	Name        string `firestore:"name"`
	VariantName string `firestore:"variantName"`
	Quantity    int    `firestore:"quantity"`
	UnitPrice   int64  `firestore:"unitPrice"`
	Total       int64  `firestore:"total"`
}

type orderTotalsDocument struct {
	Subtotal int64 `firestore:"subtotal"`
	Shipping int64 `firestore:"shipping"`
	Tax      int64 `firestore:"tax"`
	Total    int64 `firestore:"total"`
}

type orderDocument struct {
	OrderNumber     string              `firestore:"orderNumber"`
	CustomerRef     string              `firestore:"customerRef"`
	Status          string              `firestore:"status"`
	Currency        string              `firestore:"currency"`
	Items           []orderLineDocument `firestore:"items"`
	Totals          orderTotalsDocument `firestore:"totals"`
	ShippingAddress *addressDocument    `firestore:"shippingAddress,omitempty"`
	ContactEmail    string              `firestore:"contactEmail"`
	Notes           string              `firestore:"notes,omitempty"`
	CreatedAt       time.Time           `firestore:"createdAt"`
	UpdatedAt       time.Time           `firestore:"updatedAt"`
	ShippedAt       *time.Time          `firestore:"shippedAt,omitempty"`
	DeliveredAt     *time.Time          `firestore:"deliveredAt,omitempty"`
	CanceledAt      *time.Time          `firestore:"canceledAt,omitempty"`
	CancelReason    *string             `firestore:"cancelReason,omitempty"`
}

// OrderRepository implements repositories.OrderRepository backed by Firestore.
type OrderRepository struct {
	orders *pfirestore.BaseRepository[orderDocument]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{
		orders: pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection, nil, nil),
	}, nil
}

func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	_, err := r.orders.Set(ctx, order.ID, encodeOrder(order))
	return err
}

func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	_, err := r.orders.Set(ctx, order.ID, encodeOrder(order))
	return err
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	doc, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return decodeOrder(doc.ID, doc.Data), nil
}

func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) (domain.CursorPage[domain.Order], error) {
	pageSize := filter.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}

	cursor, err := pagination.DecodeToken(filter.Pagination.PageToken)
	if err != nil {
		return domain.CursorPage[domain.Order]{}, err
	}
	startAfter, err := decodeTimeCursor(cursor)
	if err != nil {
		return domain.CursorPage[domain.Order]{}, err
	}

	docs, err := r.orders.Query(ctx, func(q firestore.Query) firestore.Query {
		if ref := strings.TrimSpace(filter.CustomerRef); ref != "" {
			q = q.Where("customerRef", "==", ref)
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
		q = q.OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)
		if startAfter != nil {
			q = q.StartAfter(startAfter...)
		}
		return q.Limit(pageSize + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Order]{}, err
	}

	page := domain.CursorPage[domain.Order]{}
	hasMore := len(docs) > pageSize
	if hasMore {
		docs = docs[:pageSize]
	}
	for _, doc := range docs {
		page.Items = append(page.Items, decodeOrder(doc.ID, doc.Data))
	}
	if hasMore {
		last := docs[len(docs)-1]
		token, err := encodeTimeCursor(last.Data.CreatedAt, last.ID)
		if err != nil {
			return domain.CursorPage[domain.Order]{}, err
		}
		page.NextPageToken = token
	}
	return page, nil
}

func encodeOrder(order domain.Order) orderDocument {
	doc := orderDocument{
		OrderNumber:  order.OrderNumber,
		CustomerRef:  order.CustomerRef,
		Status:       string(order.Status),
		Currency:     order.Currency,
		ContactEmail: order.ContactEmail,
		Notes:        order.Notes,
		Totals: orderTotalsDocument{
			Subtotal: order.Totals.Subtotal,
			Shipping: order.Totals.Shipping,
			Tax:      order.Totals.Tax,
			Total:    order.Totals.Total,
		},
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
		ShippedAt:    order.ShippedAt,
		DeliveredAt:  order.DeliveredAt,
		CanceledAt:   order.CanceledAt,
		CancelReason: order.CancelReason,
	}
	if order.ShippingAddress != nil {
		addr := encodeAddress(*order.ShippingAddress)
		doc.ShippingAddress = &addr
	}
	for _, item := range order.Items {
		doc.Items = append(doc.Items, orderLineDocument{
			ProductRef:  item.ProductRef,
			SKU:         item.SKU,
			Name:        item.Name,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	return doc
}

func decodeOrder(id string, doc orderDocument) domain.Order {
	order := domain.Order{
		ID:           id,
		OrderNumber:  doc.OrderNumber,
		CustomerRef:  doc.CustomerRef,
		Status:       domain.OrderStatus(doc.Status),
		Currency:     doc.Currency,
		ContactEmail: doc.ContactEmail,
		Notes:        doc.Notes,
		Totals: domain.OrderTotals{
			Subtotal: doc.Totals.Subtotal,
			Shipping: doc.Totals.Shipping,
			Tax:      doc.Totals.Tax,
			Total:    doc.Totals.Total,
		},
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		ShippedAt:    doc.ShippedAt,
		DeliveredAt:  doc.DeliveredAt,
		CanceledAt:   doc.CanceledAt,
		CancelReason: doc.CancelReason,
	}
	if doc.ShippingAddress != nil {
		addr := decodeAddress(*doc.ShippingAddress)
		order.ShippingAddress = &addr
	}
	for _, item := range doc.Items {
		order.Items = append(order.Items, domain.OrderLineItem{
			ProductRef:  item.ProductRef,
			SKU:         item.SKU,
			Name:        item.Name,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	return order
}
