package handlers

import (
	"time"

	domain "github.com/maplecart/api/internal/domain"
)

// Wire DTOs for the public and admin APIs. Domain structs stay free of
// serialisation concerns; everything crossing HTTP is mapped here.

type attributePayload struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type optionPairPayload struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

type variantPayload struct {
	SKU         string              `json:"sku"`
	DisplayName string              `json:"displayName"`
	Options     []optionPairPayload `json:"options"`
	Price       int64               `json:"price"`
	Stock       int                 `json:"stock"`
}

type productPayload struct {
	ID            string             `json:"id"`
	Slug          string             `json:"slug"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	CategoryID    string             `json:"categoryId,omitempty"`
	Status        string             `json:"status"`
	BasePrice     int64              `json:"basePrice"`
	Currency      string             `json:"currency"`
	FeaturedImage string             `json:"featuredImage,omitempty"`
	Images        []string           `json:"images,omitempty"`
	Attributes    []attributePayload `json:"attributes,omitempty"`
	Variants      []variantPayload   `json:"variants,omitempty"`
	Metadata      map[string]any     `json:"metadata,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type categoryPayload struct {
	ID                 string    `json:"id"`
	Slug               string    `json:"slug"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Image              string    `json:"image,omitempty"`
	ActiveProductCount int       `json:"activeProductCount"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type addressPayload struct {
	Recipient  string  `json:"recipient"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      *string `json:"state,omitempty"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone,omitempty"`
}

type customerPayload struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	Name      string           `json:"name,omitempty"`
	Locale    string           `json:"locale,omitempty"`
	Addresses []addressPayload `json:"addresses,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type orderLinePayload struct {
	ProductRef  string `json:"productRef"`
	SKU         string `json:"sku,omitempty"`
	Name        string `json:"name"`
	VariantName string `json:"variantName,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	Total       int64  `json:"total"`
}

type orderTotalsPayload struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

type orderPayload struct {
	ID              string             `json:"id"`
	OrderNumber     string             `json:"orderNumber"`
	CustomerRef     string             `json:"customerRef"`
	Status          string             `json:"status"`
	Currency        string             `json:"currency"`
	Items           []orderLinePayload `json:"items"`
	Totals          orderTotalsPayload `json:"totals"`
	ShippingAddress *addressPayload    `json:"shippingAddress,omitempty"`
	ContactEmail    string             `json:"contactEmail,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	ShippedAt       *time.Time         `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time         `json:"deliveredAt,omitempty"`
	CanceledAt      *time.Time         `json:"canceledAt,omitempty"`
	CancelReason    *string            `json:"cancelReason,omitempty"`
}

type listResponse[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

func toProductPayload(p domain.Product) productPayload {
	out := productPayload{
		ID:            p.ID,
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		Status:        string(p.Status),
		BasePrice:     p.BasePrice,
		Currency:      p.Currency,
		FeaturedImage: p.FeaturedImage,
		Images:        p.Images,
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, attr := range p.Attributes {
		out.Attributes = append(out.Attributes, attributePayload{Name: attr.Name, Values: attr.Values})
	}
	for _, variant := range p.Variants {
		out.Variants = append(out.Variants, toVariantPayload(variant))
	}
	return out
}

func toVariantPayload(v domain.Variant) variantPayload {
	out := variantPayload{
		SKU:         v.SKU,
		DisplayName: v.DisplayName,
		Price:       v.Price,
		Stock:       v.Stock,
	}
	for _, opt := range v.Options {
		out.Options = append(out.Options, optionPairPayload{Attribute: opt.Attribute, Value: opt.Value})
	}
	return out
}

func toCategoryPayload(c domain.Category) categoryPayload {
	return categoryPayload{
		ID:                 c.ID,
		Slug:               c.Slug,
		Name:               c.Name,
		Description:        c.Description,
		Image:              c.Image,
		ActiveProductCount: c.ActiveProductCount,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func toAddressPayload(a domain.Address) addressPayload {
	return addressPayload{
		Recipient:  a.Recipient,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

func fromAddressPayload(a addressPayload) domain.Address {
	return domain.Address{
		Recipient:  a.Recipient,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

func toCustomerPayload(c domain.Customer) customerPayload {
	out := customerPayload{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		Locale:    c.Locale,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, addr := range c.Addresses {
		out.Addresses = append(out.Addresses, toAddressPayload(addr))
	}
	return out
}

func toOrderPayload(o domain.Order) orderPayload {
	out := orderPayload{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerRef: o.CustomerRef,
		Status:      string(o.Status),
		Currency:    o.Currency,
		Totals: orderTotalsPayload{
			Subtotal: o.Totals.Subtotal,
			Shipping: o.Totals.Shipping,
			Tax:      o.Totals.Tax,
			Total:    o.Totals.Total,
		},
		ContactEmail: o.ContactEmail,
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		ShippedAt:    o.ShippedAt,
		DeliveredAt:  o.DeliveredAt,
		CanceledAt:   o.CanceledAt,
		CancelReason: o.CancelReason,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, orderLinePayload{
			ProductRef:  item.ProductRef,
			SKU:         item.SKU,
			Name:        item.Name,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	if o.ShippingAddress != nil {
		addr := toAddressPayload(*o.ShippingAddress)
		out.ShippingAddress = &addr
	}
	return out
}
