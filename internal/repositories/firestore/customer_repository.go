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
)

const customersCollection = "customers"

type addressDocument struct {
	Recipient  string  `firestore:"recipient"`
	Line1      string  `firestore:"line1"`
	Line2      *string `firestore:"line2,omitempty"`
	City       string  `firestore:"city"`
	State      *string `firestore:"state,omitempty"`
	PostalCode string  `firestore:"postalCode"`
	Country    string  `firestore:"country"`
	Phone      *string `firestore:"phone,omitempty"`
}

type customerDocument struct {
	Email     string            `firestore:"email"`
	Name      string            `firestore:"name"`
	Locale    string            `firestore:"locale"`
	Addresses []addressDocument `firestore:"addresses"`
	CreatedAt time.Time         `firestore:"createdAt"`
	UpdatedAt time.Time         `firestore:"updatedAt"`
}

// CustomerRepository implements repositories.CustomerRepository backed by Firestore.
type CustomerRepository struct {
	customers *pfirestore.BaseRepository[customerDocument]
}

// NewCustomerRepository constructs a Firestore-backed customer repository.
func NewCustomerRepository(provider *pfirestore.Provider) (*CustomerRepository, error) {
	if provider == nil {
		return nil, errors.New("customer repository requires firestore provider")
	}
	return &CustomerRepository{
		customers: pfirestore.NewBaseRepository[customerDocument](provider, customersCollection, nil, nil),
	}, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, customer domain.Customer) error {
	_, err := r.customers.Set(ctx, customer.ID, encodeCustomer(customer))
	return err
}

func (r *CustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	_, err := r.customers.Set(ctx, customer.ID, encodeCustomer(customer))
	return err
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID string) (domain.Customer, error) {
	doc, err := r.customers.Get(ctx, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	return decodeCustomer(doc.ID, doc.Data), nil
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	docs, err := r.customers.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("email", "==", strings.ToLower(strings.TrimSpace(email))).Limit(1)
	})
	if err != nil {
		return domain.Customer{}, err
	}
	if len(docs) == 0 {
		return domain.Customer{}, pfirestore.WrapError("customers.find_by_email", notFoundError(email))
	}
	return decodeCustomer(docs[0].ID, docs[0].Data), nil
}

func (r *CustomerRepository) List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Customer], error) {
	pageSize := pager.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}

	cursor, err := pagination.DecodeToken(pager.PageToken)
	if err != nil {
		return domain.CursorPage[domain.Customer]{}, err
	}
	startAfter, err := decodeTimeCursor(cursor)
	if err != nil {
		return domain.CursorPage[domain.Customer]{}, err
	}

	docs, err := r.customers.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)
		if startAfter != nil {
			q = q.StartAfter(startAfter...)
		}
		return q.Limit(pageSize + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Customer]{}, err
	}

	page := domain.CursorPage[domain.Customer]{}
	hasMore := len(docs) > pageSize
	if hasMore {
		docs = docs[:pageSize]
	}
	for _, doc := range docs {
		page.Items = append(page.Items, decodeCustomer(doc.ID, doc.Data))
	}
	if hasMore {
		last := docs[len(docs)-1]
		token, err := encodeTimeCursor(last.Data.CreatedAt, last.ID)
		if err != nil {
			return domain.CursorPage[domain.Customer]{}, err
		}
		page.NextPageToken = token
	}
	return page, nil
}

func encodeCustomer(customer domain.Customer) customerDocument {
	doc := customerDocument{
		Email:     customer.Email,
		Name:      customer.Name,
		Locale:    customer.Locale,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
	for _, addr := range customer.Addresses {
		doc.Addresses = append(doc.Addresses, encodeAddress(addr))
	}
	return doc
}

func decodeCustomer(id string, doc customerDocument) domain.Customer {
	customer := domain.Customer{
		ID:        id,
		Email:     doc.Email,
		Name:      doc.Name,
		Locale:    doc.Locale,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, addr := range doc.Addresses {
		customer.Addresses = append(customer.Addresses, decodeAddress(addr))
	}
	return customer
}

func encodeAddress(addr domain.Address) addressDocument {
	return addressDocument{
		Recipient:  addr.Recipient,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
		Phone:      addr.Phone,
	}
}

func decodeAddress(doc addressDocument) domain.Address {
	return domain.Address{
		Recipient:  doc.Recipient,
		Line1:      doc.Line1,
		Line2:      doc.Line2,
		City:       doc.City,
		State:      doc.State,
		PostalCode: doc.PostalCode,
		Country:    doc.Country,
		Phone:      doc.Phone,
	}
}
